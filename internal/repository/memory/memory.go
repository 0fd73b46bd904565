package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/mirindaq/EcomStore-sub002/internal/domain"
	apperrors "github.com/mirindaq/EcomStore-sub002/pkg/errors"
)

// ProductRepository is an in-memory implementation of
// repository.ProductRepository for development and tests. It mimics the
// transactional semantics of the PostgreSQL implementation: a failing inTx
// callback leaves the store unchanged.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
	nextID   int64
	nextVar  int64
}

// NewProductRepository creates an empty in-memory product repository.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[int64]domain.Product),
		nextID:   1,
		nextVar:  1,
	}
}

// CreateProduct assigns IDs, stores the aggregate, and runs the inTx
// callback. If the callback fails, the insert is rolled back.
func (r *ProductRepository) CreateProduct(_ context.Context, p *domain.Product, inTx func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	p.ID = r.nextID
	p.CreatedAt = now
	p.UpdatedAt = now

	for i := range p.Variants {
		p.Variants[i].ID = r.nextVar + int64(i)
		p.Variants[i].ProductID = p.ID
		p.Variants[i].CreatedAt = now
		p.Variants[i].UpdatedAt = now
	}

	if inTx != nil {
		if err := inTx(); err != nil {
			// Rollback: nothing was stored, reset assigned IDs.
			p.ID = 0
			for i := range p.Variants {
				p.Variants[i].ID = 0
				p.Variants[i].ProductID = 0
			}
			return err
		}
	}

	r.nextID++
	r.nextVar += int64(len(p.Variants))
	r.products[p.ID] = *p
	return nil
}

// DeleteProduct removes the aggregate and runs the inTx callback. If the
// callback fails, the aggregate stays in place.
func (r *ProductRepository) DeleteProduct(_ context.Context, id int64, inTx func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return apperrors.NotFound("product", strconv.FormatInt(id, 10))
	}

	if inTx != nil {
		if err := inTx(); err != nil {
			return err
		}
	}

	delete(r.products, id)
	return nil
}

// Put stores an aggregate verbatim, for test setup.
func (r *ProductRepository) Put(p domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
	if p.ID >= r.nextID {
		r.nextID = p.ID + 1
	}
}

// Delete removes an aggregate, for simulating deletion between publish and consume.
func (r *ProductRepository) Delete(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
}

// FindForIndexing returns a copy of the stored aggregate.
func (r *ProductRepository) FindForIndexing(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", strconv.FormatInt(id, 10))
	}
	cp := p
	return &cp, nil
}

// ListForIndexing pages through stored aggregates by ascending ID.
func (r *ProductRepository) ListForIndexing(_ context.Context, afterID int64, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 100
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Product
	// IDs are assigned sequentially, so a linear scan in ID order is fine here.
	for id := afterID + 1; id < r.nextID && len(out) < limit; id++ {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
