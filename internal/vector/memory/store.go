package memory

import (
	"context"
	"sync"

	"github.com/mirindaq/EcomStore-sub002/internal/domain"
	"github.com/mirindaq/EcomStore-sub002/internal/vector"
)

// Store is an in-memory implementation of the VariantIndexer interface used
// in tests and local development. Thread-safe via sync.RWMutex.
type Store struct {
	mu       sync.RWMutex
	embedder vector.Embedder

	records   map[int64]vector.VariantRecord // keyed by variant ID
	byProduct map[int64][]int64              // product ID -> variant IDs

	failErr error
}

// NewStore creates an empty in-memory vector store.
func NewStore(embedder vector.Embedder) *Store {
	return &Store{
		embedder:  embedder,
		records:   make(map[int64]vector.VariantRecord),
		byProduct: make(map[int64][]int64),
	}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
// Test helper.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// IndexProductVariants (re)indexes every variant of the product, replacing
// whatever was stored for it before.
func (s *Store) IndexProductVariants(ctx context.Context, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}

	for _, id := range s.byProduct[product.ID] {
		delete(s.records, id)
	}

	ids := make([]int64, 0, len(product.Variants))
	for _, v := range product.Variants {
		text := product.Name + " " + v.SKU
		emb, err := s.embedder.Embed(ctx, text)
		if err != nil {
			return err
		}
		s.records[v.ID] = vector.VariantRecord{
			VariantID: v.ID,
			ProductID: product.ID,
			SKU:       v.SKU,
			Text:      text,
			Embedding: emb,
		}
		ids = append(ids, v.ID)
	}
	s.byProduct[product.ID] = ids
	return nil
}

// DeleteProductVariants removes all vector entries for the product.
func (s *Store) DeleteProductVariants(_ context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}

	for _, id := range s.byProduct[productID] {
		delete(s.records, id)
	}
	delete(s.byProduct, productID)
	return nil
}

// Record returns the stored record for a variant, or nil. Test helper.
func (s *Store) Record(variantID int64) *vector.VariantRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[variantID]
	if !ok {
		return nil
	}
	return &rec
}

// Len returns the number of stored variant records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
