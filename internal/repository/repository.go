package repository

import (
	"context"

	"github.com/mirindaq/EcomStore-sub002/internal/domain"
)

// ProductRepository defines the persistence operations the indexing pipeline
// needs from the relational store. The relational aggregate is the single
// source of truth; everything derived from it is disposable.
type ProductRepository interface {
	// CreateProduct persists a product and its variants in a single
	// transaction. The inTx callback runs inside the transaction after the
	// inserts succeed; if it returns an error the transaction is rolled
	// back. Callers use it to raise domain events in transaction scope.
	CreateProduct(ctx context.Context, product *domain.Product, inTx func() error) error

	// DeleteProduct removes a product and its variants and images in a
	// single transaction. The inTx callback runs inside the transaction
	// after the deletes; a callback error rolls the transaction back.
	// Returns an error wrapping errors.ErrNotFound if the product does
	// not exist.
	DeleteProduct(ctx context.Context, id int64, inTx func() error) error

	// FindForIndexing retrieves the full product aggregate by ID with
	// variants, images, and category filter values eagerly loaded.
	// Returns an error wrapping errors.ErrNotFound if the product does
	// not exist.
	FindForIndexing(ctx context.Context, id int64) (*domain.Product, error)

	// ListForIndexing returns up to limit full aggregates with ID greater
	// than afterID, ordered by ID. Used by the manual reindex job to page
	// through the catalog.
	ListForIndexing(ctx context.Context, afterID int64, limit int) ([]domain.Product, error)
}
