package vector

import (
	"context"

	"github.com/mirindaq/EcomStore-sub002/internal/domain"
)

// VariantRecord is the payload stored per product variant in the vector
// store. The embedding text concatenates the product and variant describing
// fields so similar variants land near each other.
type VariantRecord struct {
	VariantID int64     `json:"variant_id"`
	ProductID int64     `json:"product_id"`
	SKU       string    `json:"sku"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// Embedder turns a text fragment into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VariantIndexer writes one vector entry per product variant. Indexing a
// product replaces the entries of all its current variants; stale entries
// for removed variants are deleted.
type VariantIndexer interface {
	// IndexProductVariants (re)indexes every variant of the product.
	IndexProductVariants(ctx context.Context, product *domain.Product) error

	// DeleteProductVariants removes all vector entries for the product.
	DeleteProductVariants(ctx context.Context, productID int64) error
}
