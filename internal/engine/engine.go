package engine

import (
	"context"

	"github.com/mirindaq/EcomStore-sub002/internal/domain"
)

// SearchEngine defines the interface for storing and querying product
// documents. Implementations may use Elasticsearch, in-memory storage, or
// other backends. Index replaces the whole document atomically; the engine
// never patches fields in place.
type SearchEngine interface {
	// Index adds or replaces a single product document, keyed by its
	// synthetic document ID.
	Index(ctx context.Context, doc *domain.ProductDocument) error

	// Delete removes the document for the given relational product ID.
	// Deleting an absent document is not an error.
	Delete(ctx context.Context, productID int64) error

	// Search executes a search query and returns matching documents.
	Search(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error)

	// BulkIndex adds or replaces multiple product documents.
	BulkIndex(ctx context.Context, docs []domain.ProductDocument) error
}
