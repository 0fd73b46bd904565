package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mirindaq/EcomStore-sub002/internal/domain"
)

// Engine is an in-memory implementation of the SearchEngine interface.
// It provides simple substring matching on the searchable text fields.
// Thread-safe via sync.RWMutex.
type Engine struct {
	mu   sync.RWMutex
	docs map[string]domain.ProductDocument
}

// New creates a new in-memory search engine.
func New() *Engine {
	return &Engine{
		docs: make(map[string]domain.ProductDocument),
	}
}

// Index adds or replaces a single product document in the in-memory index.
func (e *Engine) Index(_ context.Context, doc *domain.ProductDocument) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.docs[doc.ID] = *doc
	return nil
}

// Delete removes the document for the given relational product ID.
// Deleting an absent document is not an error.
func (e *Engine) Delete(_ context.Context, productID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.docs, domain.DocumentID(productID))
	return nil
}

// Get returns the stored document for a product, or nil if absent.
// It is a test helper not present on the SearchEngine interface.
func (e *Engine) Get(productID int64) *domain.ProductDocument {
	e.mu.RLock()
	defer e.mu.RUnlock()

	doc, ok := e.docs[domain.DocumentID(productID)]
	if !ok {
		return nil
	}
	return &doc
}

// Len returns the number of stored documents.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.docs)
}

// Search executes a search query against the in-memory index.
func (e *Engine) Search(_ context.Context, query *domain.SearchQuery) (*domain.SearchResult, error) {
	start := time.Now()

	e.mu.RLock()
	defer e.mu.RUnlock()

	matched := make([]domain.ProductDocument, 0)

	queryLower := strings.ToLower(query.Query)

	for _, d := range e.docs {
		if !e.matches(d, query, queryLower) {
			continue
		}
		matched = append(matched, d)
	}

	// Sort the results.
	e.sortDocuments(matched, query.SortBy)

	total := len(matched)

	// Apply pagination.
	page := query.Page
	if page < 1 {
		page = 1
	}
	perPage := query.PerPage
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	offset := (page - 1) * perPage
	if offset > total {
		offset = total
	}
	end := offset + perPage
	if end > total {
		end = total
	}

	tookMs := time.Since(start).Milliseconds()

	return &domain.SearchResult{
		Documents: matched[offset:end],
		Total:     total,
		Page:      page,
		PerPage:   perPage,
		TookMs:    tookMs,
	}, nil
}

// BulkIndex adds or replaces multiple product documents in the in-memory index.
func (e *Engine) BulkIndex(_ context.Context, docs []domain.ProductDocument) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range docs {
		e.docs[docs[i].ID] = docs[i]
	}
	return nil
}

// matches checks whether a document matches the given search query filters.
func (e *Engine) matches(d domain.ProductDocument, query *domain.SearchQuery, queryLower string) bool {
	// Full-text match on name and the flattened searchable text.
	if queryLower != "" {
		nameLower := strings.ToLower(d.Name)
		textLower := strings.ToLower(d.SearchableText)
		if !strings.Contains(nameLower, queryLower) && !strings.Contains(textLower, queryLower) {
			return false
		}
	}

	// Category filter.
	if query.CategoryID != nil {
		if d.CategoryID == nil || *d.CategoryID != *query.CategoryID {
			return false
		}
	}

	// Brand filter.
	if query.BrandID != nil {
		if d.BrandID == nil || *d.BrandID != *query.BrandID {
			return false
		}
	}

	// Price range filter on the lowest active-variant price. Documents
	// without any active variant carry no price and never match a range.
	if query.MinPrice != nil {
		if d.MinPrice == nil || *d.MinPrice < *query.MinPrice {
			return false
		}
	}
	if query.MaxPrice != nil {
		if d.MinPrice == nil || *d.MinPrice > *query.MaxPrice {
			return false
		}
	}

	// Status filter.
	if query.Status != nil && *query.Status != "" {
		if d.Status != *query.Status {
			return false
		}
	}

	return true
}

// sortDocuments sorts the matched documents based on the sort option.
func (e *Engine) sortDocuments(docs []domain.ProductDocument, sortBy string) {
	switch sortBy {
	case domain.SortPriceAsc:
		sort.Slice(docs, func(i, j int) bool {
			return priceOrZero(docs[i].MinPrice) < priceOrZero(docs[j].MinPrice)
		})
	case domain.SortPriceDesc:
		sort.Slice(docs, func(i, j int) bool {
			return priceOrZero(docs[i].MinPrice) > priceOrZero(docs[j].MinPrice)
		})
	case domain.SortNewest:
		sort.Slice(docs, func(i, j int) bool {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		})
	default:
		// SortRelevance has no scoring here; order by product ID so results
		// are stable across calls.
		sort.Slice(docs, func(i, j int) bool {
			return docs[i].ProductID < docs[j].ProductID
		})
	}
}

func priceOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
