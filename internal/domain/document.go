package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// documentNamespace is the fixed UUID namespace for deriving document IDs.
// Changing it would orphan every existing document, so it never changes.
var documentNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// DocumentID derives the synthetic search document ID for a product. The
// derivation is deterministic so reindexing the same product always targets
// the same document.
func DocumentID(productID int64) string {
	return uuid.NewSHA1(documentNamespace, []byte("product:"+strconv.FormatInt(productID, 10))).String()
}

// ProductDocument is the denormalized, eventually-consistent projection of a
// product aggregate stored in the search index. It is created or replaced
// wholesale on each (re)indexing event, never partially patched.
//
// The document ID is synthetic and distinct from the relational product ID,
// which is carried as a searchable field. Invariant: MinPrice <= MaxPrice
// whenever both are set; both are nil for a product with no active variant.
type ProductDocument struct {
	ID              string            `json:"id"`
	ProductID       int64             `json:"product_id"`
	Slug            string            `json:"slug"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	SearchableText  string            `json:"searchable_text"`
	BrandID         *int64            `json:"brand_id,omitempty"`
	BrandName       string            `json:"brand_name,omitempty"`
	CategoryID      *int64            `json:"category_id,omitempty"`
	CategoryName    string            `json:"category_name,omitempty"`
	CategorySlug    string            `json:"category_slug,omitempty"`
	Status          string            `json:"status"`
	MinPrice        *float64          `json:"min_price,omitempty"`
	MaxPrice        *float64          `json:"max_price,omitempty"`
	VariantSkus     []string          `json:"variant_skus"`
	VariantValues   []string          `json:"variant_values"`
	AttributeNames  []string          `json:"attribute_names"`
	AttributeValues []string          `json:"attribute_values"`
	FilterValues    []string          `json:"filter_values"`
	ProductImages   []string          `json:"product_images"`
	Variants        []DocumentVariant `json:"variants"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// DocumentVariant carries the per-variant identity and price a search result
// row needs to resolve a display price without a relational round-trip.
type DocumentVariant struct {
	ID    int64   `json:"id"`
	SKU   string  `json:"sku"`
	Price float64 `json:"price"`
}

// Sort options for search results.
const (
	SortRelevance = "relevance"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
)

// ValidSortOptions returns the list of valid sort options.
func ValidSortOptions() []string {
	return []string{SortRelevance, SortPriceAsc, SortPriceDesc, SortNewest}
}

// IsValidSort checks whether the given sort string is a valid sort option.
func IsValidSort(sort string) bool {
	for _, s := range ValidSortOptions() {
		if s == sort {
			return true
		}
	}
	return false
}

// SearchQuery holds all parameters for a search request.
type SearchQuery struct {
	Query      string   `json:"query"`
	CategoryID *int64   `json:"category_id,omitempty"`
	BrandID    *int64   `json:"brand_id,omitempty"`
	MinPrice   *float64 `json:"min_price,omitempty"`
	MaxPrice   *float64 `json:"max_price,omitempty"`
	Status     *string  `json:"status,omitempty"`
	SortBy     string   `json:"sort_by"`
	Page       int      `json:"page"`
	PerPage    int      `json:"per_page"`
}

// SearchResult holds the paginated search response at the engine level.
type SearchResult struct {
	Documents []ProductDocument `json:"documents"`
	Total     int               `json:"total"`
	Page      int               `json:"page"`
	PerPage   int               `json:"per_page"`
	TookMs    int64             `json:"took_ms"`
}
