package domain

import "context"

// SearchProductContext carries the identifying data a promotion engine needs
// to compute a display price for one (product, variant) pair surfaced in a
// batch of search results. It is ephemeral and immutable: constructed per
// result row, never persisted.
//
// OriginalPrice is always the variant's own price, not an aggregate min/max,
// so promotion rules scoped to a specific variant resolve correctly.
type SearchProductContext struct {
	ProductID     int64   `json:"product_id"`
	BrandID       *int64  `json:"brand_id,omitempty"`
	CategoryID    *int64  `json:"category_id,omitempty"`
	VariantID     int64   `json:"variant_id"`
	OriginalPrice float64 `json:"original_price"`
}

// PromotionEngine resolves the display price for a search result row. A
// returned price equal to OriginalPrice means no promotion applied.
type PromotionEngine interface {
	ResolvePrice(ctx context.Context, pctx SearchProductContext) (float64, error)
}
