package promotion

import (
	"context"

	"github.com/mirindaq/EcomStore-sub002/internal/domain"
)

// NoopEngine returns the original price unchanged. Used when no promotion
// service is configured.
type NoopEngine struct{}

// NewNoopEngine creates a no-op promotion engine.
func NewNoopEngine() *NoopEngine { return &NoopEngine{} }

// ResolvePrice returns the context's original price.
func (e *NoopEngine) ResolvePrice(_ context.Context, pctx domain.SearchProductContext) (float64, error) {
	return pctx.OriginalPrice, nil
}

// StaticEngine applies fixed percentage discounts keyed by variant, product,
// category, or brand. Variant rules win over product rules, which win over
// category and brand rules. Used in tests and local development.
type StaticEngine struct {
	variantDiscounts  map[int64]float64
	productDiscounts  map[int64]float64
	categoryDiscounts map[int64]float64
	brandDiscounts    map[int64]float64
}

// NewStaticEngine creates an empty static promotion engine.
func NewStaticEngine() *StaticEngine {
	return &StaticEngine{
		variantDiscounts:  make(map[int64]float64),
		productDiscounts:  make(map[int64]float64),
		categoryDiscounts: make(map[int64]float64),
		brandDiscounts:    make(map[int64]float64),
	}
}

// DiscountVariant registers a percentage discount (0..1) for a variant.
func (e *StaticEngine) DiscountVariant(variantID int64, pct float64) *StaticEngine {
	e.variantDiscounts[variantID] = pct
	return e
}

// DiscountProduct registers a percentage discount (0..1) for a product.
func (e *StaticEngine) DiscountProduct(productID int64, pct float64) *StaticEngine {
	e.productDiscounts[productID] = pct
	return e
}

// DiscountCategory registers a percentage discount (0..1) for a category.
func (e *StaticEngine) DiscountCategory(categoryID int64, pct float64) *StaticEngine {
	e.categoryDiscounts[categoryID] = pct
	return e
}

// DiscountBrand registers a percentage discount (0..1) for a brand.
func (e *StaticEngine) DiscountBrand(brandID int64, pct float64) *StaticEngine {
	e.brandDiscounts[brandID] = pct
	return e
}

// ResolvePrice applies the most specific matching discount to the variant's
// original price.
func (e *StaticEngine) ResolvePrice(_ context.Context, pctx domain.SearchProductContext) (float64, error) {
	if pct, ok := e.variantDiscounts[pctx.VariantID]; ok {
		return pctx.OriginalPrice * (1 - pct), nil
	}
	if pct, ok := e.productDiscounts[pctx.ProductID]; ok {
		return pctx.OriginalPrice * (1 - pct), nil
	}
	if pctx.CategoryID != nil {
		if pct, ok := e.categoryDiscounts[*pctx.CategoryID]; ok {
			return pctx.OriginalPrice * (1 - pct), nil
		}
	}
	if pctx.BrandID != nil {
		if pct, ok := e.brandDiscounts[*pctx.BrandID]; ok {
			return pctx.OriginalPrice * (1 - pct), nil
		}
	}
	return pctx.OriginalPrice, nil
}
