package promotion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirindaq/EcomStore-sub002/internal/domain"
)

func int64p(v int64) *int64 { return &v }

func TestNoopEngine_ReturnsOriginalPrice(t *testing.T) {
	e := NewNoopEngine()

	price, err := e.ResolvePrice(context.Background(), domain.SearchProductContext{
		ProductID: 1, VariantID: 5, OriginalPrice: 20.0,
	})
	require.NoError(t, err)
	assert.Equal(t, 20.0, price)
}

func TestStaticEngine_VariantDiscount(t *testing.T) {
	e := NewStaticEngine().DiscountVariant(5, 0.10)

	price, err := e.ResolvePrice(context.Background(), domain.SearchProductContext{
		ProductID: 1, VariantID: 5, OriginalPrice: 20.0,
	})
	require.NoError(t, err)
	assert.InDelta(t, 18.0, price, 1e-9)
}

func TestStaticEngine_SpecificityOrder(t *testing.T) {
	e := NewStaticEngine().
		DiscountBrand(7, 0.40).
		DiscountCategory(3, 0.30).
		DiscountProduct(1, 0.20).
		DiscountVariant(5, 0.10)

	pctx := domain.SearchProductContext{
		ProductID:     1,
		BrandID:       int64p(7),
		CategoryID:    int64p(3),
		VariantID:     5,
		OriginalPrice: 100.0,
	}

	// Variant rule wins.
	price, err := e.ResolvePrice(context.Background(), pctx)
	require.NoError(t, err)
	assert.InDelta(t, 90.0, price, 1e-9)

	// Without a variant rule, the product rule applies.
	pctx.VariantID = 6
	price, err = e.ResolvePrice(context.Background(), pctx)
	require.NoError(t, err)
	assert.InDelta(t, 80.0, price, 1e-9)

	// Without product scope, category beats brand.
	pctx.ProductID = 2
	price, err = e.ResolvePrice(context.Background(), pctx)
	require.NoError(t, err)
	assert.InDelta(t, 70.0, price, 1e-9)
}

func TestStaticEngine_NoMatchingRule(t *testing.T) {
	e := NewStaticEngine().DiscountProduct(99, 0.50)

	price, err := e.ResolvePrice(context.Background(), domain.SearchProductContext{
		ProductID: 1, VariantID: 5, OriginalPrice: 20.0,
	})
	require.NoError(t, err)
	assert.Equal(t, 20.0, price)
}
