package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirindaq/EcomStore-sub002/internal/domain"
	memengine "github.com/mirindaq/EcomStore-sub002/internal/engine/memory"
	"github.com/mirindaq/EcomStore-sub002/internal/promotion"
)

// contextRecordingEngine captures every promotion context it is asked to resolve.
type contextRecordingEngine struct {
	contexts []domain.SearchProductContext
	discount float64
}

func (e *contextRecordingEngine) ResolvePrice(_ context.Context, pctx domain.SearchProductContext) (float64, error) {
	e.contexts = append(e.contexts, pctx)
	return pctx.OriginalPrice * (1 - e.discount), nil
}

func seedEngine(t *testing.T, eng *memengine.Engine, p domain.Product) {
	t.Helper()
	require.NoError(t, eng.Index(context.Background(), BuildDocument(&p)))
}

func TestSearch_TenPercentDiscountResolvesTo18(t *testing.T) {
	eng := memengine.New()
	p := fixtureProduct()
	p.ID = 1
	p.Variants = []domain.ProductVariant{
		{ID: 5, ProductID: 1, SKU: "TR-42-BLK", Price: 20.0, IsActive: true},
	}
	seedEngine(t, eng, p)

	promos := &contextRecordingEngine{discount: 0.10}
	svc := NewSearchService(eng, promos, testLogger())

	resp, err := svc.Search(context.Background(), &domain.SearchQuery{Query: "trail"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)

	item := resp.Items[0]
	require.Len(t, item.Variants, 1)
	assert.Equal(t, 20.0, item.Variants[0].OriginalPrice)
	assert.InDelta(t, 18.0, item.Variants[0].FinalPrice, 1e-9)
	require.NotNil(t, item.DisplayPrice)
	assert.InDelta(t, 18.0, *item.DisplayPrice, 1e-9)

	// The promotion engine saw the variant's own price and identity.
	require.Len(t, promos.contexts, 1)
	pctx := promos.contexts[0]
	assert.Equal(t, int64(1), pctx.ProductID)
	assert.Equal(t, int64(5), pctx.VariantID)
	assert.Equal(t, 20.0, pctx.OriginalPrice)
}

func TestSearch_EachVariantResolvedWithItsOwnPrice(t *testing.T) {
	eng := memengine.New()
	seedEngine(t, eng, fixtureProduct())

	promos := &contextRecordingEngine{}
	svc := NewSearchService(eng, promos, testLogger())

	resp, err := svc.Search(context.Background(), &domain.SearchQuery{Query: "trail"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)

	require.Len(t, promos.contexts, 3)
	prices := make(map[int64]float64, 3)
	for _, pctx := range promos.contexts {
		prices[pctx.VariantID] = pctx.OriginalPrice
	}
	// Never the aggregate min/max, always the variant's own price.
	assert.Equal(t, 15.5, prices[5])
	assert.Equal(t, 10.0, prices[6])
	assert.Equal(t, 99.0, prices[7])
}

func TestSearch_DisplayPriceIsLowestResolvedPrice(t *testing.T) {
	eng := memengine.New()
	seedEngine(t, eng, fixtureProduct())

	// Variant 7 gets a deep discount that undercuts the cheapest variant.
	promos := promotion.NewStaticEngine().DiscountVariant(7, 0.95)
	svc := NewSearchService(eng, promos, testLogger())

	resp, err := svc.Search(context.Background(), &domain.SearchQuery{Query: "trail"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)

	require.NotNil(t, resp.Items[0].DisplayPrice)
	assert.InDelta(t, 4.95, *resp.Items[0].DisplayPrice, 1e-9)
}

func TestSearch_NoVariantsMeansNoDisplayPrice(t *testing.T) {
	eng := memengine.New()
	p := fixtureProduct()
	p.Variants = nil
	seedEngine(t, eng, p)

	svc := NewSearchService(eng, promotion.NewNoopEngine(), testLogger())

	resp, err := svc.Search(context.Background(), &domain.SearchQuery{Query: "trail"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Nil(t, resp.Items[0].DisplayPrice)
	assert.Empty(t, resp.Items[0].Variants)
}

func TestSearch_InvalidSortRejected(t *testing.T) {
	svc := NewSearchService(memengine.New(), promotion.NewNoopEngine(), testLogger())

	_, err := svc.Search(context.Background(), &domain.SearchQuery{SortBy: "cheapest"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sort")
}

func TestSearch_FiltersByCategory(t *testing.T) {
	eng := memengine.New()
	seedEngine(t, eng, fixtureProduct())

	other := fixtureProduct()
	other.ID = 43
	other.CategoryID = int64p(99)
	seedEngine(t, eng, other)

	svc := NewSearchService(eng, promotion.NewNoopEngine(), testLogger())

	cat := int64(3)
	resp, err := svc.Search(context.Background(), &domain.SearchQuery{CategoryID: &cat})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(42), resp.Items[0].Document.ProductID)
}
