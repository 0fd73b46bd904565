package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mirindaq/EcomStore-sub002/internal/domain"
	"github.com/mirindaq/EcomStore-sub002/internal/engine"
	apperrors "github.com/mirindaq/EcomStore-sub002/pkg/errors"
)

// PricedVariant is one variant of a search result row with its promotion
// price resolved.
type PricedVariant struct {
	VariantID     int64   `json:"variant_id"`
	SKU           string  `json:"sku"`
	OriginalPrice float64 `json:"original_price"`
	FinalPrice    float64 `json:"final_price"`
}

// SearchItem is one assembled search result: the projected document plus
// the per-variant resolved prices. DisplayPrice is the lowest resolved
// price across the variants, nil when the document carries none.
type SearchItem struct {
	Document     domain.ProductDocument `json:"document"`
	Variants     []PricedVariant        `json:"variants"`
	DisplayPrice *float64               `json:"display_price,omitempty"`
}

// SearchResponse is the paginated, price-resolved search result.
type SearchResponse struct {
	Items   []SearchItem `json:"items"`
	Total   int          `json:"total"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
	TookMs  int64        `json:"took_ms"`
}

// SearchService assembles search results: it queries the engine, then
// resolves a display price for every variant of every hit through the
// promotion engine. Each variant is resolved with its own price, never an
// aggregate bound, so variant-scoped promotion rules apply correctly.
type SearchService struct {
	engine     engine.SearchEngine
	promotions domain.PromotionEngine
	logger     *slog.Logger
}

// NewSearchService creates a search service.
func NewSearchService(se engine.SearchEngine, promotions domain.PromotionEngine, logger *slog.Logger) *SearchService {
	return &SearchService{
		engine:     se,
		promotions: promotions,
		logger:     logger,
	}
}

// Search runs the query and resolves promotion prices for every result row.
func (s *SearchService) Search(ctx context.Context, query *domain.SearchQuery) (*SearchResponse, error) {
	if query.SortBy != "" && !domain.IsValidSort(query.SortBy) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid sort option %q", query.SortBy))
	}

	result, err := s.engine.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	items := make([]SearchItem, 0, len(result.Documents))
	for _, doc := range result.Documents {
		item, err := s.assembleItem(ctx, doc)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return &SearchResponse{
		Items:   items,
		Total:   result.Total,
		Page:    result.Page,
		PerPage: result.PerPage,
		TookMs:  result.TookMs,
	}, nil
}

// assembleItem resolves a display price per variant of one document.
func (s *SearchService) assembleItem(ctx context.Context, doc domain.ProductDocument) (SearchItem, error) {
	item := SearchItem{
		Document: doc,
		Variants: make([]PricedVariant, 0, len(doc.Variants)),
	}

	for _, v := range doc.Variants {
		pctx := domain.SearchProductContext{
			ProductID:     doc.ProductID,
			BrandID:       doc.BrandID,
			CategoryID:    doc.CategoryID,
			VariantID:     v.ID,
			OriginalPrice: v.Price,
		}

		final, err := s.promotions.ResolvePrice(ctx, pctx)
		if err != nil {
			return SearchItem{}, fmt.Errorf("resolve price for variant %d: %w", v.ID, err)
		}

		item.Variants = append(item.Variants, PricedVariant{
			VariantID:     v.ID,
			SKU:           v.SKU,
			OriginalPrice: v.Price,
			FinalPrice:    final,
		})

		if item.DisplayPrice == nil || final < *item.DisplayPrice {
			f := final
			item.DisplayPrice = &f
		}
	}

	return item, nil
}
