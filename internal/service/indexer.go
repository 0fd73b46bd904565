package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mirindaq/EcomStore-sub002/internal/domain"
	"github.com/mirindaq/EcomStore-sub002/internal/engine"
	"github.com/mirindaq/EcomStore-sub002/internal/repository"
	"github.com/mirindaq/EcomStore-sub002/internal/vector"
)

// reindexPageSize is how many aggregates ReindexAll loads per page.
const reindexPageSize = 200

// IndexerService is the consume side of the pipeline. It re-fetches the
// authoritative aggregate by ID, projects it into a search document, and
// writes the per-variant vector records. It holds no mutable state, so
// concurrent consumers for different products are safe.
type IndexerService struct {
	repo    repository.ProductRepository
	engine  engine.SearchEngine
	vectors vector.VariantIndexer
	logger  *slog.Logger
}

// NewIndexerService creates an indexer service.
func NewIndexerService(repo repository.ProductRepository, se engine.SearchEngine, vectors vector.VariantIndexer, logger *slog.Logger) *IndexerService {
	return &IndexerService{
		repo:    repo,
		engine:  se,
		vectors: vectors,
		logger:  logger,
	}
}

// IndexProduct loads the current aggregate state and replaces both derived
// copies: the search document and the variant vectors. A missing aggregate
// is an error; the caller's retry and dead-letter policy owns it. Any
// partial failure fails the whole operation so redelivery reruns everything
// (both writes are idempotent).
func (s *IndexerService) IndexProduct(ctx context.Context, productID int64) error {
	product, err := s.repo.FindForIndexing(ctx, productID)
	if err != nil {
		return fmt.Errorf("load product %d for indexing: %w", productID, err)
	}

	doc := BuildDocument(product)
	if err := s.engine.Index(ctx, doc); err != nil {
		return fmt.Errorf("index document for product %d: %w", productID, err)
	}

	if err := s.vectors.IndexProductVariants(ctx, product); err != nil {
		return fmt.Errorf("index variant vectors for product %d: %w", productID, err)
	}

	s.logger.DebugContext(ctx, "product indexed",
		slog.Int64("product_id", productID),
		slog.Int("variants", len(product.Variants)),
	)

	return nil
}

// DeleteDocument removes the derived copies of a product: its search
// document and its variant vectors. Deleting copies that are already absent
// succeeds.
func (s *IndexerService) DeleteDocument(ctx context.Context, productID int64) error {
	if err := s.engine.Delete(ctx, productID); err != nil {
		return fmt.Errorf("delete document for product %d: %w", productID, err)
	}

	if err := s.vectors.DeleteProductVariants(ctx, productID); err != nil {
		return fmt.Errorf("delete variant vectors for product %d: %w", productID, err)
	}

	return nil
}

// ReindexAll pages through the entire relational catalog and rebuilds every
// derived copy. It is the manual recovery path for publishes lost after
// commit. Returns the number of products reindexed.
func (s *IndexerService) ReindexAll(ctx context.Context) (int, error) {
	var afterID int64
	total := 0

	for {
		products, err := s.repo.ListForIndexing(ctx, afterID, reindexPageSize)
		if err != nil {
			return total, fmt.Errorf("list products after id %d: %w", afterID, err)
		}
		if len(products) == 0 {
			break
		}

		docs := make([]domain.ProductDocument, 0, len(products))
		for i := range products {
			docs = append(docs, *BuildDocument(&products[i]))
		}
		if err := s.engine.BulkIndex(ctx, docs); err != nil {
			return total, fmt.Errorf("bulk index page after id %d: %w", afterID, err)
		}

		for i := range products {
			if err := s.vectors.IndexProductVariants(ctx, &products[i]); err != nil {
				return total, fmt.Errorf("index variant vectors for product %d: %w", products[i].ID, err)
			}
		}

		total += len(products)
		afterID = products[len(products)-1].ID

		s.logger.InfoContext(ctx, "reindex page complete",
			slog.Int64("after_id", afterID),
			slog.Int("total", total),
		)
	}

	return total, nil
}

// BuildDocument projects a fully-loaded product aggregate into its search
// document. It is pure and deterministic: the same aggregate always yields
// a byte-identical document, so redelivered messages are safe to reprocess.
// Price bounds are computed over active variants only; a product with no
// active variant carries nil bounds. Flattened arrays keep duplicates.
func BuildDocument(p *domain.Product) *domain.ProductDocument {
	doc := &domain.ProductDocument{
		ID:           domain.DocumentID(p.ID),
		ProductID:    p.ID,
		Slug:         p.Slug,
		Name:         p.Name,
		Description:  p.Description,
		BrandID:      p.BrandID,
		BrandName:    p.BrandName,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		CategorySlug: p.CategorySlug,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}

	doc.VariantSkus = make([]string, 0, len(p.Variants))
	doc.VariantValues = make([]string, 0, len(p.Variants))
	doc.AttributeNames = make([]string, 0)
	doc.AttributeValues = make([]string, 0)
	doc.Variants = make([]domain.DocumentVariant, 0, len(p.Variants))

	var minPrice, maxPrice *float64
	for _, v := range p.Variants {
		doc.VariantSkus = append(doc.VariantSkus, v.SKU)
		if v.Name != "" {
			doc.VariantValues = append(doc.VariantValues, v.Name)
		}
		for _, name := range sortedKeys(v.Attributes) {
			doc.AttributeNames = append(doc.AttributeNames, name)
			doc.AttributeValues = append(doc.AttributeValues, v.Attributes[name])
		}
		doc.Variants = append(doc.Variants, domain.DocumentVariant{
			ID:    v.ID,
			SKU:   v.SKU,
			Price: v.Price,
		})

		if !v.IsActive {
			continue
		}
		price := v.Price
		if minPrice == nil || price < *minPrice {
			minPrice = &price
		}
		if maxPrice == nil || price > *maxPrice {
			maxPrice = &price
		}
	}
	doc.MinPrice = minPrice
	doc.MaxPrice = maxPrice

	doc.FilterValues = make([]string, 0, len(p.FilterValues))
	doc.FilterValues = append(doc.FilterValues, p.FilterValues...)

	doc.ProductImages = make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		doc.ProductImages = append(doc.ProductImages, img.URL)
	}

	doc.SearchableText = buildSearchableText(p, doc)

	return doc
}

// buildSearchableText concatenates every text field worth matching into one
// analyzed blob.
func buildSearchableText(p *domain.Product, doc *domain.ProductDocument) string {
	parts := make([]string, 0, 8)
	parts = append(parts, p.Name)
	if p.Description != "" {
		parts = append(parts, p.Description)
	}
	if p.BrandName != "" {
		parts = append(parts, p.BrandName)
	}
	if p.CategoryName != "" {
		parts = append(parts, p.CategoryName)
	}
	parts = append(parts, doc.VariantSkus...)
	parts = append(parts, doc.VariantValues...)
	parts = append(parts, doc.AttributeValues...)
	parts = append(parts, doc.FilterValues...)
	return strings.Join(parts, " ")
}

// sortedKeys returns map keys in a stable order so the projection stays
// deterministic.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
