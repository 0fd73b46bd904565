package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/mirindaq/EcomStore-sub002/internal/domain"
	"github.com/mirindaq/EcomStore-sub002/internal/vector"
)

const (
	variantKeyPrefix = "vector:variant:"
	productKeyPrefix = "vector:product:"
)

// Store is a Redis-backed implementation of the VariantIndexer interface.
// Each variant record is stored under its own key; a per-product set of
// variant IDs makes replace-on-reindex and delete-all-for-product cheap.
type Store struct {
	client   *redis.Client
	embedder vector.Embedder
	logger   *slog.Logger
}

// NewStore creates a Redis vector store using the given client and embedder.
func NewStore(client *redis.Client, embedder vector.Embedder, logger *slog.Logger) *Store {
	return &Store{
		client:   client,
		embedder: embedder,
		logger:   logger,
	}
}

// IndexProductVariants (re)indexes every variant of the product. Entries for
// variants that no longer exist on the product are removed, so the store
// converges to the aggregate's current shape on every call.
func (s *Store) IndexProductVariants(ctx context.Context, product *domain.Product) error {
	productKey := productKeyPrefix + strconv.FormatInt(product.ID, 10)

	// Variant IDs currently tracked for this product.
	stale, err := s.client.SMembers(ctx, productKey).Result()
	if err != nil {
		return fmt.Errorf("vector index: load tracked variants: %w", err)
	}
	staleSet := make(map[string]struct{}, len(stale))
	for _, id := range stale {
		staleSet[id] = struct{}{}
	}

	records := make([]vector.VariantRecord, 0, len(product.Variants))
	for _, v := range product.Variants {
		text := embeddingText(product, &v)
		emb, err := s.embedder.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("vector index: embed variant %d: %w", v.ID, err)
		}
		records = append(records, vector.VariantRecord{
			VariantID: v.ID,
			ProductID: product.ID,
			SKU:       v.SKU,
			Text:      text,
			Embedding: emb,
		})
	}

	pipe := s.client.TxPipeline()
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("vector index: marshal record: %w", err)
		}
		idStr := strconv.FormatInt(rec.VariantID, 10)
		pipe.Set(ctx, variantKeyPrefix+idStr, data, 0)
		pipe.SAdd(ctx, productKey, idStr)
		delete(staleSet, idStr)
	}
	for idStr := range staleSet {
		pipe.Del(ctx, variantKeyPrefix+idStr)
		pipe.SRem(ctx, productKey, idStr)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("vector index: write records: %w", err)
	}

	s.logger.Debug("indexed variant vectors",
		"product_id", product.ID,
		"variants", len(records),
		"removed", len(staleSet),
	)
	return nil
}

// DeleteProductVariants removes all vector entries for the product.
func (s *Store) DeleteProductVariants(ctx context.Context, productID int64) error {
	productKey := productKeyPrefix + strconv.FormatInt(productID, 10)

	ids, err := s.client.SMembers(ctx, productKey).Result()
	if err != nil {
		return fmt.Errorf("vector delete: load tracked variants: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, idStr := range ids {
		pipe.Del(ctx, variantKeyPrefix+idStr)
	}
	pipe.Del(ctx, productKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("vector delete: remove records: %w", err)
	}

	s.logger.Debug("deleted variant vectors", "product_id", productID, "variants", len(ids))
	return nil
}

// embeddingText flattens the product and variant describing fields into the
// text the embedder consumes.
func embeddingText(p *domain.Product, v *domain.ProductVariant) string {
	parts := make([]string, 0, 6+len(v.Attributes))
	parts = append(parts, p.Name)
	if p.BrandName != "" {
		parts = append(parts, p.BrandName)
	}
	if p.CategoryName != "" {
		parts = append(parts, p.CategoryName)
	}
	if v.Name != "" {
		parts = append(parts, v.Name)
	}
	parts = append(parts, v.SKU)

	// Attribute order must be stable so the same variant always embeds the
	// same text.
	keys := make([]string, 0, len(v.Attributes))
	for k := range v.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, v.Attributes[k])
	}
	return strings.Join(parts, " ")
}
