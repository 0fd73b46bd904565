package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/mirindaq/EcomStore-sub002/pkg/kafka"
)

// Indexer is the consume-side port: it re-fetches the authoritative product
// aggregate and projects it into the search and vector indexes.
type Indexer interface {
	IndexProduct(ctx context.Context, productID int64) error
	DeleteDocument(ctx context.Context, productID int64) error
}

// Consumer handles product domain events by triggering (re)indexing.
type Consumer struct {
	indexer Indexer
	logger  *slog.Logger
}

// NewConsumer creates a new event consumer.
func NewConsumer(indexer Indexer, logger *slog.Logger) *Consumer {
	return &Consumer{
		indexer: indexer,
		logger:  logger,
	}
}

// Handle dispatches a Kafka event based on its type. Unknown event types are
// acknowledged and ignored so new publisher versions don't poison the queue.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicProductCreated:
		return c.handleProductCreated(ctx, event)
	case TopicProductDeleted:
		return c.handleProductDeleted(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

// handleProductCreated re-fetches the aggregate by ID and indexes it. A
// missing aggregate (deleted between publish and consume) is returned as an
// error, not swallowed: the broker's redelivery and dead-letter policy owns
// that failure.
func (c *Consumer) handleProductCreated(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductCreatedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal product.created data: %w", err)
	}

	if err := c.indexer.IndexProduct(ctx, data.ProductID); err != nil {
		return fmt.Errorf("index product %d from created event: %w", data.ProductID, err)
	}

	c.logger.InfoContext(ctx, "indexed product from created event",
		slog.Int64("product_id", data.ProductID),
	)

	return nil
}

// handleProductDeleted removes the derived document for a deleted product.
func (c *Consumer) handleProductDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductDeletedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal product.deleted data: %w", err)
	}

	if err := c.indexer.DeleteDocument(ctx, data.ProductID); err != nil {
		return fmt.Errorf("delete document for product %d: %w", data.ProductID, err)
	}

	c.logger.InfoContext(ctx, "deleted product document from deleted event",
		slog.Int64("product_id", data.ProductID),
	)

	return nil
}
