package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	pkgkafka "github.com/mirindaq/EcomStore-sub002/pkg/kafka"
)

// Producer publishes product domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishProductCreated publishes a product.created message carrying only the
// product ID. Consumers re-fetch the aggregate at consume time, so the
// payload never goes stale.
func (p *Producer) PublishProductCreated(ctx context.Context, ev ProductCreatedEvent) error {
	data := ProductCreatedData{ProductID: ev.ProductID}

	aggregateID := strconv.FormatInt(ev.ProductID, 10)
	msg, err := pkgkafka.NewEvent(TopicProductCreated, aggregateID, AggregateTypeProduct, SourceCatalogIndexer, data)
	if err != nil {
		return fmt.Errorf("create product.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductCreated, msg); err != nil {
		return fmt.Errorf("publish product.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.created event",
		slog.Int64("product_id", ev.ProductID),
	)

	return nil
}

// PublishProductDeleted publishes a product.deleted message so consumers can
// drop the derived document and vectors.
func (p *Producer) PublishProductDeleted(ctx context.Context, ev ProductDeletedEvent) error {
	data := ProductDeletedData{ProductID: ev.ProductID}

	aggregateID := strconv.FormatInt(ev.ProductID, 10)
	msg, err := pkgkafka.NewEvent(TopicProductDeleted, aggregateID, AggregateTypeProduct, SourceCatalogIndexer, data)
	if err != nil {
		return fmt.Errorf("create product.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductDeleted, msg); err != nil {
		return fmt.Errorf("publish product.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.deleted event",
		slog.Int64("product_id", ev.ProductID),
	)

	return nil
}
