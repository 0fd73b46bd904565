package event

import (
	"context"
	"log/slog"
	"sync"
)

// Kafka topic constants for product domain events.
const (
	TopicProductCreated = "ecomstore.product.created"
	TopicProductDeleted = "ecomstore.product.deleted"
)

// Aggregate type constant.
const AggregateTypeProduct = "product"

// SourceCatalogIndexer identifies events originating from this service.
const SourceCatalogIndexer = "catalog-indexer"

// ProductCreatedEvent is the in-process fact that a product creation
// transaction produced a new aggregate. It never leaves the process
// boundary directly; the publisher translates it into a wire message.
type ProductCreatedEvent struct {
	ProductID int64
}

// ProductCreatedData is the wire payload for a product.created message.
// The schema is additive-only: consumers may run a different deployed
// version than publishers.
type ProductCreatedData struct {
	ProductID int64 `json:"product_id"`
}

// ProductDeletedEvent is the in-process fact that a product aggregate was
// removed in a committed transaction.
type ProductDeletedEvent struct {
	ProductID int64
}

// ProductDeletedData is the wire payload for a product.deleted message.
type ProductDeletedData struct {
	ProductID int64 `json:"product_id"`
}

// Publisher sends product domain events to the broker.
type Publisher interface {
	PublishProductCreated(ctx context.Context, ev ProductCreatedEvent) error
	PublishProductDeleted(ctx context.Context, ev ProductDeletedEvent) error
}

// DomainEvent is a fact raised inside a transaction and delivered after
// commit. Implementations know which Publisher method carries them.
type DomainEvent interface {
	publish(ctx context.Context, pub Publisher) error
	topic() string
	productID() int64
}

func (e ProductCreatedEvent) publish(ctx context.Context, pub Publisher) error {
	return pub.PublishProductCreated(ctx, e)
}

func (e ProductCreatedEvent) topic() string { return TopicProductCreated }

func (e ProductCreatedEvent) productID() int64 { return e.ProductID }

func (e ProductDeletedEvent) publish(ctx context.Context, pub Publisher) error {
	return pub.PublishProductDeleted(ctx, e)
}

func (e ProductDeletedEvent) topic() string { return TopicProductDeleted }

func (e ProductDeletedEvent) productID() int64 { return e.ProductID }

// Queue collects domain events raised inside a database transaction and
// releases them only after the transaction commits. A rolled-back
// transaction's queue is simply discarded, so no message is ever sent for
// uncommitted writes.
//
// Delivery is send-on-commit with no durable buffering: if the broker is
// unreachable when the queue drains, the event is logged and lost. The
// manual reindex endpoint is the recovery path for that gap.
type Queue struct {
	mu     sync.Mutex
	events []DomainEvent
}

// NewQueue creates an empty event queue scoped to one transactional operation.
func NewQueue() *Queue {
	return &Queue{}
}

// Raise records a domain event for delivery after commit.
func (q *Queue) Raise(ev DomainEvent) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Drain publishes all pending events and empties the queue. It must be
// called only after the enclosing transaction has committed. Publish
// failures are logged, not returned: the write already succeeded and must
// not be failed retroactively (at-most-once delivery).
func (q *Queue) Drain(ctx context.Context, pub Publisher, logger *slog.Logger) {
	q.mu.Lock()
	events := q.events
	q.events = nil
	q.mu.Unlock()

	for _, ev := range events {
		if err := ev.publish(ctx, pub); err != nil {
			logger.ErrorContext(ctx, "failed to publish domain event, search index will lag until manual reindex",
				slog.String("topic", ev.topic()),
				slog.Int64("product_id", ev.productID()),
				slog.String("error", err.Error()),
			)
		}
	}
}
