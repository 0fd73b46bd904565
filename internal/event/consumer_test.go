package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgkafka "github.com/mirindaq/EcomStore-sub002/pkg/kafka"
)

// fakeIndexer records indexing calls and can be told to fail.
type fakeIndexer struct {
	indexed []int64
	deleted []int64
	err     error
}

func (f *fakeIndexer) IndexProduct(_ context.Context, productID int64) error {
	if f.err != nil {
		return f.err
	}
	f.indexed = append(f.indexed, productID)
	return nil
}

func (f *fakeIndexer) DeleteDocument(_ context.Context, productID int64) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, productID)
	return nil
}

func mustEvent(t *testing.T, eventType string, data any) *pkgkafka.Event {
	t.Helper()
	ev, err := pkgkafka.NewEvent(eventType, "42", AggregateTypeProduct, SourceCatalogIndexer, data)
	require.NoError(t, err)
	return ev
}

func TestConsumer_ProductCreatedTriggersIndexing(t *testing.T) {
	idx := &fakeIndexer{}
	c := NewConsumer(idx, testLogger())

	ev := mustEvent(t, TopicProductCreated, ProductCreatedData{ProductID: 42})
	require.NoError(t, c.Handle(context.Background(), ev))

	assert.Equal(t, []int64{42}, idx.indexed)
}

func TestConsumer_ProductDeletedTriggersDocumentRemoval(t *testing.T) {
	idx := &fakeIndexer{}
	c := NewConsumer(idx, testLogger())

	ev := mustEvent(t, TopicProductDeleted, ProductDeletedData{ProductID: 42})
	require.NoError(t, c.Handle(context.Background(), ev))

	assert.Equal(t, []int64{42}, idx.deleted)
}

func TestConsumer_IndexingFailurePropagates(t *testing.T) {
	idx := &fakeIndexer{err: errors.New("product not found")}
	c := NewConsumer(idx, testLogger())

	ev := mustEvent(t, TopicProductCreated, ProductCreatedData{ProductID: 42})
	err := c.Handle(context.Background(), ev)

	// The broker's retry and dead-letter policy owns this failure.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "42")
}

func TestConsumer_UnknownEventTypeAcknowledged(t *testing.T) {
	idx := &fakeIndexer{}
	c := NewConsumer(idx, testLogger())

	ev := mustEvent(t, "ecomstore.product.archived", map[string]any{"product_id": 42})
	require.NoError(t, c.Handle(context.Background(), ev))

	assert.Empty(t, idx.indexed)
	assert.Empty(t, idx.deleted)
}

func TestConsumer_MalformedPayloadIsAnError(t *testing.T) {
	idx := &fakeIndexer{}
	c := NewConsumer(idx, testLogger())

	ev := mustEvent(t, TopicProductCreated, "not an object")
	require.Error(t, c.Handle(context.Background(), ev))
	assert.Empty(t, idx.indexed)
}
