package kafka

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// ---------------------------------------------------------------------------
// MemoryIdempotencyStore tests
// ---------------------------------------------------------------------------

func TestMemoryIdempotencyStore_AddAndContains(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)
	ctx := context.Background()

	if err := store.Add(ctx, "evt-1"); err != nil {
		t.Fatalf("Add() returned error: %v", err)
	}

	got, err := store.Contains(ctx, "evt-1")
	if err != nil {
		t.Fatalf("Contains() returned error: %v", err)
	}
	if !got {
		t.Error("Contains(evt-1) = false, want true after Add")
	}
}

func TestMemoryIdempotencyStore_ContainsUnknown(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)
	ctx := context.Background()

	got, err := store.Contains(ctx, "unknown-id")
	if err != nil {
		t.Fatalf("Contains() returned error: %v", err)
	}
	if got {
		t.Error("Contains(unknown-id) = true, want false for unknown ID")
	}
}

func TestMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewMemoryIdempotencyStore(10 * time.Millisecond)
	ctx := context.Background()

	if err := store.Add(ctx, "evt-expire"); err != nil {
		t.Fatalf("Add() returned error: %v", err)
	}

	got, err := store.Contains(ctx, "evt-expire")
	if err != nil {
		t.Fatalf("Contains() returned error: %v", err)
	}
	if !got {
		t.Error("Contains(evt-expire) = false immediately after Add, want true")
	}

	// Wait for TTL to expire.
	time.Sleep(20 * time.Millisecond)

	got, err = store.Contains(ctx, "evt-expire")
	if err != nil {
		t.Fatalf("Contains() returned error: %v", err)
	}
	if got {
		t.Error("Contains(evt-expire) = true after TTL expiry, want false")
	}
}

func TestMemoryIdempotencyStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := "evt-" + string(rune('a'+n%26))
			_ = store.Add(ctx, id)
			_, _ = store.Contains(ctx, id)
		}(i)
	}
	wg.Wait()

	if store.Len() == 0 {
		t.Error("Len() = 0 after concurrent adds, want > 0")
	}
}

// ---------------------------------------------------------------------------
// IdempotentHandler tests
// ---------------------------------------------------------------------------

func testEvent(t *testing.T, eventID string) *Event {
	t.Helper()
	ev, err := NewEvent("ecomstore.product.created", "42", "product", "test", map[string]int64{"product_id": 42})
	if err != nil {
		t.Fatalf("NewEvent() returned error: %v", err)
	}
	ev.EventID = eventID
	return ev
}

func TestIdempotentHandler_ProcessesNewEvent(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)

	var calls atomic.Int64
	handler := IdempotentHandler(store, func(_ context.Context, _ *Event) error {
		calls.Add(1)
		return nil
	}, testLogger())

	if err := handler(context.Background(), testEvent(t, "evt-new")); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("inner handler called %d times, want 1", calls.Load())
	}
}

func TestIdempotentHandler_SkipsDuplicate(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)

	var calls atomic.Int64
	handler := IdempotentHandler(store, func(_ context.Context, _ *Event) error {
		calls.Add(1)
		return nil
	}, testLogger())

	ctx := context.Background()
	if err := handler(ctx, testEvent(t, "evt-dup")); err != nil {
		t.Fatalf("first delivery returned error: %v", err)
	}
	if err := handler(ctx, testEvent(t, "evt-dup")); err != nil {
		t.Fatalf("redelivery returned error: %v", err)
	}

	if calls.Load() != 1 {
		t.Errorf("inner handler called %d times for redelivered event, want 1", calls.Load())
	}
}

func TestIdempotentHandler_FailedProcessingNotRecorded(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)

	var calls atomic.Int64
	handler := IdempotentHandler(store, func(_ context.Context, _ *Event) error {
		if calls.Add(1) == 1 {
			return errors.New("transient failure")
		}
		return nil
	}, testLogger())

	ctx := context.Background()
	if err := handler(ctx, testEvent(t, "evt-retry")); err == nil {
		t.Fatal("first delivery should have failed")
	}

	// The retry must be processed, not skipped as a duplicate.
	if err := handler(ctx, testEvent(t, "evt-retry")); err != nil {
		t.Fatalf("retry returned error: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("inner handler called %d times, want 2 (failed attempt + retry)", calls.Load())
	}
}

func TestIdempotentHandler_MissingEventIDProcessedEveryTime(t *testing.T) {
	store := NewMemoryIdempotencyStore(1 * time.Minute)

	var calls atomic.Int64
	handler := IdempotentHandler(store, func(_ context.Context, _ *Event) error {
		calls.Add(1)
		return nil
	}, testLogger())

	ctx := context.Background()
	_ = handler(ctx, testEvent(t, ""))
	_ = handler(ctx, testEvent(t, ""))

	if calls.Load() != 2 {
		t.Errorf("inner handler called %d times for ID-less events, want 2", calls.Load())
	}
}
