package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestQueue_FIFO(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(4)

	if err := q.Submit(ctx, Event{Kind: EventSubmit, Text: "a"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := q.Submit(ctx, Event{Kind: EventTick}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if q.Len() != 2 {
		t.Fatalf("Len = %d, want 2", q.Len())
	}

	first, err := q.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if first.Kind != EventSubmit || first.Text != "a" {
		t.Fatalf("first = %+v", first)
	}
	second, err := q.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if second.Kind != EventTick {
		t.Fatalf("second = %+v", second)
	}
}

func TestQueue_CloseDrainsThenReportsClosed(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(4)
	if err := q.Submit(ctx, Event{Kind: EventTick}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	q.Close()
	q.Close() // idempotent

	if _, err := q.Receive(ctx); err != nil {
		t.Fatalf("Receive of queued event after close: %v", err)
	}
	if _, err := q.Receive(ctx); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
}

func TestQueue_SubmitRacingCloseDoesNotPanic(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		q := NewQueue(1)
		var wg sync.WaitGroup
		for p := 0; p < 4; p++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					if err := q.Submit(ctx, Event{Kind: EventTick}); err != nil {
						if !errors.Is(err, ErrQueueClosed) {
							t.Errorf("Submit: %v", err)
						}
						return
					}
					// Keep the buffer from filling so submitters stay active.
					_, _ = q.Receive(ctx)
				}
			}()
		}
		q.Close()
		wg.Wait()
	}
}

func TestQueue_SubmitAfterCloseReportsClosed(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(4)
	q.Close()

	if err := q.Submit(ctx, Event{Kind: EventTick}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("Submit after close = %v, want ErrQueueClosed", err)
	}
}

func TestQueue_ReceiveHonorsContext(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := q.Receive(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
