package syncer

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueClosed reports that the queue no longer accepts or yields events.
var ErrQueueClosed = errors.New("event queue closed")

// EventKind tags what an event asks the coordinator to do.
type EventKind string

const (
	// EventTick asks for an incremental history poll.
	EventTick EventKind = "tick"
	// EventSubmit carries a user-submitted message text.
	EventSubmit EventKind = "submit"
)

// Event is the only unit dispatched to the coordinator loop.
type Event struct {
	Kind EventKind
	Text string
}

// Queue is a bounded single-consumer queue. Timer ticks and user submissions
// both funnel through it, so the consumer never observes two operations at
// once and the protocol state needs no locking. Close may race in-flight
// Submits safely: shutdown is signalled on a separate channel and the event
// channel itself is never closed.
type Queue struct {
	ch        chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 64
	}
	return &Queue{
		ch:   make(chan Event, capacity),
		done: make(chan struct{}),
	}
}

// Submit enqueues an event; it blocks on a full queue until there is room,
// ctx is cancelled, or the queue is closed.
func (q *Queue) Submit(ctx context.Context, ev Event) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrQueueClosed
	default:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrQueueClosed
	case q.ch <- ev:
		return nil
	}
}

// Receive yields the next event; it returns ErrQueueClosed once the queue is
// closed and drained.
func (q *Queue) Receive(ctx context.Context) (Event, error) {
	select {
	case <-ctx.Done():
		return Event{}, ctx.Err()
	case ev := <-q.ch:
		return ev, nil
	case <-q.done:
		// Drain what was buffered before the close.
		select {
		case ev := <-q.ch:
			return ev, nil
		default:
			return Event{}, ErrQueueClosed
		}
	}
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Close stops further submissions. Buffered events remain receivable.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}
