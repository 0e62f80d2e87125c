package syncer

import (
	"context"
	"sync"
	"time"

	"desk-cli/internal/logger"
)

// DefaultPollInterval matches the reference client's polling period.
const DefaultPollInterval = 2500 * time.Millisecond

// defaultMaxPollDelay caps the backoff while the server stays unreachable.
const defaultMaxPollDelay = time.Minute

// Poller enqueues tick events at a fixed period, backing off exponentially
// while history fetches keep failing and snapping back on the first success.
// It stops when its context is cancelled; there is no other teardown.
type Poller struct {
	queue    *Queue
	interval time.Duration
	maxDelay time.Duration
	log      *logger.LogEntry

	mu       sync.Mutex
	failures int
}

func NewPoller(queue *Queue, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		queue:    queue,
		interval: interval,
		maxDelay: defaultMaxPollDelay,
		log:      logger.Named("poller"),
	}
}

// Run blocks, emitting ticks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	timer := time.NewTimer(p.delay())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if err := p.queue.Submit(ctx, Event{Kind: EventTick}); err != nil {
			return
		}
		timer.Reset(p.delay())
	}
}

// ReportSuccess resets the backoff after a poll that reached the server.
func (p *Poller) ReportSuccess() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.log.WithField("failures", p.failures).Info("poll recovered, resetting backoff")
	}
	p.failures = 0
}

// ReportFailure records a transport failure, widening the next tick delay.
func (p *Poller) ReportFailure() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures++
}

func (p *Poller) delay() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	d := p.interval
	for i := 0; i < p.failures; i++ {
		d *= 2
		if d >= p.maxDelay {
			return p.maxDelay
		}
	}
	return d
}
