package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"desk-cli/internal/api"
	"desk-cli/internal/chat"
	"desk-cli/internal/logger"
)

// ErrEmptyMessage reports a submission that is empty after trimming. No
// request is issued and no state changes for such input.
var ErrEmptyMessage = errors.New("empty message")

// State describes where the send flow currently is.
type State int

const (
	StateIdle State = iota
	StateSending
	StateReconciling
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateReconciling:
		return "reconciling"
	default:
		return "unknown"
	}
}

// API is the server surface the coordinator needs.
type API interface {
	History(ctx context.Context, sessionID string, afterID int64) ([]chat.Message, error)
	Send(ctx context.Context, sessionID, text string) (api.Reply, error)
}

// Coordinator owns the synchronization state: the message store, the pause
// flag, and the session id. All protocol work runs on the single goroutine
// driving Run; producers only enqueue events.
type Coordinator struct {
	api       API
	store     *chat.Store
	renderer  chat.Renderer
	queue     *Queue
	poller    *Poller
	sessionID string
	log       *logger.LogEntry

	// paused gates poll ingestion during an in-flight send. It is read by
	// the poller goroutine, hence atomic.
	paused atomic.Bool

	// state is touched only by the consumer goroutine.
	state State
}

type Options struct {
	API       API
	Store     *chat.Store
	Renderer  chat.Renderer
	Queue     *Queue
	Poller    *Poller
	SessionID string
}

func New(opts Options) *Coordinator {
	return &Coordinator{
		api:       opts.API,
		store:     opts.Store,
		renderer:  opts.Renderer,
		queue:     opts.Queue,
		poller:    opts.Poller,
		sessionID: opts.SessionID,
		log:       logger.Named("sync"),
	}
}

// Bootstrap fetches the full session history and renders it in order, seeding
// the store before any poll tick runs. A transport failure is treated as an
// empty history; the poller retries naturally.
func (c *Coordinator) Bootstrap(ctx context.Context) {
	msgs, err := c.api.History(ctx, c.sessionID, 0)
	if err != nil {
		c.log.Warnf("history bootstrap failed: %v", err)
		return
	}
	c.store.Ingest(msgs)
	c.log.WithFields(logger.Fields{"messages": len(msgs), "watermark": c.store.Watermark()}).Info("history loaded")
}

// Run consumes queue events until ctx is cancelled or the queue closes.
func (c *Coordinator) Run(ctx context.Context) error {
	for {
		ev, err := c.queue.Receive(ctx)
		if err != nil {
			if errors.Is(err, ErrQueueClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		switch ev.Kind {
		case EventTick:
			c.poll(ctx)
		case EventSubmit:
			c.send(ctx, ev.Text)
		}
	}
}

// Submit validates and enqueues a user message for the consumer loop.
func (c *Coordinator) Submit(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	return c.queue.Submit(ctx, Event{Kind: EventSubmit, Text: text})
}

// Exchange performs one send flow synchronously, bypassing the queue. Used by
// one-shot invocations that have no event loop.
func (c *Coordinator) Exchange(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	c.send(ctx, text)
	return nil
}

// Paused reports whether poll ingestion is currently suspended.
func (c *Coordinator) Paused() bool {
	return c.paused.Load()
}

// State returns the current send-flow state.
func (c *Coordinator) State() State {
	return c.state
}

// Watermark exposes the store's high-water mark.
func (c *Coordinator) Watermark() int64 {
	return c.store.Watermark()
}

// poll fetches messages past the watermark and renders the net-new ones.
func (c *Coordinator) poll(ctx context.Context) {
	if c.paused.Load() {
		return
	}
	msgs, err := c.api.History(ctx, c.sessionID, c.store.Watermark())
	if err != nil {
		c.poller.ReportFailure()
		c.log.Warnf("poll failed: %v", err)
		return
	}
	c.poller.ReportSuccess()
	c.store.Ingest(msgs)
}

// send runs the optimistic exchange: pause polling, echo the user's text and
// the synchronous reply locally, then absorb the server-assigned ids without
// re-rendering. Input and polling are restored no matter how it went.
func (c *Coordinator) send(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	c.paused.Store(true)
	c.state = StateSending
	defer func() {
		c.state = StateIdle
		c.paused.Store(false)
	}()

	c.renderer.RenderLocal(chat.RoleUser, text)
	c.renderer.ShowComposing()

	reply, err := c.api.Send(ctx, c.sessionID, text)
	c.renderer.HideComposing()
	if err != nil {
		c.log.Warnf("send failed: %v", err)
		c.renderer.RenderLocal(chat.RoleBot, sendFailureText(err))
		return
	}
	c.renderer.RenderLocal(chat.RoleBot, reply.ReplyText)

	c.state = StateReconciling
	c.reconcile(ctx)
}

// reconcile absorbs the ids assigned for the just-sent exchange. Anything
// that arrived concurrently lands in the same batch and is swallowed silently
// too; the poller will then never re-render it.
func (c *Coordinator) reconcile(ctx context.Context) {
	msgs, err := c.api.History(ctx, c.sessionID, c.store.Watermark())
	if err != nil {
		c.log.Warnf("reconcile fetch failed: %v", err)
		return
	}
	c.store.IngestSilently(msgs)
	c.log.WithFields(logger.Fields{"absorbed": len(msgs), "watermark": c.store.Watermark()}).Info("reconciled exchange")
}

func sendFailureText(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("Something went wrong: %s", se.Detail())
	}
	return "Connection error. Please try again."
}
