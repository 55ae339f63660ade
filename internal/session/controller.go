package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/olivier-w/orbviz/internal/observe"
)

// ErrAborted may be returned by a Loader to report a user-initiated abort.
// Like context.Canceled it is swallowed by Start.
var ErrAborted = errors.New("session: start aborted")

const eventBuffer = 16

// EventKind names a session lifecycle transition.
type EventKind int

const (
	EventStarted EventKind = iota // Idle -> Active
	EventEnded                    // Active -> Idle, source finished
	EventStopped                  // Active -> Idle, Stop called
	EventFailed                   // a start attempt failed
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventEnded:
		return "ended"
	case EventStopped:
		return "stopped"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is one lifecycle transition.
type Event struct {
	Kind       EventKind
	Label      string
	Generation uint64
	Err        error
}

// Controller owns the single playback session.
type Controller struct {
	loader  Loader
	metrics *observe.Metrics
	events  chan Event

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc // in-flight start attempt
	stream Stream
	node   Node
	quit   chan struct{} // closed when the current session is torn down
	label  string
	kind   Kind
	n      int
	active bool
}

// NewController returns an idle Controller. metrics may be nil.
func NewController(loader Loader, metrics *observe.Metrics) *Controller {
	return &Controller{
		loader:  loader,
		metrics: metrics,
		events:  make(chan Event, eventBuffer),
	}
}

// Events delivers lifecycle transitions. Events are dropped if nobody reads.
func (c *Controller) Events() <-chan Event { return c.events }

// Start tears down the current session, loads src and makes it active.
// A start superseded by a later Start or Stop, or aborted through ctx,
// returns nil and leaves the newer state untouched. Other load failures are
// returned.
func (c *Controller) Start(ctx context.Context, src Source) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	old, wasActive, oldLabel := c.detachLocked()
	c.gen++
	gen := c.gen
	actx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	c.release(old, wasActive, oldLabel, gen-1)

	stream, err := c.loader.Load(actx, src)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		if stream != nil {
			stream.Close()
		}
		c.metrics.RecordSessionAbort(ctx, src.Kind().String())
		slog.Debug("superseded session start dropped", "label", src.Label, "generation", gen)
		return nil
	}
	c.cancel = nil
	if err != nil {
		c.mu.Unlock()
		if errors.Is(err, context.Canceled) || errors.Is(err, ErrAborted) {
			c.metrics.RecordSessionAbort(ctx, src.Kind().String())
			slog.Debug("session start aborted", "label", src.Label, "generation", gen)
			return nil
		}
		c.metrics.RecordSessionFailure(ctx, src.Kind().String())
		slog.Warn("session start failed", "label", src.Label, "err", err)
		c.emit(Event{Kind: EventFailed, Label: src.Label, Generation: gen, Err: err})
		return fmt.Errorf("session: start %q: %w", src.Label, err)
	}

	node := stream.Node()
	quit := make(chan struct{})
	c.stream = stream
	c.node = node
	c.quit = quit
	c.label = src.Label
	c.kind = src.Kind()
	n := 0
	if node != nil {
		n = node.FrequencyBinCount()
	}
	c.n = n
	c.active = true
	c.mu.Unlock()

	c.metrics.RecordSessionStart(ctx, src.Kind().String())
	slog.Info("session active", "label", src.Label, "generation", gen, "bins", n)
	c.emit(Event{Kind: EventStarted, Label: src.Label, Generation: gen})
	go c.watch(gen, stream, quit)
	return nil
}

// Stop ends the current session and cancels any in-flight start. When it
// returns, every sampler pull returns nil.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	old, wasActive, label := c.detachLocked()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.release(old, wasActive, label, gen-1)
	if wasActive {
		c.emit(Event{Kind: EventStopped, Label: label, Generation: gen - 1})
	}
}

// detachLocked clears the session state and returns what must be released.
// Callers hold c.mu.
func (c *Controller) detachLocked() (Stream, bool, string) {
	old, wasActive, label := c.stream, c.active, c.label
	if c.quit != nil {
		close(c.quit)
		c.quit = nil
	}
	c.stream = nil
	c.node = nil
	c.label = ""
	c.kind = KindNone
	c.n = 0
	c.active = false
	return old, wasActive, label
}

func (c *Controller) release(old Stream, wasActive bool, label string, gen uint64) {
	if old == nil {
		return
	}
	old.Close()
	if wasActive {
		c.metrics.RecordSessionEnd(context.Background())
		slog.Info("session released", "label", label, "generation", gen)
	}
}

// watch turns a natural end of stream into an Active -> Idle transition,
// unless the session was already replaced.
func (c *Controller) watch(gen uint64, stream Stream, quit <-chan struct{}) {
	select {
	case <-quit:
		return
	case <-stream.Done():
	}

	c.mu.Lock()
	if gen != c.gen || !c.active {
		c.mu.Unlock()
		return
	}
	old, _, label := c.detachLocked()
	c.mu.Unlock()

	c.release(old, true, label, gen)
	c.emit(Event{Kind: EventEnded, Label: label, Generation: gen})
}

func (c *Controller) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		slog.Warn("session event dropped", "kind", ev.Kind.String(), "label", ev.Label)
	}
}

// Active reports whether a session is fully wired.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Label is the current source label, empty when idle.
func (c *Controller) Label() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.label
}

// Generation identifies the latest Start or Stop.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// FrameLen is N, the frame length of the active session, or 0 when idle.
func (c *Controller) FrameLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Stream returns the active stream, or nil.
func (c *Controller) Stream() Stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream
}

// Close stops the session. The Controller may be reused afterwards.
func (c *Controller) Close() {
	c.Stop()
}
