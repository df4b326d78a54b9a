// internal/generator/generator.go
package generator

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/quickgen/pkg/llm"
)

// State is the lifecycle state of the generator's current request.
type State int

const (
	StateIdle State = iota
	StateStreaming
	StateCompleted
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// EventKind tags the events emitted for a request.
type EventKind int

const (
	// EventUpdate carries the cumulative text assembled so far, not an
	// incremental fragment. Consumers need no reconstruction logic.
	EventUpdate EventKind = iota
	// EventComplete carries the full finalized text. Terminal.
	EventComplete
	// EventFailed carries the error that ended the request. Terminal.
	EventFailed
	// EventCancelled reports a caller-initiated abort. Terminal.
	EventCancelled
)

// Event is one lifecycle notification for a request. For a single
// request, events are strictly ordered: any number of updates, then
// exactly one terminal event, then the channel closes.
type Event struct {
	Kind    EventKind
	Content string
	Err     error
}

// defaultTimeout bounds a single request end to end.
const defaultTimeout = 60 * time.Second

// request tracks the cancellation handle for one Start/Once call so a
// stale run never clobbers the state of its successor.
type request struct {
	cancel    context.CancelFunc
	cancelled atomic.Bool
}

// Generator aggregates a streamed response into an ordered, cancellable,
// exactly-once-completed sequence of events. All buffer mutation happens
// on a single goroutine per request; delivery to the consumer happens on
// the consumer's side of the event channel, decoupled from the network
// read.
type Generator struct {
	provider llm.Provider
	timeout  time.Duration

	mu      sync.Mutex
	state   State
	current *request
}

// New creates a Generator backed by the given provider.
func New(provider llm.Provider) *Generator {
	return &Generator{
		provider: provider,
		timeout:  defaultTimeout,
	}
}

// State returns the lifecycle state of the most recent request.
func (g *Generator) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Cancel aborts the in-flight request, if any. No new update is issued
// after cancellation is acknowledged; at most one already-in-flight
// notification may still be delivered.
func (g *Generator) Cancel() {
	g.mu.Lock()
	req := g.current
	g.mu.Unlock()
	if req != nil {
		req.cancelled.Store(true)
		req.cancel()
	}
}

// begin transitions to Streaming, cancelling any outstanding request
// first. Two writers on one buffer is never safe, so a second Start
// always aborts its predecessor.
func (g *Generator) begin(ctx context.Context) (context.Context, *request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if prev := g.current; prev != nil && g.state == StateStreaming {
		prev.cancelled.Store(true)
		prev.cancel()
	}

	runCtx, cancel := context.WithTimeout(ctx, g.timeout)
	req := &request{cancel: cancel}
	g.current = req
	g.state = StateStreaming
	return runCtx, req
}

// finalize records the terminal state (unless a newer request has taken
// over) and delivers the terminal event.
func (g *Generator) finalize(req *request, events chan<- Event, ev Event) {
	g.mu.Lock()
	if g.current == req {
		switch ev.Kind {
		case EventComplete:
			g.state = StateCompleted
		case EventFailed:
			g.state = StateFailed
		case EventCancelled:
			g.state = StateCancelled
		}
	}
	g.mu.Unlock()
	events <- ev
}

// Start issues the request in streaming mode and returns the event
// channel. The caller must drain the channel until it closes.
func (g *Generator) Start(ctx context.Context, messages []llm.Message) <-chan Event {
	runCtx, req := g.begin(ctx)
	events := make(chan Event, 1)
	go g.run(runCtx, req, messages, events)
	return events
}

// Once issues the request in non-streaming mode: the same event
// contract collapsed to exactly one completion or failure event, with
// no partial updates.
func (g *Generator) Once(ctx context.Context, messages []llm.Message) <-chan Event {
	runCtx, req := g.begin(ctx)
	events := make(chan Event, 1)
	go func() {
		defer close(events)
		defer req.cancel()

		content, err := g.provider.Complete(runCtx, messages)
		switch {
		case req.cancelled.Load():
			g.finalize(req, events, Event{Kind: EventCancelled})
		case err != nil:
			g.finalize(req, events, Event{Kind: EventFailed, Err: err})
		case content == "":
			g.finalize(req, events, Event{Kind: EventFailed, Err: llm.ErrEmptyResponse})
		default:
			g.finalize(req, events, Event{Kind: EventComplete, Content: content})
		}
	}()
	return events
}

// run consumes the delta stream, owning the buffer exclusively for the
// request's lifetime. Fragments are concatenated in arrival order; each
// one triggers an update carrying the whole buffer.
func (g *Generator) run(ctx context.Context, req *request, messages []llm.Message, events chan<- Event) {
	defer close(events)
	defer req.cancel()

	stream, err := g.provider.Stream(ctx, messages)
	if err != nil {
		if req.cancelled.Load() {
			g.finalize(req, events, Event{Kind: EventCancelled})
		} else {
			g.finalize(req, events, Event{Kind: EventFailed, Err: err})
		}
		return
	}

	var buf strings.Builder
	for {
		select {
		case delta, ok := <-stream:
			if req.cancelled.Load() {
				g.finalize(req, events, Event{Kind: EventCancelled})
				return
			}
			if !ok {
				// The transport closed without a terminal marker.
				// Partial output is still a usable response; only an
				// empty buffer counts as a failure.
				if buf.Len() > 0 {
					g.finalize(req, events, Event{Kind: EventComplete, Content: buf.String()})
				} else {
					g.finalize(req, events, Event{Kind: EventFailed, Err: llm.ErrEmptyResponse})
				}
				return
			}
			if delta.Err != nil {
				if buf.Len() > 0 {
					g.finalize(req, events, Event{Kind: EventComplete, Content: buf.String()})
				} else {
					g.finalize(req, events, Event{Kind: EventFailed, Err: delta.Err})
				}
				return
			}
			if delta.Content != "" {
				buf.WriteString(delta.Content)
				select {
				case events <- Event{Kind: EventUpdate, Content: buf.String()}:
				case <-ctx.Done():
					g.finishAborted(req, events, ctx)
					return
				}
			}
			if delta.Finished {
				g.finalize(req, events, Event{Kind: EventComplete, Content: buf.String()})
				return
			}
		case <-ctx.Done():
			g.finishAborted(req, events, ctx)
			return
		}
	}
}

// finishAborted distinguishes a caller cancel from a timeout or parent
// context failure.
func (g *Generator) finishAborted(req *request, events chan<- Event, ctx context.Context) {
	if req.cancelled.Load() {
		g.finalize(req, events, Event{Kind: EventCancelled})
		return
	}
	g.finalize(req, events, Event{Kind: EventFailed, Err: ctx.Err()})
}
