// internal/session/controller.go
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/user/quickgen/internal/generator"
	"github.com/user/quickgen/internal/prompt"
	"github.com/user/quickgen/internal/types"
	"github.com/user/quickgen/pkg/llm"
)

// Request is one generation exchange against a workspace.
type Request struct {
	Workspace *types.Workspace
	Text      string
	Mode      prompt.Mode
	Streaming bool

	OnUpdate   func(content string)
	OnComplete func(msg *types.ChatMessage, artifact *types.GeneratedArtifact)
	OnError    func(err error)

	done chan struct{}
}

// Done is closed when the request has fully settled, including
// persistence of its results.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Option configures optional behavior on a Request.
type Option func(*Request)

// WithOnUpdate sets a callback invoked with the cumulative text after
// each partial update.
func WithOnUpdate(fn func(string)) Option {
	return func(r *Request) { r.OnUpdate = fn }
}

// WithOnComplete sets a callback invoked once the assistant message
// (and artifact, when one was extracted) has been persisted.
func WithOnComplete(fn func(*types.ChatMessage, *types.GeneratedArtifact)) Option {
	return func(r *Request) { r.OnComplete = fn }
}

// WithOnError sets a callback invoked when the exchange fails.
func WithOnError(fn func(error)) Option {
	return func(r *Request) { r.OnError = fn }
}

// WithMode selects the system prompt mode.
func WithMode(mode prompt.Mode) Option {
	return func(r *Request) { r.Mode = mode }
}

// WithoutStreaming switches the request to the single-shot variant:
// one completion or failure, no partial updates.
func WithoutStreaming() Option {
	return func(r *Request) { r.Streaming = false }
}

// Controller wires user input to the generator and writes the settled
// messages and artifacts through the store. Requests for the same
// workspace are processed strictly FIFO on a per-workspace lane (one
// writer per workspace id), while a global semaphore bounds
// cross-workspace parallelism.
type Controller struct {
	store    types.WorkspaceStore
	provider llm.Provider
	engine   *prompt.Engine

	semaphore  *semaphore.Weighted
	mu         sync.Mutex
	lanes      map[types.WorkspaceID]chan *Request
	generators map[types.WorkspaceID]*generator.Generator

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Controller wired to the given store and provider with
// the given concurrency limit.
func New(store types.WorkspaceStore, provider llm.Provider, engine *prompt.Engine, maxConcurrent ...int64) *Controller {
	var concurrency int64 = 2
	if len(maxConcurrent) > 0 && maxConcurrent[0] > 0 {
		concurrency = maxConcurrent[0]
	}
	return &Controller{
		store:      store,
		provider:   provider,
		engine:     engine,
		semaphore:  semaphore.NewWeighted(concurrency),
		lanes:      make(map[types.WorkspaceID]chan *Request),
		generators: make(map[types.WorkspaceID]*generator.Generator),
	}
}

// Start initialises the controller's context. Must be called before Submit.
func (c *Controller) Start(ctx context.Context) {
	c.ctx, c.cancel = context.WithCancel(ctx)
}

// Stop cancels the controller context, closes all lanes, and waits for
// in-flight requests to settle.
func (c *Controller) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Lock()
	for _, lane := range c.lanes {
		close(lane)
	}
	c.lanes = make(map[types.WorkspaceID]chan *Request)
	c.mu.Unlock()
	c.wg.Wait()
}

// Submit enqueues a generation request on the workspace's lane,
// creating the lane on first use. Returns an error if the lane's
// buffer is full.
func (c *Controller) Submit(ws *types.Workspace, text string, opts ...Option) (*Request, error) {
	req := &Request{
		Workspace: ws,
		Text:      text,
		Mode:      prompt.ModeGenerate,
		Streaming: true,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(req)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	lane, exists := c.lanes[ws.ID]
	if !exists {
		lane = make(chan *Request, 16)
		c.lanes[ws.ID] = lane
		c.wg.Add(1)
		go c.processLane(lane)
	}

	select {
	case lane <- req:
		return req, nil
	default:
		return nil, fmt.Errorf("request queue full for workspace %s", ws.ID)
	}
}

// Cancel aborts the in-flight generation for the workspace, if any.
func (c *Controller) Cancel(id types.WorkspaceID) {
	c.mu.Lock()
	gen := c.generators[id]
	c.mu.Unlock()
	if gen != nil {
		gen.Cancel()
	}
}

func (c *Controller) processLane(lane chan *Request) {
	defer c.wg.Done()
	for {
		select {
		case req, ok := <-lane:
			if !ok {
				return
			}
			if err := c.semaphore.Acquire(c.ctx, 1); err != nil {
				close(req.done)
				return
			}
			c.process(req)
			c.semaphore.Release(1)
		case <-c.ctx.Done():
			return
		}
	}
}

// process runs one exchange: persist the user message, build the
// prompt from history, drive the generator, and persist whatever
// settles out of it.
func (c *Controller) process(req *Request) {
	defer close(req.done)
	ws := req.Workspace

	userMsg := types.NewChatMessage(ws.ID, types.SenderUser, req.Text)
	if err := c.store.SaveChatMessage(c.ctx, userMsg); err != nil {
		c.fail(req, fmt.Errorf("save user message: %w", err))
		return
	}

	history, err := c.store.FetchChatHistory(c.ctx, ws.ID)
	if err != nil {
		c.fail(req, fmt.Errorf("load chat history: %w", err))
		return
	}

	messages := c.engine.BuildPrompt(req.Mode, history)

	gen := generator.New(c.provider)
	c.mu.Lock()
	c.generators[ws.ID] = gen
	c.mu.Unlock()

	var events <-chan generator.Event
	if req.Streaming {
		events = gen.Start(c.ctx, messages)
	} else {
		events = gen.Once(c.ctx, messages)
	}

	// One assistant message per exchange: partial updates rewrite the
	// same record in place; the completion rewrites it one last time.
	assistant := types.NewChatMessage(ws.ID, types.SenderAssistant, "")
	for ev := range events {
		switch ev.Kind {
		case generator.EventUpdate:
			assistant.Content = ev.Content
			if err := c.store.SaveChatMessage(c.ctx, assistant); err != nil {
				slog.Warn("persist partial message", "workspace_id", string(ws.ID), "error", err)
			}
			if req.OnUpdate != nil {
				req.OnUpdate(ev.Content)
			}

		case generator.EventComplete:
			c.complete(req, assistant, ev.Content)

		case generator.EventFailed:
			c.fail(req, ev.Err)

		case generator.EventCancelled:
			slog.Info("generation cancelled", "workspace_id", string(ws.ID))
		}
	}
}

// complete persists the finalized assistant message, extracts and
// persists the generated artifact when the reply carries one, and bumps
// the workspace.
func (c *Controller) complete(req *Request, assistant *types.ChatMessage, content string) {
	ws := req.Workspace

	assistant.Content = content
	if err := c.store.SaveChatMessage(c.ctx, assistant); err != nil {
		c.fail(req, fmt.Errorf("save assistant message: %w", err))
		return
	}

	var artifact *types.GeneratedArtifact
	if html, ok := generator.ExtractHTML(content); ok {
		artifact = types.NewGeneratedArtifact(ws.ID, html)
		if err := c.store.SaveArtifact(c.ctx, artifact); err != nil {
			slog.Warn("persist artifact", "workspace_id", string(ws.ID), "error", err)
			artifact = nil
		} else {
			ws.GeneratedHTML = html
		}
	}

	ws.ModifiedAt = time.Now()
	if err := c.store.SaveWorkspace(c.ctx, ws); err != nil {
		slog.Warn("persist workspace", "workspace_id", string(ws.ID), "error", err)
	}

	if req.OnComplete != nil {
		req.OnComplete(assistant, artifact)
	}
}

// fail persists an error-flagged assistant message so the failure shows
// up in the conversation, then reports it.
func (c *Controller) fail(req *Request, err error) {
	errMsg := types.NewChatMessage(req.Workspace.ID, types.SenderAssistant, "Error: "+err.Error())
	errMsg.IsError = true
	if saveErr := c.store.SaveChatMessage(c.ctx, errMsg); saveErr != nil {
		slog.Warn("persist error message", "workspace_id", string(req.Workspace.ID), "error", saveErr)
	}
	if req.OnError != nil {
		req.OnError(err)
	}
}
