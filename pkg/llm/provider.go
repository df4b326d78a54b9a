package llm

import "context"

// Provider defines the interface for interacting with text-generation
// backends. Implementations handle protocol-specific details such as
// request formatting, authentication, and response parsing.
type Provider interface {
	// Complete sends a chat completion request and returns the full
	// response text in one shot.
	Complete(ctx context.Context, messages []Message) (string, error)

	// Stream sends a chat completion request and returns a channel of
	// incremental deltas. The channel is closed when the response ends,
	// whether or not a terminal marker was seen. Errors that occur
	// before any data arrives are returned directly; mid-stream
	// transport errors are delivered as the final Delta's Err.
	Stream(ctx context.Context, messages []Message) (<-chan Delta, error)
}
