package llm

// Message represents a chat message sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Config holds common configuration for LLM providers.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// Delta is one incremental update read from a streaming response.
// Content carries a text fragment (not cumulative). Finished is set
// when the wire delivered an explicit end-of-stream marker. Err is set
// when the transport failed mid-stream; it is always the last delta
// before the channel closes.
type Delta struct {
	Content  string
	Finished bool
	Err      error
}
