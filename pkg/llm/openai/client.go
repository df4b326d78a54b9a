package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/user/quickgen/pkg/llm"
)

// Client implements the llm.Provider interface for OpenAI-compatible
// chat-completions APIs, in both buffered and streaming modes.
type Client struct {
	config     *llm.Config
	httpClient *http.Client
}

// New creates a new OpenAI-compatible client with the given configuration.
func New(config *llm.Config) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// chatRequest is the chat completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float32      `json:"temperature,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

// chatResponse is the buffered chat completions response body.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// errorResponse is the error envelope returned with non-2xx statuses.
type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// newRequest validates the configuration and builds a chat-completions
// request. A missing credential and an unparseable endpoint are
// reported as distinct errors before anything goes on the wire.
func (c *Client) newRequest(ctx context.Context, messages []llm.Message, stream bool) (*http.Request, error) {
	if c.config.APIKey == "" {
		return nil, llm.ErrMissingAPIKey
	}
	u, err := url.Parse(c.config.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", llm.ErrInvalidEndpoint, c.config.BaseURL)
	}

	reqBody := chatRequest{
		Model:    c.config.Model,
		Messages: messages,
		Stream:   stream,
	}
	if c.config.MaxTokens > 0 {
		reqBody.MaxTokens = c.config.MaxTokens
	}
	if c.config.Temperature != 0 {
		temp := c.config.Temperature
		reqBody.Temperature = &temp
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	return req, nil
}

// statusError converts a non-2xx response into a StatusError, keeping
// the server-supplied message verbatim when the body carries one.
func statusError(code int, body []byte) error {
	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return &llm.StatusError{Code: code, Message: envelope.Error.Message}
	}
	return &llm.StatusError{Code: code}
}

// Complete sends a chat completion request and returns the full
// response text.
func (c *Client) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	req, err := c.newRequest(ctx, messages, false)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError(resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", llm.ErrEmptyResponse
	}
	return chatResp.Choices[0].Message.Content, nil
}

// Stream sends a chat completion request with streaming enabled and
// returns a channel of incremental deltas. HTTP-level failures are
// returned before the channel is created; once streaming has begun,
// the response body is parsed record by record on a background
// goroutine until a terminal marker, a read error, or EOF.
func (c *Client) Stream(ctx context.Context, messages []llm.Message) (<-chan llm.Delta, error) {
	req, err := c.newRequest(ctx, messages, true)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, statusError(resp.StatusCode, respBody)
	}

	ch := make(chan llm.Delta)
	go func() {
		defer close(ch)
		defer resp.Body.Close()
		readStream(ctx, resp.Body, ch)
	}()
	return ch, nil
}
