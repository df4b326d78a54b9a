package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/user/quickgen/pkg/llm"
)

func TestClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("missing or invalid auth header")
		}
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("expected path '/v1/chat/completions', got %q", r.URL.Path)
		}

		body, _ := io.ReadAll(r.Body)
		var reqBody map[string]any
		json.Unmarshal(body, &reqBody)
		if reqBody["model"] != "gpt-4" {
			t.Errorf("expected model 'gpt-4', got %v", reqBody["model"])
		}
		if reqBody["stream"] != nil {
			t.Errorf("expected no stream flag, got %v", reqBody["stream"])
		}

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "test response"}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := New(&llm.Config{
		BaseURL: server.URL + "/v1",
		APIKey:  "test-key",
		Model:   "gpt-4",
	})

	content, err := client.Complete(context.Background(), []llm.Message{
		{Role: "user", Content: "hello"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if content != "test response" {
		t.Errorf("expected 'test response', got %q", content)
	}
}

func TestClientMissingAPIKey(t *testing.T) {
	client := New(&llm.Config{
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4",
	})

	_, err := client.Complete(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})
	if !errors.Is(err, llm.ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}

	_, err = client.Stream(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})
	if !errors.Is(err, llm.ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey from Stream, got %v", err)
	}
}

func TestClientInvalidEndpoint(t *testing.T) {
	client := New(&llm.Config{
		BaseURL: "not a url",
		APIKey:  "key",
		Model:   "gpt-4",
	})

	_, err := client.Complete(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})
	if !errors.Is(err, llm.ErrInvalidEndpoint) {
		t.Errorf("expected ErrInvalidEndpoint, got %v", err)
	}
}

func TestClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer server.Close()

	client := New(&llm.Config{BaseURL: server.URL, APIKey: "bad-key", Model: "gpt-4"})

	_, err := client.Complete(context.Background(), []llm.Message{{Role: "user", Content: "hello"}})
	var statusErr *llm.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", statusErr.Code)
	}
	if statusErr.Message != "invalid api key" {
		t.Errorf("expected server message to propagate verbatim, got %q", statusErr.Message)
	}
}

// streamServer returns a test server that writes the given raw body for
// streaming requests.
func streamServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqBody, _ := io.ReadAll(r.Body)
		var req map[string]any
		json.Unmarshal(reqBody, &req)
		if req["stream"] != true {
			t.Errorf("expected stream flag in request, got %v", req["stream"])
		}
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, body)
	}))
}

func collectDeltas(t *testing.T, client *Client) []llm.Delta {
	t.Helper()
	stream, err := client.Stream(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatal(err)
	}
	var deltas []llm.Delta
	for d := range stream {
		deltas = append(deltas, d)
	}
	return deltas
}

func TestClientStream(t *testing.T) {
	body := `data: {"choices":[{"delta":{"content":"Hello"}}]}` + "\n\n" +
		`data: {"choices":[{"delta":{"content":" world"}}]}` + "\n\n" +
		`data: [DONE]` + "\n\n"
	server := streamServer(t, body)
	defer server.Close()

	client := New(&llm.Config{BaseURL: server.URL, APIKey: "key", Model: "gpt-4"})
	deltas := collectDeltas(t, client)

	if len(deltas) != 3 {
		t.Fatalf("expected 3 deltas, got %d: %v", len(deltas), deltas)
	}
	if deltas[0].Content != "Hello" || deltas[1].Content != " world" {
		t.Errorf("unexpected fragments: %v", deltas)
	}
	if !deltas[2].Finished {
		t.Error("expected terminal sentinel to yield a finished delta")
	}
}

func TestClientStreamFinishReason(t *testing.T) {
	body := `data: {"choices":[{"delta":{"content":"done"},"finish_reason":"stop"}]}` + "\n\n"
	server := streamServer(t, body)
	defer server.Close()

	client := New(&llm.Config{BaseURL: server.URL, APIKey: "key", Model: "gpt-4"})
	deltas := collectDeltas(t, client)

	if len(deltas) != 2 {
		t.Fatalf("expected 2 deltas, got %d: %v", len(deltas), deltas)
	}
	if deltas[0].Content != "done" {
		t.Errorf("expected fragment 'done', got %q", deltas[0].Content)
	}
	if !deltas[1].Finished {
		t.Error("expected finish indicator to yield a finished delta")
	}
}

func TestClientStreamSkipsMalformedRecords(t *testing.T) {
	body := `data: {"choices":[{"delta":{"content":"a"}}]}` + "\n\n" +
		`data: {not json` + "\n\n" +
		`: keep-alive comment` + "\n\n" +
		`data: {"choices":[{"delta":{"content":"b"}}]}` + "\n\n" +
		`data: [DONE]` + "\n\n"
	server := streamServer(t, body)
	defer server.Close()

	client := New(&llm.Config{BaseURL: server.URL, APIKey: "key", Model: "gpt-4"})
	deltas := collectDeltas(t, client)

	if len(deltas) != 3 {
		t.Fatalf("expected malformed records to be skipped, got %v", deltas)
	}
	if deltas[0].Content != "a" || deltas[1].Content != "b" {
		t.Errorf("unexpected fragments: %v", deltas)
	}
}

func TestClientStreamClosesWithoutSentinel(t *testing.T) {
	body := `data: {"choices":[{"delta":{"content":"partial"}}]}` + "\n\n"
	server := streamServer(t, body)
	defer server.Close()

	client := New(&llm.Config{BaseURL: server.URL, APIKey: "key", Model: "gpt-4"})
	deltas := collectDeltas(t, client)

	// The channel just closes; deciding whether that is a completion
	// or a failure is the aggregator's job.
	if len(deltas) != 1 || deltas[0].Content != "partial" {
		t.Fatalf("expected a single fragment then close, got %v", deltas)
	}
}

func TestClientStreamHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	client := New(&llm.Config{BaseURL: server.URL, APIKey: "key", Model: "gpt-4"})
	_, err := client.Stream(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})
	var statusErr *llm.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Message != "rate limited" {
		t.Errorf("expected server message, got %q", statusErr.Message)
	}
}

func TestClientProviderInterface(t *testing.T) {
	var _ llm.Provider = (*Client)(nil)
}
