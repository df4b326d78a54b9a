package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/user/quickgen/pkg/llm"
)

// dataPrefix marks a payload-bearing record on the wire; records
// without it are ignored.
const dataPrefix = "data: "

// doneSentinel is the literal terminal payload signalling end-of-stream.
const doneSentinel = "[DONE]"

// streamResponse is one decoded streaming record. Each choice may carry
// an incremental text fragment and/or a finish indicator.
type streamResponse struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// scanRecords is a bufio.SplitFunc that splits the response body into
// records on blank-line delimiters.
func scanRecords(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.Index(data, []byte("\n\n")); i >= 0 {
		return i + 2, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// readStream parses the streaming response body and sends a Delta per
// recognized record. It stops at the terminal sentinel, an explicit
// finish indicator, a read error, or EOF. A single malformed record is
// skipped rather than failing the whole request.
func readStream(ctx context.Context, body io.Reader, ch chan<- llm.Delta) {
	send := func(d llm.Delta) bool {
		select {
		case ch <- d:
			return true
		case <-ctx.Done():
			return false
		}
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanRecords)

	for scanner.Scan() {
		record := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(record, dataPrefix) {
			continue
		}
		payload := strings.TrimPrefix(record, dataPrefix)

		if payload == doneSentinel {
			send(llm.Delta{Finished: true})
			return
		}

		var chunk streamResponse
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		choice := chunk.Choices[0]
		if choice.Delta.Content != "" {
			if !send(llm.Delta{Content: choice.Delta.Content}) {
				return
			}
		}
		if choice.FinishReason == "stop" {
			send(llm.Delta{Finished: true})
			return
		}
	}

	if err := scanner.Err(); err != nil {
		send(llm.Delta{Err: fmt.Errorf("reading stream: %w", err)})
	}
}
