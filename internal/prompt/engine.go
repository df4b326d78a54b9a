// internal/prompt/engine.go
package prompt

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/user/quickgen/internal/types"
	"github.com/user/quickgen/pkg/llm"
)

// Mode selects the system prompt for a request.
type Mode int

const (
	// ModeDiscuss refines page requirements conversationally.
	ModeDiscuss Mode = iota
	// ModeGenerate asks for a complete HTML document in a fenced block.
	ModeGenerate
)

const discussSystemPrompt = "You are a technical product manager who knows web page implementation well. " +
	"Discuss the user's page requirements with them and work toward a clear page description " +
	"that a generator model can turn into a page."

const generateSystemPrompt = "You are a web page generator. Produce a complete HTML document for the " +
	"user's description. Return the code in markdown format, opening the code block with ```html " +
	"and closing it with ```."

// Engine assembles token-budgeted prompts from persisted chat history.
type Engine struct {
	tokenizer *tiktoken.Tiktoken
	maxTokens int
	reserve   int
}

// New creates a prompt engine. model selects the tokenizer, maxTokens
// is the model's context window, and reserve is held back for the
// model's response.
func New(model string, maxTokens, reserve int) (*Engine, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Fallback to cl100k_base for unknown models
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("get tokenizer: %w", err)
		}
	}
	return &Engine{
		tokenizer: enc,
		maxTokens: maxTokens,
		reserve:   reserve,
	}, nil
}

func (e *Engine) countTokens(text string) int {
	return len(e.tokenizer.Encode(text, nil, nil))
}

// BuildPrompt converts chat history into chat-completion messages under
// the token budget. The newest messages are kept; older ones fall off
// first. Error-flagged messages never reach the model.
func (e *Engine) BuildPrompt(mode Mode, history []*types.ChatMessage) []llm.Message {
	sysPrompt := discussSystemPrompt
	if mode == ModeGenerate {
		sysPrompt = generateSystemPrompt
	}

	budget := e.maxTokens - e.reserve - e.countTokens(sysPrompt)

	// Walk backwards so the most recent exchange survives trimming,
	// then restore chronological order.
	var kept []llm.Message
	used := 0
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		if msg.IsError {
			continue
		}
		tokens := e.countTokens(msg.Content)
		if used+tokens > budget {
			break
		}
		kept = append(kept, llm.Message{Role: roleFor(msg.Sender), Content: msg.Content})
		used += tokens
	}

	messages := make([]llm.Message, 0, 1+len(kept))
	messages = append(messages, llm.Message{Role: "system", Content: sysPrompt})
	for i := len(kept) - 1; i >= 0; i-- {
		messages = append(messages, kept[i])
	}
	return messages
}

func roleFor(sender types.Sender) string {
	if sender == types.SenderAssistant {
		return "assistant"
	}
	return "user"
}
