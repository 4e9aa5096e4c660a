// Package llm exposes the chat-completion capability the identifier and
// recommender are built on. Exactly one backend exists today; the factory
// leaves room for more without changing callers.
package llm

import (
	"context"
	"fmt"

	"github.com/averageanalysis/vinyl-recorder/internal/constants"
)

// Part is one piece of a message: plain text, or a base64-encoded JPEG.
type Part struct {
	Text        string
	ImageBase64 string
}

// Message is a single conversational message.
type Message struct {
	Role  string // "system" or "user"
	Parts []Part
}

// TextMessage builds a plain single-part message.
func TextMessage(role, text string) Message {
	return Message{Role: role, Parts: []Part{{Text: text}}}
}

// Client completes a conversation and returns the model's JSON reply as a
// raw string for the caller to unmarshal.
type Client interface {
	CompleteJSON(ctx context.Context, messages []Message) (string, error)
}

// New constructs the configured backend.
func New(provider, apiKey, model string, opts ...Option) (Client, error) {
	switch provider {
	case constants.DefaultLLMProvider:
		return NewOpenAIClient(apiKey, model, opts...), nil
	}
	return nil, fmt.Errorf("unsupported llm provider: %s", provider)
}
