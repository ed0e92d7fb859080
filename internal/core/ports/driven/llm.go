package driven

import (
	"context"

	"github.com/quillon/docuchat/internal/core/domain"
)

// ChatModel provides chat completion for grounded answering.
//
// Implementations may include:
//   - OpenAI (gpt-4o, gpt-4o-mini)
//   - Any OpenAI-compatible endpoint (Ollama, LM Studio)
type ChatModel interface {
	// Chat conducts a multi-turn conversation and returns the reply text.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the chat model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatMessage is a single message sent to the chat model.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role domain.Role

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// Model overrides the default model identifier when non-empty.
	Model string

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// ChatResult pairs a model reply with the model that produced it.
type ChatResult struct {
	// Response is the assistant reply text.
	Response string `json:"response"`

	// Model is the identifier of the model that generated the reply.
	Model string `json:"model"`
}
