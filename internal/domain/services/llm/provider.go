package llm

import (
	"context"

	"stride/internal/domain/models/llm"
)

// Transport defines the interface every model backend must implement.
// Two variants exist: the native chat API and the OpenAI-compatible
// chat-completions API. The variant is chosen once at construction.
type Transport interface {
	// Send issues one model call and returns the normalized turn.
	//
	// Errors:
	//   - domain.ErrInvalidCredential on HTTP 401
	//   - *domain.RateLimitedError on HTTP 429
	//   - *domain.ModelAPIError on any other non-2xx status
	//   - *domain.TransportError on network failure
	//   - *domain.ModelError when the turn is malformed or the upstream reports an error
	Send(ctx context.Context, req *SendRequest) (*llm.ModelResponse, error)

	// ValidateCredential reports whether key is accepted by the backend.
	// A rejected key returns (false, nil); other failures return an error.
	ValidateCredential(ctx context.Context, key string) (bool, error)
}

// ModelLister is implemented by transports that can enumerate the backend's models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// SendRequest contains the parameters for one model call.
type SendRequest struct {
	// Messages contains the conversation history (no system messages).
	Messages []llm.Message

	// SystemPrompt is sent in the provider's system slot.
	SystemPrompt string

	// Tools are the definitions offered to the model for this call.
	Tools []llm.ToolDefinition

	// Model is the provider-specific model identifier.
	Model string

	// MaxTokens caps the output length of the turn.
	MaxTokens int
}
