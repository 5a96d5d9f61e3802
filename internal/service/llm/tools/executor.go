package tools

import (
	"context"

	"stride/internal/domain/models/llm"
)

// ToolExecutor defines the interface for executing a tool.
// Implementations must be safe for concurrent use and hold no per-call state.
type ToolExecutor interface {
	// Definition describes the tool to the model. Its Name is the registry key.
	Definition() llm.ToolDefinition

	// Execute runs the tool with the given input parameters.
	// The returned map must be JSON-serializable. A returned error is reported
	// to the model as {"error": msg}; it never aborts the conversation.
	Execute(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error)
}
