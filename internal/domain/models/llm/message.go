package llm

import (
	"encoding/json"
)

// Role is the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is the provider-neutral conversation message.
// Transport adapters map it onto their wire format.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`  // assistant only
	ToolCallID string     `json:"tool_call_id,omitempty"` // tool only
}

// ToolCall is a tool invocation requested by the model.
// ID is opaque and echoed back in the matching tool result.
type ToolCall struct {
	ID    string                 `json:"id"`
	Name  string                 `json:"name"`
	Input map[string]interface{} `json:"input"`
}

// ToolResult is the outcome of executing one ToolCall.
// Content always holds either the tool's result fields or an "error" key.
type ToolResult struct {
	ID      string                 `json:"id"`
	Name    string                 `json:"name"`
	Content map[string]interface{} `json:"content"`
}

// IsError reports whether the tool returned an error payload.
func (r ToolResult) IsError() bool {
	_, ok := r.Content["error"]
	return ok
}

// JSON serializes the result content. Map keys are emitted in sorted order,
// so equal results always produce identical text.
func (r ToolResult) JSON() string {
	data, err := json.Marshal(r.Content)
	if err != nil {
		fallback, _ := json.Marshal(map[string]string{"error": "unserializable tool result: " + err.Error()})
		return string(fallback)
	}
	return string(data)
}

// NewUserMessage creates a plain user turn.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// NewToolResultMessage creates the tool message answering a tool call.
func NewToolResultMessage(result ToolResult) Message {
	return Message{
		Role:       RoleTool,
		Content:    result.JSON(),
		ToolCallID: result.ID,
	}
}

// StopReason is the normalized reason a model turn ended.
type StopReason string

const (
	StopReasonEndTurn   StopReason = "end_turn"
	StopReasonToolUse   StopReason = "tool_use"
	StopReasonMaxTokens StopReason = "max_tokens"
)

// Usage holds token counts for one or more model calls.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add accumulates other into u.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// ModelResponse is one normalized model turn.
type ModelResponse struct {
	Message    Message    `json:"message"`
	StopReason StopReason `json:"stop_reason"`
	Usage      Usage      `json:"usage"`
	Model      string     `json:"model,omitempty"`
}
