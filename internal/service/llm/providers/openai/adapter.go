package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"stride/internal/domain"
	"stride/internal/domain/models/llm"
)

// toWireMessages converts domain messages to chat completions format.
// The system prompt becomes the first message and every tool result is its own
// "tool" message.
func toWireMessages(systemPrompt string, messages []llm.Message) ([]chatMessage, error) {
	out := make([]chatMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		out = append(out, chatMessage{Role: "system", Content: strPtr(systemPrompt)})
	}

	for i, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem, llm.RoleUser:
			out = append(out, chatMessage{Role: string(msg.Role), Content: strPtr(msg.Content)})
		case llm.RoleTool:
			if msg.ToolCallID == "" {
				return nil, fmt.Errorf("message %d: tool message without tool_call_id", i)
			}
			out = append(out, chatMessage{
				Role:       "tool",
				Content:    strPtr(msg.Content),
				ToolCallID: msg.ToolCallID,
			})
		case llm.RoleAssistant:
			wire := chatMessage{Role: "assistant"}
			if msg.Content != "" || len(msg.ToolCalls) == 0 {
				wire.Content = strPtr(msg.Content)
			}
			for _, call := range msg.ToolCalls {
				input := call.Input
				if input == nil {
					input = map[string]interface{}{}
				}
				args, err := json.Marshal(input)
				if err != nil {
					return nil, fmt.Errorf("message %d: encode tool arguments: %w", i, err)
				}
				wire.ToolCalls = append(wire.ToolCalls, chatToolCall{
					ID:       call.ID,
					Type:     "function",
					Function: chatFunctionCall{Name: call.Name, Arguments: string(args)},
				})
			}
			out = append(out, wire)
		default:
			return nil, fmt.Errorf("message %d: unsupported role '%s'", i, msg.Role)
		}
	}
	return out, nil
}

func toWireTools(defs []llm.ToolDefinition) []chatTool {
	if len(defs) == 0 {
		return nil
	}
	tools := make([]chatTool, len(defs))
	for i, def := range defs {
		fn := def.FunctionSchema()
		tools[i] = chatTool{
			Type: fn.Type,
			Function: chatFunction{
				Name:        fn.Function.Name,
				Description: fn.Function.Description,
				Parameters:  fn.Function.Parameters,
			},
		}
	}
	return tools
}

// fromWireResponse converts choices[0] into the domain format.
func fromWireResponse(resp *chatResponse) (*llm.ModelResponse, error) {
	if resp.Error != nil {
		return nil, &domain.ModelError{Message: resp.Error.Message}
	}
	if len(resp.Choices) == 0 {
		return nil, &domain.ModelError{Message: "no choices in response"}
	}
	choice := resp.Choices[0]

	if choice.FinishReason == "error" {
		cause := "upstream finish reason was error"
		if choice.Error != nil && choice.Error.Message != "" {
			cause = choice.Error.Message
		}
		return nil, &domain.ModelError{Message: cause}
	}

	message := llm.Message{Role: llm.RoleAssistant}
	if choice.Message.Content != nil {
		message.Content = *choice.Message.Content
	}
	for i, call := range choice.Message.ToolCalls {
		if call.ID == "" || call.Function.Name == "" {
			return nil, &domain.ModelError{Message: fmt.Sprintf("tool call %d: missing id or function name", i)}
		}
		input := map[string]interface{}{}
		if args := strings.TrimSpace(call.Function.Arguments); args != "" && args != "null" {
			if err := json.Unmarshal([]byte(args), &input); err != nil {
				return nil, &domain.ModelError{Message: fmt.Sprintf("tool call %d: malformed arguments: %v", i, err)}
			}
		}
		message.ToolCalls = append(message.ToolCalls, llm.ToolCall{
			ID:    call.ID,
			Name:  call.Function.Name,
			Input: input,
		})
	}

	out := &llm.ModelResponse{
		Message:    message,
		StopReason: mapFinishReason(choice.FinishReason, len(message.ToolCalls) > 0),
		Model:      resp.Model,
	}
	if resp.Usage != nil {
		out.Usage = llm.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		}
	}
	return out, nil
}

func mapFinishReason(reason string, hasToolCalls bool) llm.StopReason {
	switch reason {
	case "tool_calls", "function_call":
		return llm.StopReasonToolUse
	case "length":
		return llm.StopReasonMaxTokens
	default:
		// stop, content_filter and unknown reasons; some backends report
		// "stop" alongside tool calls.
		if hasToolCalls {
			return llm.StopReasonToolUse
		}
		return llm.StopReasonEndTurn
	}
}

func strPtr(s string) *string {
	return &s
}
