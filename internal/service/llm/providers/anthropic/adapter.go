package anthropic

import (
	"encoding/json"
	"fmt"
	"strings"

	"stride/internal/domain"
	"stride/internal/domain/models/llm"
)

// toWireMessages converts domain messages to the Messages API format.
//
// The API requires strict user/assistant alternation. Tool results are sent
// as user turns, so consecutive messages that map to the same wire role are
// merged into one turn; this is what folds several tool results into a
// single user message. Empty assistant turns are dropped.
func toWireMessages(messages []llm.Message) ([]messageParam, error) {
	out := make([]messageParam, 0, len(messages))

	for i, msg := range messages {
		var role string
		var blocks []contentBlock

		switch msg.Role {
		case llm.RoleUser:
			role = "user"
			if msg.Content != "" {
				blocks = append(blocks, contentBlock{Type: "text", Text: msg.Content})
			}
		case llm.RoleTool:
			if msg.ToolCallID == "" {
				return nil, fmt.Errorf("message %d: tool message without tool_call_id", i)
			}
			role = "user"
			blocks = append(blocks, contentBlock{
				Type:      "tool_result",
				ToolUseID: msg.ToolCallID,
				Content:   msg.Content,
				IsError:   isErrorPayload(msg.Content),
			})
		case llm.RoleAssistant:
			role = "assistant"
			if strings.TrimSpace(msg.Content) != "" {
				blocks = append(blocks, contentBlock{Type: "text", Text: msg.Content})
			}
			for _, call := range msg.ToolCalls {
				input := call.Input
				if input == nil {
					input = map[string]interface{}{}
				}
				raw, err := json.Marshal(input)
				if err != nil {
					return nil, fmt.Errorf("message %d: encode tool input: %w", i, err)
				}
				blocks = append(blocks, contentBlock{
					Type:  "tool_use",
					ID:    call.ID,
					Name:  call.Name,
					Input: raw,
				})
			}
		case llm.RoleSystem:
			// System text travels in the request's system field.
			continue
		default:
			return nil, fmt.Errorf("message %d: unsupported role '%s'", i, msg.Role)
		}

		if len(blocks) == 0 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content = append(out[n-1].Content, blocks...)
			continue
		}
		out = append(out, messageParam{Role: role, Content: blocks})
	}

	return out, nil
}

func toWireTools(defs []llm.ToolDefinition) []toolParam {
	if len(defs) == 0 {
		return nil
	}
	tools := make([]toolParam, len(defs))
	for i, def := range defs {
		native := def.NativeSchema()
		tools[i] = toolParam{
			Name:        native.Name,
			Description: native.Description,
			InputSchema: native.InputSchema,
		}
	}
	return tools
}

// fromWireResponse converts a Messages API response to the domain format.
func fromWireResponse(resp *messageResponse) (*llm.ModelResponse, error) {
	if resp.Type == "error" || resp.Error != nil {
		msg := "upstream reported an error"
		if resp.Error != nil {
			msg = fmt.Sprintf("%s: %s", resp.Error.Type, resp.Error.Message)
		}
		return nil, &domain.ModelError{Message: msg}
	}

	message := llm.Message{Role: llm.RoleAssistant}
	var text strings.Builder
	for i, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			if block.ID == "" || block.Name == "" {
				return nil, &domain.ModelError{Message: fmt.Sprintf("content block %d: tool_use without id or name", i)}
			}
			input := map[string]interface{}{}
			if len(block.Input) > 0 && string(block.Input) != "null" {
				if err := json.Unmarshal(block.Input, &input); err != nil {
					return nil, &domain.ModelError{Message: fmt.Sprintf("content block %d: malformed tool input: %v", i, err)}
				}
			}
			message.ToolCalls = append(message.ToolCalls, llm.ToolCall{
				ID:    block.ID,
				Name:  block.Name,
				Input: input,
			})
		}
		// Other block types (thinking, etc.) carry nothing the loop needs.
	}
	message.Content = text.String()

	stop, err := mapStopReason(resp.StopReason, len(message.ToolCalls) > 0)
	if err != nil {
		return nil, err
	}

	out := &llm.ModelResponse{
		Message:    message,
		StopReason: stop,
		Model:      resp.Model,
	}
	if resp.Usage != nil {
		out.Usage = llm.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		}
	}
	return out, nil
}

func mapStopReason(reason string, hasToolCalls bool) (llm.StopReason, error) {
	switch reason {
	case "tool_use":
		return llm.StopReasonToolUse, nil
	case "max_tokens":
		return llm.StopReasonMaxTokens, nil
	case "end_turn", "stop_sequence", "pause_turn":
		return llm.StopReasonEndTurn, nil
	case "refusal":
		return "", &domain.ModelError{Message: "model refused to answer"}
	case "error":
		return "", &domain.ModelError{Message: "upstream stop reason was error"}
	default:
		if hasToolCalls {
			return llm.StopReasonToolUse, nil
		}
		return llm.StopReasonEndTurn, nil
	}
}

func isErrorPayload(content string) bool {
	if !strings.HasPrefix(content, `{"error":`) {
		return false
	}
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return false
	}
	return len(payload) == 1
}
