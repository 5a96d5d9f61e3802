package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"stride/internal/domain/models/llm"
)

// ToolRegistry manages tool executors and handles tool execution.
// It is thread-safe and can be used concurrently.
type ToolRegistry struct {
	mu        sync.RWMutex
	executors map[string]ToolExecutor
	logger    *slog.Logger
}

// NewToolRegistry creates a new tool registry.
func NewToolRegistry(logger *slog.Logger) *ToolRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ToolRegistry{
		executors: make(map[string]ToolExecutor),
		logger:    logger,
	}
}

// Register adds a tool executor under its definition's name.
// If a tool with the same name already exists, it will be replaced.
func (r *ToolRegistry) Register(executor ToolExecutor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[executor.Definition().Name] = executor
}

// Get retrieves a tool executor by name.
// Returns nil if the tool is not registered.
func (r *ToolRegistry) Get(name string) ToolExecutor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.executors[name]
}

// Definitions returns every registered tool definition sorted by name.
func (r *ToolRegistry) Definitions() []llm.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]llm.ToolDefinition, 0, len(r.executors))
	for _, executor := range r.executors {
		defs = append(defs, executor.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Execute runs a single tool. It never fails: unknown tools, executor errors
// and executor panics are all reported in the result's "error" key.
func (r *ToolRegistry) Execute(ctx context.Context, call llm.ToolCall) (result llm.ToolResult) {
	result = llm.ToolResult{ID: call.ID, Name: call.Name}

	executor := r.Get(call.Name)
	if executor == nil {
		r.logger.Warn("model requested unknown tool", "tool", call.Name, "tool_call_id", call.ID)
		result.Content = errorContent("Unknown tool: " + call.Name)
		return result
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool panicked", "tool", call.Name, "tool_call_id", call.ID, "panic", fmt.Sprint(rec))
			result.Content = errorContent(fmt.Sprintf("tool %s failed: internal error", call.Name))
		}
	}()

	input := call.Input
	if input == nil {
		input = map[string]interface{}{}
	}

	content, err := executor.Execute(ctx, input)
	if err != nil {
		r.logger.Debug("tool returned error", "tool", call.Name, "tool_call_id", call.ID, "error", err)
		result.Content = errorContent(err.Error())
		return result
	}
	if content == nil {
		content = map[string]interface{}{}
	}
	result.Content = content
	return result
}

// ExecuteAll runs multiple tools concurrently and returns results in the same order
// as calls, so callers can zip calls and results positionally.
// Calls that have not started when ctx is cancelled report {"error": "cancelled"}.
func (r *ToolRegistry) ExecuteAll(ctx context.Context, calls []llm.ToolCall) []llm.ToolResult {
	if len(calls) == 0 {
		return []llm.ToolResult{}
	}

	// Pre-allocate results slice with correct length
	results := make([]llm.ToolResult, len(calls))
	var wg sync.WaitGroup

	for i, call := range calls {
		wg.Add(1)
		go func(index int, toolCall llm.ToolCall) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[index] = llm.ToolResult{
					ID:      toolCall.ID,
					Name:    toolCall.Name,
					Content: errorContent("cancelled"),
				}
				return
			default:
			}

			results[index] = r.Execute(ctx, toolCall)
		}(i, call)
	}

	wg.Wait()

	return results
}

func errorContent(msg string) map[string]interface{} {
	return map[string]interface{}{"error": msg}
}
