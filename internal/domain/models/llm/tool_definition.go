package llm

import "sort"

// FunctionDetails represents the function definition (OpenAI format)
type FunctionDetails struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// ToolDefinition describes a tool exposed to the model.
//
// Parameters is a JSON-Schema object:
//
//	{
//	  "type": "object",
//	  "properties": {...},
//	  "required": [...]
//	}
//
// The same definition projects into both wire shapes without loss, see
// NativeSchema and FunctionSchema.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// NativeTool is the native chat API tool shape.
type NativeTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

// FunctionTool is the OpenAI-compatible tool shape.
type FunctionTool struct {
	Type     string          `json:"type"`
	Function FunctionDetails `json:"function"`
}

// NativeSchema projects the definition into the native "input_schema" shape.
func (td ToolDefinition) NativeSchema() NativeTool {
	return NativeTool{
		Name:        td.Name,
		Description: td.Description,
		InputSchema: td.parameters(),
	}
}

// FunctionSchema projects the definition into the OpenAI-compatible "function" shape.
func (td ToolDefinition) FunctionSchema() FunctionTool {
	return FunctionTool{
		Type: "function",
		Function: FunctionDetails{
			Name:        td.Name,
			Description: td.Description,
			Parameters:  td.parameters(),
		},
	}
}

// RequiredParameters returns the schema's required parameter names, sorted.
func (td ToolDefinition) RequiredParameters() []string {
	var names []string
	switch req := td.Parameters["required"].(type) {
	case []string:
		names = append(names, req...)
	case []interface{}:
		for _, v := range req {
			if s, ok := v.(string); ok {
				names = append(names, s)
			}
		}
	}
	sort.Strings(names)
	return names
}

// parameters never returns nil: both providers reject a tool without a schema object.
func (td ToolDefinition) parameters() map[string]interface{} {
	if td.Parameters == nil {
		return map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		}
	}
	return td.Parameters
}
