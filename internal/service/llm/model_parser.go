package llm

import (
	"fmt"
	"strings"
)

// ModelInfo contains parsed provider and model information
type ModelInfo struct {
	Provider string // "anthropic", "openai", "openrouter" or "ollama"
	Model    string // Model identifier for that provider
}

var knownProviders = map[string]bool{
	"anthropic":  true,
	"openai":     true,
	"openrouter": true,
	"ollama":     true,
}

// ParseModel extracts provider information from a model string
//
// Supported formats:
//   - "claude-haiku-4-5" → {Provider: "anthropic", Model: "claude-haiku-4-5"}
//   - "openrouter/anthropic/claude-haiku-4-5" → {Provider: "openrouter", Model: "anthropic/claude-haiku-4-5"}
//   - "ollama/llama3.1" → {Provider: "ollama", Model: "llama3.1"}
//   - "meta-llama/llama-3-70b" with defaultProvider "openrouter" → {Provider: "openrouter", Model: "meta-llama/llama-3-70b"}
//
// Rules:
//   - A leading known provider name followed by "/" selects that provider
//   - Else the model prefix decides (claude-, gpt-, o1- ...)
//   - Else defaultProvider is used; empty defaultProvider is an error
func ParseModel(modelStr, defaultProvider string) (*ModelInfo, error) {
	if modelStr == "" {
		return nil, fmt.Errorf("model string cannot be empty")
	}

	if provider, model, ok := strings.Cut(modelStr, "/"); ok && knownProviders[strings.ToLower(provider)] {
		if model == "" {
			return nil, fmt.Errorf("model cannot be empty in model string: %s", modelStr)
		}
		return &ModelInfo{Provider: strings.ToLower(provider), Model: model}, nil
	}
	if strings.HasPrefix(modelStr, "/") {
		return nil, fmt.Errorf("provider cannot be empty in model string: %s", modelStr)
	}

	// A slash-qualified name like "meta-llama/..." is a routed model id.
	if !strings.Contains(modelStr, "/") {
		if provider := inferProvider(modelStr); provider != "" {
			return &ModelInfo{Provider: provider, Model: modelStr}, nil
		}
	}

	if defaultProvider == "" {
		return nil, fmt.Errorf("unable to infer provider from model: %s", modelStr)
	}
	return &ModelInfo{Provider: defaultProvider, Model: modelStr}, nil
}

// inferProvider infers the provider from model name prefix
func inferProvider(model string) string {
	modelLower := strings.ToLower(model)

	if strings.HasPrefix(modelLower, "claude-") {
		return "anthropic"
	}

	for _, prefix := range []string{"gpt-", "o1-", "o3-", "o4-", "chatgpt-"} {
		if strings.HasPrefix(modelLower, prefix) {
			return "openai"
		}
	}

	// Common local model families served by ollama ("llama3.1:8b", "qwen2.5").
	for _, prefix := range []string{"llama", "qwen", "mistral", "gemma", "phi"} {
		if strings.HasPrefix(modelLower, prefix) {
			return "ollama"
		}
	}

	return ""
}
