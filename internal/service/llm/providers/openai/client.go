// Package openai implements the OpenAI-compatible chat completions transport.
// One implementation serves every backend that speaks this wire shape.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"stride/internal/domain"
	"stride/internal/domain/models/llm"
	domainllm "stride/internal/domain/services/llm"
	"stride/internal/service/llm/providers"
)

var (
	_ domainllm.Transport   = (*Transport)(nil)
	_ domainllm.ModelLister = (*Transport)(nil)
)

// Backend describes one OpenAI-compatible service.
type Backend struct {
	Name        string
	BaseURL     string
	RequiresKey bool
	Headers     map[string]string
}

// Known backends.
var (
	BackendOpenAI = Backend{
		Name:        "openai",
		BaseURL:     "https://api.openai.com/v1",
		RequiresKey: true,
	}
	BackendOpenRouter = Backend{
		Name:        "openrouter",
		BaseURL:     "https://openrouter.ai/api/v1",
		RequiresKey: true,
		Headers: map[string]string{
			"HTTP-Referer": "https://github.com/stride",
			"X-Title":      "stride",
		},
	}
	BackendOllama = Backend{
		Name:    "ollama",
		BaseURL: "http://localhost:11434/v1",
	}
)

// BackendByName returns a known backend.
func BackendByName(name string) (Backend, bool) {
	switch name {
	case BackendOpenAI.Name:
		return BackendOpenAI, true
	case BackendOpenRouter.Name:
		return BackendOpenRouter, true
	case BackendOllama.Name:
		return BackendOllama, true
	default:
		return Backend{}, false
	}
}

// Config configures the OpenAI-compatible transport.
type Config struct {
	Backend Backend
	APIKey  string
	BaseURL string // overrides Backend.BaseURL
	Client  providers.ClientOptions
}

// Transport talks to an OpenAI-compatible chat completions endpoint.
type Transport struct {
	backend Backend
	apiKey  string
	baseURL string
	client  *providers.Client
	logger  *slog.Logger
}

// NewTransport creates an OpenAI-compatible transport.
func NewTransport(cfg Config) (*Transport, error) {
	if cfg.Backend.Name == "" {
		return nil, errors.New("backend is required")
	}
	if cfg.Backend.RequiresKey && cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", cfg.Backend.Name)
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")
	}
	logger := cfg.Client.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		backend: cfg.Backend,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  providers.NewClient(cfg.Backend.Name, cfg.Client),
		logger:  logger,
	}, nil
}

// Name returns the backend name.
func (t *Transport) Name() string { return t.backend.Name }

// Send issues one chat completions call.
func (t *Transport) Send(ctx context.Context, req *domainllm.SendRequest) (*llm.ModelResponse, error) {
	messages, err := toWireMessages(req.SystemPrompt, req.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	payload := chatRequest{
		Model:     req.Model,
		Messages:  messages,
		Tools:     toWireTools(req.Tools),
		MaxTokens: maxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+chatCompletionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	t.setHeaders(httpReq, t.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	respBody, err := t.client.Do(ctx, httpReq)
	if err != nil {
		return nil, err
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		t.logger.Warn("undecodable chat completion", "backend", t.backend.Name, "body_preview", providers.Preview(respBody))
		return nil, &domain.ModelError{Message: fmt.Sprintf("unmarshal response: %v", err)}
	}
	return fromWireResponse(&resp)
}

// ValidateCredential checks key against the models endpoint.
func (t *Transport) ValidateCredential(ctx context.Context, key string) (bool, error) {
	if strings.TrimSpace(key) == "" {
		return !t.backend.RequiresKey, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+modelsPath, nil)
	if err != nil {
		return false, err
	}
	t.setHeaders(req, key)
	return t.client.CheckCredential(ctx, req)
}

// ListModels returns the backend's model IDs.
func (t *Transport) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+modelsPath, nil)
	if err != nil {
		return nil, err
	}
	t.setHeaders(req, t.apiKey)

	body, err := t.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	var resp modelsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &domain.ModelError{Message: fmt.Sprintf("decode models: %v", err)}
	}
	ids := make([]string, 0, len(resp.Data))
	for _, m := range resp.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (t *Transport) setHeaders(req *http.Request, key string) {
	req.Header.Set("Accept", "application/json")
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	for k, v := range t.backend.Headers {
		req.Header.Set(k, v)
	}
}
