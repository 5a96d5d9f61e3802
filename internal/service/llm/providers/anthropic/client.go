// Package anthropic implements the native chat transport (Messages API).
package anthropic

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

// Config configures the native transport.
type Config struct {
	APIKey  string
	BaseURL string // defaults to DefaultBaseURL
	Client  providers.ClientOptions
}

// Transport talks to the native Messages API.
type Transport struct {
	apiKey  string
	baseURL string
	client  *providers.Client
	logger  *slog.Logger
}

// NewTransport creates a native transport.
func NewTransport(cfg Config) (*Transport, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic API key is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	logger := cfg.Client.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  providers.NewClient("anthropic", cfg.Client),
		logger:  logger,
	}, nil
}

// Send issues one Messages API call.
func (t *Transport) Send(ctx context.Context, req *domainllm.SendRequest) (*llm.ModelResponse, error) {
	messages, err := toWireMessages(req.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}
	if len(messages) == 0 {
		return nil, errors.New("at least one message is required")
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	payload := messageRequest{
		Model:     req.Model,
		System:    req.SystemPrompt,
		Messages:  messages,
		Tools:     toWireTools(req.Tools),
		MaxTokens: maxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode anthropic request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create anthropic request: %w", err)
	}
	t.setHeaders(httpReq, t.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	respBody, err := t.client.Do(ctx, httpReq)
	if err != nil {
		return nil, err
	}

	var resp messageResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		t.logger.Warn("undecodable anthropic response", "body_preview", providers.Preview(respBody))
		return nil, &domain.ModelError{Message: fmt.Sprintf("decode response: %v", err)}
	}
	return fromWireResponse(&resp)
}

// ValidateCredential checks key against the models endpoint.
func (t *Transport) ValidateCredential(ctx context.Context, key string) (bool, error) {
	if strings.TrimSpace(key) == "" {
		return false, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+modelsPath+"?limit=1", nil)
	if err != nil {
		return false, err
	}
	t.setHeaders(req, key)
	return t.client.CheckCredential(ctx, req)
}

// ListModels returns the model IDs visible to the configured key.
func (t *Transport) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+modelsPath+"?limit=1000", nil)
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
	req.Header.Set("x-api-key", key)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Accept", "application/json")
}
