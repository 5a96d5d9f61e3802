package handler

import (
	"context"
	"log/slog"
	"net/http"

	"stride/internal/capabilities"
	"stride/internal/config"
	"stride/internal/domain"
	"stride/internal/httputil"
)

// ModelSource lists the configured provider's models. llm.ModelCatalog
// satisfies it.
type ModelSource interface {
	Models(ctx context.Context) ([]string, error)
}

// ModelsHandler handles HTTP requests for model capabilities
type ModelsHandler struct {
	config   *config.Config
	logger   *slog.Logger
	registry *capabilities.Registry
	catalog  ModelSource
}

// NewModelsHandler creates a new models handler. catalog may be nil when the
// provider cannot list models.
func NewModelsHandler(cfg *config.Config, logger *slog.Logger, registry *capabilities.Registry, catalog ModelSource) *ModelsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModelsHandler{
		config:   cfg,
		logger:   logger,
		registry: registry,
		catalog:  catalog,
	}
}

// ModelsResponse is the GET /api/models payload.
type ModelsResponse struct {
	Provider     string             `json:"provider"`
	DefaultModel string             `json:"default_model"`
	Available    []string           `json:"available"`
	CatalogError string             `json:"catalog_error,omitempty"`
	Providers    []ProviderResponse `json:"providers"`
}

// ProviderResponse represents a provider with its models
type ProviderResponse struct {
	ID     string          `json:"id"`
	Models []ModelResponse `json:"models"`
}

// ModelResponse represents a model's capabilities for the API response
type ModelResponse struct {
	ID              string `json:"id"`
	DisplayName     string `json:"display_name"`
	Description     string `json:"description,omitempty"`
	ContextWindow   int    `json:"context_window"`
	MaxOutput       int    `json:"max_output"`
	SupportsTools   bool   `json:"supports_tools"`
	ToolCallQuality string `json:"tool_call_quality,omitempty"` // excellent, good, fair, poor
}

// GetModels returns the live model list of the configured provider together
// with the known capabilities of every provider.
// GET /api/models
// A failed catalog fetch is reported in catalog_error, not as an HTTP error.
func (h *ModelsHandler) GetModels(w http.ResponseWriter, r *http.Request) {
	resp := ModelsResponse{
		Provider:     h.config.Provider,
		DefaultModel: h.config.Model,
		Available:    []string{},
		Providers:    []ProviderResponse{},
	}

	if h.catalog != nil {
		models, err := h.catalog.Models(r.Context())
		if err != nil {
			h.logger.Warn("model catalog refresh failed", "provider", h.config.Provider, "error", err)
			resp.CatalogError = domain.ErrorKind(err)
		}
		if models != nil {
			resp.Available = models
		}
	}

	for _, provider := range h.registry.GetAllProviders() {
		models, err := h.registry.ListProviderModels(provider)
		if err != nil {
			continue
		}
		resp.Providers = append(resp.Providers, convertProvider(provider, models))
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

func convertProvider(id string, models []capabilities.ModelCapabilities) ProviderResponse {
	out := ProviderResponse{ID: id, Models: make([]ModelResponse, 0, len(models))}
	for _, m := range models {
		out.Models = append(out.Models, ModelResponse{
			ID:              m.ID,
			DisplayName:     m.DisplayName,
			Description:     m.Description,
			ContextWindow:   m.ContextWindow,
			MaxOutput:       m.MaxOutput,
			SupportsTools:   m.SupportsTools,
			ToolCallQuality: string(m.ToolCallQuality),
		})
	}
	return out
}
