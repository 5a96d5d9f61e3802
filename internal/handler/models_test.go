package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"stride/internal/capabilities"
	"stride/internal/config"
	"stride/internal/domain"
)

type stubCatalog struct {
	models []string
	err    error
}

func (s stubCatalog) Models(context.Context) ([]string, error) {
	return s.models, s.err
}

func TestModelsHandler_GetModels(t *testing.T) {
	registry, err := capabilities.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	cfg := &config.Config{Provider: config.ProviderOllama, Model: "llama3.1"}

	tests := []struct {
		name          string
		catalog       ModelSource
		wantAvailable int
		wantError     string
	}{
		{"live list", stubCatalog{models: []string{"llama3.1", "qwen2.5"}}, 2, ""},
		{"stale list on failure", stubCatalog{models: []string{"llama3.1"}, err: &domain.TransportError{Cause: errors.New("refused")}}, 1, "transport_error"},
		{"no list", stubCatalog{err: &domain.TransportError{Cause: errors.New("refused")}}, 0, "transport_error"},
		{"no catalog", nil, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewModelsHandler(cfg, discardLogger(), registry, tt.catalog)
			rec := httptest.NewRecorder()
			h.GetModels(rec, httptest.NewRequest(http.MethodGet, "/api/models", nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}

			var resp ModelsResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(resp.Available) != tt.wantAvailable || resp.CatalogError != tt.wantError {
				t.Errorf("available = %v, catalog_error = %q", resp.Available, resp.CatalogError)
			}
			if resp.Provider != "ollama" || resp.DefaultModel != "llama3.1" {
				t.Errorf("provider/model = %s/%s", resp.Provider, resp.DefaultModel)
			}
			if len(resp.Providers) != len(capabilities.Providers) {
				t.Errorf("providers = %d, want %d", len(resp.Providers), len(capabilities.Providers))
			}
		})
	}
}
