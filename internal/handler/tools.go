package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"stride/internal/domain"
	"stride/internal/httputil"
	"stride/internal/service/llm/tools"
)

// ToolHandler runs the deterministic training tools directly, without a
// model in the loop.
type ToolHandler struct {
	registry *tools.ToolRegistry
	logger   *slog.Logger
}

// NewToolHandler creates a tool handler.
func NewToolHandler(registry *tools.ToolRegistry, logger *slog.Logger) *ToolHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ToolHandler{registry: registry, logger: logger}
}

// List returns the tool definitions offered to models
// GET /api/tools
func (h *ToolHandler) List(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.registry.Definitions())
}

// Run executes one tool with the request body as its input
// POST /api/tools/{name}
// Invalid input is a 400 with the tool's message
func (h *ToolHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	executor := h.registry.Get(name)
	if executor == nil {
		handleError(w, &domain.NotFoundError{Message: fmt.Sprintf("tool %s not found", name)})
		return
	}

	input := map[string]interface{}{}
	if err := httputil.ParseJSON(w, r, &input); err != nil && !errors.Is(err, io.EOF) {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := executor.Execute(r.Context(), input)
	if err != nil {
		handleError(w, &domain.ValidationError{Message: err.Error()})
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}
