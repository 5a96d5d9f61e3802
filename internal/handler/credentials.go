package handler

import (
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"stride/internal/domain"
	domainllm "stride/internal/domain/services/llm"
	"stride/internal/httputil"
)

// CredentialHandler checks API keys against the configured provider.
type CredentialHandler struct {
	transport domainllm.Transport
	logger    *slog.Logger
}

// NewCredentialHandler creates a credential handler.
func NewCredentialHandler(transport domainllm.Transport, logger *slog.Logger) *CredentialHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialHandler{transport: transport, logger: logger}
}

type validateCredentialRequest struct {
	Key string `json:"key"`
}

func (r validateCredentialRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Key, validation.Required),
	)
}

// Validate reports whether the key is accepted.
// POST /api/credentials/validate
// A rejected key is {"valid": false}; upstream failures are 502
func (h *CredentialHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var body validateCredentialRequest
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := body.Validate(); err != nil {
		handleError(w, &domain.ValidationError{Message: err.Error()})
		return
	}

	valid, err := h.transport.ValidateCredential(r.Context(), body.Key)
	if err != nil {
		h.logger.Warn("credential check failed", "error", err, "kind", domain.ErrorKind(err))
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}
