package handler

import (
	"errors"
	"net/http"

	"stride/internal/domain"
	"stride/internal/httputil"
)

// handleError converts domain errors to RFC 7807 responses. Every response
// carries a "kind" field with the stable error identifier.
func handleError(w http.ResponseWriter, err error) {
	status, detail := errorStatus(err)
	httputil.RespondErrorWithExtras(w, status, detail, map[string]interface{}{
		"kind": domain.ErrorKind(err),
	})
}

func errorStatus(err error) (int, string) {
	var httpErr domain.HTTPError

	switch {
	case errors.As(err, &httpErr):
		return httpErr.StatusCode(), err.Error()
	case errors.Is(err, domain.ErrInvalidCredential):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrMaxRoundsExceeded):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrNoPendingInput), errors.Is(err, domain.ErrInputAlreadyResolved):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// HealthCheck reports that the server is up.
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
