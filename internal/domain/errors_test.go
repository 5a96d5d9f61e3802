package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorKind(t *testing.T) {
	retry := 30
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"missing field", &ParseError{Kind: ParseMissingField, Detail: "weeks"}, "parse_error.missing_field"},
		{"wrapped parse error", fmt.Errorf("finalize: %w", &ParseError{Kind: ParseNoJSONFound}), "parse_error.no_json_found"},
		{"credential", fmt.Errorf("send: %w", ErrInvalidCredential), "invalid_credential"},
		{"rate limited", &RateLimitedError{RetryAfterSeconds: &retry}, "rate_limited"},
		{"transport", &TransportError{Cause: errors.New("reset")}, "transport_error"},
		{"model api", &ModelAPIError{Status: 500, Body: "x"}, "model_error"},
		{"model", &ModelError{Message: "no choices"}, "model_error"},
		{"max rounds", ErrMaxRoundsExceeded, "max_rounds_exceeded"},
		{"cancelled", ErrCancelled, "cancelled"},
		{"not found", &NotFoundError{Message: "x"}, "not_found"},
		{"validation", &ValidationError{Message: "x"}, "validation"},
		{"conflict", &ConflictError{Message: "x"}, "conflict"},
		{"no pending input", ErrNoPendingInput, "conflict"},
		{"already resolved", ErrInputAlreadyResolved, "conflict"},
		{"other", errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorKind(tt.err); got != tt.want {
				t.Errorf("ErrorKind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTypedErrors(t *testing.T) {
	retry := 12
	if got := (&RateLimitedError{RetryAfterSeconds: &retry}).Error(); got != "rate limited by model provider (retry after 12s)" {
		t.Errorf("RateLimitedError = %q", got)
	}

	cause := errors.New("connection refused")
	var err error = &TransportError{Cause: cause}
	if !errors.Is(err, cause) || !errors.Is(err, ErrTransport) {
		t.Error("TransportError must unwrap to its cause and match ErrTransport")
	}

	var httpErr HTTPError
	if !errors.As(fmt.Errorf("wrap: %w", &ParseError{Kind: ParseInvalidJSON, Detail: "eof"}), &httpErr) ||
		httpErr.StatusCode() != http.StatusUnprocessableEntity {
		t.Error("ParseError must map to 422")
	}
	if got := (&ParseError{Kind: ParseMissingField, Detail: "name"}).Error(); got != `required field "name" is missing` {
		t.Errorf("ParseError = %q", got)
	}
}
