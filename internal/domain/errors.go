package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// ConflictError indicates the request does not fit the resource's current state
	ConflictError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string   { return e.Message }
func (e *ValidationError) Error() string { return e.Message }
func (e *ConflictError) Error() string   { return e.Message }

func (e *NotFoundError) StatusCode() int   { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }
func (e *ConflictError) StatusCode() int   { return http.StatusConflict }

func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
func (e *ConflictError) Is(target error) bool   { return target == ErrConflict }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredential is returned when the model provider rejects the API key (HTTP 401).
	ErrInvalidCredential = errors.New("invalid API credential")

	// ErrRateLimited matches any *RateLimitedError.
	ErrRateLimited = errors.New("rate limited by model provider")

	// ErrTransport matches any *TransportError.
	ErrTransport = errors.New("model transport failure")

	// ErrModel matches *ModelError and *ModelAPIError.
	ErrModel = errors.New("model error")

	// ErrMaxRoundsExceeded is returned when the agent loop exhausts its round budget.
	ErrMaxRoundsExceeded = errors.New("max rounds exceeded")

	// ErrParse matches any *ParseError.
	ErrParse = errors.New("parse error")

	// ErrCancelled marks a generation the caller cancelled. It is never surfaced as a failure.
	ErrCancelled = errors.New("cancelled")

	// ErrNoPendingInput is returned when a response is submitted while no question is pending.
	ErrNoPendingInput = errors.New("no pending input request")

	// ErrInputAlreadyResolved is returned when a pending question is resolved twice.
	ErrInputAlreadyResolved = errors.New("pending input already resolved")
)

// RateLimitedError carries the upstream Retry-After hint, when present.
type RateLimitedError struct {
	RetryAfterSeconds *int
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfterSeconds != nil {
		return fmt.Sprintf("rate limited by model provider (retry after %ds)", *e.RetryAfterSeconds)
	}
	return "rate limited by model provider"
}

func (e *RateLimitedError) StatusCode() int      { return http.StatusTooManyRequests }
func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }

// TransportError wraps a network-level failure talking to the model provider.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string        { return fmt.Sprintf("model transport failure: %v", e.Cause) }
func (e *TransportError) Unwrap() error        { return e.Cause }
func (e *TransportError) StatusCode() int      { return http.StatusBadGateway }
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ModelAPIError is a non-2xx response other than 401/429.
type ModelAPIError struct {
	Status int
	Body   string
}

func (e *ModelAPIError) Error() string {
	return fmt.Sprintf("model API returned status %d: %s", e.Status, e.Body)
}

func (e *ModelAPIError) StatusCode() int      { return http.StatusBadGateway }
func (e *ModelAPIError) Is(target error) bool { return target == ErrModel }

// ModelError is a malformed or explicitly failed model turn.
type ModelError struct {
	Message string
}

func (e *ModelError) Error() string        { return "model error: " + e.Message }
func (e *ModelError) StatusCode() int      { return http.StatusBadGateway }
func (e *ModelError) Is(target error) bool { return target == ErrModel }

// ParseErrorKind distinguishes the ways structured output can fail to parse.
type ParseErrorKind string

const (
	ParseNoJSONFound  ParseErrorKind = "no_json_found"
	ParseInvalidJSON  ParseErrorKind = "invalid_json"
	ParseMissingField ParseErrorKind = "missing_field"
)

// ParseError is returned by the plan parser. Detail holds the decode error or field name.
type ParseError struct {
	Kind   ParseErrorKind
	Detail string
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ParseNoJSONFound:
		return "no JSON object found in model response"
	case ParseMissingField:
		return fmt.Sprintf("required field %q is missing", e.Detail)
	default:
		return "invalid JSON in model response: " + e.Detail
	}
}

func (e *ParseError) StatusCode() int      { return http.StatusUnprocessableEntity }
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ErrorKind returns a stable identifier for err, used in API responses and telemetry.
func ErrorKind(err error) string {
	var parseErr *ParseError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &parseErr):
		return "parse_error." + string(parseErr.Kind)
	case errors.Is(err, ErrInvalidCredential):
		return "invalid_credential"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrTransport):
		return "transport_error"
	case errors.Is(err, ErrModel):
		return "model_error"
	case errors.Is(err, ErrMaxRoundsExceeded):
		return "max_rounds_exceeded"
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConflict), errors.Is(err, ErrNoPendingInput), errors.Is(err, ErrInputAlreadyResolved):
		return "conflict"
	default:
		return "internal"
	}
}
