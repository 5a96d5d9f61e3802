// Package providers holds the HTTP plumbing shared by the model transports.
package providers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"stride/internal/domain"
)

// MaxPreviewBytes bounds how much of an upstream body is written to logs.
const MaxPreviewBytes = 512

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// Client performs model API calls and maps HTTP failures onto the domain error taxonomy.
type Client struct {
	provider string
	http     *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
	now      func() time.Time
}

// ClientOptions configures a Client.
type ClientOptions struct {
	// Timeout bounds one request. Zero means no client-side timeout.
	Timeout time.Duration

	// RequestsPerSecond paces outgoing requests. Zero disables pacing.
	RequestsPerSecond float64

	// HTTPClient overrides the default client (tests use httptest clients).
	HTTPClient *http.Client

	Logger *slog.Logger
}

// NewClient creates a client for the named provider.
func NewClient(provider string, opts ClientOptions) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Client{
		provider: provider,
		http:     httpClient,
		limiter:  limiter,
		logger:   logger.With("provider", provider),
		now:      time.Now,
	}
}

// Do sends req and returns the body of a 2xx response.
//
// Errors:
//   - domain.ErrInvalidCredential on 401
//   - *domain.RateLimitedError on 429
//   - *domain.ModelAPIError on other non-2xx
//   - *domain.TransportError when the request cannot be completed
func (c *Client) Do(ctx context.Context, req *http.Request) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, &domain.TransportError{Cause: err}
		}
	}

	start := c.now()
	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &domain.TransportError{Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &domain.TransportError{Cause: err}
	}

	c.logger.Debug("model API call",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", c.now().Sub(start).Milliseconds(),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	c.logger.Warn("model API returned error status",
		"status", resp.StatusCode,
		"body_preview", Preview(body),
	)
	return nil, c.classify(resp.StatusCode, resp.Header, body)
}

func (c *Client) classify(status int, header http.Header, body []byte) error {
	switch status {
	case http.StatusUnauthorized:
		return domain.ErrInvalidCredential
	case http.StatusTooManyRequests:
		return &domain.RateLimitedError{RetryAfterSeconds: ParseRetryAfter(header.Get("Retry-After"), c.now())}
	default:
		return &domain.ModelAPIError{Status: status, Body: string(body)}
	}
}

// ParseRetryAfter reads a Retry-After header given in delta seconds or as an HTTP date.
func ParseRetryAfter(value string, now time.Time) *int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			secs = 0
		}
		return &secs
	}
	if when, err := http.ParseTime(value); err == nil {
		secs := int(when.Sub(now).Seconds() + 0.5)
		if secs < 0 {
			secs = 0
		}
		return &secs
	}
	return nil
}

// Preview truncates body for logging.
func Preview(body []byte) string {
	if len(body) <= MaxPreviewBytes {
		return string(body)
	}
	return string(body[:MaxPreviewBytes]) + "...(truncated)"
}

// CheckCredential issues a credential probe and maps 401/403 to (false, nil).
func (c *Client) CheckCredential(ctx context.Context, req *http.Request) (bool, error) {
	_, err := c.Do(ctx, req)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrInvalidCredential) {
		return false, nil
	}
	var apiErr *domain.ModelAPIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden {
		return false, nil
	}
	return false, err
}
