package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stride/internal/domain"
)

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  *int
	}{
		{name: "empty", value: "", want: nil},
		{name: "seconds", value: "30", want: intPtr(30)},
		{name: "negative clamps", value: "-5", want: intPtr(0)},
		{name: "http date", value: now.Add(90 * time.Second).Format(http.TimeFormat), want: intPtr(90)},
		{name: "past date clamps", value: now.Add(-time.Hour).Format(http.TimeFormat), want: intPtr(0)},
		{name: "garbage", value: "soon", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRetryAfter(tt.value, now)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("ParseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("ParseRetryAfter(%q) = %d, want %d", tt.value, *got, *tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	short := []byte("short body")
	if got := Preview(short); got != "short body" {
		t.Errorf("Preview(short) = %q", got)
	}

	long := []byte(strings.Repeat("x", MaxPreviewBytes+100))
	got := Preview(long)
	if !strings.HasPrefix(got, strings.Repeat("x", MaxPreviewBytes)) {
		t.Error("expected preview to keep the first MaxPreviewBytes bytes")
	}
	if !strings.HasSuffix(got, "...(truncated)") {
		t.Errorf("expected truncation marker, got suffix %q", got[len(got)-20:])
	}
}

func TestClientDo_StatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header map[string]string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, domain.ErrInvalidCredential) {
					t.Errorf("expected ErrInvalidCredential, got %v", err)
				}
			},
		},
		{
			name:   "rate limited with retry after",
			status: http.StatusTooManyRequests,
			header: map[string]string{"Retry-After": "12"},
			check: func(t *testing.T, err error) {
				var rl *domain.RateLimitedError
				if !errors.As(err, &rl) {
					t.Fatalf("expected RateLimitedError, got %v", err)
				}
				if rl.RetryAfterSeconds == nil || *rl.RetryAfterSeconds != 12 {
					t.Errorf("RetryAfterSeconds = %v, want 12", rl.RetryAfterSeconds)
				}
				if !errors.Is(err, domain.ErrRateLimited) {
					t.Error("expected errors.Is(err, ErrRateLimited)")
				}
			},
		},
		{
			name:   "rate limited without header",
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				var rl *domain.RateLimitedError
				if !errors.As(err, &rl) {
					t.Fatalf("expected RateLimitedError, got %v", err)
				}
				if rl.RetryAfterSeconds != nil {
					t.Errorf("RetryAfterSeconds = %d, want nil", *rl.RetryAfterSeconds)
				}
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				var apiErr *domain.ModelAPIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected ModelAPIError, got %v", err)
				}
				if apiErr.Status != http.StatusInternalServerError {
					t.Errorf("Status = %d, want 500", apiErr.Status)
				}
				if apiErr.Body != "upstream said no" {
					t.Errorf("Body = %q", apiErr.Body)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte("upstream said no"))
			}))
			defer srv.Close()

			c := NewClient("test", ClientOptions{HTTPClient: srv.Client()})
			req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
			_, err := c.Do(context.Background(), req)
			if err == nil {
				t.Fatal("expected error")
			}
			tt.check(t, err)
		})
	}
}

func TestClientDo_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient("test", ClientOptions{HTTPClient: srv.Client(), RequestsPerSecond: 100})
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	body, err := c.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %s", body)
	}
}

func TestClientDo_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient("test", ClientOptions{Timeout: time.Second})
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	_, err := c.Do(context.Background(), req)
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestClientDo_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient("test", ClientOptions{HTTPClient: srv.Client()})
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	_, err := c.Do(ctx, req)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCheckCredential(t *testing.T) {
	tests := []struct {
		status  int
		want    bool
		wantErr bool
	}{
		{status: http.StatusOK, want: true},
		{status: http.StatusUnauthorized, want: false},
		{status: http.StatusForbidden, want: false},
		{status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient("test", ClientOptions{HTTPClient: srv.Client()})
			req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
			got, err := c.CheckCredential(context.Background(), req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("valid = %v, want %v", got, tt.want)
			}
		})
	}
}

func intPtr(v int) *int { return &v }
