package observability

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"

	"stride/internal/config"
	"stride/internal/domain"
	"stride/internal/service/llm/prompts"
	plansvc "stride/internal/service/plan"
)

// newCapturingHub returns a hub whose events are recorded by BeforeSend and
// never leave the process.
func newCapturingHub(t *testing.T) (*sentry.Hub, func() []*sentry.Event) {
	t.Helper()
	var (
		mu     sync.Mutex
		events []*sentry.Event
	)
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:        "https://public@sentry.example.com/1",
		SampleRate: 1.0,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			events = append(events, event)
			mu.Unlock()
			return nil
		},
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	hub := sentry.NewHub(client, sentry.NewScope())
	return hub, func() []*sentry.Event {
		mu.Lock()
		defer mu.Unlock()
		return append([]*sentry.Event(nil), events...)
	}
}

func TestSentryReporter_ReportFailure(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantKind  string
		wantLevel sentry.Level
	}{
		{"parse error", &domain.ParseError{Kind: domain.ParseMissingField, Detail: "weeks"}, "parse_error.missing_field", sentry.LevelError},
		{"max rounds", domain.ErrMaxRoundsExceeded, "max_rounds_exceeded", sentry.LevelError},
		{"rate limited", &domain.RateLimitedError{}, "rate_limited", sentry.LevelWarning},
		{"transport", &domain.TransportError{Cause: errors.New("reset")}, "transport_error", sentry.LevelWarning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub, captured := newCapturingHub(t)
			r := NewSentryReporter(hub)

			r.ReportFailure(context.Background(), plansvc.Failure{
				GenerationID: "gen-1",
				Kind:         prompts.KindFullPlan,
				Provider:     "anthropic",
				Model:        "claude-sonnet-4-5",
				Rounds:       3,
				Err:          tt.err,
			})

			events := captured()
			if len(events) != 1 {
				t.Fatalf("captured %d events, want 1", len(events))
			}
			ev := events[0]
			if ev.Tags["error_kind"] != tt.wantKind {
				t.Errorf("error_kind = %q, want %q", ev.Tags["error_kind"], tt.wantKind)
			}
			if ev.Tags["generation_kind"] != "full_plan" || ev.Tags["provider"] != "anthropic" {
				t.Errorf("tags = %v", ev.Tags)
			}
			if ev.Level != tt.wantLevel {
				t.Errorf("level = %q, want %q", ev.Level, tt.wantLevel)
			}
			if ev.Contexts["generation"]["id"] != "gen-1" {
				t.Errorf("generation context = %v", ev.Contexts["generation"])
			}
		})
	}
}

func TestSentryReporter_ScopeDoesNotLeak(t *testing.T) {
	hub, captured := newCapturingHub(t)
	r := NewSentryReporter(hub)
	r.ReportFailure(context.Background(), plansvc.Failure{Kind: prompts.KindCoach, Err: domain.ErrMaxRoundsExceeded})
	hub.CaptureMessage("unrelated")

	events := captured()
	if len(events) != 2 {
		t.Fatalf("captured %d events, want 2", len(events))
	}
	if _, ok := events[1].Tags["error_kind"]; ok {
		t.Errorf("tag leaked into unrelated event: %v", events[1].Tags)
	}
}

func TestInitSentry_DisabledWithoutDSN(t *testing.T) {
	enabled, err := InitSentry(&config.Config{}, "test")
	if err != nil || enabled {
		t.Errorf("InitSentry() = %v, %v; want false, nil", enabled, err)
	}
}
