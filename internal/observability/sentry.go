// Package observability reports failed generations to Sentry.
package observability

import (
	"context"
	"errors"
	"time"

	"github.com/getsentry/sentry-go"

	"stride/internal/config"
	"stride/internal/domain"
	plansvc "stride/internal/service/plan"
)

// InitSentry initializes the global Sentry client when SENTRY_DSN is set.
// It reports whether Sentry is enabled.
func InitSentry(cfg *config.Config, release string) (bool, error) {
	if cfg.SentryDSN == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          release,
		TracesSampleRate: 0.2,
		AttachStacktrace: true,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Flush waits for buffered events to be sent.
func Flush() {
	sentry.Flush(2 * time.Second)
}

// SentryReporter sends failed generations to Sentry, tagged with the stable
// error kind so failures group by cause rather than by message.
type SentryReporter struct {
	hub *sentry.Hub
}

// NewSentryReporter creates a reporter. A nil hub uses sentry.CurrentHub.
func NewSentryReporter(hub *sentry.Hub) *SentryReporter {
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return &SentryReporter{hub: hub}
}

// ReportFailure implements plansvc.FailureReporter.
func (r *SentryReporter) ReportFailure(ctx context.Context, f plansvc.Failure) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = r.hub
	}
	hub = hub.Clone()

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(levelFor(f.Err))
		scope.SetTag("error_kind", domain.ErrorKind(f.Err))
		scope.SetTag("generation_kind", string(f.Kind))
		scope.SetTag("provider", f.Provider)
		scope.SetTag("model", f.Model)
		scope.SetContext("generation", sentry.Context{
			"id":     f.GenerationID,
			"rounds": f.Rounds,
		})
		hub.CaptureException(f.Err)
	})
}

// levelFor downgrades upstream conditions the service cannot fix.
func levelFor(err error) sentry.Level {
	switch {
	case errors.Is(err, domain.ErrRateLimited), errors.Is(err, domain.ErrTransport):
		return sentry.LevelWarning
	default:
		return sentry.LevelError
	}
}
