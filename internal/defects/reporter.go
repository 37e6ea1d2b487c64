// Package defects reports internal-consistency faults. Every fault is logged;
// when a Sentry DSN is configured it is also captured as an error event.
package defects

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"

	"github.com/Belphemur/ReelRoulette/internal/apperrors"
	"github.com/Belphemur/ReelRoulette/internal/config"
)

// Reporter implements reveal.DefectReporter. It is the only place a defect is
// logged at error level.
type Reporter struct {
	hub    *sentry.Hub
	logger zerolog.Logger
}

// NewLogOnlyReporter creates a reporter that logs defects without sending them.
func NewLogOnlyReporter() *Reporter {
	return &Reporter{logger: config.GetLogger()}
}

// NewReporter creates a reporter. An empty DSN gives a log-only reporter.
func NewReporter(dsn, environment, release string) (*Reporter, error) {
	if dsn == "" {
		return NewLogOnlyReporter(), nil
	}
	return NewReporterWithOptions(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	})
}

// NewReporterWithOptions creates a reporter backed by its own Sentry client.
func NewReporterWithOptions(opts sentry.ClientOptions) (*Reporter, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("create sentry client: %w", err)
	}
	return &Reporter{hub: sentry.NewHub(client, sentry.NewScope()), logger: config.GetLogger()}, nil
}

// Hub returns the Sentry hub, nil for a log-only reporter.
func (r *Reporter) Hub() *sentry.Hub {
	return r.hub
}

// ReportMismatch records a reveal that landed on a different item than the one
// drawn.
func (r *Reporter) ReportMismatch(mismatch *apperrors.ErrReconciliationMismatch) {
	r.logger.Error().
		Err(mismatch).
		Str("spin_id", mismatch.SpinID).
		Int("pick_index", mismatch.PickIndex).
		Int("measured_index", mismatch.MeasuredIndex).
		Int("pool_size", mismatch.PoolLen).
		Bool("sentry", r.hub != nil).
		Msg("Reconciliation defect")

	if r.hub == nil {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		scope.SetTag("defect", "reconciliation_mismatch")
		scope.SetTag("spin_id", mismatch.SpinID)
		scope.SetContext("reconciliation", sentry.Context{
			"pick_index":     mismatch.PickIndex,
			"measured_index": mismatch.MeasuredIndex,
			"pool_size":      mismatch.PoolLen,
		})
		r.hub.CaptureException(mismatch)
	})
}

// Flush waits for buffered events to be sent.
func (r *Reporter) Flush(timeout time.Duration) bool {
	if r.hub == nil {
		return true
	}
	return r.hub.Flush(timeout)
}
