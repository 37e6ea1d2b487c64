package defects

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"

	"github.com/Belphemur/ReelRoulette/internal/apperrors"
)

func TestNewReporter_NoDSNIsLogOnly(t *testing.T) {
	t.Parallel()
	r, err := NewReporter("", "test", "")
	if err != nil {
		t.Fatalf("NewReporter: %v", err)
	}
	if r.Hub() != nil {
		t.Error("expected no hub without a DSN")
	}
	r.ReportMismatch(&apperrors.ErrReconciliationMismatch{SpinID: "s", PickIndex: 1, MeasuredIndex: 2, PoolLen: 3})
	if !r.Flush(0) {
		t.Error("Flush on a log-only reporter should succeed")
	}
}

func TestReportMismatch_LogsOnceAtError(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	r := &Reporter{logger: zerolog.New(&buf)}

	r.ReportMismatch(&apperrors.ErrReconciliationMismatch{SpinID: "spin-9", PickIndex: 4, MeasuredIndex: 5, PoolLen: 10})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected one log line, got %d: %s", len(lines), buf.String())
	}
	for _, want := range []string{`"level":"error"`, `"spin_id":"spin-9"`, `"pick_index":4`, `"measured_index":5`, `"sentry":false`} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("Expected %s in %s", want, lines[0])
		}
	}
}

func TestNewReporter_InvalidDSN(t *testing.T) {
	t.Parallel()
	if _, err := NewReporter("not a dsn", "test", ""); err == nil {
		t.Error("expected error for an invalid DSN")
	}
}

func TestReportMismatch_CapturesEvent(t *testing.T) {
	t.Parallel()
	var (
		mu     sync.Mutex
		events []*sentry.Event
	)
	r, err := NewReporterWithOptions(sentry.ClientOptions{
		Dsn: "https://public@sentry.example.com/1",
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			events = append(events, event)
			mu.Unlock()
			return nil
		},
	})
	if err != nil {
		t.Fatalf("NewReporterWithOptions: %v", err)
	}

	r.ReportMismatch(&apperrors.ErrReconciliationMismatch{SpinID: "spin-7", PickIndex: 4, MeasuredIndex: 5, PoolLen: 9})

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 {
		t.Fatalf("captured %d events, want 1", len(events))
	}
	event := events[0]
	if event.Level != sentry.LevelError {
		t.Errorf("Level = %q, want error", event.Level)
	}
	if event.Tags["spin_id"] != "spin-7" || event.Tags["defect"] != "reconciliation_mismatch" {
		t.Errorf("Tags = %v", event.Tags)
	}
	if got := event.Contexts["reconciliation"]["measured_index"]; got != 5 {
		t.Errorf("measured_index context = %v, want 5", got)
	}
	if len(event.Exception) == 0 {
		t.Error("event carries no exception")
	}
}
