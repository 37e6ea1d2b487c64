// Package apperrors tests verify the custom error types, their Error()
// messages, Is() matching semantics, and compatibility with errors.Is() and
// errors.As() through fmt.Errorf wrapping.
package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// ---------------------------------------------------------------------------
// ErrNotFound
// ---------------------------------------------------------------------------

func TestErrNotFound_Error(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      *ErrNotFound
		expected string
	}{
		{
			name:     "with string ID",
			err:      &ErrNotFound{Resource: "spin", ID: "abc"},
			expected: "spin with ID abc not found",
		},
		{
			name:     "with int ID",
			err:      &ErrNotFound{Resource: "section", ID: 42},
			expected: "section with ID 42 not found",
		},
		{
			name:     "with nil ID",
			err:      &ErrNotFound{Resource: "settings", ID: nil},
			expected: "settings not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNewSpinNotFoundError(t *testing.T) {
	t.Parallel()
	err := NewSpinNotFoundError("s-1")
	if err.Resource != "spin" || err.ID != "s-1" {
		t.Errorf("unexpected fields: %+v", err)
	}
	if !errors.Is(fmt.Errorf("wrapped: %w", err), &ErrNotFound{}) {
		t.Error("expected wrapped error to match *ErrNotFound")
	}
}

// ---------------------------------------------------------------------------
// ErrSectionFetch
// ---------------------------------------------------------------------------

func TestErrSectionFetch(t *testing.T) {
	t.Parallel()
	err := &ErrSectionFetch{SectionID: 2, Err: context.DeadlineExceeded}

	if got, want := err.Error(), "fetch section 2: context deadline exceeded"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected Unwrap to expose the transport error")
	}
	if !errors.Is(err, &ErrSectionFetch{}) {
		t.Error("expected errors.Is to match *ErrSectionFetch")
	}
	if errors.Is(err, &ErrMalformedRecord{}) {
		t.Error("expected errors.Is not to match *ErrMalformedRecord")
	}
}

// ---------------------------------------------------------------------------
// ErrReconciliationMismatch
// ---------------------------------------------------------------------------

func TestErrReconciliationMismatch(t *testing.T) {
	t.Parallel()
	err := &ErrReconciliationMismatch{SpinID: "x", PickIndex: 3, MeasuredIndex: 4, PoolLen: 5}

	if got, want := err.Error(), "spin x landed on pool index 4 but drew 3 (pool of 5)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	var target *ErrReconciliationMismatch
	if !errors.As(fmt.Errorf("settle: %w", err), &target) {
		t.Fatal("expected errors.As to find *ErrReconciliationMismatch")
	}
	if target.MeasuredIndex != 4 {
		t.Errorf("MeasuredIndex = %d, want 4", target.MeasuredIndex)
	}
}

// ---------------------------------------------------------------------------
// ErrConnectivity
// ---------------------------------------------------------------------------

func TestErrConnectivity_Error(t *testing.T) {
	t.Parallel()
	cause := errors.New("boom")
	tests := []struct {
		name     string
		err      *ErrConnectivity
		expected string
	}{
		{"unreachable", &ErrConnectivity{Reason: ReasonUnreachable, Err: cause}, "cannot connect to media server: boom"},
		{"unauthorized", &ErrConnectivity{Reason: ReasonUnauthorized, Err: cause}, "invalid media server token"},
		{"other", &ErrConnectivity{Reason: ReasonOther, Err: cause}, "error validating credentials: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
			if !errors.Is(tt.err, cause) {
				t.Error("expected Unwrap to expose the cause")
			}
		})
	}
}

func TestSentinels_AreDistinct(t *testing.T) {
	t.Parallel()
	if errors.Is(ErrEmptyPool, ErrSuperseded) {
		t.Error("ErrEmptyPool must not match ErrSuperseded")
	}
	if !errors.Is(fmt.Errorf("draw: %w", ErrEmptyPool), ErrEmptyPool) {
		t.Error("expected wrapped ErrEmptyPool to match")
	}
}

func TestErrInvalidSettings(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("save: %w", &ErrInvalidSettings{Field: "selectedSections", Reason: "section 9 is not available"})

	if got := err.Error(); got != "save: invalid setting selectedSections: section 9 is not available" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, &ErrInvalidSettings{}) {
		t.Error("expected errors.Is to match ErrInvalidSettings")
	}
	var target *ErrInvalidSettings
	if !errors.As(err, &target) || target.Field != "selectedSections" {
		t.Errorf("errors.As = %+v", target)
	}
}
