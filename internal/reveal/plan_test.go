package reveal

import (
	"math"
	"testing"
	"time"
)

func TestTargetOffset(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		poolLen  int
		pick     int
		layout   Layout
		expected float64
	}{
		{"middle copy", 5, 3, Layout{ItemWidth: 320, ViewportWidth: 960}, 2240},
		{"first item", 5, 0, Layout{ItemWidth: 320, ViewportWidth: 960}, 1280},
		{"viewport wider than the belt copy", 1, 0, Layout{ItemWidth: 200, ViewportWidth: 1000}, -200},
		{"viewport narrower than a slot", 3, 2, Layout{ItemWidth: 300, ViewportWidth: 100}, 1600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TargetOffset(tt.poolLen, tt.pick, tt.layout); got != tt.expected {
				t.Errorf("TargetOffset(%d, %d, %+v) = %v, want %v", tt.poolLen, tt.pick, tt.layout, got, tt.expected)
			}
		})
	}
}

func TestEaseOutCubic(t *testing.T) {
	t.Parallel()
	if got := EaseOutCubic(0); got != 0 {
		t.Errorf("EaseOutCubic(0) = %v, want 0", got)
	}
	if got := EaseOutCubic(1); got != 1 {
		t.Errorf("EaseOutCubic(1) = %v, want 1", got)
	}
	if got := EaseOutCubic(-0.5); got != 0 {
		t.Errorf("EaseOutCubic(-0.5) = %v, want clamped 0", got)
	}
	if got := EaseOutCubic(2); got != 1 {
		t.Errorf("EaseOutCubic(2) = %v, want clamped 1", got)
	}
	if got := EaseOutCubic(math.NaN()); got != 0 {
		t.Errorf("EaseOutCubic(NaN) = %v, want 0", got)
	}

	prev := 0.0
	for i := 1; i <= 1000; i++ {
		v := EaseOutCubic(float64(i) / 1000)
		if v < prev {
			t.Fatalf("EaseOutCubic not monotonic at %d: %v < %v", i, v, prev)
		}
		if v > 1 {
			t.Fatalf("EaseOutCubic overshoots at %d: %v", i, v)
		}
		prev = v
	}
}

func TestPlan_OffsetAt(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 1, 1, 20, 0, 0, 0, time.UTC)
	plan := Plan{StartOffset: 100, TargetOffset: 2240.3, Duration: 5 * time.Second, StartedAt: start}

	if got := plan.OffsetAt(start); got != 100 {
		t.Errorf("OffsetAt(start) = %v, want 100", got)
	}
	if got := plan.OffsetAt(start.Add(-time.Second)); got != 100 {
		t.Errorf("OffsetAt(before start) = %v, want 100", got)
	}
	if got := plan.OffsetAt(plan.EndsAt()); got != plan.TargetOffset {
		t.Errorf("OffsetAt(end) = %v, want exactly %v", got, plan.TargetOffset)
	}
	if got := plan.OffsetAt(plan.EndsAt().Add(time.Hour)); got != plan.TargetOffset {
		t.Errorf("OffsetAt(after end) = %v, want exactly %v", got, plan.TargetOffset)
	}

	// Ease-out covers most of the distance early.
	mid := plan.OffsetAt(start.Add(plan.Duration / 2))
	if want := 100 + (2240.3-100)*0.875; math.Abs(mid-want) > 1e-9 {
		t.Errorf("OffsetAt(half) = %v, want %v", mid, want)
	}
}

func TestPlan_Remaining(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 1, 1, 20, 0, 0, 0, time.UTC)
	plan := Plan{Duration: 4 * time.Second, StartedAt: start}

	if got := plan.Remaining(start.Add(time.Second)); got != 3*time.Second {
		t.Errorf("Remaining = %v, want 3s", got)
	}
	if got := plan.Remaining(start.Add(time.Minute)); got != 0 {
		t.Errorf("Remaining after end = %v, want 0", got)
	}
}

func TestPlan_ZeroDurationIsComplete(t *testing.T) {
	t.Parallel()
	plan := Plan{StartOffset: 5, TargetOffset: 50}
	if f := plan.Fraction(time.Now()); f != 1 {
		t.Errorf("Fraction = %v, want 1", f)
	}
	if got := plan.OffsetAt(time.Now()); got != 50 {
		t.Errorf("OffsetAt = %v, want 50", got)
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()
	tests := map[State]string{
		Idle:      "idle",
		Spinning:  "spinning",
		Settling:  "settling",
		Revealed:  "revealed",
		State(42): "state(42)",
	}
	for state, expected := range tests {
		if got := state.String(); got != expected {
			t.Errorf("State(%d).String() = %q, want %q", int(state), got, expected)
		}
		text, _ := state.MarshalText()
		if string(text) != expected {
			t.Errorf("State(%d).MarshalText() = %q, want %q", int(state), text, expected)
		}
	}
}

func TestState_UnmarshalText(t *testing.T) {
	t.Parallel()
	var s State
	if err := s.UnmarshalText([]byte("settling")); err != nil || s != Settling {
		t.Errorf("UnmarshalText(settling) = %v, %v", s, err)
	}
	if err := s.UnmarshalText([]byte("flying")); err == nil {
		t.Error("expected error for an unknown state")
	}
}
