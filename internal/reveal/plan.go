package reveal

import (
	"math"
	"time"
)

// Layout is what the rendering surface reports once the belt is laid out.
type Layout struct {
	ItemWidth     float64 `json:"itemWidth"`     // Horizontal pitch of one belt slot, in pixels
	ViewportWidth float64 `json:"viewportWidth"` // Visible width of the belt, in pixels
}

// Plan is the motion of one spin.
type Plan struct {
	StartOffset  float64
	TargetOffset float64
	Duration     time.Duration
	StartedAt    time.Time
}

// TargetOffset is the belt offset that centres the middle-copy occurrence of
// pickIndex in the viewport.
func TargetOffset(poolLen, pickIndex int, l Layout) float64 {
	w := l.ItemWidth
	return float64(poolLen+pickIndex)*w + w/2 - l.ViewportWidth/2
}

// EaseOutCubic maps an elapsed fraction in [0, 1] to a progress fraction. It is
// monotonic, starts at 0, ends at exactly 1, and never overshoots.
func EaseOutCubic(f float64) float64 {
	f = clamp01(f)
	inv := 1 - f
	return 1 - inv*inv*inv
}

// Fraction is the elapsed fraction of the plan at now, clamped to [0, 1].
func (p Plan) Fraction(now time.Time) float64 {
	if p.Duration <= 0 {
		return 1
	}
	return clamp01(float64(now.Sub(p.StartedAt)) / float64(p.Duration))
}

// OffsetAt is the belt offset at now. Once the duration has elapsed it is
// exactly TargetOffset, with no floating point residue.
func (p Plan) OffsetAt(now time.Time) float64 {
	f := p.Fraction(now)
	if f >= 1 {
		return p.TargetOffset
	}
	return p.StartOffset + (p.TargetOffset-p.StartOffset)*EaseOutCubic(f)
}

// EndsAt is when the motion reaches its target.
func (p Plan) EndsAt() time.Time {
	return p.StartedAt.Add(p.Duration)
}

// Remaining is how long the motion still runs at now, never negative.
func (p Plan) Remaining(now time.Time) time.Duration {
	return max(0, p.EndsAt().Sub(now))
}

func clamp01(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
