package reveal

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Belphemur/ReelRoulette/internal/apperrors"
	"github.com/Belphemur/ReelRoulette/internal/config"
	"github.com/Belphemur/ReelRoulette/internal/defects"
	"github.com/Belphemur/ReelRoulette/internal/metrics"
	"github.com/Belphemur/ReelRoulette/internal/models"
)

// Default motion parameters.
const (
	DefaultMinDuration   = 4 * time.Second
	DefaultMaxDuration   = 6 * time.Second
	DefaultFrameInterval = 16 * time.Millisecond
)

// Drawer performs the authoritative draw for a spin.
type Drawer func(pool models.SelectionPool) (*models.Pick, error)

// Rand is the source of uniform floats in [0, 1) used for the start offset and
// the duration. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// DefectReporter records internal-consistency faults.
type DefectReporter interface {
	ReportMismatch(err *apperrors.ErrReconciliationMismatch)
}

// Options configures a Sequencer. Zero values select the defaults.
type Options struct {
	Clock         clockwork.Clock
	Rand          Rand
	MinDuration   time.Duration
	MaxDuration   time.Duration
	FrameInterval time.Duration
	Defects       DefectReporter
}

type globalRand struct{}

func (globalRand) Float64() float64 {
	return rand.Float64()
}

// Ticket is a reservation for the next spin. Reserving supersedes whatever spin
// was running; Begin only accepts the most recent ticket.
type Ticket struct {
	SpinID     string
	generation uint64
}

// Start is what Begin hands to the renderer: the spin id and the belt to render.
// The Pick is deliberately absent until the spin is revealed.
type Start struct {
	SpinID string
	Belt   []models.CatalogItem
}

// Frame is the result of one animation step.
type Frame struct {
	Offset   float64
	Fraction float64
	Done     bool
}

// SlotBox is the measured horizontal box of one rendered belt slot, relative to
// the left edge of the viewport.
type SlotBox struct {
	Index int     `json:"index"` // Position on the belt, 0 <= Index < BeltCopies*poolLen
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// Center is the horizontal centre of the box.
func (b SlotBox) Center() float64 {
	return b.Left + b.Width/2
}

// Snapshot is a read-only view of the sequencer.
type Snapshot struct {
	SpinID  string
	State   State
	PoolLen int
	Plan    *Plan
	Offset  float64
	Pick    *models.Pick // Only set once Revealed
}

type spin struct {
	id     string
	state  State
	pool   models.SelectionPool
	pick   *models.Pick
	plan   *Plan
	offset float64
}

// Sequencer is the reveal state machine of one view. It is safe for concurrent
// use; every method takes the same mutex.
type Sequencer struct {
	mu            sync.Mutex
	clock         clockwork.Clock
	rng           Rand
	draw          Drawer
	defects       DefectReporter
	minDuration   time.Duration
	maxDuration   time.Duration
	frameInterval time.Duration

	generation uint64
	current    *spin
}

// NewSequencer creates an idle sequencer that draws with draw.
func NewSequencer(draw Drawer, opts Options) *Sequencer {
	s := &Sequencer{
		clock:         opts.Clock,
		rng:           opts.Rand,
		draw:          draw,
		defects:       opts.Defects,
		minDuration:   opts.MinDuration,
		maxDuration:   opts.MaxDuration,
		frameInterval: opts.FrameInterval,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.defects == nil {
		s.defects = defects.NewLogOnlyReporter()
	}
	if s.rng == nil {
		s.rng = globalRand{}
	}
	if s.minDuration <= 0 {
		s.minDuration = DefaultMinDuration
	}
	if s.maxDuration < s.minDuration {
		s.maxDuration = max(DefaultMaxDuration, s.minDuration)
	}
	if s.frameInterval <= 0 {
		s.frameInterval = DefaultFrameInterval
	}
	return s
}

// Clock returns the clock frames are timed with.
func (s *Sequencer) Clock() clockwork.Clock {
	return s.clock
}

// FrameInterval returns the frame period used by Play.
func (s *Sequencer) FrameInterval() time.Duration {
	return s.frameInterval
}

// Reserve supersedes any spin in flight and returns the ticket for the next one.
// A revealed pick is discarded as well: a new request is a re-roll.
func (s *Sequencer) Reserve() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && (s.current.state == Spinning || s.current.state == Settling) {
		metrics.SpinsTotal.WithLabelValues(metrics.OutcomeSuperseded).Inc()
		logger := config.GetLogger()
		logger.Debug().Str("spin_id", s.current.id).Str("state", s.current.state.String()).Msg("Spin superseded")
	}
	s.current = nil
	s.generation++
	return Ticket{SpinID: uuid.NewString(), generation: s.generation}
}

// Begin enters Spinning for the ticket's spin: it lays the pool out three times
// on the belt and draws the Pick before any layout exists. It returns
// apperrors.ErrSuperseded when a newer ticket was reserved in the meantime, and
// apperrors.ErrEmptyPool for an empty pool.
func (s *Sequencer) Begin(ticket Ticket, pool models.SelectionPool) (*Start, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger := config.GetLogger()

	if ticket.generation != s.generation || s.current != nil {
		return nil, apperrors.ErrSuperseded
	}
	if pool.Empty() {
		metrics.SpinsTotal.WithLabelValues(metrics.OutcomeEmpty).Inc()
		return nil, apperrors.ErrEmptyPool
	}

	items := pool.Items()
	belt := make([]models.CatalogItem, 0, BeltCopies*len(items))
	for range BeltCopies {
		belt = append(belt, items...)
	}

	pick, err := s.draw(pool)
	if err != nil {
		return nil, fmt.Errorf("draw: %w", err)
	}
	if pick == nil || pick.PoolIndex < 0 || pick.PoolIndex >= pool.Len() {
		return nil, fmt.Errorf("draw returned an index outside a pool of %d", pool.Len())
	}

	s.current = &spin{
		id:    ticket.SpinID,
		state: Spinning,
		pool:  pool,
		pick:  pick,
	}

	logger.Info().Str("spin_id", ticket.SpinID).Int("pool_size", pool.Len()).Int("belt_slots", len(belt)).Msg("Spin started")
	return &Start{SpinID: ticket.SpinID, Belt: belt}, nil
}

// Layout computes the motion once the surface knows its real widths. The target
// derives only from the pick fixed in Begin; the start offset and the duration
// are random so the spin does not look predetermined.
func (s *Sequencer) Layout(spinID string, l Layout) (Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, err := s.spinLocked(spinID)
	if err != nil {
		return Plan{}, err
	}
	if sp.state != Spinning || sp.plan != nil {
		return Plan{}, fmt.Errorf("%w: layout in %s", ErrInvalidState, sp.state)
	}
	if !(l.ItemWidth > 0) || !(l.ViewportWidth > 0) || math.IsInf(l.ItemWidth, 0) || math.IsInf(l.ViewportWidth, 0) {
		return Plan{}, ErrInvalidLayout
	}

	n := sp.pool.Len()
	span := s.maxDuration - s.minDuration
	plan := Plan{
		StartOffset:  s.rng.Float64() * float64(n) * l.ItemWidth,
		TargetOffset: TargetOffset(n, sp.pick.PoolIndex, l),
		Duration:     s.minDuration + time.Duration(s.rng.Float64()*float64(span)),
		StartedAt:    s.clock.Now(),
	}
	sp.plan = &plan
	sp.offset = plan.StartOffset

	logger := config.GetLogger()
	logger.Debug().
		Str("spin_id", spinID).
		Float64("start_offset", plan.StartOffset).
		Float64("target_offset", plan.TargetOffset).
		Dur("duration", plan.Duration).
		Msg("Spin planned")
	return plan, nil
}

// Advance is one frame step. Supersession is checked first; then the belt
// position for now is computed. When the motion completes the position is
// exactly the target and the spin moves to Settling.
func (s *Sequencer) Advance(spinID string, now time.Time) (Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, err := s.spinLocked(spinID)
	if err != nil {
		return Frame{}, err
	}
	switch {
	case sp.state == Settling:
		return Frame{Offset: sp.offset, Fraction: 1, Done: true}, nil
	case sp.state != Spinning || sp.plan == nil:
		return Frame{}, fmt.Errorf("%w: advance in %s", ErrInvalidState, sp.state)
	}

	f := sp.plan.Fraction(now)
	sp.offset = sp.plan.OffsetAt(now)
	if f >= 1 {
		sp.state = Settling
		logger := config.GetLogger()
		logger.Debug().Str("spin_id", spinID).Float64("offset", sp.offset).Msg("Spin settling")
	}
	return Frame{Offset: sp.offset, Fraction: f, Done: f >= 1}, nil
}

// Settle reconciles the measured belt with the draw. The slot whose centre is
// closest to the viewport centre is mapped back to a pool index; it must equal
// the index drawn in Begin. A mismatch is a defect: it is reported, the spin is
// aborted to Idle and no pick is exposed.
func (s *Sequencer) Settle(spinID string, slots []SlotBox, viewportWidth float64) (*models.Pick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger := config.GetLogger()

	sp, err := s.spinLocked(spinID)
	if err != nil {
		return nil, err
	}
	if sp.state == Revealed {
		return sp.pick, nil
	}
	if sp.state != Settling {
		return nil, fmt.Errorf("%w: settle in %s", ErrInvalidState, sp.state)
	}

	n := sp.pool.Len()
	measured := MeasuredIndex(slots, viewportWidth, n)
	if measured != sp.pick.PoolIndex {
		mismatch := &apperrors.ErrReconciliationMismatch{
			SpinID:        spinID,
			PickIndex:     sp.pick.PoolIndex,
			MeasuredIndex: measured,
			PoolLen:       n,
		}
		metrics.ReconciliationsTotal.WithLabelValues("mismatch").Inc()
		metrics.SpinsTotal.WithLabelValues(metrics.OutcomeAborted).Inc()
		logger.Debug().Str("spin_id", spinID).Int("slots", len(slots)).Float64("viewport_width", viewportWidth).Msg("Measured belt disagrees with the draw")
		s.defects.ReportMismatch(mismatch)
		s.current = nil
		return nil, mismatch
	}

	sp.state = Revealed
	sp.plan = nil
	metrics.ReconciliationsTotal.WithLabelValues("match").Inc()
	metrics.SpinsTotal.WithLabelValues(metrics.OutcomeRevealed).Inc()
	logger.Info().Str("spin_id", spinID).Int("pool_index", sp.pick.PoolIndex).Str("title", sp.pick.Item.Title).Msg("Spin revealed")
	return sp.pick, nil
}

// Abort returns an unrevealed spin to Idle. It is a no-op for any other spin.
func (s *Sequencer) Abort(spinID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.id != spinID || s.current.state == Revealed {
		return
	}
	metrics.SpinsTotal.WithLabelValues(metrics.OutcomeAborted).Inc()
	logger := config.GetLogger()
	logger.Debug().Str("spin_id", spinID).Str("state", s.current.state.String()).Msg("Spin aborted")
	s.current = nil
}

// State returns the state of the current spin, Idle when there is none.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Idle
	}
	return s.current.state
}

// Snapshot returns a copy of the current spin.
func (s *Sequencer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Snapshot{State: Idle}
	}
	snap := Snapshot{
		SpinID:  s.current.id,
		State:   s.current.state,
		PoolLen: s.current.pool.Len(),
		Offset:  s.current.offset,
	}
	if s.current.plan != nil {
		plan := *s.current.plan
		snap.Plan = &plan
	}
	if s.current.state == Revealed {
		pick := *s.current.pick
		snap.Pick = &pick
	}
	return snap
}

// spinLocked returns the current spin if it is spinID. Any other id belongs to a
// spin that was superseded or aborted.
func (s *Sequencer) spinLocked(spinID string) (*spin, error) {
	if s.current == nil || s.current.id != spinID {
		return nil, apperrors.ErrSuperseded
	}
	return s.current, nil
}

// MeasuredIndex maps the slot closest to the viewport centre back to a pool
// index. Ties go to the first slot in measurement order. It returns -1 when
// there is nothing to measure.
func MeasuredIndex(slots []SlotBox, viewportWidth float64, poolLen int) int {
	if len(slots) == 0 || poolLen <= 0 {
		return -1
	}
	centre := viewportWidth / 2
	best := 0
	bestDist := math.Inf(1)
	for i, slot := range slots {
		if d := math.Abs(slot.Center() - centre); d < bestDist {
			best, bestDist = i, d
		}
	}
	idx := slots[best].Index % poolLen
	if idx < 0 {
		idx += poolLen
	}
	return idx
}
