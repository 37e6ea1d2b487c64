package reveal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Belphemur/ReelRoulette/internal/apperrors"
	"github.com/Belphemur/ReelRoulette/internal/models"
)

type playResult struct {
	pick *models.Pick
	err  error
}

func startPlay(ctx context.Context, seq *Sequencer, pool models.SelectionPool, surface Surface) <-chan playResult {
	done := make(chan playResult, 1)
	go func() {
		pick, err := Play(ctx, seq, pool, surface)
		done <- playResult{pick, err}
	}()
	return done
}

// advanceUntil moves the fake clock one frame at a time until every channel has
// delivered a result.
func advanceUntil(t *testing.T, clock *clockwork.FakeClock, chans ...<-chan playResult) []playResult {
	t.Helper()
	results := make([]playResult, len(chans))
	pending := len(chans)
	got := make([]bool, len(chans))
	deadline := time.Now().Add(10 * time.Second)

	for pending > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("spins did not finish, %d pending", pending)
		}
		for i, ch := range chans {
			if got[i] {
				continue
			}
			select {
			case r := <-ch:
				results[i], got[i] = r, true
				pending--
			default:
			}
		}
		clock.Advance(DefaultFrameInterval)
		time.Sleep(50 * time.Microsecond)
	}
	return results
}

func TestPlay_RevealsDrawnItem(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClock()
	reporter := &recordingReporter{}
	seq := NewSequencer(fixedDraw(4), Options{Clock: clock, Defects: reporter})
	surface := NewGridSurface(GridOptions{SlotWidth: 150, Gap: 10, ViewportWidth: 1024, RoundPixels: true})
	pool := makePool(9)

	done := startPlay(t.Context(), seq, pool, surface)
	if err := clock.BlockUntilContext(t.Context(), 1); err != nil {
		t.Fatalf("BlockUntilContext: %v", err)
	}
	res := advanceUntil(t, clock, done)[0]

	if res.err != nil {
		t.Fatalf("Play: %v", res.err)
	}
	if res.pick.PoolIndex != 4 || res.pick.Item.ID != pool.At(4).ID {
		t.Errorf("pick = %d (%s), want 4 (%s)", res.pick.PoolIndex, res.pick.Item.ID, pool.At(4).ID)
	}
	if seq.State() != Revealed {
		t.Errorf("state = %s, want revealed", seq.State())
	}
	if surface.Frames() < 2 {
		t.Errorf("surface saw %d frames, want an animation", surface.Frames())
	}
	if reporter.count() != 0 {
		t.Errorf("%d mismatches reported", reporter.count())
	}
}

func TestPlay_SecondSpinSupersedesFirst(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClock()
	reporter := &recordingReporter{}
	seq := NewSequencer(fixedDraw(2), Options{Clock: clock, Defects: reporter})
	pool := makePool(6)

	first := NewGridSurface(GridOptions{SlotWidth: 200, ViewportWidth: 800})
	firstDone := startPlay(t.Context(), seq, pool, first)
	if err := clock.BlockUntilContext(t.Context(), 1); err != nil {
		t.Fatalf("BlockUntilContext: %v", err)
	}

	second := NewGridSurface(GridOptions{SlotWidth: 200, ViewportWidth: 800})
	secondDone := startPlay(t.Context(), seq, pool, second)
	if err := clock.BlockUntilContext(t.Context(), 2); err != nil {
		t.Fatalf("BlockUntilContext: %v", err)
	}

	results := advanceUntil(t, clock, firstDone, secondDone)

	if !errors.Is(results[0].err, apperrors.ErrSuperseded) {
		t.Errorf("first spin err = %v, want ErrSuperseded", results[0].err)
	}
	if results[0].pick != nil {
		t.Errorf("first spin revealed %+v", results[0].pick)
	}
	if results[1].err != nil {
		t.Fatalf("second spin: %v", results[1].err)
	}
	if results[1].pick.PoolIndex != 2 {
		t.Errorf("second spin pick = %d, want 2", results[1].pick.PoolIndex)
	}
	if seq.State() != Revealed {
		t.Errorf("state = %s, want revealed", seq.State())
	}
	if reporter.count() != 0 {
		t.Errorf("%d mismatches reported, want none", reporter.count())
	}
}

func TestPlay_ContextCancelledAborts(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClock()
	seq := NewSequencer(fixedDraw(0), Options{Clock: clock})
	ctx, cancel := context.WithCancel(t.Context())

	done := startPlay(ctx, seq, makePool(3), NewGridSurface(GridOptions{SlotWidth: 100, ViewportWidth: 300}))
	if err := clock.BlockUntilContext(t.Context(), 1); err != nil {
		t.Fatalf("BlockUntilContext: %v", err)
	}
	cancel()

	res := <-done
	if !errors.Is(res.err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", res.err)
	}
	if seq.State() != Idle {
		t.Errorf("state = %s, want idle", seq.State())
	}
}

type failingSurface struct {
	*GridSurface
	err error
}

func (f *failingSurface) Layout(context.Context) (Layout, error) {
	return Layout{}, f.err
}

func TestPlay_SurfaceErrorAborts(t *testing.T) {
	t.Parallel()
	seq := NewSequencer(fixedDraw(0), Options{Clock: clockwork.NewFakeClock()})
	boom := errors.New("surface detached")

	_, err := Play(t.Context(), seq, makePool(3), &failingSurface{GridSurface: NewGridSurface(GridOptions{SlotWidth: 10, ViewportWidth: 10}), err: boom})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
	if seq.State() != Idle {
		t.Errorf("state = %s, want idle", seq.State())
	}
}

func TestPlay_EmptyPool(t *testing.T) {
	t.Parallel()
	seq := NewSequencer(fixedDraw(0), Options{Clock: clockwork.NewFakeClock()})
	surface := NewGridSurface(GridOptions{SlotWidth: 10, ViewportWidth: 10})

	if _, err := Play(t.Context(), seq, makePool(0), surface); !errors.Is(err, apperrors.ErrEmptyPool) {
		t.Errorf("err = %v, want ErrEmptyPool", err)
	}
	if surface.Frames() != 0 {
		t.Errorf("surface saw %d frames for an empty pool", surface.Frames())
	}
}

func TestGridSurface(t *testing.T) {
	t.Parallel()
	surface := NewGridSurface(GridOptions{SlotWidth: 100.5, Gap: 10, ViewportWidth: 500, RoundPixels: true})

	if _, err := surface.Layout(t.Context()); err == nil {
		t.Error("Layout before RenderBelt should fail")
	}
	if err := surface.RenderBelt(t.Context(), makePool(3).Items()); err != nil {
		t.Fatalf("RenderBelt: %v", err)
	}
	layout, err := surface.Layout(t.Context())
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if layout.ItemWidth != 110.5 || layout.ViewportWidth != 500 {
		t.Errorf("layout = %+v, want pitch 110.5 in 500", layout)
	}

	_ = surface.SetOffset(20.6)
	if surface.Offset() != 21 {
		t.Errorf("Offset = %v, want rounded 21", surface.Offset())
	}
	slots, width, err := surface.MeasureSlots()
	if err != nil {
		t.Fatalf("MeasureSlots: %v", err)
	}
	if width != 500 || len(slots) != 3 {
		t.Fatalf("measured %d slots in %v, want 3 in 500", len(slots), width)
	}
	expected := []SlotBox{
		{Index: 0, Left: -21, Width: 101},
		{Index: 1, Left: 90, Width: 101},
		{Index: 2, Left: 200, Width: 101},
	}
	for i, slot := range slots {
		if slot != expected[i] {
			t.Errorf("slot %d = %+v, want %+v", i, slot, expected[i])
		}
	}
}
