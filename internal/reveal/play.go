package reveal

import (
	"context"
	"fmt"

	"github.com/Belphemur/ReelRoulette/internal/config"
	"github.com/Belphemur/ReelRoulette/internal/models"
)

// Play runs one complete spin of pool against surface: reserve, begin, render,
// lay out, animate frame by frame on the sequencer's clock, then measure and
// settle. The frame loop has one suspension point, the ticker receive; each
// step after it starts with the supersession check inside Advance.
//
// A spin superseded by a newer one returns apperrors.ErrSuperseded. A spin whose
// context is cancelled is aborted and returns the context error.
func Play(ctx context.Context, seq *Sequencer, pool models.SelectionPool, surface Surface) (*models.Pick, error) {
	return PlayTicket(ctx, seq, seq.Reserve(), pool, surface)
}

// PlayTicket is Play for a ticket reserved earlier, typically before an
// aggregation whose result may arrive after a newer request.
func PlayTicket(ctx context.Context, seq *Sequencer, ticket Ticket, pool models.SelectionPool, surface Surface) (*models.Pick, error) {
	logger := config.GetLogger()

	start, err := seq.Begin(ticket, pool)
	if err != nil {
		return nil, err
	}
	spinID := start.SpinID

	fail := func(step string, err error) (*models.Pick, error) {
		seq.Abort(spinID)
		return nil, fmt.Errorf("%s: %w", step, err)
	}

	if err := surface.RenderBelt(ctx, start.Belt); err != nil {
		return fail("render belt", err)
	}
	layout, err := surface.Layout(ctx)
	if err != nil {
		return fail("layout", err)
	}
	plan, err := seq.Layout(spinID, layout)
	if err != nil {
		return fail("plan", err)
	}
	if err := surface.SetOffset(plan.StartOffset); err != nil {
		return fail("set offset", err)
	}

	ticker := seq.Clock().NewTicker(seq.FrameInterval())
	defer ticker.Stop()

	frames := 0
	for {
		select {
		case <-ctx.Done():
			seq.Abort(spinID)
			return nil, ctx.Err()
		case now := <-ticker.Chan():
			frame, err := seq.Advance(spinID, now)
			if err != nil {
				return nil, err
			}
			frames++
			if err := surface.SetOffset(frame.Offset); err != nil {
				return fail("set offset", err)
			}
			if !frame.Done {
				continue
			}
		}
		break
	}

	slots, viewportWidth, err := surface.MeasureSlots()
	if err != nil {
		return fail("measure", err)
	}

	logger.Debug().Str("spin_id", spinID).Int("frames", frames).Msg("Belt stopped, reconciling")
	return seq.Settle(spinID, slots, viewportWidth)
}
