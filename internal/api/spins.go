package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/Belphemur/ReelRoulette/internal/apperrors"
	"github.com/Belphemur/ReelRoulette/internal/links"
	"github.com/Belphemur/ReelRoulette/internal/models"
	"github.com/Belphemur/ReelRoulette/internal/reveal"
)

type spinResponse struct {
	SpinID string     `json:"spinId"`
	State  string     `json:"state"`
	Belt   []beltItem `json:"belt"`
}

type planResponse struct {
	SpinID       string    `json:"spinId"`
	StartOffset  float64   `json:"startOffset"`
	TargetOffset float64   `json:"targetOffset"`
	DurationMs   int64     `json:"durationMs"`
	StartedAt    time.Time `json:"startedAt"`
	EndsAt       time.Time `json:"endsAt"`
}

type settleRequest struct {
	Slots         []reveal.SlotBox `json:"slots"`
	ViewportWidth float64          `json:"viewportWidth"`
}

type stillMovingResponse struct {
	errorResponse
	RemainingMs int64 `json:"remainingMs"`
}

type snapshotResponse struct {
	SpinID      string       `json:"spinId"`
	State       reveal.State `json:"state"`
	PoolSize    int          `json:"poolSize"`
	Offset      float64      `json:"offset"`
	RemainingMs int64        `json:"remainingMs"`
	Pick        *models.Pick `json:"pick,omitempty"`
}

// handleCreateSpin reserves the view's next spin before aggregating, so a spin
// requested while this one is still fetching wins and this one is discarded.
func (s *Server) handleCreateSpin(w http.ResponseWriter, r *http.Request) {
	req, err := s.resolve(r.Context(), r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	viewID := viewOf(r)
	seq := s.views.Get(viewID)
	ticket := seq.Reserve()

	result, err := s.aggregator.Aggregate(r.Context(), req.creds, req.sections)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if err := poolError(result); err != nil {
		writeFailure(w, r, err)
		return
	}
	builder, _, err := s.linkBuilder(r.Context(), req.creds)
	if err != nil {
		writeFailure(w, r, &errBadRequest{msg: err.Error()})
		return
	}

	start, err := seq.Begin(ticket, result.Pool)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	s.views.Bind(start.SpinID, viewID)
	s.spinLinks.Add(start.SpinID, builder)

	hlog.FromRequest(r).Debug().Str("spin_id", start.SpinID).Str("view_id", viewID).Int("belt_slots", len(start.Belt)).Msg("Spin created")
	writeJSON(w, http.StatusCreated, spinResponse{
		SpinID: start.SpinID,
		State:  reveal.Spinning.String(),
		Belt:   beltItems(start.Belt, builder),
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	spinID, seq, ok := s.spinFromPath(w, r)
	if !ok {
		return
	}
	var layout reveal.Layout
	if err := json.NewDecoder(r.Body).Decode(&layout); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}

	plan, err := seq.Layout(spinID, layout)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, planResponse{
		SpinID:       spinID,
		StartOffset:  plan.StartOffset,
		TargetOffset: plan.TargetOffset,
		DurationMs:   plan.Duration.Milliseconds(),
		StartedAt:    plan.StartedAt,
		EndsAt:       plan.EndsAt(),
	})
}

// handleSettle reconciles the browser's measured belt. The motion is timed on
// the server clock; a surface may report a little early, up to the settle
// tolerance.
func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	spinID, seq, ok := s.spinFromPath(w, r)
	if !ok {
		return
	}
	var body settleRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}

	if snap := seq.Snapshot(); snap.SpinID == spinID && snap.State == reveal.Revealed {
		writeJSON(w, http.StatusOK, s.withLinks(spinID, snap.Pick))
		return
	}

	now := s.clock.Now()
	frame, err := seq.Advance(spinID, now.Add(s.settleTolerance))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if !frame.Done {
		var remaining time.Duration
		if snap := seq.Snapshot(); snap.Plan != nil {
			remaining = snap.Plan.Remaining(now)
		}
		writeJSON(w, http.StatusConflict, stillMovingResponse{
			errorResponse: errorResponse{Error: "spin is still moving", Code: "still_moving"},
			RemainingMs:   remaining.Milliseconds(),
		})
		return
	}

	pick, err := seq.Settle(spinID, body.Slots, body.ViewportWidth)
	if err != nil {
		s.spinLinks.Remove(spinID)
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.withLinks(spinID, pick))
}

func (s *Server) handleGetSpin(w http.ResponseWriter, r *http.Request) {
	spinID, seq, ok := s.spinFromPath(w, r)
	if !ok {
		return
	}
	snap := seq.Snapshot()
	if snap.SpinID != spinID {
		writeFailure(w, r, apperrors.ErrSuperseded)
		return
	}
	resp := snapshotResponse{
		SpinID:   snap.SpinID,
		State:    snap.State,
		PoolSize: snap.PoolLen,
		Offset:   snap.Offset,
	}
	if snap.Plan != nil {
		resp.RemainingMs = snap.Plan.Remaining(s.clock.Now()).Milliseconds()
	}
	if snap.Pick != nil {
		resp.Pick = s.withLinks(spinID, snap.Pick)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAbortSpin(w http.ResponseWriter, r *http.Request) {
	spinID, seq, ok := s.spinFromPath(w, r)
	if !ok {
		return
	}
	seq.Abort(spinID)
	w.WriteHeader(http.StatusNoContent)
}

// spinFromPath finds the sequencer the spin in the path belongs to.
func (s *Server) spinFromPath(w http.ResponseWriter, r *http.Request) (string, *reveal.Sequencer, bool) {
	spinID := chi.URLParam(r, "spinID")
	seq, ok := s.views.BySpin(spinID)
	if !ok {
		writeFailure(w, r, apperrors.NewSpinNotFoundError(spinID))
		return "", nil, false
	}
	return spinID, seq, true
}

// withLinks derives the URLs of a revealed pick.
func (s *Server) withLinks(spinID string, pick *models.Pick) *models.Pick {
	builder, ok := s.spinLinks.Get(spinID)
	if !ok {
		return pick
	}
	return builder.Pick(pick.Item, pick.PoolIndex, links.PosterCard)
}
