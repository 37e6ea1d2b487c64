package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Belphemur/ReelRoulette/internal/apperrors"
	"github.com/Belphemur/ReelRoulette/internal/config"
	"github.com/Belphemur/ReelRoulette/internal/links"
	"github.com/Belphemur/ReelRoulette/internal/models"
)

type validateRequest struct {
	ServerAddress string `json:"serverAddress"`
	AuthToken     string `json:"authToken"`
}

type validateResponse struct {
	Valid    bool                   `json:"valid"`
	Identity *models.ServerIdentity `json:"identity,omitempty"`
	Reason   string                 `json:"reason,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// beltItem is a catalog item with its strip poster.
type beltItem struct {
	models.CatalogItem
	PosterURL string `json:"posterUrl,omitempty"`
}

type itemsResponse struct {
	Items          []beltItem `json:"items"`
	FailedSections []int      `json:"failedSections,omitempty"`
}

type randomResponse struct {
	models.Pick
	ServerID        string `json:"serverId,omitempty"`
	Duration        string `json:"duration,omitempty"`
	CriticPercent   int    `json:"criticPercent,omitempty"`
	AudiencePercent int    `json:"audiencePercent,omitempty"`
}

// sectionStatus is an allow-listed section annotated with what the server
// itself advertises. Missing is only set when the server list was readable.
type sectionStatus struct {
	models.SectionCount
	ServerTitle string `json:"serverTitle,omitempty"`
	Missing     bool   `json:"missing,omitempty"`
}

// handleValidate checks credentials from the body, falling back to the request
// credentials when the body leaves them out.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var body validateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	req, err := s.resolve(r.Context(), r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	creds := req.creds
	if body.ServerAddress != "" {
		creds.ServerAddress = body.ServerAddress
	}
	if body.AuthToken != "" {
		creds.AuthToken = body.AuthToken
	}
	if !creds.Complete() {
		writeError(w, http.StatusBadRequest, "missing_credentials", "server address and token are required")
		return
	}

	identity, err := s.client.Validate(r.Context(), creds)
	if err != nil {
		status, code := statusFor(err)
		writeJSON(w, status, validateResponse{Valid: false, Reason: code, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: true, Identity: identity})
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	req, err := s.resolve(r.Context(), r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	counts, err := s.aggregator.SectionCounts(r.Context(), req.creds)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sections": s.annotateSections(r.Context(), req.creds, counts)})
}

// annotateSections joins the allow-list counts with the server's own section
// list. The server list is advisory, so failing to read it keeps the counts.
func (s *Server) annotateSections(ctx context.Context, creds models.Credentials, counts []models.SectionCount) []sectionStatus {
	out := make([]sectionStatus, len(counts))
	for i, count := range counts {
		out[i] = sectionStatus{SectionCount: count}
	}

	advertised, err := s.client.ListSections(ctx, creds)
	if err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Msg("Server section list unavailable")
		return out
	}
	titles := make(map[int]string, len(advertised))
	for _, section := range advertised {
		titles[section.ID] = section.Title
	}
	for i := range out {
		title, ok := titles[out[i].SectionID]
		out[i].ServerTitle = title
		out[i].Missing = !ok
	}
	return out
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	req, err := s.resolve(r.Context(), r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	result, err := s.aggregator.Aggregate(r.Context(), req.creds, req.sections)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	builder, err := links.NewBuilder(req.creds, nil)
	if err != nil {
		writeFailure(w, r, &errBadRequest{msg: err.Error()})
		return
	}

	resp := itemsResponse{Items: beltItems(result.Pool.Items(), builder)}
	for _, failed := range result.FailedSections() {
		resp.FailedSections = append(resp.FailedSections, failed.SectionID)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRandom draws one item without any animation.
func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	req, err := s.resolve(r.Context(), r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	result, err := s.aggregator.Aggregate(r.Context(), req.creds, req.sections)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if err := poolError(result); err != nil {
		writeFailure(w, r, err)
		return
	}

	builder, identity, err := s.linkBuilder(r.Context(), req.creds)
	if err != nil {
		writeFailure(w, r, &errBadRequest{msg: err.Error()})
		return
	}
	pick, err := s.selector.Draw(result.Pool, builder, links.PosterCard)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	resp := randomResponse{
		Pick:            *pick,
		Duration:        pick.Item.FormattedDuration(),
		CriticPercent:   pick.Item.CriticPercent(),
		AudiencePercent: pick.Item.AudiencePercent(),
	}
	if identity != nil {
		resp.ServerID = identity.MachineIdentifier
	}
	writeJSON(w, http.StatusOK, resp)
}

// poolError separates an empty pool from a catalog that could not be reached.
func poolError(result *models.AggregateResult) error {
	if !result.Empty() {
		return nil
	}
	if len(result.Sections) > 0 && !result.AnySucceeded() {
		return errCatalogUnavailable
	}
	return apperrors.ErrEmptyPool
}

// linkBuilder builds the links of creds. A missing identity only degrades the
// fallback URL, so its failure is logged and ignored.
func (s *Server) linkBuilder(ctx context.Context, creds models.Credentials) (*links.Builder, *models.ServerIdentity, error) {
	identity, err := s.client.Identity(ctx, creds)
	if err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Msg("Server identity unavailable, fallback links omit the machine id")
		identity = nil
	}
	builder, err := links.NewBuilder(creds, identity)
	return builder, identity, err
}

func beltItems(items []models.CatalogItem, builder *links.Builder) []beltItem {
	out := make([]beltItem, len(items))
	for i, item := range items {
		out[i] = beltItem{CatalogItem: item, PosterURL: builder.PosterURL(item, links.PosterStrip)}
	}
	return out
}
