package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/Belphemur/ReelRoulette/internal/apperrors"
	"github.com/Belphemur/ReelRoulette/internal/reveal"
)

// errorResponse is the body of every non-2xx answer.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errCatalogUnavailable = errors.New("none of the selected sections could be fetched")

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeFailure maps err to a status and writes it. Server errors are logged on
// the request logger.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Str("code", code).Msg("Request failed")
	}
	writeError(w, status, code, err.Error())
}

// statusFor maps the errors handlers can see to an HTTP status and a stable code.
func statusFor(err error) (int, string) {
	var (
		connectivity *apperrors.ErrConnectivity
		mismatch     *apperrors.ErrReconciliationMismatch
		invalid      *apperrors.ErrInvalidSettings
		notFound     *apperrors.ErrNotFound
		bad          *errBadRequest
	)
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, apperrors.ErrMissingCredentials):
		return http.StatusBadRequest, "missing_credentials"
	case errors.As(err, &invalid):
		return http.StatusBadRequest, "invalid_settings"
	case errors.Is(err, reveal.ErrInvalidLayout):
		return http.StatusBadRequest, "invalid_layout"
	case errors.Is(err, apperrors.ErrEmptyPool):
		return http.StatusNotFound, "empty_pool"
	case errors.As(err, &notFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrSuperseded):
		return http.StatusConflict, "superseded"
	case errors.Is(err, reveal.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.As(err, &mismatch):
		return http.StatusConflict, "reconciliation_mismatch"
	case errors.Is(err, errCatalogUnavailable):
		return http.StatusServiceUnavailable, "catalog_unavailable"
	case errors.As(err, &connectivity):
		switch connectivity.Reason {
		case apperrors.ReasonUnauthorized:
			return http.StatusUnauthorized, string(apperrors.ReasonUnauthorized)
		case apperrors.ReasonUnreachable:
			return http.StatusServiceUnavailable, string(apperrors.ReasonUnreachable)
		default:
			return http.StatusInternalServerError, string(apperrors.ReasonOther)
		}
	default:
		return http.StatusInternalServerError, "internal"
	}
}
