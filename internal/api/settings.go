package api

import (
	"encoding/json"
	"net/http"

	"github.com/Belphemur/ReelRoulette/internal/settings"
)

// settingsResponse never echoes the token back.
type settingsResponse struct {
	settings.Settings
	AuthToken string `json:"authToken,omitempty"`
	HasToken  bool   `json:"hasToken"`
}

func toSettingsResponse(st settings.Settings) settingsResponse {
	return settingsResponse{Settings: st, HasToken: st.AuthToken != ""}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.settings.Load(r.Context(), profileOf(r))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(st))
}

// handlePutSettings applies the fields present in the body over the stored
// settings; absent fields keep their value.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	profile := profileOf(r)
	st, err := s.settings.Load(r.Context(), profile)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	saved, err := s.settings.Save(r.Context(), profile, st)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(saved))
}
