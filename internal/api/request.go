package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Belphemur/ReelRoulette/internal/models"
	"github.com/Belphemur/ReelRoulette/internal/settings"
)

const (
	headerServer  = "X-Plex-Server"
	headerToken   = "X-Plex-Token"
	headerProfile = "X-Profile"
	headerView    = "X-View-Id"
)

// profileOf names the settings profile of a request.
func profileOf(r *http.Request) string {
	if p := strings.TrimSpace(r.Header.Get(headerProfile)); p != "" {
		return p
	}
	return settings.DefaultProfile
}

// viewOf names the view a spin runs in; one view has at most one live spin.
func viewOf(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(headerView)); v != "" {
		return v
	}
	return profileOf(r)
}

// resolved is everything a library request needs.
type resolved struct {
	creds    models.Credentials
	sections []int
}

// resolve reads credentials from the query or headers, falling back to the
// stored settings of the profile, and the section list from ?sections= with the
// same fallback.
func (s *Server) resolve(ctx context.Context, r *http.Request) (resolved, error) {
	stored, err := s.settings.Load(ctx, profileOf(r))
	if err != nil {
		return resolved{}, err
	}

	out := resolved{creds: stored.Credentials(), sections: stored.SelectedSections}
	if v := firstNonEmpty(r.URL.Query().Get("server"), r.Header.Get(headerServer)); v != "" {
		out.creds.ServerAddress = v
	}
	if v := firstNonEmpty(r.URL.Query().Get("token"), r.Header.Get(headerToken)); v != "" {
		out.creds.AuthToken = v
	}

	if raw, ok := r.URL.Query()["sections"]; ok {
		sections, err := parseSections(strings.Join(raw, ","))
		if err != nil {
			return resolved{}, err
		}
		out.sections = sections
	}
	return out, nil
}

// errBadRequest is a client error that maps to 400 as is.
type errBadRequest struct {
	msg string
}

func (e *errBadRequest) Error() string {
	return e.msg
}

// parseSections reads a comma-separated list of section ids.
func parseSections(raw string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, &errBadRequest{msg: fmt.Sprintf("invalid section id %q", part)}
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, &errBadRequest{msg: "at least one section must be selected"}
	}
	return ids, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
