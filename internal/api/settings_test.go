package api

import (
	"net/http"
	"testing"
)

func TestSettings_GetDefaults(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, defaultClient())
	rr := env.do(t, http.MethodGet, "/api/v1/settings", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decode[settingsResponse](t, rr)
	if resp.HasToken || resp.Theme != "dark" || len(resp.SelectedSections) != 2 {
		t.Errorf("settings = %+v", resp)
	}
}

func TestSettings_PutMergesAndHidesToken(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, defaultClient())
	profile := map[string]string{headerProfile: "den"}

	rr := env.do(t, http.MethodPut, "/api/v1/settings", map[string]any{
		"serverAddress": "plex.test",
		"authToken":     "secret",
	}, profile)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rr.Code, rr.Body.String())
	}
	rr = env.do(t, http.MethodPut, "/api/v1/settings", map[string]any{"theme": "light", "selectedSections": []int{2}}, profile)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rr.Code, rr.Body.String())
	}

	resp := decode[map[string]any](t, rr)
	if _, ok := resp["authToken"]; ok {
		t.Errorf("token echoed back: %v", resp)
	}
	if resp["hasToken"] != true || resp["serverAddress"] != "plex.test" || resp["theme"] != "light" {
		t.Errorf("settings = %v", resp)
	}

	// Stored credentials and sections are used when the request has none.
	rr = env.do(t, http.MethodGet, "/api/v1/random", nil, profile)
	if rr.Code != http.StatusOK {
		t.Fatalf("random status = %d (%s)", rr.Code, rr.Body.String())
	}
	if got := decode[randomResponse](t, rr); got.Item.SectionID != 2 {
		t.Errorf("drew from section %d, want 2", got.Item.SectionID)
	}
	if got := env.client.lastCredentials(); got.AuthToken != "secret" {
		t.Errorf("fetched with %+v", got)
	}
}

func TestSettings_PutRejectsInvalid(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, defaultClient())
	tests := []struct {
		name string
		body map[string]any
	}{
		{"section outside allow-list", map[string]any{"selectedSections": []int{9}}},
		{"no sections", map[string]any{"selectedSections": []int{}}},
		{"unknown theme", map[string]any{"theme": "neon"}},
	}
	for _, tt := range tests {
		rr := env.do(t, http.MethodPut, "/api/v1/settings", tt.body, nil)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tt.name, rr.Code)
		}
		if got := decode[errorResponse](t, rr); got.Code != "invalid_settings" {
			t.Errorf("%s: code = %q", tt.name, got.Code)
		}
	}
}
