// Package settings stores the per-profile preferences of a viewer: which server
// to talk to, which sections to draw from, and how the page looks.
package settings

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/Belphemur/ReelRoulette/internal/apperrors"
	"github.com/Belphemur/ReelRoulette/internal/client"
	"github.com/Belphemur/ReelRoulette/internal/models"
)

const (
	ThemeDark          = "dark"
	ThemeLight         = "light"
	DefaultAccentColor = "#3b82f6"

	// DefaultProfile is used when a request does not name a profile.
	DefaultProfile = "default"
)

var accentColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// SectionCatalog is the allow-list selected sections are checked against.
// *config.Config implements it.
type SectionCatalog interface {
	AllowsSection(id int) bool
	SectionIDs() []int
}

// Settings is one profile's stored preferences.
type Settings struct {
	ServerAddress    string `json:"serverAddress"`
	AuthToken        string `json:"authToken,omitempty"`
	SelectedSections []int  `json:"selectedSections"`
	Theme            string `json:"theme"`
	AccentColor      string `json:"accentColor"`
}

// Defaults returns the settings of a profile that never saved anything: every
// allow-listed section selected, dark theme, no credentials.
func Defaults(catalog SectionCatalog) Settings {
	return Settings{
		SelectedSections: catalog.SectionIDs(),
		Theme:            ThemeDark,
		AccentColor:      DefaultAccentColor,
	}
}

// Credentials returns the stored server credentials.
func (s Settings) Credentials() models.Credentials {
	return models.Credentials{ServerAddress: s.ServerAddress, AuthToken: s.AuthToken}
}

// Normalize validates s against catalog and returns the cleaned copy that should
// be stored. Duplicate sections are dropped, keeping the first occurrence.
func Normalize(s Settings, catalog SectionCatalog) (Settings, error) {
	if s.ServerAddress != "" {
		if _, err := client.NormalizeBaseURL(s.ServerAddress); err != nil {
			return Settings{}, &apperrors.ErrInvalidSettings{Field: "serverAddress", Reason: err.Error()}
		}
	}

	if len(s.SelectedSections) == 0 {
		return Settings{}, &apperrors.ErrInvalidSettings{Field: "selectedSections", Reason: "at least one section must be selected"}
	}
	sections := make([]int, 0, len(s.SelectedSections))
	for _, id := range s.SelectedSections {
		if !catalog.AllowsSection(id) {
			return Settings{}, &apperrors.ErrInvalidSettings{Field: "selectedSections", Reason: fmt.Sprintf("section %d is not available", id)}
		}
		if !slices.Contains(sections, id) {
			sections = append(sections, id)
		}
	}
	s.SelectedSections = sections

	switch s.Theme {
	case "":
		s.Theme = ThemeDark
	case ThemeDark, ThemeLight:
	default:
		return Settings{}, &apperrors.ErrInvalidSettings{Field: "theme", Reason: fmt.Sprintf("unknown theme %q", s.Theme)}
	}

	if s.AccentColor == "" {
		s.AccentColor = DefaultAccentColor
	} else if !accentColorPattern.MatchString(s.AccentColor) {
		return Settings{}, &apperrors.ErrInvalidSettings{Field: "accentColor", Reason: "expected a #rrggbb color"}
	}

	return s, nil
}
