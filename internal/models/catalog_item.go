package models

import (
	"fmt"
	"math"
)

// CatalogItem is one normalized library entry (a movie or a show).
type CatalogItem struct {
	ID               string   `json:"id"`  // Opaque upstream key, unique within a pool
	Key              string   `json:"key"` // Upstream key path (e.g. "/library/metadata/123/children")
	SectionID        int      `json:"sectionId"`
	Type             string   `json:"type,omitempty"` // "movie", "show", ...
	Title            string   `json:"title"`
	Year             int      `json:"year,omitempty"`
	Summary          string   `json:"summary,omitempty"`
	ContentRating    string   `json:"contentRating,omitempty"`
	CriticRating     float64  `json:"criticRating,omitempty"`   // 0-10
	AudienceRating   float64  `json:"audienceRating,omitempty"` // 0-10
	DurationMs       int64    `json:"durationMs,omitempty"`
	LeafCount        int      `json:"leafCount,omitempty"` // Episode count for shows
	Directors        []string `json:"directors"`
	Cast             []string `json:"cast"`
	Genres           []string `json:"genres"`
	PosterSourcePath string   `json:"posterSourcePath,omitempty"`
}

// FormattedDuration renders the runtime as "1h 52m" or "45m". Empty when unknown.
func (i CatalogItem) FormattedDuration() string {
	if i.DurationMs <= 0 {
		return ""
	}
	seconds := i.DurationMs / 1000
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// CriticPercent converts the 0-10 critic rating to a rounded percentage.
func (i CatalogItem) CriticPercent() int {
	return int(math.Round(i.CriticRating * 10))
}

// AudiencePercent converts the 0-10 audience rating to a rounded percentage.
func (i CatalogItem) AudiencePercent() int {
	return int(math.Round(i.AudienceRating * 10))
}
