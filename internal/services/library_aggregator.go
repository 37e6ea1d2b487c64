package services

import (
	"context"

	"github.com/Belphemur/ReelRoulette/internal/models"
)

// SectionFetcher fetches and normalizes one library section.
type SectionFetcher interface {
	FetchSection(ctx context.Context, creds models.Credentials, sectionID int) ([]models.CatalogItem, error)
}

// SectionCatalog is the configured allow-list of sections that may be drawn from.
type SectionCatalog interface {
	AllowsSection(id int) bool
	SectionIDs() []int
	SectionName(id int) string
}

// LibraryAggregator defines the interface for merging sections into a selection pool
type LibraryAggregator interface {
	// Aggregate fetches every allowed section concurrently and merges the items in
	// section order. Failed sections are reported on the result, never as an error;
	// an error is only returned for unusable credentials.
	Aggregate(ctx context.Context, creds models.Credentials, sectionIDs []int) (*models.AggregateResult, error)

	// SectionCounts reports the number of items in every allowed section.
	SectionCounts(ctx context.Context, creds models.Credentials) ([]models.SectionCount, error)
}
