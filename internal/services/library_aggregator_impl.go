package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/Belphemur/ReelRoulette/internal/apperrors"
	"github.com/Belphemur/ReelRoulette/internal/config"
	"github.com/Belphemur/ReelRoulette/internal/metrics"
	"github.com/Belphemur/ReelRoulette/internal/models"
)

// DefaultLibraryAggregator implements LibraryAggregator on top of a SectionFetcher
type DefaultLibraryAggregator struct {
	fetcher SectionFetcher
	catalog SectionCatalog
}

// NewLibraryAggregator creates a new aggregator restricted to the sections of catalog
func NewLibraryAggregator(fetcher SectionFetcher, catalog SectionCatalog) LibraryAggregator {
	return &DefaultLibraryAggregator{fetcher: fetcher, catalog: catalog}
}

// Aggregate fans out one goroutine per section. Each goroutine writes only its own
// slot of the result slice, so the merge after Wait needs no locking.
func (a *DefaultLibraryAggregator) Aggregate(ctx context.Context, creds models.Credentials, sectionIDs []int) (*models.AggregateResult, error) {
	logger := config.GetLogger()

	if !creds.Complete() {
		return nil, apperrors.ErrMissingCredentials
	}

	ids := a.allowedSections(sectionIDs)
	logger.Info().Ints("requested", sectionIDs).Ints("sections", ids).Msg("Aggregating library sections")

	results := a.fetchAll(ctx, creds, ids)

	var items []models.CatalogItem
	var errs []error
	seen := make(map[string]struct{})
	duplicates := 0
	for _, r := range results {
		if !r.OK() {
			errs = append(errs, r.Err)
			continue
		}
		// Ids must be unique within a pool; the first occurrence wins
		for _, item := range r.Items {
			if _, dup := seen[item.ID]; dup {
				duplicates++
				continue
			}
			seen[item.ID] = struct{}{}
			items = append(items, item)
		}
	}
	if duplicates > 0 {
		logger.Debug().Int("duplicates", duplicates).Msg("Dropped duplicate items while merging sections")
	}

	result := &models.AggregateResult{
		Pool:     models.NewSelectionPool(items),
		Sections: results,
	}
	metrics.PoolSize.Observe(float64(result.Pool.Len()))

	switch {
	case len(errs) > 0 && result.AnySucceeded():
		logger.Warn().Err(errors.Join(errs...)).Int("pool_size", result.Pool.Len()).Int("failed_sections", len(errs)).Msg("Partial success aggregating sections")
	case len(errs) > 0:
		logger.Error().Err(errors.Join(errs...)).Msg("All section fetches failed")
	case result.Empty():
		logger.Info().Ints("sections", ids).Msg("Selected sections hold no items")
	default:
		logger.Info().Int("pool_size", result.Pool.Len()).Int("sections", len(ids)).Msg("Aggregated selection pool")
	}

	return result, nil
}

// SectionCounts fetches every allow-listed section and reports its size.
func (a *DefaultLibraryAggregator) SectionCounts(ctx context.Context, creds models.Credentials) ([]models.SectionCount, error) {
	if !creds.Complete() {
		return nil, apperrors.ErrMissingCredentials
	}

	ids := a.allowedSections(a.catalog.SectionIDs())
	results := a.fetchAll(ctx, creds, ids)

	counts := make([]models.SectionCount, 0, len(results))
	for _, r := range results {
		count := models.SectionCount{
			SectionID: r.SectionID,
			Name:      a.catalog.SectionName(r.SectionID),
			Count:     len(r.Items),
		}
		if r.Err != nil {
			count.Error = r.Err.Error()
		}
		counts = append(counts, count)
	}
	return counts, nil
}

// allowedSections de-duplicates and sorts ids and drops those outside the allow-list.
func (a *DefaultLibraryAggregator) allowedSections(sectionIDs []int) []int {
	logger := config.GetLogger()

	ids := slices.Clone(sectionIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	allowed := ids[:0]
	for _, id := range ids {
		if !a.catalog.AllowsSection(id) {
			logger.Debug().Int("section_id", id).Msg("Ignoring section outside the allow-list")
			continue
		}
		allowed = append(allowed, id)
	}
	return allowed
}

func (a *DefaultLibraryAggregator) fetchAll(ctx context.Context, creds models.Credentials, ids []int) []models.SectionFetchResult {
	logger := config.GetLogger()
	results := make([]models.SectionFetchResult, len(ids))

	var wg sync.WaitGroup
	wg.Add(len(ids))
	for i, id := range ids {
		go func() {
			defer wg.Done()
			start := time.Now()

			items, err := a.fetcher.FetchSection(ctx, creds, id)
			metrics.SectionFetchDuration.Observe(time.Since(start).Seconds())

			if err != nil {
				metrics.SectionFetchesTotal.WithLabelValues("error").Inc()
				logger.Warn().Err(err).Int("section_id", id).Msg("Section fetch failed, treating it as empty")
				results[i] = models.SectionFetchResult{SectionID: id, Err: &apperrors.ErrSectionFetch{SectionID: id, Err: err}}
				return
			}

			metrics.SectionFetchesTotal.WithLabelValues("success").Inc()
			results[i] = models.SectionFetchResult{SectionID: id, Items: items}
		}()
	}
	wg.Wait()

	return results
}
