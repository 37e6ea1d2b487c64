package client

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Belphemur/ReelRoulette/internal/cache"
	"github.com/Belphemur/ReelRoulette/internal/config"
	"github.com/Belphemur/ReelRoulette/internal/models"
)

const sectionsPath = "/library/sections"

func sectionItemsPath(sectionID int) string {
	return fmt.Sprintf("%s/%d/all", sectionsPath, sectionID)
}

// ListSections returns the sections advertised by the server. The list is not
// cached: it is only read when a user edits their section selection.
func (c *client) ListSections(ctx context.Context, creds models.Credentials) ([]models.Section, error) {
	baseURL, err := NormalizeBaseURL(creds.ServerAddress)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, baseURL, creds.AuthToken, sectionsPath, c.timeout)
	if err != nil {
		return nil, err
	}

	sections, err := c.sectionParser.ParseList(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse sections: %w", err)
	}
	return sections, nil
}

// FetchSection returns the normalized items of one section. Only payloads that
// parsed successfully are cached, and a cached payload that no longer parses is
// dropped and refetched.
func (c *client) FetchSection(ctx context.Context, creds models.Credentials, sectionID int) ([]models.CatalogItem, error) {
	logger := config.GetLogger()

	baseURL, err := NormalizeBaseURL(creds.ServerAddress)
	if err != nil {
		return nil, err
	}
	path := sectionItemsPath(sectionID)
	key := cache.NewKey(baseURL, creds.AuthToken, path)

	if body, ok := c.cached(key); ok {
		items, err := c.itemParser.ParseItems(bytes.NewReader(body), sectionID)
		if err == nil {
			logger.Debug().Int("section_id", sectionID).Int("items", len(items)).Msg("Section served from cache")
			return items, nil
		}
		c.forget(key)
	}

	body, err := c.get(ctx, baseURL, creds.AuthToken, path, c.timeout)
	if err != nil {
		return nil, err
	}

	items, err := c.itemParser.ParseItems(bytes.NewReader(body), sectionID)
	if err != nil {
		return nil, fmt.Errorf("parse section %d: %w", sectionID, err)
	}

	c.store(key, body)
	logger.Info().Int("section_id", sectionID).Int("items", len(items)).Msg("Fetched section")
	return items, nil
}
