package settings

import (
	"context"
	"fmt"

	"github.com/Belphemur/ReelRoulette/internal/config"
)

// Store persists settings per profile.
type Store interface {
	// Load returns the profile's settings, or the defaults when nothing was saved.
	Load(ctx context.Context, profile string) (Settings, error)

	// Save normalizes s and stores it, returning what was stored.
	Save(ctx context.Context, profile string, s Settings) (Settings, error)

	// Close releases backend resources.
	Close() error
}

// NewStore creates the store selected by settings.provider.
func NewStore(cfg *config.Config) (Store, error) {
	logger := config.GetLogger()
	provider := cfg.Settings.Provider
	if provider == "" {
		provider = "memory"
	}

	switch provider {
	case "memory":
		logger.Info().Str("provider", provider).Msg("Settings store initialized")
		return NewMemoryStore(cfg, defaultMemoryProfiles)
	case "redis":
		store, err := NewRedisStore(cfg, RedisOptions{
			Address:  cfg.Cache.RedisAddress,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		logger.Info().Str("provider", provider).Str("address", cfg.Cache.RedisAddress).Msg("Settings store initialized")
		return store, nil
	default:
		return nil, fmt.Errorf("unknown settings provider %q", provider)
	}
}
