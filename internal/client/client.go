package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/Belphemur/ReelRoulette/internal/cache"
	"github.com/Belphemur/ReelRoulette/internal/config"
	"github.com/Belphemur/ReelRoulette/internal/models"
	"github.com/Belphemur/ReelRoulette/internal/parser"
)

// Client defines the interface for querying a media server library
type Client interface {
	// Validate performs the connectivity check for a set of credentials. Failures
	// are returned as *apperrors.ErrConnectivity with a distinguishable reason.
	Validate(ctx context.Context, creds models.Credentials) (*models.ServerIdentity, error)

	// Identity returns the server identity, served from cache when possible.
	Identity(ctx context.Context, creds models.Credentials) (*models.ServerIdentity, error)

	// ListSections returns every library section the server advertises.
	ListSections(ctx context.Context, creds models.Credentials) ([]models.Section, error)

	// FetchSection returns the normalized items of one section.
	FetchSection(ctx context.Context, creds models.Credentials, sectionID int) ([]models.CatalogItem, error)

	// Close releases any resources held by the client (e.g., cache connections).
	Close() error
}

// client implements the Client interface
type client struct {
	httpClient      *http.Client
	timeout         time.Duration
	validateTimeout time.Duration
	maxPayload      int64
	payloads        cache.Cache
	itemParser      parser.ItemParser
	identityParser  parser.SingleResultParser[models.ServerIdentity]
	sectionParser   parser.ListParser[models.Section]
}

// NewClient creates a new client instance with proxy configuration if provided.
// payloads caches raw section and identity documents; nil disables caching.
func NewClient(cfg *config.Config, payloads cache.Cache) Client {
	logger := config.GetLogger()

	// Clone DefaultTransport to preserve its pooling and HTTP/2 settings
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	// Per-call deadlines come from the failsafe timeout policy, not http.Client.Timeout
	httpClient := &http.Client{
		Transport: newUpstreamTransport(baseTransport, cfg.UserAgent),
	}

	return &client{
		httpClient:      httpClient,
		timeout:         config.Duration("client_timeout", cfg.ClientTimeout, 10*time.Second),
		validateTimeout: config.Duration("validate_timeout", cfg.ValidateTimeout, 5*time.Second),
		maxPayload:      maxPayloadBytes,
		payloads:        payloads,
		itemParser:      parser.NewCatalogParser(),
		identityParser:  parser.NewIdentityParser(),
		sectionParser:   parser.NewSectionListParser(),
	}
}

// NewPayloadCache builds the section payload cache described by the configuration.
// It returns a nil cache when caching is disabled (zero TTL or size).
func NewPayloadCache(cfg *config.Config) (cache.Cache, error) {
	ttl := config.Duration("cache.ttl", cfg.Cache.TTL, 2*time.Minute)
	if ttl <= 0 || cfg.Cache.Size <= 0 {
		logger := config.GetLogger()
		logger.Info().Msg("Section payload cache disabled")
		return nil, nil
	}

	provider := cfg.Cache.Provider
	if provider == "" {
		provider = "memory"
	}

	return cache.New(provider, cache.Options{
		Size: cfg.Cache.Size,
		TTL:  ttl,
		Redis: cache.RedisOptions{
			Address:  cfg.Cache.RedisAddress,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		},
		Instrument: true,
	})
}

// Close releases any resources held by the client, such as cache connections.
func (c *client) Close() error {
	if c.payloads == nil {
		return nil
	}
	return c.payloads.Close()
}
