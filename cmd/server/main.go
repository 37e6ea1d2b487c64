package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Belphemur/ReelRoulette/internal/api"
	"github.com/Belphemur/ReelRoulette/internal/client"
	"github.com/Belphemur/ReelRoulette/internal/config"
	"github.com/Belphemur/ReelRoulette/internal/defects"
	"github.com/Belphemur/ReelRoulette/internal/metrics"
	"github.com/Belphemur/ReelRoulette/internal/reveal"
	"github.com/Belphemur/ReelRoulette/internal/services"
	"github.com/Belphemur/ReelRoulette/internal/settings"
)

var version = "dev"

func main() {
	cfg := config.GetConfig()
	logger := config.GetLogger()

	logger.Info().
		Str("version", version).
		Int("server_port", cfg.Server.Port).
		Str("server_address", cfg.Server.Address).
		Ints("sections", cfg.SectionIDs()).
		Str("cache_provider", cfg.Cache.Provider).
		Str("settings_provider", cfg.Settings.Provider).
		Bool("sentry", cfg.SentryDSN != "").
		Msg("Application started with configuration")

	reporter, err := defects.NewReporter(cfg.SentryDSN, os.Getenv("APP_ENV"), version)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize defect reporting")
	}
	defer reporter.Flush(2 * time.Second)

	payloads, err := client.NewPayloadCache(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create payload cache")
	}
	upstream := client.NewClient(cfg, payloads)
	defer func() {
		if err := upstream.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close client")
		}
	}()

	store, err := settings.NewStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create settings store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close settings store")
		}
	}()

	clock := clockwork.NewRealClock()
	selector := services.NewSelector()
	views := reveal.NewRegistry(
		cfg.Spin.MaxViews,
		config.Duration("spin.view_ttl", cfg.Spin.ViewTTL, 30*time.Minute),
		api.SequencerFactory(cfg, selector, reporter, clock),
	)

	server := api.NewServer(api.Dependencies{
		Config:     cfg,
		Client:     upstream,
		Aggregator: services.NewLibraryAggregator(upstream, cfg),
		Selector:   selector,
		Settings:   store,
		Views:      views,
		Clock:      clock,
		SentryHub:  reporter.Hub(),
		Logger:     logger,
	})

	// Start Prometheus metrics HTTP server
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer func() {
			if err := metricsServer.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown HTTP server")
		}
	}()

	logger.Info().Str("address", httpServer.Addr).Msg("Starting HTTP server")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Failed to serve HTTP")
	}

	logger.Info().Msg("Server stopped gracefully")
}
