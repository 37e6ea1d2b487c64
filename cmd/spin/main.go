// Command spin runs one reveal against a headless belt and prints the pick.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Belphemur/ReelRoulette/internal/apperrors"
	"github.com/Belphemur/ReelRoulette/internal/client"
	"github.com/Belphemur/ReelRoulette/internal/config"
	"github.com/Belphemur/ReelRoulette/internal/defects"
	"github.com/Belphemur/ReelRoulette/internal/links"
	"github.com/Belphemur/ReelRoulette/internal/models"
	"github.com/Belphemur/ReelRoulette/internal/reveal"
	"github.com/Belphemur/ReelRoulette/internal/services"
)

func main() {
	cfg := config.GetConfig()
	logger := config.GetLogger()

	server := flag.String("server", os.Getenv("PLEX_SERVER"), "media server address (host, host:port or URL)")
	token := flag.String("token", os.Getenv("PLEX_TOKEN"), "media server token")
	sections := flag.String("sections", "", "comma-separated section ids (default: every configured section)")
	slotWidth := flag.Float64("slot-width", 150, "belt slot width in pixels")
	gap := flag.Float64("gap", 12, "gap between slots in pixels")
	viewport := flag.Float64("viewport", 1280, "viewport width in pixels")
	instant := flag.Bool("instant", false, "skip the animation timing")
	flag.Parse()

	creds := models.Credentials{ServerAddress: *server, AuthToken: *token}
	sectionIDs := cfg.SectionIDs()
	if *sections != "" {
		ids, err := parseIDs(*sections)
		if err != nil {
			logger.Fatal().Err(err).Msg("Invalid -sections")
		}
		sectionIDs = ids
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reporter, err := defects.NewReporter(cfg.SentryDSN, "cli", "")
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize defect reporting")
	}
	defer reporter.Flush(2 * time.Second)

	upstream := client.NewClient(cfg, nil)
	defer upstream.Close()

	if _, err := upstream.Validate(ctx, creds); err != nil {
		logger.Fatal().Err(err).Msg("Cannot use media server")
	}

	result, err := services.NewLibraryAggregator(upstream, cfg).Aggregate(ctx, creds, sectionIDs)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to aggregate sections")
	}

	opts := reveal.Options{
		MinDuration:   config.Duration("spin.min_duration", cfg.Spin.MinDuration, reveal.DefaultMinDuration),
		MaxDuration:   config.Duration("spin.max_duration", cfg.Spin.MaxDuration, reveal.DefaultMaxDuration),
		FrameInterval: config.Duration("spin.frame_interval", cfg.Spin.FrameInterval, reveal.DefaultFrameInterval),
		Defects:       reporter,
	}
	if *instant {
		opts.MinDuration, opts.MaxDuration, opts.FrameInterval = time.Millisecond, time.Millisecond, time.Millisecond
	}
	selector := services.NewSelector()
	seq := reveal.NewSequencer(func(pool models.SelectionPool) (*models.Pick, error) {
		return selector.Draw(pool, nil, links.PosterCard)
	}, opts)

	surface := reveal.NewGridSurface(reveal.GridOptions{SlotWidth: *slotWidth, Gap: *gap, ViewportWidth: *viewport, RoundPixels: true})
	pick, err := reveal.Play(ctx, seq, result.Pool, surface)
	switch {
	case errors.Is(err, apperrors.ErrEmptyPool):
		fmt.Fprintln(os.Stderr, "No items found in the selected sections")
		os.Exit(2)
	case err != nil:
		logger.Fatal().Err(err).Msg("Spin failed")
	}

	identity, _ := upstream.Identity(ctx, creds)
	builder, err := links.NewBuilder(creds, identity)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build links")
	}
	pick = builder.Pick(pick.Item, pick.PoolIndex, links.PosterCard)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pick); err != nil {
		logger.Fatal().Err(err).Msg("Failed to print pick")
	}
	logger.Info().
		Int("frames", surface.Frames()).
		Str("title", pick.Item.Title).
		Str("duration", pick.Item.FormattedDuration()).
		Int("critic_percent", pick.Item.CriticPercent()).
		Bool("poster", pick.HasPoster()).
		Msg("Revealed")
}

func parseIDs(raw string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("section id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
