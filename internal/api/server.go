// Package api exposes the library, spin and settings operations over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Belphemur/ReelRoulette/internal/client"
	"github.com/Belphemur/ReelRoulette/internal/config"
	"github.com/Belphemur/ReelRoulette/internal/links"
	"github.com/Belphemur/ReelRoulette/internal/models"
	"github.com/Belphemur/ReelRoulette/internal/reveal"
	"github.com/Belphemur/ReelRoulette/internal/services"
	"github.com/Belphemur/ReelRoulette/internal/settings"
)

const defaultRequestTimeout = 30 * time.Second

// Dependencies are the collaborators of the HTTP server.
type Dependencies struct {
	Config     *config.Config
	Client     client.Client
	Aggregator services.LibraryAggregator
	Selector   services.Selector
	Settings   settings.Store
	Views      *reveal.Registry
	Clock      clockwork.Clock
	SentryHub  *sentry.Hub // Optional
	Logger     zerolog.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	cfg             *config.Config
	client          client.Client
	aggregator      services.LibraryAggregator
	selector        services.Selector
	settings        settings.Store
	views           *reveal.Registry
	clock           clockwork.Clock
	hub             *sentry.Hub
	logger          zerolog.Logger
	settleTolerance time.Duration

	// Link builders of live spins, needed again when the spin is settled.
	spinLinks *lru.LRU[string, *links.Builder]
}

// NewServer creates the HTTP server.
func NewServer(deps Dependencies) *Server {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	maxViews := deps.Config.Spin.MaxViews
	if maxViews <= 0 {
		maxViews = 256
	}
	return &Server{
		cfg:             deps.Config,
		client:          deps.Client,
		aggregator:      deps.Aggregator,
		selector:        deps.Selector,
		settings:        deps.Settings,
		views:           deps.Views,
		clock:           clock,
		hub:             deps.SentryHub,
		logger:          deps.Logger,
		settleTolerance: config.Duration("spin.settle_tolerance", deps.Config.Spin.SettleTolerance, 250*time.Millisecond),
		spinLinks:       lru.NewLRU[string, *links.Builder](maxViews*4, nil, config.Duration("spin.view_ttl", deps.Config.Spin.ViewTTL, 30*time.Minute)),
	}
}

// SequencerFactory builds the sequencer of a new view. The draw carries no
// links; they are derived once the spin is revealed.
func SequencerFactory(cfg *config.Config, selector services.Selector, defects reveal.DefectReporter, clock clockwork.Clock) reveal.Factory {
	opts := reveal.Options{
		Clock:         clock,
		MinDuration:   config.Duration("spin.min_duration", cfg.Spin.MinDuration, reveal.DefaultMinDuration),
		MaxDuration:   config.Duration("spin.max_duration", cfg.Spin.MaxDuration, reveal.DefaultMaxDuration),
		FrameInterval: config.Duration("spin.frame_interval", cfg.Spin.FrameInterval, reveal.DefaultFrameInterval),
		Defects:       defects,
	}
	draw := func(pool models.SelectionPool) (*models.Pick, error) {
		return selector.Draw(pool, nil, links.PosterCard)
	}
	return func(string) *reveal.Sequencer {
		return reveal.NewSequencer(draw, opts)
	}
}

// Router returns the HTTP handler with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.hub != nil {
		r.Use(s.sentryHub)
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	r.Use(middleware.Timeout(defaultRequestTimeout))
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.RequestIDHandler("request_id", "Request-Id"))
	r.Use(hlog.RemoteAddrHandler("remote_ip"))
	r.Use(hlog.UserAgentHandler("user_agent"))
	r.Use(hlog.AccessHandler(accessLogFn))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Get("/sections", s.handleSections)
		r.Get("/items", s.handleItems)
		r.Get("/random", s.handleRandom)

		r.Post("/spins", s.handleCreateSpin)
		r.Route("/spins/{spinID}", func(r chi.Router) {
			r.Get("/", s.handleGetSpin)
			r.Delete("/", s.handleAbortSpin)
			r.Post("/layout", s.handleLayout)
			r.Post("/settle", s.handleSettle)
		})

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)
	})

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

// sentryHub puts a per-request clone of the hub on the context for sentryhttp.
func (s *Server) sentryHub(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := sentry.SetHubOnContext(r.Context(), s.hub.Clone())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func accessLogFn(r *http.Request, status, size int, duration time.Duration) {
	logger := hlog.FromRequest(r)
	logger.Info().
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("http")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
