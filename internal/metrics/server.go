package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPServer creates the scrape server. It listens apart from the API so
// scrapes never go through CORS or access logs, and answers /healthz for probes
// that should not depend on the API being up.
func NewHTTPServer(address string, port int) *http.Server {
	if port == 0 {
		port = 9090
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{EnableOpenMetrics: true}),
	))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", address, port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
