package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Section fetch metrics
var (
	SectionFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "section_fetches_total",
			Help: "Total number of library section fetches.",
		},
		[]string{"status"},
	)

	SectionFetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "section_fetch_duration_seconds",
			Help:    "Duration of library section fetches.",
			Buckets: prometheus.DefBuckets,
		},
	)

	PoolSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "selection_pool_size",
			Help:    "Number of items in aggregated selection pools.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)

// Selection and reveal metrics
var (
	DrawsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draws_total",
			Help: "Total number of random draws.",
		},
		[]string{"status"},
	)

	SpinsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spins_total",
			Help: "Total number of spins by final outcome.",
		},
		[]string{"outcome"},
	)

	ReconciliationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciliations_total",
			Help: "Total number of reveal reconciliations by result.",
		},
		[]string{"result"},
	)

	ActiveViews = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reveal_active_views",
			Help: "Number of reveal views currently tracked.",
		},
	)
)

// Spin outcomes
const (
	OutcomeRevealed   = "revealed"
	OutcomeSuperseded = "superseded"
	OutcomeAborted    = "aborted"
	OutcomeEmpty      = "empty"
)

func init() {
	prometheus.MustRegister(
		SectionFetchesTotal,
		SectionFetchDuration,
		PoolSize,
		DrawsTotal,
		SpinsTotal,
		ReconciliationsTotal,
		ActiveViews,
	)
}
