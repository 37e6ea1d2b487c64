package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// LookupsTotal counts cache lookups by document kind and result (hit, miss).
	LookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payload_cache_lookups_total",
			Help: "Upstream document cache lookups by kind and result.",
		},
		[]string{"kind", "result"},
	)

	// EvictionsTotal counts documents dropped by the cache, by kind.
	EvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payload_cache_evictions_total",
			Help: "Upstream documents dropped from the cache.",
		},
		[]string{"kind"},
	)

	// HitAgeSeconds observes how old a document was when it was served.
	HitAgeSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payload_cache_hit_age_seconds",
			Help:    "Age of upstream documents served from the cache.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 900},
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(LookupsTotal, EvictionsTotal, HitAgeSeconds)
}

// entriesCollector reports the live document count of one provider by calling
// lenFunc at scrape time.
type entriesCollector struct {
	desc    *prometheus.Desc
	lenFunc func() int
}

func (c *entriesCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *entriesCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(c.lenFunc()))
}

var (
	entriesMu         sync.Mutex
	entriesCollectors = make(map[string]*entriesCollector)
	// entriesReg is swapped for an isolated registry in tests.
	entriesReg prometheus.Registerer = prometheus.DefaultRegisterer
)

// registerEntriesCollector replaces any collector already registered for provider.
func registerEntriesCollector(provider string, lenFunc func() int) {
	c := &entriesCollector{
		desc: prometheus.NewDesc(
			"payload_cache_entries",
			"Documents currently held by the upstream document cache.",
			nil,
			prometheus.Labels{"provider": provider},
		),
		lenFunc: lenFunc,
	}

	entriesMu.Lock()
	defer entriesMu.Unlock()
	if old, ok := entriesCollectors[provider]; ok {
		entriesReg.Unregister(old)
	}
	entriesCollectors[provider] = c
	_ = entriesReg.Register(c)
}

func unregisterEntriesCollector(provider string) {
	entriesMu.Lock()
	defer entriesMu.Unlock()
	if c, ok := entriesCollectors[provider]; ok {
		entriesReg.Unregister(c)
		delete(entriesCollectors, provider)
	}
}
