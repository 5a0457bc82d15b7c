package amazon

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scraper.
type Metrics struct {
	Registry                *prometheus.Registry
	ScrapesTotal            *prometheus.CounterVec
	FetchDuration           *prometheus.HistogramVec
	ChallengeFallbacksTotal prometheus.Counter
	CacheHitsTotal          prometheus.Counter
	ErrorsTotal             *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	scrapes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_scrapes_total",
			Help: "Total scrape attempts by outcome.",
		},
		[]string{"outcome"},
	)
	fetchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scraper_fetch_duration_seconds",
			Help:    "Page retrieval latency by strategy.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)
	fallbacks := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_challenge_fallbacks_total",
			Help: "Total scrapes escalated to the browser strategy.",
		},
	)
	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_cache_hits_total",
			Help: "Total scrapes served from the product cache.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total retrieval errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(scrapes, fetchDuration, fallbacks, cacheHits, errorsTotal)

	return &Metrics{
		Registry:                registry,
		ScrapesTotal:            scrapes,
		FetchDuration:           fetchDuration,
		ChallengeFallbacksTotal: fallbacks,
		CacheHitsTotal:          cacheHits,
		ErrorsTotal:             errorsTotal,
	}
}

// IncScrape increments the scrapes counter for an outcome label.
func (m *Metrics) IncScrape(outcome string) {
	if m == nil {
		return
	}
	m.ScrapesTotal.WithLabelValues(outcome).Inc()
}

// ObserveFetch records a retrieval duration for a strategy label.
func (m *Metrics) ObserveFetch(strategy string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

// IncFallback increments the challenge fallback counter.
func (m *Metrics) IncFallback() {
	if m == nil {
		return
	}
	m.ChallengeFallbacksTotal.Inc()
}

// IncCacheHit increments the cache hit counter.
func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
