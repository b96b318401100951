// Package metrics exposes Prometheus collectors for summarize runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SummarizeTotal counts summarize runs by provider and outcome.
	// Outcome is "ok", "empty", or an error code.
	SummarizeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagesum_summarize_total",
		Help: "Total summarize runs.",
	}, []string{"provider", "outcome"})

	// SummarizeDuration tracks end-to-end run latency per provider.
	SummarizeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pagesum_summarize_duration_seconds",
		Help:    "Time spent on a summarize run.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"provider"})

	// PageChars tracks the distribution of extracted page text lengths.
	PageChars = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pagesum_page_chars",
		Help:    "Number of characters of page text sent to a provider.",
		Buckets: []float64{500, 1000, 2500, 5000, 10000, 25000, 50000, 100000},
	})

	// CacheLookups counts cache lookups on the page-load path.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagesum_cache_lookups_total",
		Help: "Cache lookups by result.",
	}, []string{"result"})

	// RequestsTotal counts HTTP API requests by method, route, and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagesum_requests_total",
		Help: "Total HTTP requests processed.",
	}, []string{"method", "route", "status"})

	// Busy is 1 while a summarize run is outstanding.
	Busy = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pagesum_summarize_in_progress",
		Help: "Whether a summarize run is outstanding (1) or not (0).",
	})
)

// CacheResult returns the label value for a cache lookup.
func CacheResult(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
