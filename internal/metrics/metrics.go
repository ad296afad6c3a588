// Package metrics exposes Prometheus collectors for the verification
// pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	searchRequestsTotal     *prometheus.CounterVec
	searchDegradedTotal     *prometheus.CounterVec
	cacheLookupsTotal       *prometheus.CounterVec
	extractionsTotal        *prometheus.CounterVec
	extractionDurationSecs  prometheus.Histogram
	claimsVerifiedTotal     *prometheus.CounterVec
	claimDurationSeconds    prometheus.Histogram
	activeClaims            prometheus.Gauge
	prefetchQueriesTotal    prometheus.Counter
	httpRequestsTotal       *prometheus.CounterVec
	httpRequestDurationSecs *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		searchRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claimsift_search_requests_total",
				Help: "Total search provider calls, labeled by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		)

		searchDegradedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claimsift_search_degraded_total",
				Help: "Total searches answered from degraded mode, labeled by source.",
			},
			[]string{"source"},
		)

		cacheLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claimsift_cache_lookups_total",
				Help: "Total cache lookups, labeled by cache name and result.",
			},
			[]string{"cache", "result"},
		)

		extractionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claimsift_extractions_total",
				Help: "Total content extraction attempts, labeled by method and outcome.",
			},
			[]string{"method", "outcome"},
		)

		extractionDurationSecs = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "claimsift_extraction_duration_seconds",
				Help:    "Histogram of content extraction race wall times.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
			},
		)

		claimsVerifiedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claimsift_claims_verified_total",
				Help: "Total claims reaching a terminal status, labeled by status.",
			},
			[]string{"status"},
		)

		claimDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "claimsift_claim_duration_seconds",
				Help:    "Histogram of end-to-end claim verification wall times.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
			},
		)

		activeClaims = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "claimsift_active_claims",
				Help: "Number of claims currently being verified.",
			},
		)

		prefetchQueriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "claimsift_prefetch_queries_total",
				Help: "Total queries warmed by the predictive prefetcher.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSecs = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSearch increments the search counter for one provider attempt.
func ObserveSearch(provider, outcome string) {
	searchRequestsTotal.WithLabelValues(provider, outcome).Inc()
}

// ObserveDegradedSearch counts a search answered without a live provider.
func ObserveDegradedSearch(source string) {
	searchDegradedTotal.WithLabelValues(source).Inc()
}

// ObserveCacheLookup records one cache hit or miss.
func ObserveCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(cache, result).Inc()
}

// ObserveExtraction records one extraction race outcome.
func ObserveExtraction(method, outcome string, duration time.Duration) {
	extractionsTotal.WithLabelValues(method, outcome).Inc()
	extractionDurationSecs.Observe(duration.Seconds())
}

// ObserveClaim records one claim reaching a terminal status.
func ObserveClaim(status string, duration time.Duration) {
	claimsVerifiedTotal.WithLabelValues(status).Inc()
	claimDurationSeconds.Observe(duration.Seconds())
}

// IncActiveClaims increments the in-flight claims gauge.
func IncActiveClaims() {
	activeClaims.Inc()
}

// DecActiveClaims decrements the in-flight claims gauge.
func DecActiveClaims() {
	activeClaims.Dec()
}

// ObservePrefetch counts one warmed prefetch query.
func ObservePrefetch() {
	prefetchQueriesTotal.Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSecs.WithLabelValues(method, route).Observe(duration.Seconds())
}
