package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// FetchAttempts tracks HTTP fetch attempts per dataflow and outcome
	FetchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unicefdata_fetch_attempts_total",
			Help: "Total SDMX fetch attempts",
		},
		[]string{"dataflow", "outcome"}, // outcome: success, empty, not_found, transient, fatal
	)

	// FetchDuration measures end-to-end fetch duration per dataflow
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "unicefdata_fetch_duration_seconds",
			Help:    "SDMX fetch duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~200s
		},
		[]string{"dataflow"},
	)

	// FallbackDepth records how many candidates a call walked before settling
	FallbackDepth = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "unicefdata_fallback_depth",
			Help:    "Number of dataflow candidates tried per logical fetch",
			Buckets: prometheus.LinearBuckets(1, 1, 8),
		},
		[]string{"result"}, // result: success, exhausted, fatal
	)

	// CacheRequests counts result cache lookups by status
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unicefdata_cache_requests_total",
			Help: "Result cache lookups",
		},
		[]string{"status"}, // status: hit, miss, error
	)

	// MetadataReloads counts metadata snapshot reloads by status
	MetadataReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unicefdata_metadata_reloads_total",
			Help: "Metadata snapshot reloads",
		},
		[]string{"status"}, // status: success, error
	)
)

// RecordFetchOutcome records one dataflow fetch and its classified outcome
func RecordFetchOutcome(dataflow, outcome string, duration float64) {
	FetchAttempts.WithLabelValues(dataflow, outcome).Inc()
	FetchDuration.WithLabelValues(dataflow).Observe(duration)
}

// RecordFallbackDepth records how deep a fallback walk went
func RecordFallbackDepth(result string, depth int) {
	FallbackDepth.WithLabelValues(result).Observe(float64(depth))
}

// RecordCacheHit counts a result cache hit
func RecordCacheHit() {
	CacheRequests.WithLabelValues("hit").Inc()
}

// RecordCacheMiss counts a result cache miss
func RecordCacheMiss() {
	CacheRequests.WithLabelValues("miss").Inc()
}

// RecordCacheError counts a result cache lookup failure
func RecordCacheError() {
	CacheRequests.WithLabelValues("error").Inc()
}

// RecordMetadataReload counts a metadata reload attempt
func RecordMetadataReload(status string) {
	MetadataReloads.WithLabelValues(status).Inc()
}
