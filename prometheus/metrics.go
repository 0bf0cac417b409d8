package prometheus

import (
	"time"

	"estimator-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	AuthSuccessCounter prometheus.Counter
	AuthErrorsCounter  prometheus.Counter

	// Upstream inventory API metrics
	UpstreamRequestsTotal   prometheus.CounterVec
	UpstreamRequestDuration prometheus.HistogramVec

	// Read cache metrics
	CacheHitsCounter   prometheus.Counter
	CacheMissesCounter prometheus.Counter

	// Update protocol metrics
	ConflictRetriesCounter prometheus.Counter
	UpdateOutcomesCounter  prometheus.CounterVec

	// Estimate metrics
	EstimateOperationsCounter prometheus.CounterVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Authentication metrics
	AuthSuccessCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	AuthErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
	)

	// Upstream inventory API metrics
	UpstreamRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_upstream_requests_total",
			Help: "Total number of requests to the inventory API",
		},
		[]string{"method", "status"},
	)

	UpstreamRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_upstream_request_duration_seconds",
			Help:    "Duration of inventory API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Read cache metrics
	CacheHitsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_cache_hits_total",
			Help: "Total number of read cache hits",
		},
	)

	CacheMissesCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_cache_misses_total",
			Help: "Total number of read cache misses",
		},
	)

	// Update protocol metrics
	ConflictRetriesCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_conflict_retries_total",
			Help: "Total number of version-conflict retries during product updates",
		},
	)

	UpdateOutcomesCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_update_outcomes_total",
			Help: "Total number of product update outcomes",
		},
		[]string{"outcome"},
	)

	// Estimate metrics
	EstimateOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_estimate_operations_total",
			Help: "Total number of estimate operations",
		},
		[]string{"operation"},
	)
}

// TrackUpstreamRequest returns a function that records the duration of an upstream call
func TrackUpstreamRequest(method string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		UpstreamRequestDuration.WithLabelValues(method).Observe(duration)
	}
}

// RecordUpdateOutcome increments the counter for update protocol outcomes
func RecordUpdateOutcome(outcome string) {
	UpdateOutcomesCounter.WithLabelValues(outcome).Inc()
}

// RecordEstimateOperation increments the counter for estimate operations
func RecordEstimateOperation(operation string) {
	EstimateOperationsCounter.WithLabelValues(operation).Inc()
}
