// Package metrics provides Prometheus metrics for the plaudit feedback service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the plaudit service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Submission flow
	submissionsAccepted prometheus.Counter
	submissionsReplaced prometheus.Counter
	submissionsRejected prometheus.Counter
	submissionsRemoved  prometheus.Counter
	restoreRecords      prometheus.Counter
	restoreErrors       prometheus.Counter

	// Store health
	storeEntities      prometheus.Gauge
	storeInsertRetries prometheus.Counter

	// Ranking index rebuilds, labeled by index kind ("new"/"hot")
	indexRebuildDuration *prometheus.HistogramVec
	indexRebuildLastUnix *prometheus.GaugeVec
	indexRebuildCount    *prometheus.CounterVec
	indexEntries         *prometheus.GaugeVec
	indexRebuildFailures *prometheus.CounterVec

	// Query performance
	featuredQueryLatency prometheus.Histogram
	summaryQueryLatency  prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking
	errorsByComponent *prometheus.CounterVec

	// Process health
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "plaudit",
		subsystem:        "feedback",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.submissionsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_accepted_total",
		Help:      "Total number of submissions accepted as new",
	})

	m.submissionsReplaced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_replaced_total",
		Help:      "Total number of submissions that replaced an earlier one from the same account",
	})

	m.submissionsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_rejected_total",
		Help:      "Total number of submissions declined by policy",
	})

	m.submissionsRemoved = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_removed_total",
		Help:      "Total number of submissions removed",
	})

	m.restoreRecords = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "restore_records_total",
		Help:      "Total number of checkpoint records restored",
	})

	m.restoreErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "restore_errors_total",
		Help:      "Total number of checkpoint records that failed to restore",
	})

	m.storeEntities = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_entities",
		Help:      "Current number of entities with at least one live submission",
	})

	m.storeInsertRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_insert_retries_total",
		Help:      "Total number of insert retries caused by a concurrently deleted node",
	})

	m.indexRebuildDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "index_rebuild_duration_milliseconds",
			Help:      "Histogram of ranking index rebuild duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"kind"},
	)

	m.indexRebuildLastUnix = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "index_rebuild_last_unix",
			Help:      "Unix timestamp of the last completed index rebuild",
		},
		[]string{"kind"},
	)

	m.indexRebuildCount = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "index_rebuilds_total",
			Help:      "Total number of completed index rebuilds",
		},
		[]string{"kind"},
	)

	m.indexEntries = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "index_entries",
			Help:      "Number of featured entries published by the last rebuild",
		},
		[]string{"kind"},
	)

	m.indexRebuildFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "index_rebuild_failures_total",
			Help:      "Total number of index rebuild cycles that failed",
		},
		[]string{"kind"},
	)

	m.featuredQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "featured_query_latency_milliseconds",
		Help:      "Histogram of featured sample query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.summaryQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "summary_query_latency_milliseconds",
		Help:      "Histogram of summary query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component and type",
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Current allocated heap memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutine_count",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "gc_pause_time_milliseconds",
		Help:      "Histogram of average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers operating on the global manager.

// RecordSubmissionAccepted increments the accepted-submission counter.
func RecordSubmissionAccepted() {
	globalManager.submissionsAccepted.Inc()
}

// RecordSubmissionReplaced increments the replaced-submission counter.
func RecordSubmissionReplaced() {
	globalManager.submissionsReplaced.Inc()
}

// RecordSubmissionRejected increments the policy-rejected counter.
func RecordSubmissionRejected() {
	globalManager.submissionsRejected.Inc()
}

// RecordSubmissionRemoved increments the removed-submission counter.
func RecordSubmissionRemoved() {
	globalManager.submissionsRemoved.Inc()
}

// RecordRestoreRecord increments the restored-record counter.
func RecordRestoreRecord() {
	globalManager.restoreRecords.Inc()
}

// RecordRestoreError increments the restore-error counter.
func RecordRestoreError() {
	globalManager.restoreErrors.Inc()
}

// UpdateStoreEntities sets the live-entity gauge.
func UpdateStoreEntities(count int) {
	globalManager.storeEntities.Set(float64(count))
}

// RecordStoreInsertRetry increments the insert-retry counter.
func RecordStoreInsertRetry() {
	globalManager.storeInsertRetries.Inc()
}

// RecordIndexRebuildDuration records one rebuild duration for an index kind.
func RecordIndexRebuildDuration(kind string, durationMs float64) {
	globalManager.indexRebuildDuration.WithLabelValues(kind).Observe(durationMs)
}

// UpdateIndexRebuildLastUnix sets the last-rebuild timestamp gauge.
func UpdateIndexRebuildLastUnix(kind string, unix float64) {
	globalManager.indexRebuildLastUnix.WithLabelValues(kind).Set(unix)
}

// IncrementIndexRebuildCount increments the completed-rebuild counter.
func IncrementIndexRebuildCount(kind string) {
	globalManager.indexRebuildCount.WithLabelValues(kind).Inc()
}

// UpdateIndexEntries sets the published-entry gauge for an index kind.
func UpdateIndexEntries(kind string, count int) {
	globalManager.indexEntries.WithLabelValues(kind).Set(float64(count))
}

// RecordIndexRebuildFailure increments the failed-rebuild counter.
func RecordIndexRebuildFailure(kind string) {
	globalManager.indexRebuildFailures.WithLabelValues(kind).Inc()
}

// RecordFeaturedQueryLatency records a featured sample query duration.
func RecordFeaturedQueryLatency(latencyMs float64) {
	globalManager.featuredQueryLatency.Observe(latencyMs)
}

// RecordSummaryQueryLatency records a summary query duration.
func RecordSummaryQueryLatency(latencyMs float64) {
	globalManager.summaryQueryLatency.Observe(latencyMs)
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent increments the per-component error counter.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the allocated-heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records an average GC pause duration.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
