// Package metrics provides Prometheus metrics for the riftscope analysis service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the riftscope service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Analysis lifecycle
	analysesStarted   prometheus.Counter
	analysesCompleted prometheus.Counter
	analysesFailed    prometheus.Counter
	analysisDuration  prometheus.Histogram
	stageDuration     *prometheus.HistogramVec
	streamEvents      *prometheus.CounterVec

	// Admission queue health
	admissionActive  prometheus.Gauge
	admissionWaiting prometheus.Gauge

	// Riot gateway
	riotRequests             *prometheus.CounterVec
	riotRequestLatency       prometheus.Histogram
	riotRetries              prometheus.Counter
	riotCompressionFallbacks prometheus.Counter
	riotInFlight             prometheus.Gauge
	riotQueued               prometheus.Gauge
	cacheHits                prometheus.Counter
	cacheMisses              prometheus.Counter

	// Ingestion
	matchesIngested prometheus.Counter

	// Lane-lead aggregation quality
	laneLeadSamples prometheus.Histogram

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Process health
	systemMemoryUsage prometheus.Gauge
	systemGoroutines  prometheus.Gauge
	systemGCPause     prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "riftscope",
		subsystem:        "analysis",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.analysesStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analyses_started_total",
		Help:      "Total number of analysis streams admitted past the queue",
	})

	m.analysesCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analyses_completed_total",
		Help:      "Total number of analysis streams that emitted a result",
	})

	m.analysesFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analyses_failed_total",
		Help:      "Total number of analysis streams that terminated with an error event",
	})

	m.analysisDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analysis_duration_seconds",
		Help:      "End-to-end analysis duration from admission to terminal event",
		Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 300},
	})

	m.stageDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "stage_duration_milliseconds",
			Help:      "Per-stage duration of the analysis pipeline in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"stage"},
	)

	m.streamEvents = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "stream_events_total",
			Help:      "Total number of NDJSON events written, by event type",
		},
		[]string{"type"},
	)

	m.admissionActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "admission_active",
		Help:      "Analyses currently holding an admission slot",
	})

	m.admissionWaiting = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "admission_waiting",
		Help:      "Analyses currently waiting for an admission slot",
	})

	m.riotRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "riot_requests_total",
			Help:      "Total Riot API requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	m.riotRequestLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "riot_request_latency_milliseconds",
		Help:      "Riot API request latency in milliseconds, including slot wait",
		Buckets:   m.histogramBuckets,
	})

	m.riotRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "riot_retries_total",
		Help:      "Total Riot API retry attempts after transient failures",
	})

	m.riotCompressionFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "riot_compression_fallbacks_total",
		Help:      "Total retries through the compression-disabled transport",
	})

	m.riotInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "riot_in_flight",
		Help:      "Riot API requests currently in flight",
	})

	m.riotQueued = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "riot_queued",
		Help:      "Riot API requests waiting for a rate-limit slot",
	})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "riot_cache_hits_total",
		Help:      "Total immutable-response cache hits",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "riot_cache_misses_total",
		Help:      "Total immutable-response cache misses",
	})

	m.matchesIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_ingested_total",
		Help:      "Total match records fetched and stored during ingestion",
	})

	m.laneLeadSamples = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lane_lead_sample_size",
		Help:      "Surviving sample count per lane-lead aggregation",
		Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
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

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutines = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPause = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// RecordAnalysisStarted increments the started-analyses counter.
func RecordAnalysisStarted() {
	globalManager.analysesStarted.Inc()
}

// RecordAnalysisCompleted increments the completed-analyses counter.
func RecordAnalysisCompleted() {
	globalManager.analysesCompleted.Inc()
}

// RecordAnalysisFailed increments the failed-analyses counter.
func RecordAnalysisFailed() {
	globalManager.analysesFailed.Inc()
}

// RecordAnalysisDuration records end-to-end analysis duration in seconds.
func RecordAnalysisDuration(seconds float64) {
	globalManager.analysisDuration.Observe(seconds)
}

// RecordStageDuration records a pipeline stage duration in milliseconds.
func RecordStageDuration(stage string, latencyMs float64) {
	globalManager.stageDuration.WithLabelValues(stage).Observe(latencyMs)
}

// RecordStreamEvent counts one written NDJSON event by type.
func RecordStreamEvent(eventType string) {
	globalManager.streamEvents.WithLabelValues(eventType).Inc()
}

// UpdateAdmissionActive sets the active-analyses gauge.
func UpdateAdmissionActive(n int) {
	globalManager.admissionActive.Set(float64(n))
}

// UpdateAdmissionWaiting sets the waiting-analyses gauge.
func UpdateAdmissionWaiting(n int) {
	globalManager.admissionWaiting.Set(float64(n))
}

// RecordRiotRequest counts one Riot API request by endpoint and outcome.
func RecordRiotRequest(endpoint, outcome string) {
	globalManager.riotRequests.WithLabelValues(endpoint, outcome).Inc()
}

// RecordRiotRequestLatency records Riot API request latency in milliseconds.
func RecordRiotRequestLatency(latencyMs float64) {
	globalManager.riotRequestLatency.Observe(latencyMs)
}

// RecordRiotRetry increments the retry counter.
func RecordRiotRetry() {
	globalManager.riotRetries.Inc()
}

// RecordRiotCompressionFallback increments the compression-fallback counter.
func RecordRiotCompressionFallback() {
	globalManager.riotCompressionFallbacks.Inc()
}

// UpdateRiotInFlight sets the in-flight request gauge.
func UpdateRiotInFlight(n int) {
	globalManager.riotInFlight.Set(float64(n))
}

// UpdateRiotQueued sets the queued request gauge.
func UpdateRiotQueued(n int) {
	globalManager.riotQueued.Set(float64(n))
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordMatchIngested increments the ingested-matches counter.
func RecordMatchIngested() {
	globalManager.matchesIngested.Inc()
}

// RecordLaneLeadSampleSize records the surviving sample count of one aggregation.
func RecordLaneLeadSampleSize(n int) {
	globalManager.laneLeadSamples.Observe(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count gauge.
func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutines.Set(float64(n))
}

// RecordSystemGCPauseTime records the average GC pause in milliseconds.
func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPause.Observe(ms)
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
