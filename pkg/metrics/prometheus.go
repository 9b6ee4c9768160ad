// Package metrics provides Prometheus metrics for the benchmarking engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Ingestion
	pointsAccepted prometheus.Counter
	pointsRejected prometheus.Counter

	// Benchmark computation
	benchmarksComputed prometheus.Counter
	insufficientData   prometheus.Counter

	// Cache behavior
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	cacheInvalidations prometheus.Counter

	// Network health
	participantCount prometheus.Gauge
	totalPoints      prometheus.Gauge
	verifiedPoints   prometheus.Gauge
	dataRichness     prometheus.Gauge
	insightQuality   prometheus.Gauge
	collectiveScore  prometheus.Gauge

	// Journal (write-behind persistence)
	journalWrites prometheus.Counter
	journalErrors prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global manager on a custom registry to avoid default Go collectors.
var globalManager *Manager                    //nolint:gochecknoglobals // singleton metrics manager
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "esgbench",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
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

	m.pointsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "data_points_accepted_total", Help: "Data points accepted by ingestion validation.",
		ConstLabels: m.labels(),
	})
	m.pointsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "data_points_rejected_total", Help: "Data points rejected by ingestion validation.",
		ConstLabels: m.labels(),
	})
	m.benchmarksComputed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "benchmarks_computed_total", Help: "Industry benchmarks computed (cache misses that produced a result).",
		ConstLabels: m.labels(),
	})
	m.insufficientData = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "insufficient_data_total", Help: "Benchmark requests declined by the sample-size or privacy gates.",
		ConstLabels: m.labels(),
	})
	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "benchmark_cache_hits_total", Help: "Benchmark cache hits.",
		ConstLabels: m.labels(),
	})
	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "benchmark_cache_misses_total", Help: "Benchmark cache misses.",
		ConstLabels: m.labels(),
	})
	m.cacheInvalidations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "benchmark_cache_invalidations_total", Help: "Cache entries evicted by metric invalidation.",
		ConstLabels: m.labels(),
	})
	m.participantCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "network_participants", Help: "Organizations registered in the benchmarking network.",
		ConstLabels: m.labels(),
	})
	m.totalPoints = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "data_points_total", Help: "Data points currently stored.",
		ConstLabels: m.labels(),
	})
	m.verifiedPoints = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "data_points_verified", Help: "Verified data points currently stored.",
		ConstLabels: m.labels(),
	})
	m.dataRichness = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "network_data_richness", Help: "Network data richness score in [0,1].",
		ConstLabels: m.labels(),
	})
	m.insightQuality = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "network_insight_quality", Help: "Network insight quality score in [0,1].",
		ConstLabels: m.labels(),
	})
	m.collectiveScore = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "network_collective_learning_score", Help: "Collective learning score in [0,1].",
		ConstLabels: m.labels(),
	})
	m.journalWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "journal_writes_total", Help: "Points appended to the persistence journal.",
		ConstLabels: m.labels(),
	})
	m.journalErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "journal_errors_total", Help: "Persistence journal write failures.",
		ConstLabels: m.labels(),
	})
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total", Help: "HTTP requests by endpoint, method and status.",
		ConstLabels: m.labels(),
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_request_duration_seconds", Help: "HTTP request latency by endpoint and method.",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.labels(),
	}, []string{"endpoint", "method"})
}

func (m *Manager) labels() prometheus.Labels {
	if len(m.customLabels) == 0 {
		return nil
	}
	return prometheus.Labels(m.customLabels)
}

// Package-level helpers delegating to the global manager.

// RecordPointAccepted counts one accepted data point.
func RecordPointAccepted() {
	if globalManager.enabled {
		globalManager.pointsAccepted.Inc()
	}
}

// RecordPointRejected counts one rejected data point.
func RecordPointRejected() {
	if globalManager.enabled {
		globalManager.pointsRejected.Inc()
	}
}

// RecordBenchmarkComputed counts one freshly computed benchmark.
func RecordBenchmarkComputed() {
	if globalManager.enabled {
		globalManager.benchmarksComputed.Inc()
	}
}

// RecordInsufficientData counts one gated benchmark request.
func RecordInsufficientData() {
	if globalManager.enabled {
		globalManager.insufficientData.Inc()
	}
}

// RecordCacheHit counts one benchmark cache hit.
func RecordCacheHit() {
	if globalManager.enabled {
		globalManager.cacheHits.Inc()
	}
}

// RecordCacheMiss counts one benchmark cache miss.
func RecordCacheMiss() {
	if globalManager.enabled {
		globalManager.cacheMisses.Inc()
	}
}

// RecordCacheInvalidation counts n evicted cache entries.
func RecordCacheInvalidation(n int) {
	if globalManager.enabled {
		globalManager.cacheInvalidations.Add(float64(n))
	}
}

// UpdateParticipantCount sets the registered-organization gauge.
func UpdateParticipantCount(count int) {
	if globalManager.enabled {
		globalManager.participantCount.Set(float64(count))
	}
}

// UpdatePointCounts sets stored point gauges.
func UpdatePointCounts(total, verified int) {
	if globalManager.enabled {
		globalManager.totalPoints.Set(float64(total))
		globalManager.verifiedPoints.Set(float64(verified))
	}
}

// UpdateNetworkEffect sets the network health gauges.
func UpdateNetworkEffect(dataRichness, insightQuality, collectiveScore float64) {
	if globalManager.enabled {
		globalManager.dataRichness.Set(dataRichness)
		globalManager.insightQuality.Set(insightQuality)
		globalManager.collectiveScore.Set(collectiveScore)
	}
}

// RecordJournalWrite counts one journal append.
func RecordJournalWrite() {
	if globalManager.enabled {
		globalManager.journalWrites.Inc()
	}
}

// RecordJournalError counts one journal failure.
func RecordJournalError() {
	if globalManager.enabled {
		globalManager.journalErrors.Inc()
	}
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
	}
}

// RecordHTTPRequestDuration observes one request latency in seconds.
func RecordHTTPRequestDuration(endpoint, method string, seconds float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(seconds)
	}
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// GetHandler returns the HTTP handler serving the /metrics endpoint.
func GetHandler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
