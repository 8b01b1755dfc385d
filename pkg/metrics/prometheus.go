// Package metrics provides Prometheus metrics for the grading engine.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for a grading process.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Run metrics
	runsTotal     *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	earlyExits    prometheus.Counter
	lastScore     prometheus.Gauge
	lastPassed    prometheus.Gauge
	workerPoolCap prometheus.Gauge

	// Analyzer metrics
	analyzerDuration *prometheus.HistogramVec
	analyzerFailures *prometheus.CounterVec
	analyzerScore    *prometheus.GaugeVec

	// Queue metrics
	queueDepth      prometheus.Gauge
	queueOperations *prometheus.CounterVec

	// Cache metrics
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	cacheComputations *prometheus.CounterVec
	cacheErrors       *prometheus.CounterVec

	// HTTP metrics
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	inFlight     prometheus.Gauge
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
		namespace:        "autograder",
		subsystem:        "grader",
		histogramBuckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		enabled:          true,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.runsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Total number of grading runs by execution mode and outcome",
		ConstLabels: m.constLabels,
	}, []string{"mode", "outcome"})

	m.runDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_seconds",
		Help:        "Wall-clock duration of a grading run",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"mode"})

	m.earlyExits = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "early_exits_total",
		Help:        "Runs short-circuited by a critical security failure",
		ConstLabels: m.constLabels,
	})

	m.lastScore = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_total_score",
		Help:        "Total score of the most recent grading run",
		ConstLabels: m.constLabels,
	})

	m.lastPassed = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_passed",
		Help:        "1 if the most recent grading run passed, 0 otherwise",
		ConstLabels: m.constLabels,
	})

	m.workerPoolCap = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_pool_size",
		Help:        "Configured number of parallel analyzer workers",
		ConstLabels: m.constLabels,
	})

	m.analyzerDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "analyzer_duration_seconds",
		Help:        "Duration of a single analyzer invocation",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"category"})

	m.analyzerFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "analyzer_failures_total",
		Help:        "Analyzer invocations that ended in an error",
		ConstLabels: m.constLabels,
	}, []string{"category", "reason"})

	m.analyzerScore = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "analyzer_score",
		Help:        "Score reported by the most recent analyzer invocation",
		ConstLabels: m.constLabels,
	}, []string{"category"})

	m.queueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_depth",
		Help:        "Analyzer tasks waiting for a worker",
		ConstLabels: m.constLabels,
	})

	m.queueOperations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_operations_total",
		Help:        "Analyzer task queue operations by kind and result",
		ConstLabels: m.constLabels,
	}, []string{"op", "result"})

	m.cacheHits = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_hits_total",
		Help:        "Project cache lookups served from memory",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.cacheMisses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_misses_total",
		Help:        "Project cache lookups that had to wait for or perform a computation",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.cacheComputations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_computations_total",
		Help:        "Project cache computations actually executed",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.cacheErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_errors_total",
		Help:        "Project cache computations that failed and were not stored",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "HTTP requests by endpoint, method and status code",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status"})

	m.httpDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "request_duration_seconds",
		Help:        "HTTP request latency by endpoint",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method"})

	m.inFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "gradings_in_flight",
		Help:        "Grading requests currently running",
		ConstLabels: m.constLabels,
	})
}

// RecordRun records a completed grading run.
func (m *Manager) RecordRun(mode string, passed bool, totalScore, seconds float64) {
	if !m.enabled {
		return
	}
	outcome := "failed"
	passedValue := 0.0
	if passed {
		outcome = "passed"
		passedValue = 1
	}
	m.runsTotal.WithLabelValues(mode, outcome).Inc()
	m.runDuration.WithLabelValues(mode).Observe(seconds)
	m.lastScore.Set(totalScore)
	m.lastPassed.Set(passedValue)
}

// RecordEarlyExit increments the early exit counter.
func (m *Manager) RecordEarlyExit() {
	if m.enabled {
		m.earlyExits.Inc()
	}
}

// UpdateWorkerPoolSize sets the configured worker count.
func (m *Manager) UpdateWorkerPoolSize(n int) {
	if m.enabled {
		m.workerPoolCap.Set(float64(n))
	}
}

// RecordAnalyzer records the duration and score of one analyzer invocation.
func (m *Manager) RecordAnalyzer(category string, seconds, score float64) {
	if !m.enabled {
		return
	}
	m.analyzerDuration.WithLabelValues(category).Observe(seconds)
	m.analyzerScore.WithLabelValues(category).Set(score)
}

// RecordAnalyzerFailure records a failed analyzer invocation.
func (m *Manager) RecordAnalyzerFailure(category, reason string) {
	if m.enabled {
		m.analyzerFailures.WithLabelValues(category, reason).Inc()
	}
}

// UpdateQueueDepth sets the number of waiting tasks.
func (m *Manager) UpdateQueueDepth(n int) {
	if m.enabled {
		m.queueDepth.Set(float64(n))
	}
}

// RecordQueueOperation counts an enqueue or dequeue attempt.
func (m *Manager) RecordQueueOperation(op, result string) {
	if m.enabled {
		m.queueOperations.WithLabelValues(op, result).Inc()
	}
}

// RecordCacheHit records a cache lookup served from memory.
func (m *Manager) RecordCacheHit(kind string) {
	if m.enabled {
		m.cacheHits.WithLabelValues(kind).Inc()
	}
}

// RecordCacheMiss records a cache lookup that was not yet populated.
func (m *Manager) RecordCacheMiss(kind string) {
	if m.enabled {
		m.cacheMisses.WithLabelValues(kind).Inc()
	}
}

// RecordCacheComputation records a computation that actually ran.
func (m *Manager) RecordCacheComputation(kind string) {
	if m.enabled {
		m.cacheComputations.WithLabelValues(kind).Inc()
	}
}

// RecordCacheError records a failed computation.
func (m *Manager) RecordCacheError(kind string) {
	if m.enabled {
		m.cacheErrors.WithLabelValues(kind).Inc()
	}
}

// RecordHTTPRequest records one served request.
func (m *Manager) RecordHTTPRequest(endpoint, method, status string, seconds float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, status).Inc()
	m.httpDuration.WithLabelValues(endpoint, method).Observe(seconds)
}

// UpdateGradingsInFlight sets the number of running grading requests.
func (m *Manager) UpdateGradingsInFlight(n int64) {
	if m.enabled {
		m.inFlight.Set(float64(n))
	}
}

// Package-level helpers delegate to the global manager.

// RecordRun records a completed grading run on the global manager.
func RecordRun(mode string, passed bool, totalScore, seconds float64) {
	globalManager.RecordRun(mode, passed, totalScore, seconds)
}

// RecordEarlyExit increments the global early exit counter.
func RecordEarlyExit() { globalManager.RecordEarlyExit() }

// UpdateWorkerPoolSize sets the global worker pool gauge.
func UpdateWorkerPoolSize(n int) { globalManager.UpdateWorkerPoolSize(n) }

// RecordAnalyzer records an analyzer invocation on the global manager.
func RecordAnalyzer(category string, seconds, score float64) {
	globalManager.RecordAnalyzer(category, seconds, score)
}

// RecordAnalyzerFailure records a failed analyzer on the global manager.
func RecordAnalyzerFailure(category, reason string) {
	globalManager.RecordAnalyzerFailure(category, reason)
}

// UpdateQueueDepth sets the global queue depth gauge.
func UpdateQueueDepth(n int) { globalManager.UpdateQueueDepth(n) }

// RecordQueueOperation counts a queue operation on the global manager.
func RecordQueueOperation(op, result string) { globalManager.RecordQueueOperation(op, result) }

// RecordCacheHit records a cache hit on the global manager.
func RecordCacheHit(kind string) { globalManager.RecordCacheHit(kind) }

// RecordCacheMiss records a cache miss on the global manager.
func RecordCacheMiss(kind string) { globalManager.RecordCacheMiss(kind) }

// RecordCacheComputation records a cache computation on the global manager.
func RecordCacheComputation(kind string) { globalManager.RecordCacheComputation(kind) }

// RecordCacheError records a failed cache computation on the global manager.
func RecordCacheError(kind string) { globalManager.RecordCacheError(kind) }

// RecordHTTPRequest records a served request on the global manager.
func RecordHTTPRequest(endpoint, method, status string, seconds float64) {
	globalManager.RecordHTTPRequest(endpoint, method, status, seconds)
}

// UpdateGradingsInFlight sets the global in-flight gauge.
func UpdateGradingsInFlight(n int64) { globalManager.UpdateGradingsInFlight(n) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile dumps the custom registry in the node-exporter textfile format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}
