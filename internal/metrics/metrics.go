// Package metrics provides Prometheus metrics infrastructure for the
// scheduling engine, exported via an HTTP endpoint in Prometheus
// format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every metric the engine and its HTTP/job surfaces
// emit and implements engine.MetricsRecorder.
type Registry struct {
	registry prometheus.Registerer

	optimizeRunsTotal       prometheus.CounterVec
	optimizeRunDuration     prometheus.HistogramVec
	emergencyInsertsTotal   prometheus.CounterVec
	httpRequestsTotal       prometheus.CounterVec
	httpRequestDuration     prometheus.HistogramVec
	httpErrorsTotal         prometheus.CounterVec
	jobQueueDepth           prometheus.GaugeVec
	workerPoolInUse         prometheus.Gauge
	databaseOperationsTotal prometheus.CounterVec
}

// New creates and registers every metric using the global Prometheus
// registry. It panics if any metric fails to register.
func New() *Registry {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates and registers every metric with a custom
// registry; used by tests to avoid colliding with the global default.
// It panics if any metric fails to register.
func NewWithRegistry(registerer prometheus.Registerer) *Registry {
	m := &Registry{registry: registerer}

	m.optimizeRunsTotal = *prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimize_runs_total", Help: "Total Tabu optimize runs by cancellation outcome"},
		[]string{"cancelled"},
	)
	m.registry.MustRegister(&m.optimizeRunsTotal)

	m.optimizeRunDuration = *prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "optimize_run_duration_seconds",
			Help:    "Optimize run wall-clock duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"cancelled"},
	)
	m.registry.MustRegister(&m.optimizeRunDuration)

	m.emergencyInsertsTotal = *prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "emergency_inserts_total", Help: "Total emergency insertions by strategy and success"},
		[]string{"strategy", "success"},
	)
	m.registry.MustRegister(&m.emergencyInsertsTotal)

	m.httpRequestsTotal = *prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests by method and path"},
		[]string{"method", "path"},
	)
	m.registry.MustRegister(&m.httpRequestsTotal)

	m.httpRequestDuration = *prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request latency in seconds", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)
	m.registry.MustRegister(&m.httpRequestDuration)

	m.httpErrorsTotal = *prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_errors_total", Help: "Total HTTP errors by error type"},
		[]string{"error_type"},
	)
	m.registry.MustRegister(&m.httpErrorsTotal)

	m.jobQueueDepth = *prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "job_queue_depth", Help: "Pending asynq job queue length"},
		[]string{"queue_name"},
	)
	m.registry.MustRegister(&m.jobQueueDepth)

	m.workerPoolInUse = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "engine_worker_pool_in_use", Help: "Engine worker pool slots currently claimed"},
	)
	m.registry.MustRegister(m.workerPoolInUse)

	m.databaseOperationsTotal = *prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "database_operations_total", Help: "Total repository operations by operation type"},
		[]string{"operation"},
	)
	m.registry.MustRegister(&m.databaseOperationsTotal)

	return m
}

// ObserveOptimizeRun implements engine.MetricsRecorder.
func (m *Registry) ObserveOptimizeRun(durationSeconds float64, cancelled bool) {
	label := boolLabel(cancelled)
	m.optimizeRunsTotal.WithLabelValues(label).Inc()
	m.optimizeRunDuration.WithLabelValues(label).Observe(durationSeconds)
}

// ObserveEmergencyInsertion implements engine.MetricsRecorder.
func (m *Registry) ObserveEmergencyInsertion(strategy string, success bool) {
	m.emergencyInsertsTotal.WithLabelValues(strategy, boolLabel(success)).Inc()
}

// SetWorkerPoolInUse implements engine.MetricsRecorder.
func (m *Registry) SetWorkerPoolInUse(n int) {
	m.workerPoolInUse.Set(float64(n))
}

// RecordHTTPRequest records a completed HTTP request's count and
// latency.
func (m *Registry) RecordHTTPRequest(method, path string, statusCode int, duration float64) {
	m.httpRequestsTotal.WithLabelValues(method, path).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, statusCodeLabel(statusCode)).Observe(duration)
}

// RecordHTTPError records an HTTP-level error by classification.
func (m *Registry) RecordHTTPError(errorType string) {
	m.httpErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordDatabaseOperation records a repository call by operation name.
func (m *Registry) RecordDatabaseOperation(operation string) {
	m.databaseOperationsTotal.WithLabelValues(operation).Inc()
}

// SetJobQueueDepth sets the queue-depth gauge for queueName.
func (m *Registry) SetJobQueueDepth(queueName string, depth int) {
	m.jobQueueDepth.WithLabelValues(queueName).Set(float64(depth))
}

// Handler returns an HTTP handler that serves metrics from this
// registry in Prometheus exposition format.
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry.(prometheus.Gatherer), promhttp.HandlerOpts{})
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func statusCodeLabel(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
