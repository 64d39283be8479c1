// Package metrics exposes Prometheus metrics for cipher operations, worker jobs and the HTTP API.
// All recorders are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics.
type Metrics struct {
	gatherer prometheus.Gatherer

	operationsTotal     *prometheus.CounterVec
	operationDuration   *prometheus.HistogramVec
	operationErrors     *prometheus.CounterVec
	operationBytes      *prometheus.CounterVec
	partitions          *prometheus.HistogramVec
	jobsTotal           *prometheus.CounterVec
	jobDuration         *prometheus.HistogramVec
	workerFailures      *prometheus.CounterVec
	benchmarkSpeedup    *prometheus.GaugeVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new metrics instance on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates a new metrics instance with a custom registry (for testing).
// The registry doubles as the gatherer for Handler when it implements prometheus.Gatherer.
//
//nolint:funlen
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	gatherer, ok := reg.(prometheus.Gatherer)
	if !ok {
		gatherer = prometheus.DefaultGatherer
	}

	return &Metrics{
		gatherer: gatherer,
		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cipher_operations_total",
				Help: "Total number of parallel encrypt/decrypt operations",
			},
			[]string{"mode", "direction"},
		),
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cipher_operation_duration_seconds",
				Help:    "Wall-clock duration of parallel encrypt/decrypt operations",
				Buckets: []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"mode", "direction"},
		),
		operationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cipher_operation_errors_total",
				Help: "Total number of failed encrypt/decrypt operations",
			},
			[]string{"mode", "direction", "error_type"},
		),
		operationBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cipher_bytes_total",
				Help: "Total input bytes of successful operations",
			},
			[]string{"mode", "direction"},
		),
		partitions: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cipher_partitions",
				Help:    "Number of partitions per operation",
				Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
			},
			[]string{"mode"},
		),
		jobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "worker_jobs_total",
				Help: "Total number of completed worker jobs",
			},
			[]string{"mode", "direction"},
		),
		jobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "worker_job_duration_seconds",
				Help:    "Duration of a single worker job",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode", "direction"},
		),
		workerFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "worker_failures_total",
				Help: "Total number of failed worker jobs",
			},
			[]string{"mode", "direction"},
		),
		benchmarkSpeedup: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "benchmark_speedup_ratio",
				Help: "Measured serial/parallel time ratio of the latest benchmark run",
			},
			[]string{"mode", "workers"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}
}

// RecordOperation records a successful encrypt or decrypt operation.
func (m *Metrics) RecordOperation(mode, direction string, duration time.Duration, bytes int) {
	if m == nil {
		return
	}

	m.operationsTotal.WithLabelValues(mode, direction).Inc()
	m.operationDuration.WithLabelValues(mode, direction).Observe(duration.Seconds())
	m.operationBytes.WithLabelValues(mode, direction).Add(float64(bytes))
}

// RecordOperationError records a failed operation.
func (m *Metrics) RecordOperationError(mode, direction, errorType string) {
	if m == nil {
		return
	}

	m.operationErrors.WithLabelValues(mode, direction, errorType).Inc()
}

// RecordPartitions records the number of partitions of a plan.
func (m *Metrics) RecordPartitions(mode string, partitions int) {
	if m == nil {
		return
	}

	m.partitions.WithLabelValues(mode).Observe(float64(partitions))
}

// RecordJob records a completed worker job.
func (m *Metrics) RecordJob(mode, direction string, duration time.Duration) {
	if m == nil {
		return
	}

	m.jobsTotal.WithLabelValues(mode, direction).Inc()
	m.jobDuration.WithLabelValues(mode, direction).Observe(duration.Seconds())
}

// RecordWorkerFailure records a failed worker job.
func (m *Metrics) RecordWorkerFailure(mode, direction string) {
	if m == nil {
		return
	}

	m.workerFailures.WithLabelValues(mode, direction).Inc()
}

// RecordSpeedup records the measured speedup of a benchmark run.
func (m *Metrics) RecordSpeedup(mode string, workers int, speedup float64) {
	if m == nil {
		return
	}

	m.benchmarkSpeedup.WithLabelValues(mode, strconv.Itoa(workers)).Set(speedup)
}

// RecordHTTPRequest records an HTTP request metric.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	m.httpRequestsTotal.WithLabelValues(method, path, http.StatusText(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, http.StatusText(status)).Observe(duration.Seconds())
}

// Handler returns the HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}

	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
