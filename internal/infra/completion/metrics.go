package completion

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Completion outcomes used as metric label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeEmpty   = "empty"
)

// MetricsRecorder records completion call metrics.
// Tests inject a fake instead of the Prometheus implementation.
type MetricsRecorder interface {
	// RecordCompletion records one remote call with its outcome and latency.
	RecordCompletion(provider, outcome string, duration time.Duration)
}

// PrometheusMetrics implements MetricsRecorder using Prometheus collectors
// registered with the default registry.
type PrometheusMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var (
	prometheusMetricsInstance *PrometheusMetrics
	prometheusMetricsOnce     sync.Once
)

// getOrCreateCounterVec registers a counter vector or returns the one already registered.
func getOrCreateCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		panic(err)
	}
	return c
}

// getOrCreateHistogramVec registers a histogram vector or returns the one already registered.
func getOrCreateHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labels)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.HistogramVec)
		}
		panic(err)
	}
	return h
}

// NewPrometheusMetrics returns the process-wide Prometheus recorder.
func NewPrometheusMetrics() *PrometheusMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusMetrics{
			requests: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "completion_requests_total",
				Help: "Total number of completion service calls by provider and outcome",
			}, []string{"provider", "outcome"}),
			duration: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "completion_request_duration_seconds",
				Help:    "Latency of completion service calls",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			}, []string{"provider"}),
		}
	})
	return prometheusMetricsInstance
}

// RecordCompletion implements MetricsRecorder.
func (p *PrometheusMetrics) RecordCompletion(provider, outcome string, duration time.Duration) {
	p.requests.WithLabelValues(provider, outcome).Inc()
	p.duration.WithLabelValues(provider).Observe(duration.Seconds())
}
