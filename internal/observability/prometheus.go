// Package observability exports bank operation metrics through Prometheus.
package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder counts operations by outcome and tracks their
// latency. It registers on its own registry so tests and one-shot CLI
// runs do not collide with the default registry.
type PrometheusRecorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
}

// NewPrometheusRecorder constructs and registers the collectors.
func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quizbank",
		Name:      "operations_total",
		Help:      "Bank operations by name and status.",
	}, []string{"operation", "status"})
	durs := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "quizbank",
		Name:      "operation_duration_seconds",
		Help:      "Bank operation latency.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"operation"})
	reg.MustRegister(ops, durs)
	return &PrometheusRecorder{registry: reg, operations: ops, durations: durs}
}

// Observe implements core.MetricsRecorder.
func (r *PrometheusRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.operations.WithLabelValues(operation, status).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// Gatherer exposes the registry.
func (r *PrometheusRecorder) Gatherer() prometheus.Gatherer { return r.registry }

// WriteTextfile dumps the registry in text exposition format, suitable
// for the node exporter textfile collector.
func (r *PrometheusRecorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
