// Package metrics records cipher-engine operation counts and durations
// using Prometheus client metrics. The library performs no network I/O and
// exposes no HTTP handler of its own; callers that want a scrape endpoint
// register the same prometheus.Registerer their own server already serves.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CipherMetrics records outcomes of encrypt/decrypt operations. Operation
// examples: "encrypt", "decrypt". Status examples: "success", "error".
type CipherMetrics interface {
	// RecordOperation increments the operation counter with its status.
	RecordOperation(operation, status string)

	// RecordDuration records the operation duration in seconds.
	RecordDuration(operation, status string, duration time.Duration)
}

// cipherMetrics implements CipherMetrics using Prometheus counter and
// histogram vectors.
type cipherMetrics struct {
	operationCounter *prometheus.CounterVec
	durationHisto    *prometheus.HistogramVec
}

// NewCipherMetrics creates and registers a CipherMetrics implementation on
// registerer. namespace prefixes every metric name (e.g. "coffio").
func NewCipherMetrics(registerer prometheus.Registerer, namespace string) (CipherMetrics, error) {
	operationCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cipher_operations_total",
			Help:      "Total number of cipher engine operations.",
		},
		[]string{"operation", "status"},
	)

	durationHisto := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cipher_operation_duration_seconds",
			Help:      "Duration of cipher engine operations in seconds.",
		},
		[]string{"operation", "status"},
	)

	if err := registerer.Register(operationCounter); err != nil {
		return nil, err
	}
	if err := registerer.Register(durationHisto); err != nil {
		return nil, err
	}

	return &cipherMetrics{
		operationCounter: operationCounter,
		durationHisto:    durationHisto,
	}, nil
}

// RecordOperation increments the operation counter with operation and
// status labels.
func (m *cipherMetrics) RecordOperation(operation, status string) {
	m.operationCounter.WithLabelValues(operation, status).Inc()
}

// RecordDuration records the operation duration in seconds with operation
// and status labels.
func (m *cipherMetrics) RecordDuration(operation, status string, duration time.Duration) {
	m.durationHisto.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// NoOpCipherMetrics is a no-op CipherMetrics for when metrics are disabled.
type NoOpCipherMetrics struct{}

// NewNoOpCipherMetrics creates a no-op CipherMetrics implementation.
func NewNoOpCipherMetrics() CipherMetrics {
	return &NoOpCipherMetrics{}
}

// RecordOperation does nothing when metrics are disabled.
func (NoOpCipherMetrics) RecordOperation(operation, status string) {}

// RecordDuration does nothing when metrics are disabled.
func (NoOpCipherMetrics) RecordDuration(operation, status string, duration time.Duration) {}
