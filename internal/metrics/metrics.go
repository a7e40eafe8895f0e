// Package metrics exposes Prometheus collectors for contract calls and the
// operations built on them.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "spectralpay"

// Registry holds the client's Prometheus collectors.
var Registry = prometheus.NewRegistry()

// Metrics groups the client's collectors. A nil *Metrics records nothing.
type Metrics struct {
	gatewayCalls    *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
	opInFlight      *prometheus.GaugeVec
	opResults       *prometheus.CounterVec
	partials        *prometheus.CounterVec
}

// New creates collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		gatewayCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "calls_total",
				Help:      "Total number of contract calls by outcome.",
			},
			[]string{"contract", "method", "outcome"},
		),
		gatewayDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "call_duration_seconds",
				Help:      "Duration of contract calls.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
			},
			[]string{"contract", "method"},
		),
		opInFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "operation",
				Name:      "inflight",
				Help:      "Operations currently in flight.",
			},
			[]string{"operation"},
		),
		opResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "operation",
				Name:      "results_total",
				Help:      "Operation results by error kind; ok for success.",
			},
			[]string{"operation", "kind"},
		),
		partials: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "operation",
				Name:      "partial_outcomes_total",
				Help:      "Primary actions whose follow-up step failed.",
			},
			[]string{"step"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.gatewayCalls, m.gatewayDuration, m.opInFlight, m.opResults, m.partials)
	}
	return m
}

var (
	defaultOnce sync.Once
	defaultM    *Metrics
)

// Default returns the collectors registered with Registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultM = New(Registry)
	})
	return defaultM
}

// RecordGatewayCall records one contract call. outcome is "ok" or an error kind.
func (m *Metrics) RecordGatewayCall(contract, method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.gatewayCalls.WithLabelValues(contract, method, outcome).Inc()
	m.gatewayDuration.WithLabelValues(contract, method).Observe(d.Seconds())
}

// OperationStarted marks an operation as in flight.
func (m *Metrics) OperationStarted(op string) {
	if m == nil {
		return
	}
	m.opInFlight.WithLabelValues(op).Inc()
}

// OperationFinished records an operation result. kind is "ok" or an error kind.
func (m *Metrics) OperationFinished(op, kind string) {
	if m == nil {
		return
	}
	m.opInFlight.WithLabelValues(op).Dec()
	m.opResults.WithLabelValues(op, kind).Inc()
}

// RecordPartial records a failed follow-up step.
func (m *Metrics) RecordPartial(step string) {
	if m == nil {
		return
	}
	m.partials.WithLabelValues(step).Inc()
}
