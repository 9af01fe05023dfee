// Package metrics holds the Prometheus collectors exported by the server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "splitledger"

// Metrics groups every collector so tests can use a private registry.
type Metrics struct {
	RPCRequests         *prometheus.CounterVec
	RPCDuration         *prometheus.HistogramVec
	ComputeDuration     *prometheus.HistogramVec
	ValidationFailures  *prometheus.CounterVec
	InvariantViolations prometheus.Counter
	SettlementTransfers prometheus.Histogram
	ExpensesRecorded    *prometheus.CounterVec
	PaymentsRecorded    prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and Connect code.",
		}, []string{"procedure", "code"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		ComputeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compute_duration_seconds",
			Help:      "Time spent in the ledger engine.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"operation"}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Rejected inputs by field.",
		}, []string{"field"}),
		InvariantViolations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invariant_violations_total",
			Help:      "Stored records that failed a ledger consistency check.",
		}),
		SettlementTransfers: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlement_transfers",
			Help:      "Number of transfers suggested per settlement plan.",
			Buckets:   prometheus.LinearBuckets(0, 2, 10),
		}),
		ExpensesRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_recorded_total",
			Help:      "Stored expenses by split policy.",
		}, []string{"split"}),
		PaymentsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_recorded_total",
			Help:      "Stored payments.",
		}),
	}

	reg.MustRegister(
		m.RPCRequests,
		m.RPCDuration,
		m.ComputeDuration,
		m.ValidationFailures,
		m.InvariantViolations,
		m.SettlementTransfers,
		m.ExpensesRecorded,
		m.PaymentsRecorded,
	)
	return m
}

// ObserveCompute records how long an engine operation took since start.
func (m *Metrics) ObserveCompute(operation string, start time.Time) {
	m.ComputeDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
