// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "moneysplit"

// Recalculation paths.
const (
	PathFull        = "full"
	PathIncremental = "incremental"
	PathRemoval     = "removal"
)

// Metrics holds every collector the server records.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	rpcRequests       *prometheus.CounterVec
	rpcDuration       *prometheus.HistogramVec
	recalculations    *prometheus.CounterVec
	rejectedExpenses  prometheus.Counter
	unbalancedLedgers prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Connect RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Connect RPC latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		recalculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_recalculations_total",
			Help:      "Balance recalculations, by path.",
		}, []string{"path"}),
		rejectedExpenses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_rejected_total",
			Help:      "Proposed expenses that failed validation.",
		}),
		unbalancedLedgers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unbalanced_ledgers_total",
			Help:      "Balance sets whose net balances did not sum to zero.",
		}),
	}

	reg.MustRegister(m.rpcRequests, m.rpcDuration, m.recalculations, m.rejectedExpenses, m.unbalancedLedgers)
	return m
}

// ObserveRPC records one finished RPC.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

// Recalculated records one balance recalculation along path.
func (m *Metrics) Recalculated(path string) {
	if m == nil {
		return
	}
	m.recalculations.WithLabelValues(path).Inc()
}

// ExpenseRejected records a proposed expense that failed validation.
func (m *Metrics) ExpenseRejected() {
	if m == nil {
		return
	}
	m.rejectedExpenses.Inc()
}

// LedgerUnbalanced records a balance set that does not net to zero.
func (m *Metrics) LedgerUnbalanced() {
	if m == nil {
		return
	}
	m.unbalancedLedgers.Inc()
}
