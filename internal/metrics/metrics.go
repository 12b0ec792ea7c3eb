// Package metrics exposes Prometheus counters for guard decisions and orders.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tradeguard_decisions_total", Help: "Signals decided, by outcome and reason"},
		[]string{"outcome", "reason"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tradeguard_orders_total", Help: "Orders submitted to the brokerage"},
		[]string{"ticker", "side", "result"},
	)
	AuditFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "tradeguard_audit_failures_total", Help: "Audit appends that failed after an order attempt"},
	)
	DecisionSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "tradeguard_decision_seconds", Help: "Time from signal receipt to decision", Buckets: prometheus.DefBuckets},
	)
)

func init() {
	prometheus.MustRegister(DecisionsTotal, OrdersTotal, AuditFailuresTotal, DecisionSeconds)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
