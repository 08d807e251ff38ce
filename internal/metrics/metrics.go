package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caller_calls_total",
		Help: "Orchestrated calls by final status",
	}, []string{"status", "language"})

	ProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caller_provider_errors_total",
		Help: "Failed provider requests by operation",
	}, []string{"operation"})

	PollAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "caller_poll_attempts_total",
		Help: "Status queries issued while waiting for calls to end",
	})

	PollWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "caller_poll_wait_seconds",
		Help:    "Time spent waiting for a terminal call status",
		Buckets: []float64{5, 15, 30, 60, 90, 120, 150, 180, 240},
	})

	LedgerFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "caller_ledger_append_failures_total",
		Help: "Ledger appends that failed after a call was placed",
	})

	CallCost = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "caller_call_cost",
		Help:    "Computed cost per call in the configured currency",
		Buckets: []float64{4.2, 5, 7.5, 9.13, 12, 15, 20, 30},
	})
)
