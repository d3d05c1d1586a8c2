// Package observability exposes the Prometheus metrics for the
// reconciliation engine and the HTTP API.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ReconciliationRuns counts reconciliation runs by outcome.
var ReconciliationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ledgerlens",
	Subsystem: "reconciliation",
	Name:      "runs_total",
	Help:      "Total reconciliation runs by outcome.",
}, []string{"status"})

// ReconciliationDuration tracks end-to-end reconciliation latency.
var ReconciliationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "ledgerlens",
	Subsystem: "reconciliation",
	Name:      "duration_seconds",
	Help:      "End-to-end reconciliation duration in seconds.",
	Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
})

// MatchedPairs counts matched pairs by match type.
var MatchedPairs = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ledgerlens",
	Subsystem: "reconciliation",
	Name:      "matched_pairs_total",
	Help:      "Total matched ledger/bank pairs by match type.",
}, []string{"match_type"})

// UnmatchedTransactions counts unmatched transactions by side.
var UnmatchedTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ledgerlens",
	Subsystem: "reconciliation",
	Name:      "unmatched_total",
	Help:      "Total unmatched transactions by side (ledger or bank).",
}, []string{"side"})

// DuplicatesMerged counts ledger transactions absorbed by duplicate merges.
var DuplicatesMerged = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ledgerlens",
	Subsystem: "dedupe",
	Name:      "transactions_merged_total",
	Help:      "Total ledger transactions absorbed into duplicate groups.",
})

// SemanticCalls counts semantic scorer calls by outcome.
var SemanticCalls = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ledgerlens",
	Subsystem: "semantic",
	Name:      "calls_total",
	Help:      "Total semantic scorer calls by outcome (ok or fallback).",
}, []string{"outcome"})

// UploadRows counts parsed bank statement rows by result.
var UploadRows = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ledgerlens",
	Subsystem: "upload",
	Name:      "rows_total",
	Help:      "Total parsed bank statement rows by result (saved or error).",
}, []string{"result"})
