// Package telemetry exposes the scanner's Prometheus instruments.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spreadwatch_cycles_total",
		Help: "Number of completed poll cycles.",
	})

	FetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spreadwatch_fetch_errors_total",
		Help: "Per-exchange market list and ticker fetch failures.",
	}, []string{"exchange", "op"})

	OpportunitiesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spreadwatch_opportunities_total",
		Help: "Number of qualifying arbitrage opportunities found.",
	})

	UnsupportedPairs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "spreadwatch_unsupported_pairs",
		Help: "Pairs known to lack support on at least two exchanges.",
	})

	LedgerSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "spreadwatch_ledger_size",
		Help: "Number of transactions recorded in the ledger.",
	})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spreadwatch_cycle_duration_seconds",
		Help:    "Wall-clock duration of a full poll cycle.",
		Buckets: prometheus.DefBuckets,
	})
)
