package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Quote metrics
	QuoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapengine_quote_requests_total",
			Help: "Total number of quote requests",
		},
		[]string{"source", "status"},
	)

	QuoteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swapengine_quote_duration_seconds",
		Help:    "Quote request duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	PriceImpact = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swapengine_price_impact_bps",
		Help:    "Quoted price impact in basis points",
		Buckets: []float64{0, 10, 50, 100, 300, 500, 1000, 5000, 10000},
	})

	// Swap metrics
	SwapRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapengine_swap_requests_total",
			Help: "Total number of swap execution requests",
		},
		[]string{"status"},
	)

	SwapDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swapengine_swap_duration_seconds",
		Help:    "Swap execution duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	VersionedTransactions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapengine_versioned_transactions_total",
		Help: "Swaps that required the versioned/lookup-table path",
	})

	// Liquidity metrics
	LiquidityRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapengine_liquidity_requests_total",
			Help: "Total number of liquidity build/confirm requests",
		},
		[]string{"action", "phase", "status"},
	)

	LiquidityVerifyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapengine_liquidity_verify_failures_total",
			Help: "Confirm-phase verification failures by reason",
		},
		[]string{"reason"},
	)

	// Migration metrics
	MigrationChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapengine_migration_checks_total",
			Help: "DBC migration lookups by outcome",
		},
		[]string{"outcome"},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapengine_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swapengine_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
