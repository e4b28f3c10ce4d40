package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method", "status_code"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"handler", "method", "status_code"},
	)
)

var (
	LedgerCopiesSold = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_copies_sold",
			Help: "Copies sold according to the ledger",
		},
	)

	LedgerCopiesRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_copies_remaining",
			Help: "Copies still available in the edition",
		},
	)

	LedgerTotalRevenue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_total_revenue",
			Help: "Cumulative revenue recorded in the ledger",
		},
	)

	QuoteRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quote_requests_total",
			Help: "Total number of price quote requests",
		},
	)

	QuoteFailureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_failure_total",
			Help: "Total number of failed price quotes",
		},
		[]string{"reason"},
	)

	SaleRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sale_recorded_total",
			Help: "Total number of sales applied to the ledger",
		},
	)

	SaleReplayTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sale_replay_total",
			Help: "Total number of idempotent replays of already-processed transactions",
		},
	)

	SaleFailureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sale_failure_total",
			Help: "Total number of failed sale recordings",
		},
		[]string{"reason"},
	)
)

var (
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"query_type", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

var (
	RedisCommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_command_duration_seconds",
			Help:    "Duration of Redis commands in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"command"},
	)

	RedisLockSuccessTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_lock_success_total",
			Help: "Total number of successful lock acquisitions",
		},
		[]string{"lock_type"},
	)

	RedisLockFailureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_lock_failure_total",
			Help: "Total number of failed lock acquisitions",
		},
		[]string{"lock_type", "reason"},
	)

	RateLimitRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limit_rejected_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

func TimeDBQuery(queryType, table string) func() {
	start := time.Now()
	return func() {
		duration := time.Since(start).Seconds()
		DBQueryDuration.WithLabelValues(queryType, table).Observe(duration)
	}
}

func UpdateLedgerCounts(maxCopies, copiesSold int, totalRevenue float64) {
	LedgerCopiesSold.Set(float64(copiesSold))
	LedgerCopiesRemaining.Set(float64(maxCopies - copiesSold))
	LedgerTotalRevenue.Set(totalRevenue)
}

func RecordQuoteRequest() {
	QuoteRequestsTotal.Inc()
}

func RecordQuoteFailure(reason string) {
	QuoteFailureTotal.WithLabelValues(reason).Inc()
}

func RecordSaleApplied() {
	SaleRecordedTotal.Inc()
}

func RecordSaleReplay() {
	SaleReplayTotal.Inc()
}

func RecordSaleFailure(reason string) {
	SaleFailureTotal.WithLabelValues(reason).Inc()
}
