package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dbPoolStats, dbStatementErrorsTotal, dbReconnectsTotal) }

var (
	dbPoolStats = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_pool_stats",
			Help:      "Current state of the database connection pool.",
		},
		[]string{"state"}, // 'total', 'idle', 'in_use'
	)

	dbStatementErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_statement_errors_total",
			Help:      "Failed statements swallowed by the store.",
		},
		[]string{"backend"},
	)

	dbReconnectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_reconnects_total",
			Help:      "Connection pool reopen attempts.",
		},
		[]string{"result"},
	)
)

func SetDBPoolStats(total, idle, inUse int32) {
	dbPoolStats.WithLabelValues("total").Set(float64(total))
	dbPoolStats.WithLabelValues("idle").Set(float64(idle))
	dbPoolStats.WithLabelValues("in_use").Set(float64(inUse))
}

func IncStatementError(backend string) {
	dbStatementErrorsTotal.WithLabelValues(norm(backend)).Inc()
}

func IncReconnect(err error) {
	dbReconnectsTotal.WithLabelValues(result(err)).Inc()
}
