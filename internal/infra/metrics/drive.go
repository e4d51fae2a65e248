package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(driveRequestsTotal, driveRequestDuration, searchesTotal, driveAuthInvalidatedTotal, downloadsCleanedTotal)
}

var (
	driveRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drive_requests_total",
			Help:      "Google Drive API calls by operation and result.",
		},
		[]string{"op", "result"},
	)

	driveRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "drive_request_duration_seconds",
			Help:      "Latency of Google Drive API calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "File searches by source.",
		},
		[]string{"source"}, // private, group, inline, delete
	)

	driveAuthInvalidatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drive_auth_invalidated_total",
			Help:      "Times the stored Drive token was discarded.",
		},
	)

	downloadsCleanedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_cleaned_total",
			Help:      "Stale download directories removed by the cleanup worker.",
		},
	)
)

func ObserveDriveRequest(op string, start time.Time, err error) {
	driveRequestsTotal.WithLabelValues(norm(op), result(err)).Inc()
	driveRequestDuration.WithLabelValues(norm(op)).Observe(time.Since(start).Seconds())
}

func IncSearch(source string) {
	searchesTotal.WithLabelValues(norm(source)).Inc()
}

func IncDriveAuthInvalidated() {
	driveAuthInvalidatedTotal.Inc()
}

func AddDownloadsCleaned(n int) {
	downloadsCleanedTotal.Add(float64(n))
}
