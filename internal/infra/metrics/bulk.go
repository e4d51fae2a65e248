package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(broadcastDeliveriesTotal, duplicateRemovalsTotal) }

var (
	broadcastDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcast_deliveries_total",
			Help:      "Broadcast message copies by result.",
		},
		[]string{"result"},
	)

	duplicateRemovalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_removals_total",
			Help:      "Duplicate files trashed by result.",
		},
		[]string{"result"},
	)
)

func IncBroadcastDelivery(err error) {
	broadcastDeliveriesTotal.WithLabelValues(result(err)).Inc()
}

func IncDuplicateRemoval(err error) {
	duplicateRemovalsTotal.WithLabelValues(result(err)).Inc()
}
