package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(buildInfo, adminCommandTotal) }

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Always 1; labels carry the running version and commit.",
		},
		[]string{"version", "commit"},
	)

	adminCommandTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_commands_total",
			Help:      "Admin commands and menu buttons by outcome of the privilege check.",
		},
		[]string{"command", "status"}, // authorized, unauthorized
	)
)

func SetBuildInfo(version, commit string) {
	buildInfo.Reset()
	buildInfo.WithLabelValues(version, commit).Set(1)
}

// IncAdminCommand takes "/cmd" for commands and "cb:action" for buttons.
func IncAdminCommand(command, status string) {
	adminCommandTotal.WithLabelValues(norm(command), norm(status)).Inc()
}
