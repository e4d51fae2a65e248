package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramUpdatesTotal,
		telegramCommandsReceivedTotal,
		telegramRateLimitTriggeredTotal,
		gateRejectionsTotal,
		sessionModeEnteredTotal,
	)
}

var (
	telegramUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telegram_updates_total",
			Help:      "Incoming updates by kind.",
		},
		[]string{"kind"}, // message, callback, inline, member
	)

	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telegram_commands_received_total",
			Help:      "Counts incoming messages and commands from users.",
		},
		[]string{"command"},
	)

	telegramRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telegram_rate_limit_triggered_total",
			Help:      "Total number of times users have been rate-limited.",
		},
	)

	gateRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_rejections_total",
			Help:      "Updates rejected before dispatch.",
		},
		[]string{"reason"}, // not_member, banned
	)

	sessionModeEnteredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_mode_entered_total",
			Help:      "Interaction modes entered by admins and users.",
		},
		[]string{"mode"},
	)
)

func IncTelegramUpdate(kind string) {
	telegramUpdatesTotal.WithLabelValues(norm(kind)).Inc()
}

func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncRateLimitTriggered() {
	telegramRateLimitTriggeredTotal.Inc()
}

func IncGateRejection(reason string) {
	gateRejectionsTotal.WithLabelValues(norm(reason)).Inc()
}

func IncModeEntered(mode string) {
	sessionModeEnteredTotal.WithLabelValues(norm(mode)).Inc()
}
