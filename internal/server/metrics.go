package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	WebhookUpdates   prometheus.Counter
	UpdatesProcessed prometheus.Counter
	CommandsHandled  *prometheus.CounterVec
	HandlerErrors    prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		WebhookUpdates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "progress_bot",
			Name:      "webhook_updates_total",
			Help:      "Telegram updates received over the webhook endpoint.",
		}),
		UpdatesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "progress_bot",
			Name:      "updates_processed_total",
			Help:      "Telegram updates consumed by the bot loop.",
		}),
		CommandsHandled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "progress_bot",
			Name:      "commands_handled_total",
			Help:      "Bot commands handled, by command.",
		}, []string{"command"}),
		HandlerErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "progress_bot",
			Name:      "handler_errors_total",
			Help:      "Update handler failures, including row store errors.",
		}),
	}
}
