package notify

import "github.com/prometheus/client_golang/prometheus"

var (
	postsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bootkit",
			Subsystem: "notify",
			Name:      "posts_total",
			Help:      "Total number of notifications posted",
		},
		[]string{"channel"},
	)

	deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bootkit",
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Total number of listener invocations",
		},
		[]string{"channel"},
	)

	subscriptionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "bootkit",
			Subsystem: "notify",
			Name:      "subscriptions",
			Help:      "Live subscriptions per channel",
		},
		[]string{"channel"},
	)
)

func init() {
	prometheus.MustRegister(postsTotal, deliveriesTotal, subscriptionsActive)
}
