package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cartly_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// NotificationsCreated counts created notifications by scope (user|admin) and type.
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cartly_notifications_created_total",
			Help: "Total number of notifications created",
		},
		[]string{"scope", "type"},
	)

	// NotificationsSwept counts notifications removed by background sweeps (expired|retention).
	NotificationsSwept = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cartly_notifications_swept_total",
			Help: "Total number of notifications removed by maintenance sweeps",
		},
		[]string{"scope", "reason"},
	)

	// OrdersPlaced counts completed checkouts.
	OrdersPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cartly_orders_placed_total",
			Help: "Total number of orders placed",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cartly_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
