// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_dispatched_total",
			Help: "Total number of notification records persisted, by category",
		},
		[]string{"category"},
	)

	DispatchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dispatch_failures_total",
			Help: "Total number of failed dispatch attempts, by category and error code",
		},
		[]string{"category", "error_code"},
	)

	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "notification_dispatch_duration_seconds",
			Help: "Duration of a single dispatch (build + persist) in seconds",
		},
		[]string{"category"},
	)

	ActiveOrders = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "order_workflow_active_orders",
			Help: "Number of orders currently tracked by the workflow sequencer",
		},
	)

	TransportPushFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_transport_push_failures_total",
			Help: "Total number of best-effort transport pushes that failed",
		},
	)
)
