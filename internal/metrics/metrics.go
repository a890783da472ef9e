// Package metrics declares the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PersistenceOperations counts facade calls by outcome ("ok" or a
	// failure code).
	PersistenceOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemapulse_persistence_operations_total",
			Help: "Total number of persistence operations",
		},
		[]string{"operation", "backend", "outcome"},
	)

	RatingRecomputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemapulse_rating_recomputations_total",
			Help: "Total number of movie rating recomputations requested",
		},
		[]string{"backend", "outcome"},
	)

	NotificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemapulse_notifications_published_total",
			Help: "Total number of events handed to the notification bus",
		},
		[]string{"type", "outcome"},
	)

	NotificationDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemapulse_notification_deliveries_total",
			Help: "Total number of notification delivery attempts",
		},
		[]string{"sink", "outcome"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinemapulse_circuit_breaker_state",
			Help: "Current circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemapulse_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
)
