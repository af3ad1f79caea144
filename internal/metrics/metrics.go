package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FoodItemsCreated counts food items persisted after a successful upload.
	FoodItemsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodreels_food_items_created_total",
			Help: "Total number of food items created",
		},
	)

	// EngagementToggles counts committed like/save toggles.
	EngagementToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodreels_engagement_toggles_total",
			Help: "Total number of like/save toggles by kind and resulting state",
		},
		[]string{"kind", "result"}, // result: added, removed
	)

	StorageUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodreels_storage_uploads_total",
			Help: "Total number of object storage uploads by provider and outcome",
		},
		[]string{"provider", "result"}, // result: success, failure, rejected
	)

	StorageUploadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodreels_storage_upload_duration_seconds",
			Help:    "Duration of object storage uploads in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "foodreels_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodreels_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)
