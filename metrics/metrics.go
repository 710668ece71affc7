package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesProcessed counts handled event messages per topic and handler.
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shijia",
			Name:      "messages_processed_total",
			Help:      "The total number of processed messages",
		},
		[]string{"topic", "handler"},
	)

	MessagesProcessingFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shijia",
			Name:      "messages_processing_failed_total",
			Help:      "The total number of message processing failures",
		},
		[]string{"topic", "handler"},
	)

	MessagesProcessingDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace:  "shijia",
			Name:       "messages_processing_duration_seconds",
			Help:       "The total time spent processing messages",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"topic", "handler"},
	)

	// OrdersPaid counts successful pending->paid transitions, labeled by the
	// source that won the confirmation race.
	OrdersPaid = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shijia",
			Name:      "orders_paid_total",
			Help:      "The total number of orders transitioned to paid",
		},
		[]string{"source"},
	)
)
