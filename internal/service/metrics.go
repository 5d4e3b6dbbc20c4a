package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	passesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payment_verification",
			Name:      "passes_total",
			Help:      "Total number of reconciliation passes.",
		},
		[]string{"result"}, // completed, skipped
	)

	paymentOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payment_verification",
			Name:      "payment_outcomes_total",
			Help:      "Per-payment verification outcomes.",
		},
		[]string{"outcome"},
	)

	passDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "payment_verification",
			Name:      "pass_duration_seconds",
			Help:      "Duration of reconciliation passes.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	notificationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payment_verification",
			Name:      "notification_failures_total",
			Help:      "Notifications that could not be delivered.",
		},
		[]string{"kind"}, // payer, admin
	)
)
