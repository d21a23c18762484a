package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_notifications_total",
			Help: "Service call notifications by result.",
		},
		[]string{"result"}, // sent, failed
	)
	NotificationRecipientsHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_notification_recipients",
			Help:    "Number of matching professionals per notify request.",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)
)
