package provider

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_gateway_requests_total",
			Help: "Outbound messaging gateway requests by provider and result.",
		},
		[]string{"provider", "result"}, // result: sent, failed, skipped
	)
	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_gateway_request_duration_seconds",
			Help:    "Latency of outbound messaging gateway requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
)
