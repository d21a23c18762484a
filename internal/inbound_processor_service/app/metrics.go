package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	inboundMessagesProcessedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inbound_processor",
			Name:      "messages_processed_total",
			Help:      "Inbound professional messages processed, by outcome status.",
		},
		[]string{"status"},
	)

	inboundBatchSizeHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "inbound_processor",
			Name:      "batch_size",
			Help:      "Number of messages per inbound batch.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
		},
	)

	inboundMessageDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "inbound_processor",
			Name:      "message_processing_duration_seconds",
			Help:      "Duration of processing one inbound message.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	classifierFallbackCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "inbound_processor",
			Name:      "classifier_fallbacks_total",
			Help:      "Messages stored with the fallback intent because classification failed.",
		},
	)

	replySendFailuresCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inbound_processor",
			Name:      "reply_send_failures_total",
			Help:      "Replies to professionals that the gateway did not accept.",
		},
		[]string{"kind"}, // accept_confirmation, no_open_calls, completion
	)
)
