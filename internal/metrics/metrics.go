package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReceiptSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricecrowd_receipt_submissions_total",
		Help: "Receipt submissions by source and outcome.",
	}, []string{"source", "status"})

	VerificationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricecrowd_verification_requests_total",
		Help: "Calls to the receipt verification endpoint by outcome.",
	}, []string{"result"})

	OperationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricecrowd_operation_transitions_total",
		Help: "Applied operation status transitions.",
	}, []string{"status"})

	PropagatedItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricecrowd_propagated_items_total",
		Help: "Operation items written to the price index, or skipped.",
	}, []string{"outcome"})

	TelegramPolls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricecrowd_telegram_polls_total",
		Help: "Chat worker iterations by result.",
	}, []string{"result"})

	TelegramUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricecrowd_telegram_updates_total",
		Help: "Updates received from the chat platform.",
	})

	TelegramHandlerErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricecrowd_telegram_handler_errors_total",
		Help: "Updates whose handling failed.",
	})

	TelegramLastPoll = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pricecrowd_telegram_last_poll_timestamp_seconds",
		Help: "Unix time of the last successful long-poll.",
	})

	RateLimitWaitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricecrowd_ratelimit_wait_seconds",
		Help:    "Time spent waiting for an outbound send token.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
	})

	RateLimitTimeoutTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricecrowd_ratelimit_timeout_total",
		Help: "Sends abandoned while waiting for a token.",
	})
)
