// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mobilebill",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mobilebill",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	CountersIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mobilebill",
		Name:      "unit_counters_issued_total",
		Help:      "Counter values handed out by the allocator.",
	})

	UnitsMinted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mobilebill",
		Name:      "units_minted_total",
		Help:      "Unit identifiers minted by category.",
	}, []string{"category"})

	PurchasesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mobilebill",
		Name:      "purchases_received_total",
		Help:      "Receive runs by outcome (received, re_received, skipped, failed).",
	}, []string{"outcome"})

	PurchasesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mobilebill",
		Name:      "purchases_created_total",
		Help:      "Purchases stored as pending.",
	})

	ReceivedValue = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mobilebill",
		Name:      "purchase_received_value_total",
		Help:      "Sum of grand totals of received purchases.",
	})

	IdentityDemotions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mobilebill",
		Name:      "imei_identity_demotions_total",
		Help:      "Mobile lines stored without IMEIs after a uniqueness conflict.",
	})

	SkippedLines = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mobilebill",
		Name:      "purchase_lines_skipped_total",
		Help:      "Purchase lines with a category that has no inventory effect.",
	})
)
