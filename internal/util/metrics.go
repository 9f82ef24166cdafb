package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CollectionFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "console_collection_fetches_total",
		Help: "Total collection fetches against the backends",
	}, []string{"collection", "outcome"})

	CollectionFetchLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "console_collection_fetch_latency_seconds",
		Help:    "Latency of collection fetches",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection"})

	StaleFetchesDiscarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "console_stale_fetches_discarded_total",
		Help: "Fetch responses discarded because a newer fetch was issued",
	}, []string{"collection"})

	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "console_mutations_total",
		Help: "Total mutations issued through the console",
	}, []string{"resource", "action", "outcome"})

	PricingRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "console_pricing_rejections_total",
		Help: "Order submissions rejected by the pricing check",
	}, []string{"reason"})

	JoinRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "console_join_rejections_total",
		Help: "Join attempts rejected locally by the participation rules",
	})

	AuthFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "console_auth_failures_total",
		Help: "Authentication failures that cleared the stored credential",
	})

	AuditPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "console_audit_publish_failures_total",
		Help: "Audit events that could not be published",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
