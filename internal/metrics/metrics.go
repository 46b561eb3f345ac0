// Package metrics defines Prometheus metrics for the SKU matcher.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "skum"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})
)

// Probe metrics.
var (
	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 when the last liveness probe succeeded, 0 otherwise.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 when the last readiness probe found the database reachable, 0 otherwise.",
	})
)

// Resolution metrics.
var (
	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolutions_total",
		Help:      "Total number of SKU resolutions by match method.",
	}, []string{"method"})

	NoMatchTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "no_match_total",
		Help:      "Total number of resolutions where no tier produced an accepted candidate.",
	})

	ExcludedDevicesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "excluded_devices_total",
		Help:      "Total number of devices excluded by failure markers in notes.",
	})

	CarrierOverridesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "carrier_overrides_total",
		Help:      "Total number of resolutions where notes overrode the recorded carrier.",
	})

	ResolutionTier = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolution_tier_total",
		Help:      "Total number of accepted matches by the tier that produced them.",
	}, []string{"tier"})

	ResolutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "resolution_duration_seconds",
		Help:      "Duration of a single device resolution in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
	})

	MatchScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "match_score",
		Help:      "Distribution of accepted match scores.",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
	})
)

// Catalog metrics.
var (
	CatalogQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_queries_total",
		Help:      "Total number of catalog candidate queries by tier.",
	}, []string{"tier"})

	CatalogQueryErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_query_errors_total",
		Help:      "Total number of failed catalog candidate queries.",
	})

	CatalogCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "catalog_candidates",
		Help:      "Number of candidate rows returned per catalog query.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})
)

// Batch metrics.
var (
	BatchDevicesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batch_devices_total",
		Help:      "Total number of devices processed by rematch runs, by outcome.",
	}, []string{"outcome"})

	BatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_duration_seconds",
		Help:      "Duration of rematch runs in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	BatchLastSuccessTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "batch_last_success_timestamp",
		Help:      "Unix timestamp of the last successful rematch run.",
	})
)
