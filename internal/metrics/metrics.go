// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package metrics defines the Prometheus collectors exported on /metrics.
//
// Collectors are registered with the default registry through promauto and
// are safe for concurrent use. Recording helpers keep label handling in one
// place so call sites stay one line.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Live Sync Metrics
	LiveTicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seawatch_live_ticks_total",
			Help: "Total number of live sync ticks issued",
		},
	)

	LiveFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seawatch_live_fetch_duration_seconds",
			Help:    "Duration of live feed fetches in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"feed"},
	)

	LiveFeedFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seawatch_live_feed_failures_total",
			Help: "Total number of failed live feed fetches (prior data kept)",
		},
		[]string{"feed"},
	)

	LiveStaleDrops = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seawatch_live_stale_drops_total",
			Help: "Total number of feed responses discarded because a newer generation was issued",
		},
		[]string{"feed"},
	)

	LiveLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "seawatch_live_last_success_timestamp",
			Help: "Unix timestamp of the last applied feed response",
		},
		[]string{"feed"},
	)

	LiveGeneration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "seawatch_live_generation",
			Help: "Generation of the most recently applied render state",
		},
	)

	LiveVessels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "seawatch_live_vessels",
			Help: "Vessels with a valid position in the current render state",
		},
	)

	LiveExcludedVessels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "seawatch_live_excluded_vessels",
			Help: "Vessels excluded from the current render state for invalid or missing positions",
		},
	)

	LiveZones = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "seawatch_live_zones",
			Help: "Risk zones in the current render state",
		},
	)

	LiveZoneShortfall = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "seawatch_live_zone_shortfall",
			Help: "Number of zones missing below the configured zone floor",
		},
	)

	// Upstream Backend Metrics
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seawatch_upstream_request_duration_seconds",
			Help:    "Duration of upstream backend requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	UpstreamRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seawatch_upstream_request_errors_total",
			Help: "Total number of failed upstream backend requests",
		},
		[]string{"endpoint", "kind"},
	)

	LoginRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seawatch_login_retries_total",
			Help: "Total number of login retries after an unavailable upstream",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Alert Pipeline Metrics
	AlertQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seawatch_alert_queries_total",
			Help: "Total number of alert queries issued",
		},
		[]string{"trigger"}, // "search", "filter", "page", "reload"
	)

	AlertStaleResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seawatch_alert_stale_results_total",
			Help: "Total number of alert results discarded because a newer query was issued",
		},
	)

	AlertQueryFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seawatch_alert_query_failures_total",
			Help: "Total number of alert queries that failed upstream",
		},
	)

	// Triage Metrics
	AuthzRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seawatch_authz_rejections_total",
			Help: "Total number of actions rejected by the role capability matrix",
		},
		[]string{"role", "action"},
	)

	AnnotationWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seawatch_annotation_writes_total",
			Help: "Total number of local annotation writes",
		},
		[]string{"kind"}, // "ack", "note"
	)

	ActiveConsoles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "seawatch_active_consoles",
			Help: "Current number of operator triage consoles",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// ErrorKinder is implemented by errors that know their metric label.
type ErrorKinder interface {
	Kind() string
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordUpstreamRequest records the duration of an upstream call and, on
// failure, its error kind.
func RecordUpstreamRequest(endpoint string, duration time.Duration, err error) {
	UpstreamRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	if err != nil {
		UpstreamRequestErrors.WithLabelValues(endpoint, errorKind(err)).Inc()
	}
}

// RecordFeedResult records one live feed fetch.
func RecordFeedResult(feed string, duration time.Duration, err error) {
	LiveFetchDuration.WithLabelValues(feed).Observe(duration.Seconds())
	if err != nil {
		LiveFeedFailures.WithLabelValues(feed).Inc()
	}
}

// RecordFeedApplied marks a feed response as applied now.
func RecordFeedApplied(feed string) {
	LiveLastSuccess.WithLabelValues(feed).Set(float64(time.Now().Unix()))
}

// RecordRenderState publishes the size of the current render state.
func RecordRenderState(generation uint64, vessels, excluded, zones, shortfall int) {
	LiveGeneration.Set(float64(generation))
	LiveVessels.Set(float64(vessels))
	LiveExcludedVessels.Set(float64(excluded))
	LiveZones.Set(float64(zones))
	LiveZoneShortfall.Set(float64(shortfall))
}

func errorKind(err error) string {
	var k ErrorKinder
	if errors.As(err, &k) {
		return k.Kind()
	}
	return "other"
}
