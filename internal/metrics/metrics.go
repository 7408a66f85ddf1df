// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Notification outcomes recorded by RecordNotification.
const (
	OutcomeScrobbled    = "scrobbled"
	OutcomeInvalid      = "invalid"
	OutcomeIgnored      = "ignored"
	OutcomeUnmatched    = "unmatched"
	OutcomeDeduplicated = "deduplicated"
	OutcomeError        = "error"
)

var (
	// Plex WebSocket Metrics
	PlexWebSocketConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "plex_websocket_connected",
			Help: "Whether the Plex notification WebSocket is connected (1) or not (0)",
		},
	)

	PlexWebSocketReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "plex_websocket_reconnects_total",
			Help: "Total number of Plex WebSocket reconnection attempts",
		},
	)

	PlexWebSocketMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plex_websocket_messages_total",
			Help: "Total number of Plex WebSocket messages by notification type",
		},
		[]string{"type"}, // "playing", "timeline", "activity", ...
	)

	// Plex HTTP API Metrics
	PlexAPIDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plex_api_request_duration_seconds",
			Help:    "Duration of Plex API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "status"},
	)

	// Watch Listener Metrics
	NotificationsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watch_notifications_total",
			Help: "Total number of playing notifications by processing outcome",
		},
		[]string{"outcome"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watch_active_sessions",
			Help: "Current number of open scrobble sessions",
		},
	)

	// Trakt Metrics
	TraktScrobbleRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trakt_scrobble_requests_total",
			Help: "Total number of Trakt scrobble calls",
		},
		[]string{"action", "result"}, // action: start, pause, stop; result: success, failure
	)

	TraktScrobbleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trakt_scrobble_duration_seconds",
			Help:    "Duration of Trakt scrobble calls in seconds, excluding throttle wait",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)

	TraktThrottleWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trakt_throttle_wait_seconds",
			Help:    "Time spent waiting for the Trakt write throttle",
			Buckets: []float64{0.001, 0.01, 0.1, 0.25, 0.5, 1, 1.1, 2.5, 5, 10},
		},
	)

	TraktLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trakt_lookups_total",
			Help: "Total number of Trakt media lookups by result",
		},
		[]string{"result"}, // "cache_hit", "found", "not_found", "error"
	)

	TraktLookupCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trakt_lookup_cache_entries",
			Help: "Number of memoized Trakt lookups, including misses",
		},
	)

	TraktLookupCacheHitRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trakt_lookup_cache_hit_ratio",
			Help: "Share of Trakt lookups answered from the memo (0..1)",
		},
	)

	// Metrics Server
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of requests to the metrics and health server",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
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
)

// RecordNotification counts one playing notification by outcome.
func RecordNotification(outcome string) {
	NotificationsProcessed.WithLabelValues(outcome).Inc()
}

// RecordScrobble records a Trakt scrobble call.
func RecordScrobble(action string, duration time.Duration, err error) {
	TraktScrobbleDuration.WithLabelValues(action).Observe(duration.Seconds())
	result := "success"
	if err != nil {
		result = "failure"
	}
	TraktScrobbleRequests.WithLabelValues(action, result).Inc()
}

// RecordThrottleWait records how long a write waited for its throttle slot.
func RecordThrottleWait(d time.Duration) {
	TraktThrottleWait.Observe(d.Seconds())
}

// RecordLookup counts a Trakt lookup by result.
func RecordLookup(result string) {
	TraktLookups.WithLabelValues(result).Inc()
}

// SetLookupCache publishes the Trakt lookup memo size and hit rate, given
// as a percentage.
func SetLookupCache(entries int64, hitRatePercent float64) {
	TraktLookupCacheEntries.Set(float64(entries))
	TraktLookupCacheHitRatio.Set(hitRatePercent / 100)
}

// RecordPlexRequest records a Plex API request.
func RecordPlexRequest(endpoint, status string, duration time.Duration) {
	PlexAPIDuration.WithLabelValues(endpoint, status).Observe(duration.Seconds())
}

// RecordHTTPRequest records a request served by the metrics and health server.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// SetActiveSessions sets the open scrobble session gauge.
func SetActiveSessions(n int) {
	ActiveSessions.Set(float64(n))
}

// SetWebSocketConnected updates the Plex WebSocket connection gauge.
func SetWebSocketConnected(connected bool) {
	if connected {
		PlexWebSocketConnected.Set(1)
		return
	}
	PlexWebSocketConnected.Set(0)
}
