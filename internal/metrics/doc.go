// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

/*
Package metrics provides Prometheus metrics for the scrobble pipeline.

All collectors are registered on the default registry through promauto and
exposed by the metrics server at /metrics:

	curl http://127.0.0.1:9237/metrics

# Available Metrics

Plex:
  - plex_websocket_connected, plex_websocket_reconnects_total
  - plex_websocket_messages_total{type}
  - plex_api_request_duration_seconds{endpoint,status}

Watch listener:
  - watch_notifications_total{outcome}
  - watch_active_sessions

Trakt:
  - trakt_scrobble_requests_total{action,result}
  - trakt_scrobble_duration_seconds{action}
  - trakt_throttle_wait_seconds
  - trakt_lookups_total{result}
  - circuit_breaker_* for the Trakt write breaker
*/
package metrics
