// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

// Package config loads PlexTraktSync configuration from defaults, an optional
// YAML file and environment variables (in increasing priority) using Koanf v2.
package config

import "time"

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Config is immutable after Load and safe for concurrent reads.
type Config struct {
	Plex       PlexConfig       `koanf:"plex"`
	Trakt      TraktConfig      `koanf:"trakt"`
	Watch      WatchConfig      `koanf:"watch"`
	Server     ServerConfig     `koanf:"server"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// PlexConfig holds the Plex Media Server connection.
//
// Environment Variables:
//   - PLEX_URL: Plex Media Server URL (e.g., http://localhost:32400)
//   - PLEX_TOKEN: X-Plex-Token (Settings > Network > Show Advanced)
//   - PLEX_REQUEST_TIMEOUT: HTTP timeout for library lookups (default: 30s)
type PlexConfig struct {
	URL            string        `koanf:"url" validate:"required,url"`
	Token          string        `koanf:"token" validate:"required"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gt=0"`
}

// TraktConfig holds the Trakt API connection and write throttling.
//
// Trakt rejects clients that POST faster than roughly once per second, so
// PostDelay is the minimum spacing between scrobble calls. It defaults to
// trakt.PostDelay (1.1s) and may only be raised.
//
// Environment Variables:
//   - TRAKT_API_URL: API base URL (default: https://api.trakt.tv)
//   - TRAKT_CLIENT_ID: OAuth application client ID (trakt-api-key header)
//   - TRAKT_ACCESS_TOKEN: OAuth access token for the scrobbling user
//   - TRAKT_POST_DELAY: Minimum delay between write calls (default and floor: 1.1s)
//   - TRAKT_LOOKUP_CACHE_TTL: How long search results are memoized (default: 1h)
type TraktConfig struct {
	APIURL         string        `koanf:"api_url" validate:"required,url"`
	ClientID       string        `koanf:"client_id" validate:"required"`
	AccessToken    string        `koanf:"access_token" validate:"required"`
	AppVersion     string        `koanf:"app_version"`
	PostDelay      time.Duration `koanf:"post_delay"`
	LookupCacheTTL time.Duration `koanf:"lookup_cache_ttl" validate:"gte=0"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gt=0"`
	BreakerTimeout time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
}

// WatchConfig tunes the real-time listener.
//
// DedupeWindow drops notifications identical to one already seen for the same
// session within the window. Zero disables deduplication, so every repeated
// "paused" still reaches Trakt.
type WatchConfig struct {
	DedupeWindow time.Duration `koanf:"dedupe_window" validate:"gte=0"`
	QueueSize    int           `koanf:"queue_size" validate:"gte=1"`
}

// ServerConfig holds the metrics and health HTTP server.
type ServerConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Listen          string        `koanf:"listen" validate:"omitempty,hostname_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// SupervisorConfig mirrors suture's failure handling knobs.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold" validate:"gte=0"`
	FailureDecay     float64       `koanf:"failure_decay" validate:"gte=0"`
	FailureBackoff   time.Duration `koanf:"failure_backoff" validate:"gte=0"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}
