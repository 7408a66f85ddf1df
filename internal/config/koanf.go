// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/plextraktsync/internal/trakt"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/plextraktsync/config.yaml",
	"/etc/plextraktsync/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
func defaultConfig() *Config {
	return &Config{
		Plex: PlexConfig{
			URL:            "",
			Token:          "",
			RequestTimeout: 30 * time.Second,
		},
		Trakt: TraktConfig{
			APIURL:         "https://api.trakt.tv",
			ClientID:       "",
			AccessToken:    "",
			AppVersion:     "",
			PostDelay:      trakt.PostDelay,
			LookupCacheTTL: time.Hour,
			RequestTimeout: 30 * time.Second,
			BreakerTimeout: 2 * time.Minute,
		},
		Watch: WatchConfig{
			DedupeWindow: 0, // Disabled: repeated pauses still reach Trakt
			QueueSize:    64,
		},
		Server: ServerConfig{
			Enabled:         true,
			Listen:          "127.0.0.1:9237",
			ShutdownTimeout: 10 * time.Second,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5.0,
			FailureDecay:     30.0,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: explicit path, CONFIG_PATH, or the first of DefaultConfigPaths
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults. The result is validated before it is returned.
func LoadWithKoanf(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := path
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// PLEX_URL -> plex.url, TRAKT_POST_DELAY -> trakt.post_delay
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Load is LoadWithKoanf without an explicit config file path.
func Load() (*Config, error) {
	return LoadWithKoanf("")
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Plex
	"plex_url":             "plex.url",
	"plex_token":           "plex.token",
	"plex_request_timeout": "plex.request_timeout",

	// Trakt
	"trakt_api_url":          "trakt.api_url",
	"trakt_client_id":        "trakt.client_id",
	"trakt_access_token":     "trakt.access_token",
	"trakt_app_version":      "trakt.app_version",
	"trakt_post_delay":       "trakt.post_delay",
	"trakt_lookup_cache_ttl": "trakt.lookup_cache_ttl",
	"trakt_request_timeout":  "trakt.request_timeout",
	"trakt_breaker_timeout":  "trakt.breaker_timeout",

	// Watch listener
	"watch_dedupe_window": "watch.dedupe_window",
	"watch_queue_size":    "watch.queue_size",

	// Metrics server
	"metrics_enabled":          "server.enabled",
	"metrics_listen":           "server.listen",
	"metrics_shutdown_timeout": "server.shutdown_timeout",

	// Supervisor
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return an empty string so koanf skips them; random
// environment variables never pollute the config.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
