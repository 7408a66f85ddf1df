// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

/*
Package trakt is a Trakt API client limited to what real-time scrobbling
needs: media lookup by external id and the scrobble start/pause/stop calls.

Client Features:
  - OAuth bearer token and trakt-api-key authentication
  - Circuit breaker around every request (sony/gobreaker)
  - Process-wide write throttle: scrobble calls are serialized and start
    1.1s after the previous one returned (x/time/rate)
  - Memoized lookups; scrobble calls bypass the cache

Related Files:
  - request.go: HTTP request helpers
  - errors.go: APIError and classification helpers
  - search.go: FindByMedia
  - scrobbler.go: per-media scrobble session
  - proxy.go, middleware.go, throttle.go: rate-limited session proxy
  - circuit_breaker.go: breaker wiring and metrics
*/
package trakt

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/plextraktsync/internal/cache"
	"github.com/tomtom215/plextraktsync/internal/models"
)

// DefaultAPIURL is the production Trakt API.
const DefaultAPIURL = "https://api.trakt.tv"

// ClientConfig configures a Client.
type ClientConfig struct {
	APIURL      string
	ClientID    string
	AccessToken string
	AppVersion  string
	AppDate     string

	RequestTimeout time.Duration
	LookupCacheTTL time.Duration // zero disables lookup memoization
	BreakerTimeout time.Duration

	// Throttle spaces scrobble calls. Nil selects the shared process-wide
	// throttle from DefaultThrottle.
	Throttle *Throttle
}

// Client handles communication with the Trakt API
type Client struct {
	baseURL     string
	clientID    string
	accessToken string
	appVersion  string
	appDate     string

	httpClient *http.Client
	throttle   *Throttle
	breaker    *circuitBreaker

	lookupTTL time.Duration
	lookups   *cache.Cache[*models.TraktMedia]
}

// NewClient creates a Trakt API client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.APIURL
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	throttle := cfg.Throttle
	if throttle == nil {
		throttle = DefaultThrottle()
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		clientID:    cfg.ClientID,
		accessToken: cfg.AccessToken,
		appVersion:  cfg.AppVersion,
		appDate:     cfg.AppDate,
		httpClient:  &http.Client{Timeout: timeout},
		throttle:    throttle,
		breaker:     newCircuitBreaker("trakt-api", cfg.BreakerTimeout),
		lookupTTL:   cfg.LookupCacheTTL,
		lookups:     cache.New[*models.TraktMedia](cfg.LookupCacheTTL),
	}
}

// Throttle returns the write throttle shared by this client's sessions.
func (c *Client) Throttle() *Throttle {
	return c.throttle
}

// Close releases the lookup cache.
func (c *Client) Close() {
	c.lookups.Close()
}

// userSettings is the subset of GET /users/settings used to verify the token.
type userSettings struct {
	User struct {
		Username string `json:"username"`
	} `json:"user"`
}

// CurrentUser returns the username the access token belongs to. Use
// IsAuthError on the result to detect a bad or expired token.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	var settings userSettings
	if err := c.doRequest(ctx, requestConfig{
		method: http.MethodGet,
		path:   "/users/settings",
	}, &settings); err != nil {
		return "", fmt.Errorf("trakt user settings: %w", err)
	}
	return settings.User.Username, nil
}

// Scrobbler returns a rate-limited scrobble session for media. Creating the
// session makes no remote call.
func (c *Client) Scrobbler(media *models.TraktMedia) *ScrobblerProxy {
	return newScrobblerProxy(c.newScrobbler(media), c.throttle)
}
