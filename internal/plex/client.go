// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

/*
Package plex talks to a Plex Media Server: the REST API for library lookups
and the notification WebSocket for real-time playback events.

Client Features:
  - X-Plex-Token authentication
  - Automatic rate limit handling with exponential backoff (HTTP 429)
  - JSON responses decoded with goccy/go-json

Related Files:
  - request.go: HTTP request helpers
  - library.go: FetchItem, the media index used by the watch pipeline
  - websocket.go: notification stream
*/
package plex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/plextraktsync/internal/logging"
)

// ErrNotFound is returned when Plex answers 404 for a resource.
var ErrNotFound = errors.New("plex: not found")

// Client handles communication with the Plex Media Server API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	maxRetries int
	baseDelay  time.Duration
}

// IdentityResponse is the body of GET /identity.
type IdentityResponse struct {
	MediaContainer IdentityContainer `json:"MediaContainer"`
}

// IdentityContainer wraps server identity information
type IdentityContainer struct {
	MachineIdentifier string `json:"machineIdentifier"`
	Version           string `json:"version"`
}

// NewClient creates a Plex API client.
//
// Parameters:
//   - baseURL: Plex Media Server URL (e.g., "http://localhost:32400")
//   - token: X-Plex-Token for authentication
//   - timeout: per-request HTTP timeout
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: 5,
		baseDelay:  time.Second,
	}
}

// BaseURL returns the server URL the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token returns the X-Plex-Token, shared with the WebSocket client.
func (c *Client) Token() string {
	return c.token
}

// Identity fetches the server identity. It doubles as a connectivity and
// token check at startup.
func (c *Client) Identity(ctx context.Context) (*IdentityContainer, error) {
	var resp IdentityResponse
	if err := c.doJSONRequest(ctx, "identity", "/identity", nil, &resp); err != nil {
		return nil, fmt.Errorf("plex identity: %w", err)
	}
	return &resp.MediaContainer, nil
}

// Ping verifies the server is reachable and the token is accepted.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Identity(ctx)
	return err
}

// doRequestWithRateLimit executes an HTTP request, retrying on HTTP 429.
//
//   - Max c.maxRetries retry attempts
//   - Exponential backoff: 1s, 2s, 4s, 8s, 16s
//   - Respects Retry-After header (seconds) if present
func (c *Client) doRequestWithRateLimit(req *http.Request) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("execute request: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		resp.Body.Close()

		if attempt == c.maxRetries {
			return nil, fmt.Errorf("rate limit exceeded after %d retries", c.maxRetries)
		}

		retryDelay := c.baseDelay * (1 << attempt)
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				retryDelay = seconds
			}
		}

		logging.Warn().
			Dur("retry_delay", retryDelay).
			Int("attempt", attempt+1).
			Int("max_retries", c.maxRetries).
			Msg("Plex API rate limited (HTTP 429), retrying")

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(retryDelay):
		}
	}
}
