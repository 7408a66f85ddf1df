// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package plex

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/plextraktsync/internal/metrics"
)

// requestConfig holds configuration for building HTTP requests
type requestConfig struct {
	method   string
	endpoint string // metrics label, e.g. "metadata"
	path     string
	query    url.Values
}

// doRequest executes a Plex API request and decodes a JSON response into
// result. A 404 is reported as ErrNotFound; any other non-200 status is an error.
func (c *Client) doRequest(ctx context.Context, cfg requestConfig, result interface{}) error {
	reqURL := c.baseURL + cfg.path

	req, err := http.NewRequestWithContext(ctx, cfg.method, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/json")

	if len(cfg.query) > 0 {
		req.URL.RawQuery = cfg.query.Encode()
	}

	start := time.Now()
	resp, err := c.doRequestWithRateLimit(req)
	if err != nil {
		metrics.RecordPlexRequest(cfg.endpoint, "error", time.Since(start))
		return err
	}
	defer resp.Body.Close()
	metrics.RecordPlexRequest(cfg.endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", cfg.path, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// doJSONRequest is a convenience wrapper for GET requests
func (c *Client) doJSONRequest(ctx context.Context, endpoint, path string, query url.Values, result interface{}) error {
	return c.doRequest(ctx, requestConfig{
		method:   http.MethodGet,
		endpoint: endpoint,
		path:     path,
		query:    query,
	}, result)
}
