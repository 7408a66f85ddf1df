// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package trakt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	apiVersion      = "2"
	maxErrorBodyLen = 512
)

// requestConfig holds configuration for building HTTP requests
type requestConfig struct {
	method string
	path   string
	query  url.Values
	body   interface{}
}

// doRequest executes a Trakt API request through the circuit breaker and
// decodes a JSON response into result. Non-2xx responses become *APIError.
func (c *Client) doRequest(ctx context.Context, cfg requestConfig, result interface{}) error {
	return c.breaker.execute(func() error {
		return c.send(ctx, cfg, result)
	})
}

func (c *Client) send(ctx context.Context, cfg requestConfig, result interface{}) error {
	reqURL := c.baseURL + cfg.path
	if len(cfg.query) > 0 {
		reqURL += "?" + cfg.query.Encode()
	}

	body := io.Reader(http.NoBody)
	if cfg.body != nil {
		data, err := json.Marshal(cfg.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.method, reqURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("trakt-api-version", apiVersion)
	req.Header.Set("trakt-api-key", c.clientID)
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	if c.appVersion != "" {
		req.Header.Set("User-Agent", "PlexTraktSync/"+c.appVersion)
	}
	if cacheBypassed(ctx) {
		req.Header.Set("Cache-Control", "no-cache")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(cfg, resp)
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func newAPIError(cfg requestConfig, resp *http.Response) *APIError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))

	apiErr := &APIError{
		Method:     cfg.method,
		Path:       cfg.path,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(data)),
	}
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil {
			apiErr.RetryAfter = time.Duration(seconds) * time.Second
		}
	}
	return apiErr
}
