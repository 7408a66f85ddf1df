// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package plex

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/plextraktsync/internal/logging"
	"github.com/tomtom215/plextraktsync/internal/metrics"
	"github.com/tomtom215/plextraktsync/internal/models"
)

const (
	defaultReconnectDelay    = 1 * time.Second
	defaultMaxReconnectDelay = 32 * time.Second
	defaultPingInterval      = 30 * time.Second
	defaultReadTimeout       = 60 * time.Second
)

// WebSocketClient streams "playing" notifications from Plex Media Server.
//
// It connects to /:/websockets/notifications and forwards every playing
// container, unmodified, on the output channel. It is the single producer
// for that channel and never closes it.
//
// Key Features:
//   - Automatic reconnection with exponential backoff (1s .. 32s)
//   - Ping keepalive (30-second interval, 60-second read deadline)
//   - Runs as a suture service: Serve blocks until the context ends
type WebSocketClient struct {
	baseURL string
	token   string
	out     chan<- models.PlexNotificationContainer

	dialer *websocket.Dialer

	connMu sync.RWMutex
	conn   *websocket.Conn

	reconnectDelay    time.Duration
	maxReconnectDelay time.Duration
	pingInterval      time.Duration
	readTimeout       time.Duration

	logger zerolog.Logger
}

// NewWebSocketClient creates a client that delivers playing notifications on out.
func NewWebSocketClient(baseURL, token string, out chan<- models.PlexNotificationContainer) *WebSocketClient {
	return &WebSocketClient{
		baseURL: baseURL,
		token:   token,
		out:     out,
		dialer: &websocket.Dialer{
			HandshakeTimeout:  10 * time.Second,
			EnableCompression: true,
		},
		reconnectDelay:    defaultReconnectDelay,
		maxReconnectDelay: defaultMaxReconnectDelay,
		pingInterval:      defaultPingInterval,
		readTimeout:       defaultReadTimeout,
		logger:            logging.WithComponent("plex-websocket"),
	}
}

// String implements fmt.Stringer for suture service naming.
func (c *WebSocketClient) String() string {
	return "plex-websocket"
}

// Serve connects and reads notifications until ctx is canceled, reconnecting
// with exponential backoff whenever the connection drops.
func (c *WebSocketClient) Serve(ctx context.Context) error {
	delay := c.reconnectDelay

	for {
		connected, err := c.connectAndRead(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if connected {
			delay = c.reconnectDelay
		}
		if err != nil {
			c.logger.Warn().Err(err).Dur("retry_in", delay).Msg("Plex WebSocket disconnected")
		} else {
			c.logger.Info().Dur("retry_in", delay).Msg("Plex WebSocket closed by server")
		}
		metrics.PlexWebSocketReconnects.Inc()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		if !connected {
			delay *= 2
			if delay > c.maxReconnectDelay {
				delay = c.maxReconnectDelay
			}
		}
	}
}

// connectAndRead runs one connection lifetime. connected reports whether the
// dial succeeded; err is nil when the server closed the connection normally.
func (c *WebSocketClient) connectAndRead(ctx context.Context) (connected bool, err error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return false, err
	}

	c.setConn(conn)
	metrics.SetWebSocketConnected(true)
	c.logger.Info().Msg("Plex WebSocket connected")

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.pingLoop(ctx, conn, done)
	}()

	err = c.readLoop(ctx, conn)

	close(done)
	wg.Wait()
	c.closeConnection()
	metrics.SetWebSocketConnected(false)

	return true, err
}

// dial establishes the WebSocket connection.
func (c *WebSocketClient) dial(ctx context.Context) (*websocket.Conn, error) {
	wsURL, err := c.buildWebSocketURL()
	if err != nil {
		return nil, fmt.Errorf("build websocket url: %w", err)
	}

	conn, resp, err := c.dialer.DialContext(ctx, wsURL, nil)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	return conn, nil
}

// buildWebSocketURL constructs the Plex WebSocket URL with authentication
//
// Format: ws://{host}:{port}/:/websockets/notifications?X-Plex-Token={token}
func (c *WebSocketClient) buildWebSocketURL() (string, error) {
	parsedURL, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if parsedURL.Host == "" {
		return "", fmt.Errorf("base url %q has no host", c.baseURL)
	}

	scheme := "ws"
	if parsedURL.Scheme == "https" {
		scheme = "wss"
	}

	wsURL := url.URL{
		Scheme:   scheme,
		Host:     parsedURL.Host,
		Path:     "/:/websockets/notifications",
		RawQuery: url.Values{"X-Plex-Token": []string{c.token}}.Encode(),
	}
	return wsURL.String(), nil
}

// readLoop reads messages until the connection fails or ctx ends.
func (c *WebSocketClient) readLoop(ctx context.Context, conn *websocket.Conn) error {
	// Unblock ReadMessage on shutdown.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	})

	for {
		if err := conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return fmt.Errorf("set read deadline: %w", err)
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info().Msg("Plex WebSocket closed normally")
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}

		if err := c.handleMessage(ctx, message); err != nil {
			return err
		}
	}
}

// handleMessage decodes a message and forwards playing containers.
//
//	{"NotificationContainer": {"type": "playing", "size": 1,
//	  "PlaySessionStateNotification": [...]}}
//
// Undecodable messages are logged and skipped. The only error returned is
// ctx cancellation while waiting for the consumer.
func (c *WebSocketClient) handleMessage(ctx context.Context, data []byte) error {
	var wrapper models.PlexNotificationWrapper
	if err := json.Unmarshal(data, &wrapper); err != nil {
		c.logger.Warn().Err(err).Int("bytes", len(data)).Msg("Failed to parse Plex notification")
		return nil
	}

	container := wrapper.NotificationContainer
	metrics.PlexWebSocketMessages.WithLabelValues(container.Type).Inc()

	if container.Type != models.NotificationTypePlaying {
		c.logger.Trace().Str("type", container.Type).Msg("Ignoring Plex notification")
		return nil
	}

	select {
	case c.out <- container:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pingLoop sends a ping every pingInterval until done is closed.
func (c *WebSocketClient) pingLoop(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
				c.logger.Debug().Err(err).Msg("Plex WebSocket ping failed")
				// Force the read loop to notice the dead connection.
				_ = conn.Close()
				return
			}
			c.logger.Trace().Msg("Plex WebSocket ping sent")
		}
	}
}

func (c *WebSocketClient) setConn(conn *websocket.Conn) {
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
}

// closeConnection sends a close frame and closes the connection.
func (c *WebSocketClient) closeConnection() {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return
	}
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Plex WebSocket close failed")
	}
	c.conn = nil
}

// IsConnected returns true if a WebSocket connection is established
func (c *WebSocketClient) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.conn != nil
}
