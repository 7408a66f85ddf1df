// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package plex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/plextraktsync/internal/models"
)

// mockPlexWebSocketServer creates a test WebSocket server that simulates Plex
type mockPlexWebSocketServer struct {
	server   *httptest.Server
	upgrader websocket.Upgrader
	connChan chan *websocket.Conn
}

func newMockPlexWebSocketServer(t *testing.T) *mockPlexWebSocketServer {
	t.Helper()
	mock := &mockPlexWebSocketServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		connChan: make(chan *websocket.Conn, 4),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/:/websockets/notifications" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("X-Plex-Token") != "test-token" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := mock.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		mock.connChan <- conn
	}))
	t.Cleanup(mock.server.Close)

	return mock
}

// accept waits for the client to connect and returns the server-side connection.
func (m *mockPlexWebSocketServer) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-m.connChan:
		t.Cleanup(func() { conn.Close() })
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("Server did not receive connection")
		return nil
	}
}

func sendNotification(t *testing.T, conn *websocket.Conn, container models.PlexNotificationContainer) {
	t.Helper()
	data, err := json.Marshal(models.PlexNotificationWrapper{NotificationContainer: container})
	if err != nil {
		t.Fatalf("marshal notification: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write notification: %v", err)
	}
}

func playing(state string, offset int64) models.PlexNotificationContainer {
	return models.PlexNotificationContainer{
		Type: models.NotificationTypePlaying,
		Size: 1,
		PlaySessionStateNotification: []models.PlexPlayingNotification{{
			SessionKey: "23", RatingKey: "9725", State: state, ViewOffset: offset,
		}},
	}
}

// startClient runs Serve in the background and returns the output channel.
func startClient(t *testing.T, mock *mockPlexWebSocketServer, token string) (<-chan models.PlexNotificationContainer, *WebSocketClient, <-chan error) {
	t.Helper()
	out := make(chan models.PlexNotificationContainer, 8)
	client := NewWebSocketClient(mock.server.URL, token, out)
	client.reconnectDelay = 10 * time.Millisecond
	client.maxReconnectDelay = 40 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- client.Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case <-errCh:
		case <-time.After(2 * time.Second):
			t.Error("Serve did not return after cancel")
		}
	})
	return out, client, errCh
}

func receive(t *testing.T, out <-chan models.PlexNotificationContainer) models.PlexNotificationContainer {
	t.Helper()
	select {
	case c := <-out:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no notification delivered")
		return models.PlexNotificationContainer{}
	}
}

func TestWebSocketClient_BuildURL(t *testing.T) {
	tests := []struct {
		baseURL string
		want    string
		wantErr bool
	}{
		{"http://localhost:32400", "ws://localhost:32400/:/websockets/notifications?X-Plex-Token=tok", false},
		{"https://plex.example.com", "wss://plex.example.com/:/websockets/notifications?X-Plex-Token=tok", false},
		{"localhost", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.baseURL, func(t *testing.T) {
			c := NewWebSocketClient(tt.baseURL, "tok", nil)
			got, err := c.buildWebSocketURL()
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildWebSocketURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("buildWebSocketURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWebSocketClient_DeliversPlayingNotifications(t *testing.T) {
	mock := newMockPlexWebSocketServer(t)
	out, client, _ := startClient(t, mock, "test-token")
	conn := mock.accept(t)

	// Non-playing messages and garbage are dropped by the transport.
	sendNotification(t, conn, models.PlexNotificationContainer{Type: models.NotificationTypeActivity, Size: 1})
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	sendNotification(t, conn, playing("playing", 0))
	sendNotification(t, conn, playing("paused", 30000))

	first := receive(t, out)
	if first.PlaySessionStateNotification[0].State != "playing" {
		t.Errorf("first state = %q, want playing", first.PlaySessionStateNotification[0].State)
	}
	second := receive(t, out)
	if second.PlaySessionStateNotification[0].ViewOffset != 30000 {
		t.Errorf("second viewOffset = %d, want 30000", second.PlaySessionStateNotification[0].ViewOffset)
	}

	if !client.IsConnected() {
		t.Error("IsConnected() = false while connected")
	}
}

func TestWebSocketClient_ForwardsMalformedPlayingContainers(t *testing.T) {
	mock := newMockPlexWebSocketServer(t)
	out, _, _ := startClient(t, mock, "test-token")
	conn := mock.accept(t)

	bad := playing("playing", 0)
	bad.Size = 2
	sendNotification(t, conn, bad)

	got := receive(t, out)
	if got.Size != 2 {
		t.Errorf("Size = %d, want 2 passed through for validation downstream", got.Size)
	}
}

func TestWebSocketClient_Reconnects(t *testing.T) {
	mock := newMockPlexWebSocketServer(t)
	out, _, _ := startClient(t, mock, "test-token")

	first := mock.accept(t)
	first.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "restart"))
	first.Close()

	second := mock.accept(t)
	sendNotification(t, second, playing("stopped", 1000))

	got := receive(t, out)
	if got.PlaySessionStateNotification[0].State != "stopped" {
		t.Errorf("state = %q, want stopped", got.PlaySessionStateNotification[0].State)
	}
}

func TestWebSocketClient_BadTokenKeepsRetrying(t *testing.T) {
	mock := newMockPlexWebSocketServer(t)
	out := make(chan models.PlexNotificationContainer, 1)
	client := NewWebSocketClient(mock.server.URL, "wrong-token", out)
	client.reconnectDelay = 5 * time.Millisecond
	client.maxReconnectDelay = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := client.Serve(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v, want deadline exceeded", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true with rejected token")
	}
}

func TestWebSocketClient_String(t *testing.T) {
	c := NewWebSocketClient("http://localhost:32400", "tok", nil)
	if !strings.Contains(c.String(), "plex") {
		t.Errorf("String() = %q", c.String())
	}
}
