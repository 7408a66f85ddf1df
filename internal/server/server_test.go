// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/plextraktsync/internal/metrics"
)

type fakeConn struct{ connected atomic.Bool }

func (f *fakeConn) IsConnected() bool { return f.connected.Load() }

type fakeSessions int

func (f fakeSessions) Len() int { return int(f) }

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, HealthStatus) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var status HealthStatus
	if strings.HasPrefix(path, "/healthz") {
		if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return rec, status
}

func TestHealth_Live(t *testing.T) {
	router := NewRouter(NewHandler(&fakeConn{}, fakeSessions(2), "1.2.3"))

	rec, status := get(t, router, "/healthz/live")
	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want 200", rec.Code)
	}
	if status.Version != "1.2.3" || status.ActiveSessions != 2 {
		t.Errorf("status = %+v", status)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
}

func TestHealth_Ready(t *testing.T) {
	conn := &fakeConn{}
	router := NewRouter(NewHandler(conn, nil, "dev"))

	rec, status := get(t, router, "/healthz/ready")
	if rec.Code != http.StatusServiceUnavailable || status.Status != "degraded" || status.PlexConnected {
		t.Errorf("disconnected: code = %d, status = %+v", rec.Code, status)
	}

	conn.connected.Store(true)
	rec, status = get(t, router, "/healthz/ready")
	if rec.Code != http.StatusOK || status.Status != "healthy" || !status.PlexConnected {
		t.Errorf("connected: code = %d, status = %+v", rec.Code, status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.RecordNotification(metrics.OutcomeScrobbled)
	router := NewRouter(NewHandler(&fakeConn{}, nil, "dev"))

	rec, _ := get(t, router, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "watch_notifications_total") {
		t.Error("metrics output missing watch_notifications_total")
	}
}

func TestUnknownRoute(t *testing.T) {
	router := NewRouter(NewHandler(&fakeConn{}, nil, "dev"))
	rec, _ := get(t, router, "/nope")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status code = %d, want 404", rec.Code)
	}
}

func TestNew(t *testing.T) {
	srv := New("127.0.0.1:9237", NewHandler(&fakeConn{}, nil, "dev"))
	if srv.Addr != "127.0.0.1:9237" || srv.Handler == nil || srv.ReadHeaderTimeout == 0 {
		t.Errorf("server = %+v", srv)
	}
}

func TestRequestMetricsUseRoutePattern(t *testing.T) {
	router := NewRouter(NewHandler(&fakeConn{}, nil, "dev"))
	get(t, router, "/healthz/live")
	get(t, router, "/does/not/exist")

	rec, _ := get(t, router, "/metrics")
	body := rec.Body.String()
	for _, want := range []string{
		`http_request_duration_seconds_count{method="GET",route="/healthz/live",status="200"}`,
		`http_request_duration_seconds_count{method="GET",route="unmatched",status="404"}`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}
