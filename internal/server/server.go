// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

// Package server exposes Prometheus metrics and health checks over HTTP
// using the Chi router.
//
// Routes:
//   - GET /metrics: Prometheus exposition
//   - GET /healthz/live: process is up
//   - GET /healthz/ready: Plex WebSocket is connected
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/plextraktsync/internal/logging"
)

// healthRateLimit is permissive: frequent probes are fine, floods are not.
const healthRateLimit = 1000

// ConnectionChecker reports whether the Plex WebSocket is connected.
// plex.WebSocketClient implements it.
type ConnectionChecker interface {
	IsConnected() bool
}

// SessionCounter reports the number of live scrobble sessions.
// watch.SessionCache implements it.
type SessionCounter interface {
	Len() int
}

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status         string  `json:"status"` // "healthy" or "degraded"
	Version        string  `json:"version"`
	PlexConnected  bool    `json:"plex_connected"`
	ActiveSessions int     `json:"active_sessions"`
	Uptime         float64 `json:"uptime_seconds"`
}

// Handler serves the health endpoints.
type Handler struct {
	plex      ConnectionChecker
	sessions  SessionCounter
	version   string
	startTime time.Time
}

// NewHandler creates a health handler. sessions may be nil.
func NewHandler(plex ConnectionChecker, sessions SessionCounter, version string) *Handler {
	return &Handler{
		plex:      plex,
		sessions:  sessions,
		version:   version,
		startTime: time.Now(),
	}
}

// NewRouter builds the metrics and health routes.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(instrument)

	r.Route("/healthz", func(r chi.Router) {
		r.Use(httprate.LimitByIP(healthRateLimit, time.Minute))
		r.Get("/live", h.Live)
		r.Get("/ready", h.Ready)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// New creates the HTTP server for the metrics listener address.
func New(listen string, h *Handler) *http.Server {
	return &http.Server{
		Addr:              listen,
		Handler:           NewRouter(h),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Live always reports 200 while the process is serving.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.status())
}

// Ready reports 503 until the Plex WebSocket is connected.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	status := h.status()
	code := http.StatusOK
	if !status.PlexConnected {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, status)
}

func (h *Handler) status() HealthStatus {
	connected := h.plex != nil && h.plex.IsConnected()
	status := HealthStatus{
		Status:        "healthy",
		Version:       h.version,
		PlexConnected: connected,
		Uptime:        time.Since(h.startTime).Seconds(),
	}
	if !connected {
		status.Status = "degraded"
	}
	if h.sessions != nil {
		status.ActiveSessions = h.sessions.Len()
	}
	return status
}

func respondJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error().Err(err).Msg("Failed to encode health response")
	}
}
