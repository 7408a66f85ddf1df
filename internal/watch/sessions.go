// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package watch

import (
	"context"
	"sync"

	"github.com/tomtom215/plextraktsync/internal/metrics"
	"github.com/tomtom215/plextraktsync/internal/models"
)

// ScrobbleSession is a live remote scrobble for one media item.
// trakt.ScrobblerProxy implements it.
type ScrobbleSession interface {
	Update(ctx context.Context, progress float64) error
	Pause(ctx context.Context) error
	Stop(ctx context.Context) error
}

// SessionFactory begins a scrobble session for media.
type SessionFactory func(media *models.TraktMedia) ScrobbleSession

// SessionCache owns the live scrobble sessions, keyed by TraktMedia.Key().
// There is at most one session per key.
type SessionCache struct {
	mu       sync.Mutex
	sessions map[string]ScrobbleSession
}

// NewSessionCache creates an empty cache.
func NewSessionCache() *SessionCache {
	return &SessionCache{sessions: make(map[string]ScrobbleSession)}
}

// GetOrCreate returns the session for key, calling create to begin one if
// none exists. Only the playing transition should call this.
func (c *SessionCache) GetOrCreate(key string, create func() ScrobbleSession) (session ScrobbleSession, created bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.sessions[key]; ok {
		return s, false
	}
	s := create()
	c.sessions[key] = s
	metrics.SetActiveSessions(len(c.sessions))
	return s, true
}

// Get returns the existing session for key.
func (c *SessionCache) Get(key string) (ScrobbleSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[key]
	return s, ok
}

// Remove forgets the session for key. It does not stop it.
func (c *SessionCache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, key)
	metrics.SetActiveSessions(len(c.sessions))
}

// Len returns the number of live sessions.
func (c *SessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}
