// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package trakt

import (
	"context"

	"github.com/tomtom215/plextraktsync/internal/models"
)

// ScrobblerProxy wraps a Scrobbler so every call waits for the shared write
// throttle and bypasses response caching.
type ScrobblerProxy struct {
	scrobbler *Scrobbler
	throttle  *Throttle
}

func newScrobblerProxy(s *Scrobbler, t *Throttle) *ScrobblerProxy {
	return &ScrobblerProxy{scrobbler: s, throttle: t}
}

// Media returns the item this session scrobbles.
func (p *ScrobblerProxy) Media() *models.TraktMedia {
	return p.scrobbler.Media()
}

// Progress returns the last progress sent or set.
func (p *ScrobblerProxy) Progress() float64 {
	return p.scrobbler.Progress()
}

// Update records progress and reports playback as started.
func (p *ScrobblerProxy) Update(ctx context.Context, progress float64) error {
	return p.wrap(func(ctx context.Context) error {
		return p.scrobbler.Update(ctx, progress)
	})(ctx)
}

// Pause reports playback paused.
func (p *ScrobblerProxy) Pause(ctx context.Context) error {
	return p.wrap(p.scrobbler.Pause)(ctx)
}

// Stop reports playback stopped.
func (p *ScrobblerProxy) Stop(ctx context.Context) error {
	return p.wrap(p.scrobbler.Stop)(ctx)
}

func (p *ScrobblerProxy) wrap(fn call) call {
	return rateLimit(p.throttle, noCache(fn))
}
