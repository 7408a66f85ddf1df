// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package watch

import (
	"time"

	"github.com/tomtom215/plextraktsync/internal/cache"
	"github.com/tomtom215/plextraktsync/internal/models"
)

// Deduplicator drops a notification identical to the last one seen for the
// same Plex session within the window. A nil Deduplicator drops nothing.
type Deduplicator struct {
	seen *cache.LRU[models.PlayingFingerprint]
}

// NewDeduplicator returns nil when window is zero or negative.
func NewDeduplicator(window time.Duration, capacity int) *Deduplicator {
	if window <= 0 {
		return nil
	}
	return &Deduplicator{seen: cache.NewLRU[models.PlayingFingerprint](capacity, window)}
}

// Duplicate reports whether item repeats the previous notification for its
// session, and records it as the latest otherwise.
func (d *Deduplicator) Duplicate(item *models.PlexPlayingNotification) bool {
	if d == nil {
		return false
	}
	return d.seen.Seen(item.SessionKey, item.Fingerprint())
}
