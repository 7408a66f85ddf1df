// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package watch

import (
	"iter"

	"github.com/tomtom215/plextraktsync/internal/logging"
	"github.com/tomtom215/plextraktsync/internal/models"
)

// FilterPlaying validates a playing notification and returns its items whose
// state drives a scrobble (playing, paused, stopped). Other states such as
// buffering are dropped.
//
// The envelope must be of type "playing" and declare exactly one item, with
// that one item present; anything else returns a *ProtocolError and a nil
// sequence. The sequence is lazy and single-pass.
func FilterPlaying(container models.PlexNotificationContainer) (iter.Seq[models.PlexPlayingNotification], error) {
	items := container.PlaySessionStateNotification

	switch {
	case container.Type != models.NotificationTypePlaying:
		return nil, &ProtocolError{Type: container.Type, Size: container.Size, Items: len(items), Reason: "not a playing notification"}
	case container.Size != 1:
		return nil, &ProtocolError{Type: container.Type, Size: container.Size, Items: len(items), Reason: "expected exactly one item"}
	case len(items) != container.Size:
		return nil, &ProtocolError{Type: container.Type, Size: container.Size, Items: len(items), Reason: "item count does not match declared size"}
	}

	return func(yield func(models.PlexPlayingNotification) bool) {
		for _, item := range items {
			if !item.IsScrobbleState() {
				logging.Trace().
					Str("session_key", item.SessionKey).
					Str("state", item.State).
					Msg("Dropping non-scrobble state")
				continue
			}
			if !yield(item) {
				return
			}
		}
	}, nil
}
