// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package watch

import (
	"context"

	"github.com/tomtom215/plextraktsync/internal/logging"
	"github.com/tomtom215/plextraktsync/internal/models"
)

// Transition is the action the updater took for one notification.
type Transition string

const (
	TransitionStart   Transition = "start"   // new session, then update
	TransitionUpdate  Transition = "update"  // progress on an existing session
	TransitionPause   Transition = "pause"
	TransitionStop    Transition = "stop"
	TransitionSkipped Transition = "skipped" // pause/stop with no session
)

// WatchStateUpdater drives the per-media scrobble state machine.
type WatchStateUpdater struct {
	sessions   *SessionCache
	newSession SessionFactory
}

// NewWatchStateUpdater creates an updater that stores sessions in sessions
// and begins new ones with newSession.
func NewWatchStateUpdater(sessions *SessionCache, newSession SessionFactory) *WatchStateUpdater {
	return &WatchStateUpdater{sessions: sessions, newSession: newSession}
}

// Apply performs the transition for item on the resolved media. Remote
// errors are returned unmodified.
func (u *WatchStateUpdater) Apply(ctx context.Context, item models.PlexPlayingNotification, res *Resolution) (Transition, error) {
	key := res.Trakt.Key()
	log := logging.Ctx(ctx).With().
		Str("state", item.State).
		Str("media", res.Trakt.String()).
		Logger()

	switch item.State {
	case models.StatePlaying:
		progress := res.Plex.WatchProgress(item.ViewOffset)
		session, created := u.sessions.GetOrCreate(key, func() ScrobbleSession {
			return u.newSession(res.Trakt)
		})
		log.Debug().Float64("progress", progress).Bool("new_session", created).Msg("Updating scrobble")
		if err := session.Update(ctx, progress); err != nil {
			return "", err
		}
		if created {
			return TransitionStart, nil
		}
		return TransitionUpdate, nil

	case models.StatePaused:
		session, ok := u.sessions.Get(key)
		if !ok {
			log.Debug().Msg("Pause without an active session, skipping")
			return TransitionSkipped, nil
		}
		if err := session.Pause(ctx); err != nil {
			return "", err
		}
		return TransitionPause, nil

	case models.StateStopped:
		session, ok := u.sessions.Get(key)
		if !ok {
			log.Debug().Msg("Stop without an active session, skipping")
			return TransitionSkipped, nil
		}
		// The session is forgotten even when Stop fails; the next playing
		// event begins a fresh one.
		err := session.Stop(ctx)
		u.sessions.Remove(key)
		if err != nil {
			return "", err
		}
		return TransitionStop, nil

	default:
		log.Debug().Msg("Unhandled state, skipping")
		return TransitionSkipped, nil
	}
}
