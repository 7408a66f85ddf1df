// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

/*
Package watch turns Plex "playing" notifications into Trakt scrobble calls.

# Pipeline

	plex.WebSocketClient -> chan PlexNotificationContainer -> Listener
	  -> FilterPlaying -> Deduplicator -> MediaResolver
	  -> WatchStateUpdater -> SessionCache -> trakt.ScrobblerProxy

A single Listener goroutine handles one message to completion before taking
the next, so events for a session are applied in arrival order.

# State Machine

Per Trakt media key, with states absent, active and paused:

	absent        --playing--> active   create session, Update(progress)
	active        --playing--> active   Update(progress)
	active/paused --paused-->  paused   Pause()
	active/paused --stopped--> absent   Stop(), remove session
	absent        --paused/stopped-->   skipped, logged at debug

Progress is viewOffset / duration * 100, unrounded.

# Errors

A malformed envelope is a *ProtocolError; resolution misses are not errors;
remote errors come back unmodified. The Listener logs all of them and keeps
going.
*/
package watch
