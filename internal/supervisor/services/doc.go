// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

/*
Package services provides suture.Service wrappers for components whose
lifecycle is not already Serve(ctx) error.

HTTP Server (HTTPServerService):
  - Wraps *http.Server (ListenAndServe/Shutdown) with graceful shutdown

Watch Listener (ListenerService):
  - Wraps anything with RunWithContext(ctx) error, such as watch.Listener

plex.WebSocketClient implements suture.Service itself and needs no wrapper.
*/
package services
