// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

/*
Package models defines the wire and domain types shared by the Plex and
Trakt clients and the watch pipeline.

Plex:
  - PlexNotificationWrapper / PlexNotificationContainer: WebSocket messages
  - PlexPlayingNotification: one playback state change
  - PlexMetadataResponse: GET /library/metadata/{ratingKey}
  - PlexMedia, PlexGuid: resolved library item and its external ids

Trakt:
  - TraktSearchResult: GET /search/{id_type}/{id}
  - TraktScrobbleRequest / TraktScrobbleResponse: POST /scrobble/*
  - TraktMedia: resolved movie or episode, keyed by TraktMedia.Key
*/
package models
