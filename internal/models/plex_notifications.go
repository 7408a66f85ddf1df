// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package models

// Plex WebSocket Notification Models
// These structures represent real-time notifications from Plex Media Server's WebSocket endpoint
// Endpoint: ws://{plex_url}/:/websockets/notifications
// Documentation: https://forums.plex.tv/t/about-websocket-notifications/79679

// Notification container types.
const (
	NotificationTypePlaying      = "playing"
	NotificationTypeTimeline     = "timeline"
	NotificationTypeActivity     = "activity"
	NotificationTypeStatus       = "status"
	NotificationTypeReachability = "reachability"
)

// Playback states carried by PlaySessionStateNotification.
const (
	StatePlaying   = "playing"
	StatePaused    = "paused"
	StateStopped   = "stopped"
	StateBuffering = "buffering"
)

// PlexNotificationWrapper wraps the top-level notification container
type PlexNotificationWrapper struct {
	NotificationContainer PlexNotificationContainer `json:"NotificationContainer"`
}

// PlexNotificationContainer is one WebSocket message. Only "playing"
// containers carry PlaySessionStateNotification items.
type PlexNotificationContainer struct {
	Type                         string                     `json:"type"`                                   // "playing", "timeline", "activity", "status", "reachability"
	Size                         int                        `json:"size"`                                   // Declared number of items
	PlaySessionStateNotification []PlexPlayingNotification  `json:"PlaySessionStateNotification,omitempty"` // Real-time playback state changes
	ActivityNotification         []PlexActivityNotification `json:"ActivityNotification,omitempty"`         // Background task updates
}

// PlexPlayingNotification is a single playback state change.
//
//	{"sessionKey":"23","ratingKey":"9725","key":"/library/metadata/9725",
//	 "viewOffset":30000,"playQueueItemID":17679,"state":"paused"}
type PlexPlayingNotification struct {
	SessionKey       string `json:"sessionKey"`
	ClientIdentifier string `json:"clientIdentifier,omitempty"`

	State      string `json:"state"`      // "playing", "paused", "stopped", "buffering"
	RatingKey  string `json:"ratingKey"`  // Plex library item identifier, decimal string
	ViewOffset int64  `json:"viewOffset"` // Playback position (milliseconds)

	Key              string `json:"key,omitempty"`
	Guid             string `json:"guid,omitempty"`
	URL              string `json:"url,omitempty"`
	PlayQueueItemID  int64  `json:"playQueueItemID,omitempty"`
	TranscodeSession string `json:"transcodeSession,omitempty"`
}

// PlexActivityNotification represents background task updates. The listener
// ignores these; they are decoded only so message type counts stay accurate.
type PlexActivityNotification struct {
	Event    string           `json:"event"` // "started", "ended", "progress"
	UUID     string           `json:"uuid"`
	Activity PlexActivityData `json:"Activity"`
}

// PlexActivityData represents detailed background task information
type PlexActivityData struct {
	UUID     string `json:"uuid"`
	Type     string `json:"type"` // "library.refresh.items", "library.scan"
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Progress int    `json:"progress"`
}

// IsScrobbleState reports whether the state drives a Trakt scrobble
// transition (playing, paused or stopped).
func (p *PlexPlayingNotification) IsScrobbleState() bool {
	switch p.State {
	case StatePlaying, StatePaused, StateStopped:
		return true
	default:
		return false
	}
}

// Fingerprint identifies a notification's observable content, used to
// recognise repeats of the same event for one session.
func (p *PlexPlayingNotification) Fingerprint() PlayingFingerprint {
	return PlayingFingerprint{
		RatingKey:  p.RatingKey,
		State:      p.State,
		ViewOffset: p.ViewOffset,
	}
}

// PlayingFingerprint is the comparable subset of a playing notification.
type PlayingFingerprint struct {
	RatingKey  string
	State      string
	ViewOffset int64
}
