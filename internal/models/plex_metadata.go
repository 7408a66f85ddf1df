// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package models

// PlexMetadataResponse is the body of GET /library/metadata/{ratingKey}.
type PlexMetadataResponse struct {
	MediaContainer PlexMetadataContainer `json:"MediaContainer"`
}

// PlexMetadataContainer wraps metadata response
type PlexMetadataContainer struct {
	Size                int                   `json:"size"`
	LibrarySectionID    int                   `json:"librarySectionID,omitempty"`
	LibrarySectionTitle string                `json:"librarySectionTitle,omitempty"`
	Metadata            []PlexMetadataDetails `json:"Metadata,omitempty"`
}

// PlexMetadataDetails represents the fields of a library item the scrobbler
// needs: identity, external ids and duration.
type PlexMetadataDetails struct {
	RatingKey        string        `json:"ratingKey,omitempty"`
	Key              string        `json:"key,omitempty"`
	GUID             string        `json:"guid,omitempty"` // Primary guid: plex://, or a legacy agent guid
	Type             string        `json:"type,omitempty"` // "movie", "episode", "track", ...
	Title            string        `json:"title,omitempty"`
	GrandparentTitle string        `json:"grandparentTitle,omitempty"` // Show title for episodes
	ParentIndex      int           `json:"parentIndex,omitempty"`      // Season number for episodes
	Index            int           `json:"index,omitempty"`            // Episode number for episodes
	Year             int           `json:"year,omitempty"`
	Duration         int64         `json:"duration,omitempty"` // milliseconds
	ViewCount        int           `json:"viewCount,omitempty"`
	LastViewedAt     int64         `json:"lastViewedAt,omitempty"`
	Guids            []PlexGuidTag `json:"Guid,omitempty"` // Present with includeGuids=1
}

// PlexGuidTag is one external id, e.g. {"id": "imdb://tt0133093"}.
type PlexGuidTag struct {
	ID string `json:"id"`
}
