// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package models

import (
	"fmt"
	"time"
)

// Plex library item types that can be scrobbled.
const (
	PlexTypeMovie   = "movie"
	PlexTypeEpisode = "episode"
)

// PlexMedia is a resolved Plex library item.
type PlexMedia struct {
	RatingKey    int
	Type         string
	Title        string
	ShowTitle    string
	Season       int
	Episode      int
	Year         int
	Duration     int64 // milliseconds
	ViewCount    int
	LastViewedAt time.Time
	Guids        []PlexGuid
}

// NewPlexMedia builds a PlexMedia from a metadata response item. Guids from
// the includeGuids list come first, then the primary guid.
func NewPlexMedia(ratingKey int, d *PlexMetadataDetails) *PlexMedia {
	m := &PlexMedia{
		RatingKey: ratingKey,
		Type:      d.Type,
		Title:     d.Title,
		ShowTitle: d.GrandparentTitle,
		Season:    d.ParentIndex,
		Episode:   d.Index,
		Year:      d.Year,
		Duration:  d.Duration,
		ViewCount: d.ViewCount,
	}
	if d.LastViewedAt > 0 {
		m.LastViewedAt = time.Unix(d.LastViewedAt, 0).UTC()
	}

	for _, tag := range d.Guids {
		m.Guids = append(m.Guids, ParsePlexGuid(tag.ID))
	}
	if d.GUID != "" {
		m.Guids = append(m.Guids, ParsePlexGuid(d.GUID))
	}

	return m
}

// WatchProgress returns viewOffset as a percentage of the duration. The
// value is not rounded or clamped. Items without a duration report 0.
func (m *PlexMedia) WatchProgress(viewOffset int64) float64 {
	if m.Duration <= 0 {
		return 0
	}
	return float64(viewOffset) / float64(m.Duration) * 100
}

// IsScrobbleable reports whether Trakt has a scrobble endpoint for the type.
func (m *PlexMedia) IsScrobbleable() bool {
	return m.Type == PlexTypeMovie || m.Type == PlexTypeEpisode
}

// PreferredGuid returns the guid to look the item up by. Episodes prefer
// tvdb ids, movies prefer imdb ids.
func (m *PlexMedia) PreferredGuid() (PlexGuid, bool) {
	order := []string{ProviderIMDB, ProviderTMDB, ProviderTVDB}
	if m.Type == PlexTypeEpisode {
		order = []string{ProviderTVDB, ProviderIMDB, ProviderTMDB}
	}

	for _, provider := range order {
		for _, g := range m.Guids {
			if g.Provider == provider && g.Lookupable() {
				return g, true
			}
		}
	}
	return PlexGuid{}, false
}

func (m *PlexMedia) String() string {
	if m.Type == PlexTypeEpisode {
		return fmt.Sprintf("<%s:%d:%s S%02dE%02d>", m.Type, m.RatingKey, m.ShowTitle, m.Season, m.Episode)
	}
	return fmt.Sprintf("<%s:%d:%s (%d)>", m.Type, m.RatingKey, m.Title, m.Year)
}
