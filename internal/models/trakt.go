// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package models

import "fmt"

// Trakt API Models
// Documentation: https://trakt.docs.apiary.io/

// Trakt media types used by search and scrobble.
const (
	TraktTypeMovie   = "movie"
	TraktTypeShow    = "show"
	TraktTypeEpisode = "episode"
)

// TraktIDs is the standard Trakt ids object.
type TraktIDs struct {
	Trakt int64  `json:"trakt,omitempty"`
	Slug  string `json:"slug,omitempty"`
	IMDB  string `json:"imdb,omitempty"`
	TMDB  int64  `json:"tmdb,omitempty"`
	TVDB  int64  `json:"tvdb,omitempty"`
}

// TraktMovie is a movie as returned by the API.
type TraktMovie struct {
	Title string   `json:"title,omitempty"`
	Year  int      `json:"year,omitempty"`
	IDs   TraktIDs `json:"ids"`
}

// TraktShow is a show as returned by the API.
type TraktShow struct {
	Title string   `json:"title,omitempty"`
	Year  int      `json:"year,omitempty"`
	IDs   TraktIDs `json:"ids"`
}

// TraktEpisode is an episode as returned by the API.
type TraktEpisode struct {
	Season int      `json:"season,omitempty"`
	Number int      `json:"number,omitempty"`
	Title  string   `json:"title,omitempty"`
	IDs    TraktIDs `json:"ids"`
}

// TraktSearchResult is one element of GET /search/{id_type}/{id}.
type TraktSearchResult struct {
	Type    string        `json:"type"`
	Score   float64       `json:"score,omitempty"`
	Movie   *TraktMovie   `json:"movie,omitempty"`
	Show    *TraktShow    `json:"show,omitempty"`
	Episode *TraktEpisode `json:"episode,omitempty"`
}

// TraktScrobbleRequest is the body of POST /scrobble/{start,pause,stop}.
type TraktScrobbleRequest struct {
	Movie      *TraktMovie   `json:"movie,omitempty"`
	Episode    *TraktEpisode `json:"episode,omitempty"`
	Progress   float64       `json:"progress"`
	AppVersion string        `json:"app_version,omitempty"`
	AppDate    string        `json:"app_date,omitempty"`
}

// TraktScrobbleResponse is returned by the scrobble endpoints.
type TraktScrobbleResponse struct {
	ID       int64         `json:"id"`
	Action   string        `json:"action"` // "start", "pause", "scrobble"
	Progress float64       `json:"progress"`
	Movie    *TraktMovie   `json:"movie,omitempty"`
	Show     *TraktShow    `json:"show,omitempty"`
	Episode  *TraktEpisode `json:"episode,omitempty"`
}

// TraktMedia is a resolved Trakt movie or episode.
type TraktMedia struct {
	Type      string // TraktTypeMovie or TraktTypeEpisode
	Title     string
	Year      int
	Season    int
	Number    int
	ShowTitle string
	IDs       TraktIDs
}

// TraktMediaFromSearch converts a search result into a TraktMedia.
// Returns nil when the result carries no movie or episode.
func TraktMediaFromSearch(r *TraktSearchResult) *TraktMedia {
	switch {
	case r.Type == TraktTypeMovie && r.Movie != nil:
		return &TraktMedia{
			Type:  TraktTypeMovie,
			Title: r.Movie.Title,
			Year:  r.Movie.Year,
			IDs:   r.Movie.IDs,
		}
	case r.Type == TraktTypeEpisode && r.Episode != nil:
		return TraktMediaFromEpisode(r.Show, r.Episode)
	default:
		return nil
	}
}

// TraktMediaFromEpisode converts an episode, optionally with its show, into a TraktMedia.
func TraktMediaFromEpisode(show *TraktShow, ep *TraktEpisode) *TraktMedia {
	m := &TraktMedia{
		Type:   TraktTypeEpisode,
		Title:  ep.Title,
		Season: ep.Season,
		Number: ep.Number,
		IDs:    ep.IDs,
	}
	if show != nil {
		m.ShowTitle = show.Title
		m.Year = show.Year
	}
	return m
}

// Key identifies the media in the scrobble session cache, e.g. "movie:481".
func (m *TraktMedia) Key() string {
	return fmt.Sprintf("%s:%d", m.Type, m.IDs.Trakt)
}

// ScrobbleRequest builds a scrobble body addressing the media by Trakt id.
func (m *TraktMedia) ScrobbleRequest(progress float64, appVersion, appDate string) *TraktScrobbleRequest {
	req := &TraktScrobbleRequest{
		Progress:   progress,
		AppVersion: appVersion,
		AppDate:    appDate,
	}
	ids := TraktIDs{Trakt: m.IDs.Trakt}
	if m.Type == TraktTypeEpisode {
		req.Episode = &TraktEpisode{IDs: ids}
	} else {
		req.Movie = &TraktMovie{IDs: ids}
	}
	return req
}

func (m *TraktMedia) String() string {
	if m.Type == TraktTypeEpisode {
		return fmt.Sprintf("<episode:%d:%s S%02dE%02d>", m.IDs.Trakt, m.ShowTitle, m.Season, m.Number)
	}
	return fmt.Sprintf("<movie:%d:%s (%d)>", m.IDs.Trakt, m.Title, m.Year)
}
