// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package models

import (
	"strconv"
	"strings"
)

// External id providers found in Plex guids.
const (
	ProviderIMDB    = "imdb"
	ProviderTMDB    = "tmdb"
	ProviderTVDB    = "tvdb"
	ProviderPlex    = "plex"
	ProviderLocal   = "local"
	ProviderYoutube = "youtube"
)

const legacyAgentPrefix = "com.plexapp.agents."

// legacyAgents maps legacy metadata agent names to providers.
var legacyAgents = map[string]string{
	"imdb":       ProviderIMDB,
	"themoviedb": ProviderTMDB,
	"thetvdb":    ProviderTVDB,
	"none":       ProviderLocal,
	"local":      ProviderLocal,
	"youtube":    ProviderYoutube,
}

// PlexGuid is a parsed Plex guid.
//
// Modern agents:  imdb://tt0133093, tmdb://603, tvdb://81189, plex://movie/5d77...
// Legacy agents:  com.plexapp.agents.imdb://tt0133093?lang=en
//
//	com.plexapp.agents.thetvdb://81189/1/2?lang=en (show id, season, episode)
//
// Local media:    local://1234, com.plexapp.agents.none://1234
type PlexGuid struct {
	Raw      string
	Provider string
	ID       string
	Legacy   bool

	// Season and Episode are set for legacy TV agent guids that address an
	// episode through its show id.
	Season  int
	Episode int
}

// ParsePlexGuid parses a Plex guid. Unrecognised input yields a PlexGuid with
// an empty Provider, which is never lookupable.
func ParsePlexGuid(raw string) PlexGuid {
	g := PlexGuid{Raw: raw}

	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok || rest == "" {
		return g
	}

	if agent, isLegacy := strings.CutPrefix(scheme, legacyAgentPrefix); isLegacy {
		g.Legacy = true
		provider, known := legacyAgents[agent]
		if !known {
			provider = agent
		}
		g.Provider = provider
	} else {
		switch scheme {
		case "file":
			g.Provider = ProviderLocal
		default:
			g.Provider = scheme
		}
	}

	rest, _, _ = strings.Cut(rest, "?")
	parts := strings.Split(rest, "/")
	g.ID = parts[0]

	if g.Legacy && len(parts) == 3 {
		season, errS := strconv.Atoi(parts[1])
		episode, errE := strconv.Atoi(parts[2])
		if errS == nil && errE == nil {
			g.Season = season
			g.Episode = episode
		}
	}

	if g.Provider == ProviderPlex {
		// plex://movie/5d776... keeps the kind in the first segment
		g.ID = rest
	}

	return g
}

// Lookupable reports whether Trakt can resolve this guid by id.
func (g PlexGuid) Lookupable() bool {
	if g.ID == "" {
		return false
	}
	switch g.Provider {
	case ProviderIMDB, ProviderTMDB, ProviderTVDB:
		return true
	default:
		return false
	}
}

// IsShowEpisodeRef reports whether the guid addresses an episode by show id,
// season and episode rather than by an episode id.
func (g PlexGuid) IsShowEpisodeRef() bool {
	return g.Season > 0 || g.Episode > 0
}

// String renders the guid as provider:id for logs.
func (g PlexGuid) String() string {
	if g.Provider == "" {
		return g.Raw
	}
	if g.IsShowEpisodeRef() {
		return g.Provider + ":" + g.ID + "/" + strconv.Itoa(g.Season) + "/" + strconv.Itoa(g.Episode)
	}
	return g.Provider + ":" + g.ID
}
