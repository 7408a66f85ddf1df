// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package trakt

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tomtom215/plextraktsync/internal/logging"
	"github.com/tomtom215/plextraktsync/internal/metrics"
	"github.com/tomtom215/plextraktsync/internal/models"
)

// Lookup results recorded in metrics.TraktLookups.
const (
	lookupCacheHit = "cache_hit"
	lookupFound    = "found"
	lookupNotFound = "not_found"
	lookupNoGuid   = "no_guid"
	lookupError    = "error"
)

// FindByMedia resolves a Plex movie or episode to its Trakt item using the
// item's external ids. It returns (nil, nil) when Trakt has no match or the
// item carries no usable id. Results, including misses, are memoized for
// the lookup cache TTL; errors are not. A context built by noCache skips
// the memo.
func (c *Client) FindByMedia(ctx context.Context, pm *models.PlexMedia) (*models.TraktMedia, error) {
	if !pm.IsScrobbleable() {
		return nil, nil
	}

	guid, ok := pm.PreferredGuid()
	if !ok {
		metrics.RecordLookup(lookupNoGuid)
		logging.Ctx(ctx).Debug().Str("media", pm.String()).Msg("No external id to look up")
		return nil, nil
	}

	key := pm.Type + "|" + guid.String()
	if !cacheBypassed(ctx) {
		tm, hit := c.lookups.Get(key)
		c.observeLookupCache()
		if hit {
			metrics.RecordLookup(lookupCacheHit)
			return tm, nil
		}
	}

	var (
		tm  *models.TraktMedia
		err error
	)
	if guid.IsShowEpisodeRef() {
		tm, err = c.findEpisodeByShow(ctx, guid)
	} else {
		tm, err = c.searchByID(ctx, guid.Provider, guid.ID, traktTypeFor(pm.Type))
	}
	if err != nil {
		metrics.RecordLookup(lookupError)
		return nil, fmt.Errorf("find %s by %s: %w", pm, guid, err)
	}

	if tm == nil {
		metrics.RecordLookup(lookupNotFound)
	} else {
		metrics.RecordLookup(lookupFound)
	}
	if c.lookupTTL > 0 {
		c.lookups.Set(key, tm)
		c.observeLookupCache()
	}
	return tm, nil
}

func (c *Client) observeLookupCache() {
	metrics.SetLookupCache(c.lookups.GetStats().TotalKeys, c.lookups.HitRate())
}

func traktTypeFor(plexType string) string {
	if plexType == models.PlexTypeEpisode {
		return models.TraktTypeEpisode
	}
	return models.TraktTypeMovie
}

// searchByID calls GET /search/{provider}/{id}?type={mediaType} and returns
// the first result of the wanted type.
func (c *Client) searchByID(ctx context.Context, provider, id, mediaType string) (*models.TraktMedia, error) {
	var results []models.TraktSearchResult
	err := c.doRequest(ctx, requestConfig{
		method: http.MethodGet,
		path:   "/search/" + url.PathEscape(provider) + "/" + url.PathEscape(id),
		query:  url.Values{"type": {mediaType}},
	}, &results)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	for i := range results {
		if results[i].Type != mediaType {
			continue
		}
		if tm := models.TraktMediaFromSearch(&results[i]); tm != nil {
			return tm, nil
		}
	}
	return nil, nil
}

// findEpisodeByShow resolves a legacy agent guid ("thetvdb://81189/1/2") by
// finding the show and then fetching the season/episode from it.
func (c *Client) findEpisodeByShow(ctx context.Context, guid models.PlexGuid) (*models.TraktMedia, error) {
	var results []models.TraktSearchResult
	err := c.doRequest(ctx, requestConfig{
		method: http.MethodGet,
		path:   "/search/" + url.PathEscape(guid.Provider) + "/" + url.PathEscape(guid.ID),
		query:  url.Values{"type": {models.TraktTypeShow}},
	}, &results)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var show *models.TraktShow
	for i := range results {
		if results[i].Type == models.TraktTypeShow && results[i].Show != nil {
			show = results[i].Show
			break
		}
	}
	if show == nil {
		return nil, nil
	}

	var episode models.TraktEpisode
	err = c.doRequest(ctx, requestConfig{
		method: http.MethodGet,
		path:   fmt.Sprintf("/shows/%d/seasons/%d/episodes/%d", show.IDs.Trakt, guid.Season, guid.Episode),
	}, &episode)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return models.TraktMediaFromEpisode(show, &episode), nil
}
