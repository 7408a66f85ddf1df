// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package watch

import (
	"context"
	"strconv"

	"github.com/tomtom215/plextraktsync/internal/logging"
	"github.com/tomtom215/plextraktsync/internal/models"
)

// MediaIndex looks up Plex library items. plex.Client implements it.
type MediaIndex interface {
	// FetchItem returns nil, nil when the item does not exist.
	FetchItem(ctx context.Context, ratingKey int) (*models.PlexMedia, error)
}

// MediaMatcher finds the Trakt item for a Plex item. trakt.Client implements it.
type MediaMatcher interface {
	// FindByMedia returns nil, nil when Trakt has no match.
	FindByMedia(ctx context.Context, media *models.PlexMedia) (*models.TraktMedia, error)
}

// Resolution pairs a Plex item with its Trakt counterpart.
type Resolution struct {
	Plex  *models.PlexMedia
	Trakt *models.TraktMedia
}

// MediaResolver maps a playing notification to its Plex and Trakt media.
type MediaResolver struct {
	index   MediaIndex
	matcher MediaMatcher
}

// NewMediaResolver creates a resolver over the given lookups.
func NewMediaResolver(index MediaIndex, matcher MediaMatcher) *MediaResolver {
	return &MediaResolver{index: index, matcher: matcher}
}

// Resolve returns nil, nil when either lookup finds nothing. Lookup errors
// are returned as-is; there are no retries here.
func (r *MediaResolver) Resolve(ctx context.Context, item models.PlexPlayingNotification) (*Resolution, error) {
	ratingKey, err := strconv.Atoi(item.RatingKey)
	if err != nil {
		return nil, &ProtocolError{
			Type:   models.NotificationTypePlaying,
			Size:   1,
			Items:  1,
			Reason: "invalid ratingKey " + strconv.Quote(item.RatingKey),
		}
	}

	media, err := r.index.FetchItem(ctx, ratingKey)
	if err != nil {
		return nil, err
	}
	if media == nil {
		return nil, nil
	}

	traktMedia, err := r.matcher.FindByMedia(ctx, media)
	if err != nil {
		return nil, err
	}
	if traktMedia == nil {
		return nil, nil
	}

	logging.Ctx(ctx).Trace().
		Str("plex", media.String()).
		Str("trakt", traktMedia.String()).
		Int("view_count", media.ViewCount).
		Time("last_viewed_at", media.LastViewedAt).
		Msg("Resolved media")
	return &Resolution{Plex: media, Trakt: traktMedia}, nil
}
