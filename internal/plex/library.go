// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package plex

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tomtom215/plextraktsync/internal/models"
)

// GetMetadata retrieves metadata for a library item, including its external
// guids.
//
// Endpoint: GET /library/metadata/{ratingKey}?includeGuids=1
func (c *Client) GetMetadata(ctx context.Context, ratingKey int) (*models.PlexMetadataResponse, error) {
	query := url.Values{}
	query.Set("includeGuids", "1")

	var metadataResp models.PlexMetadataResponse
	path := "/library/metadata/" + strconv.Itoa(ratingKey)
	if err := c.doJSONRequest(ctx, "metadata", path, query, &metadataResp); err != nil {
		return nil, err
	}
	return &metadataResp, nil
}

// FetchItem resolves a rating key to a library item. A missing item yields
// (nil, nil); transport and server errors are returned.
func (c *Client) FetchItem(ctx context.Context, ratingKey int) (*models.PlexMedia, error) {
	resp, err := c.GetMetadata(ctx, ratingKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch item %d: %w", ratingKey, err)
	}

	if len(resp.MediaContainer.Metadata) == 0 {
		return nil, nil
	}
	return models.NewPlexMedia(ratingKey, &resp.MediaContainer.Metadata[0]), nil
}
