// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package trakt

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/tomtom215/plextraktsync/internal/logging"
	"github.com/tomtom215/plextraktsync/internal/metrics"
	"github.com/tomtom215/plextraktsync/internal/models"
)

// Scrobble actions, also the final path segment of the endpoint.
const (
	ActionStart = "start"
	ActionPause = "pause"
	ActionStop  = "stop"
)

// Scrobbler is the scrobble session for one Trakt media item. It remembers
// the last progress so Pause and Stop report where playback was.
type Scrobbler struct {
	client *Client
	media  *models.TraktMedia

	mu       sync.Mutex
	progress float64
}

func (c *Client) newScrobbler(media *models.TraktMedia) *Scrobbler {
	return &Scrobbler{client: c, media: media}
}

// Media returns the item this session scrobbles.
func (s *Scrobbler) Media() *models.TraktMedia {
	return s.media
}

// Progress returns the last progress sent or set.
func (s *Scrobbler) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Update records progress and reports playback as started.
func (s *Scrobbler) Update(ctx context.Context, progress float64) error {
	s.mu.Lock()
	s.progress = progress
	s.mu.Unlock()
	return s.Start(ctx)
}

// Start reports playback started at the current progress.
func (s *Scrobbler) Start(ctx context.Context) error {
	return s.post(ctx, ActionStart)
}

// Pause reports playback paused at the current progress.
func (s *Scrobbler) Pause(ctx context.Context) error {
	return s.post(ctx, ActionPause)
}

// Stop reports playback stopped at the current progress. Trakt marks the
// item watched when progress is at least 80%.
func (s *Scrobbler) Stop(ctx context.Context) error {
	return s.post(ctx, ActionStop)
}

func (s *Scrobbler) post(ctx context.Context, action string) error {
	progress := s.Progress()
	body := s.media.ScrobbleRequest(progress, s.client.appVersion, s.client.appDate)

	start := time.Now()
	var resp models.TraktScrobbleResponse
	err := s.client.doRequest(ctx, requestConfig{
		method: http.MethodPost,
		path:   "/scrobble/" + action,
		body:   body,
	}, &resp)
	metrics.RecordScrobble(action, time.Since(start), err)

	if err != nil {
		var apiErr *APIError
		if IsRateLimited(err) && errors.As(err, &apiErr) {
			logging.Ctx(ctx).Warn().
				Str("action", action).
				Dur("retry_after", apiErr.RetryAfter).
				Msg("Trakt rate limit hit, scrobble dropped")
		}
		return err
	}

	logging.Ctx(ctx).Debug().
		Str("action", action).
		Str("media", s.media.String()).
		Float64("progress", progress).
		Str("trakt_action", resp.Action).
		Msg("Scrobble sent")
	return nil
}
