// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package watch

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tomtom215/plextraktsync/internal/logging"
	"github.com/tomtom215/plextraktsync/internal/metrics"
	"github.com/tomtom215/plextraktsync/internal/models"
)

// Listener consumes Plex notifications one at a time and applies them.
type Listener struct {
	notifications <-chan models.PlexNotificationContainer
	resolver      *MediaResolver
	updater       *WatchStateUpdater
	dedupe        *Deduplicator
	logger        zerolog.Logger
}

// ListenerConfig wires a Listener. Dedupe may be nil.
type ListenerConfig struct {
	Notifications <-chan models.PlexNotificationContainer
	Resolver      *MediaResolver
	Updater       *WatchStateUpdater
	Dedupe        *Deduplicator
}

// NewListener creates a Listener.
func NewListener(cfg ListenerConfig) *Listener {
	return &Listener{
		notifications: cfg.Notifications,
		resolver:      cfg.Resolver,
		updater:       cfg.Updater,
		dedupe:        cfg.Dedupe,
		logger:        logging.WithComponent("watch"),
	}
}

// RunWithContext processes notifications until ctx is canceled or the
// channel is closed. A message already being handled runs to completion:
// its remote calls use a context detached from ctx's cancellation.
func (l *Listener) RunWithContext(ctx context.Context) error {
	l.logger.Info().Msg("Listening for Plex playing notifications")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info().Msg("Listener stopping")
			return ctx.Err()
		case msg, ok := <-l.notifications:
			if !ok {
				l.logger.Info().Msg("Notification channel closed")
				return nil
			}
			l.HandleNotification(context.WithoutCancel(ctx), msg)
		}
	}
}

// HandleNotification processes one message. Errors are logged and counted;
// they never stop the listener.
func (l *Listener) HandleNotification(ctx context.Context, msg models.PlexNotificationContainer) {
	ctx = logging.ContextWithLogger(ctx, l.logger)
	ctx = logging.ContextWithNewCorrelationID(ctx)
	log := logging.Ctx(ctx)

	items, err := FilterPlaying(msg)
	if err != nil {
		metrics.RecordNotification(metrics.OutcomeInvalid)
		log.Warn().Err(err).Msg("Dropping notification")
		return
	}

	for item := range items {
		l.handleItem(ctx, item)
	}
}

func (l *Listener) handleItem(ctx context.Context, item models.PlexPlayingNotification) {
	log := logging.Ctx(ctx).With().
		Str("session_key", item.SessionKey).
		Str("rating_key", item.RatingKey).
		Str("state", item.State).
		Int64("view_offset", item.ViewOffset).
		Logger()

	if l.dedupe.Duplicate(&item) {
		metrics.RecordNotification(metrics.OutcomeDeduplicated)
		log.Debug().Msg("Duplicate notification")
		return
	}

	res, err := l.resolver.Resolve(ctx, item)
	if err != nil {
		var protoErr *ProtocolError
		if errors.As(err, &protoErr) {
			metrics.RecordNotification(metrics.OutcomeInvalid)
			log.Warn().Err(err).Msg("Dropping notification")
			return
		}
		metrics.RecordNotification(metrics.OutcomeError)
		log.Error().Err(err).Msg("Media lookup failed")
		return
	}
	if res == nil {
		metrics.RecordNotification(metrics.OutcomeUnmatched)
		log.Debug().Msg("No Plex or Trakt match, skipping")
		return
	}

	transition, err := l.updater.Apply(ctx, item, res)
	if err != nil {
		metrics.RecordNotification(metrics.OutcomeError)
		log.Error().Err(err).Str("media", res.Trakt.String()).Msg("Scrobble failed")
		return
	}

	if transition == TransitionSkipped {
		metrics.RecordNotification(metrics.OutcomeIgnored)
		return
	}
	metrics.RecordNotification(metrics.OutcomeScrobbled)
	log.Info().
		Str("transition", string(transition)).
		Str("media", res.Trakt.String()).
		Float64("progress", res.Plex.WatchProgress(item.ViewOffset)).
		Msg("Scrobbled")
}
