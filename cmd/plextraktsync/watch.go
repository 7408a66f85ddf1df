// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tomtom215/plextraktsync/internal/config"
	"github.com/tomtom215/plextraktsync/internal/logging"
	"github.com/tomtom215/plextraktsync/internal/models"
	"github.com/tomtom215/plextraktsync/internal/plex"
	"github.com/tomtom215/plextraktsync/internal/server"
	"github.com/tomtom215/plextraktsync/internal/supervisor"
	"github.com/tomtom215/plextraktsync/internal/supervisor/services"
	"github.com/tomtom215/plextraktsync/internal/trakt"
	"github.com/tomtom215/plextraktsync/internal/watch"
)

const (
	startupCheckTimeout = 15 * time.Second
	dedupeCapacity      = 1024
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Listen to Plex playback and scrobble it to Trakt",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file (default: CONFIG_PATH or ./config.yaml)",
			},
		},
		Action: watchAction,
	}
}

func watchAction(c *cli.Context) error {
	cfg, err := config.LoadWithKoanf(c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	plexClient := plex.NewClient(cfg.Plex.URL, cfg.Plex.Token, cfg.Plex.RequestTimeout)
	traktClient := trakt.NewClient(traktClientConfig(cfg))
	defer traktClient.Close()

	logging.Info().
		Str("version", version).
		Str("plex_url", plexClient.BaseURL()).
		Str("trakt_api_url", cfg.Trakt.APIURL).
		Dur("post_delay", traktClient.Throttle().Delay()).
		Dur("dedupe_window", cfg.Watch.DedupeWindow).
		Msg("Starting PlexTraktSync watcher")

	if err := checkConnections(ctx, plexClient, traktClient); err != nil {
		return err
	}

	notifications := make(chan models.PlexNotificationContainer, cfg.Watch.QueueSize)
	wsClient := plex.NewWebSocketClient(cfg.Plex.URL, cfg.Plex.Token, notifications)

	sessions := watch.NewSessionCache()
	listener := watch.NewListener(watch.ListenerConfig{
		Notifications: notifications,
		Resolver:      watch.NewMediaResolver(plexClient, traktClient),
		Updater: watch.NewWatchStateUpdater(sessions, func(media *models.TraktMedia) watch.ScrobbleSession {
			return traktClient.Scrobbler(media)
		}),
		Dedupe: watch.NewDeduplicator(cfg.Watch.DedupeWindow, dedupeCapacity),
	})

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg.Supervisor))
	if err != nil {
		return cli.Exit("failed to create supervisor tree: "+err.Error(), 1)
	}

	tree.AddTransportService(wsClient)
	tree.AddPipelineService(services.NewListenerService(listener))
	if cfg.Server.Enabled {
		httpServer := server.New(cfg.Server.Listen, server.NewHandler(wsClient, sessions, version))
		tree.AddAPIService(services.NewHTTPServerService(httpServer, cfg.Server.ShutdownTimeout))
		logging.Info().Str("addr", cfg.Server.Listen).Msg("Metrics server enabled")
	}

	errCh := tree.ServeBackground(ctx)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown requested, waiting for services to stop")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Watcher stopped")
	return nil
}

func traktClientConfig(cfg *config.Config) trakt.ClientConfig {
	appVersion := cfg.Trakt.AppVersion
	if appVersion == "" {
		appVersion = version
	}

	throttle := trakt.DefaultThrottle()
	if cfg.Trakt.PostDelay != trakt.PostDelay {
		throttle = trakt.NewThrottle(cfg.Trakt.PostDelay)
	}

	return trakt.ClientConfig{
		APIURL:         cfg.Trakt.APIURL,
		ClientID:       cfg.Trakt.ClientID,
		AccessToken:    cfg.Trakt.AccessToken,
		AppVersion:     appVersion,
		AppDate:        buildDate,
		RequestTimeout: cfg.Trakt.RequestTimeout,
		LookupCacheTTL: cfg.Trakt.LookupCacheTTL,
		BreakerTimeout: cfg.Trakt.BreakerTimeout,
		Throttle:       throttle,
	}
}

// checkConnections verifies both services before the listener starts. A bad
// Trakt token is fatal; an unreachable server only warns, since the
// WebSocket client keeps retrying.
func checkConnections(ctx context.Context, plexClient *plex.Client, traktClient *trakt.Client) error {
	ctx, cancel := context.WithTimeout(ctx, startupCheckTimeout)
	defer cancel()

	if err := plexClient.Ping(ctx); err != nil {
		logging.Warn().Err(err).Msg("Plex server not reachable yet, will keep retrying")
	} else {
		logging.Info().Msg("Connected to Plex")
	}

	user, err := traktClient.CurrentUser(ctx)
	switch {
	case trakt.IsAuthError(err):
		return cli.Exit("Trakt rejected the access token; set TRAKT_ACCESS_TOKEN to a valid token", 3)
	case err != nil:
		logging.Warn().Err(err).Msg("Trakt not reachable yet, scrobbles will fail until it is")
	default:
		logging.Info().Str("user", user).Msg("Connected to Trakt")
	}
	return nil
}
