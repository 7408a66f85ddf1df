// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

/*
Package supervisor runs the long-lived components under a suture v4
supervisor tree so a crashed goroutine is restarted instead of taking the
process down.

# Tree Structure

	plextraktsync (root)
	├── transport-layer
	│   └── plex-websocket
	├── pipeline-layer
	│   └── watch-listener
	└── api-layer
	    └── metrics-server

Each layer is its own supervisor, so restarts in one layer do not touch the
others. Supervisor events (restarts, backoff, panics) are logged through
sutureslog into the zerolog stream via logging.NewSlogLogger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg.Supervisor))
	tree.AddTransportService(wsClient)
	tree.AddPipelineService(services.NewListenerService(listener))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	err = tree.Serve(ctx)

# Configuration

Failure handling mirrors suture's Spec: FailureThreshold (default 5),
FailureDecay (default 30s), FailureBackoff (default 15s) and
ShutdownTimeout (default 10s).
*/
package supervisor
