// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package services

import (
	"context"
)

// ContextRunner matches watch.Listener's RunWithContext method, so this
// package does not import the watch package.
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
}

// ListenerService wraps the watch listener as a supervised service.
//
//	listener := watch.NewListener(cfg)
//	tree.AddPipelineService(services.NewListenerService(listener))
type ListenerService struct {
	runner ContextRunner
	name   string
}

// NewListenerService creates a new listener service wrapper.
func NewListenerService(runner ContextRunner) *ListenerService {
	return &ListenerService{
		runner: runner,
		name:   "watch-listener",
	}
}

// Serve implements suture.Service. It returns ctx.Err() on shutdown.
func (s *ListenerService) Serve(ctx context.Context) error {
	return s.runner.RunWithContext(ctx)
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *ListenerService) String() string {
	return s.name
}
