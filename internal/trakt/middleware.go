// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package trakt

import "context"

// call is one remote operation.
type call func(ctx context.Context) error

// rateLimit runs next through the throttle.
func rateLimit(t *Throttle, next call) call {
	return func(ctx context.Context) error {
		return t.Do(ctx, next)
	}
}

// noCache runs next with response caching bypassed.
func noCache(next call) call {
	return func(ctx context.Context) error {
		return next(withoutCache(ctx))
	}
}

type cacheBypassKey struct{}

func withoutCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, cacheBypassKey{}, true)
}

func cacheBypassed(ctx context.Context) bool {
	bypass, _ := ctx.Value(cacheBypassKey{}).(bool)
	return bypass
}
