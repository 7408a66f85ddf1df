// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package trakt

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/plextraktsync/internal/metrics"
)

// PostDelay is the minimum spacing between Trakt write calls. It is both the
// default and the lowest accepted TRAKT_POST_DELAY.
const PostDelay = 1100 * time.Millisecond

// Throttle serializes calls and starts each one at least delay after the
// previous call through it returned. One Throttle is shared by every caller
// that must respect the same limit; the first call never waits.
//
// The limiter holds a single token. It is taken when a call returns, not when
// it starts, so time spent dialing or waiting on a response never shortens
// the gap the server sees.
type Throttle struct {
	delay   time.Duration
	slot    chan struct{}
	limiter *rate.Limiter // nil when disabled
}

// NewThrottle creates a throttle with the given minimum spacing. A delay of
// zero or less disables spacing; calls are still serialized.
func NewThrottle(delay time.Duration) *Throttle {
	t := &Throttle{slot: make(chan struct{}, 1)}
	if delay > 0 {
		t.delay = delay
		t.limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
	return t
}

var defaultThrottle = sync.OnceValue(func() *Throttle {
	return NewThrottle(PostDelay)
})

// DefaultThrottle returns the process-wide write throttle (PostDelay).
func DefaultThrottle() *Throttle {
	return defaultThrottle()
}

// Delay returns the configured spacing.
func (t *Throttle) Delay() time.Duration {
	return t.delay
}

// Do runs fn once no other call holds the throttle and delay has passed since
// the previous call returned. If ctx ends first, fn is not run and ctx.Err()
// is returned.
func (t *Throttle) Do(ctx context.Context, fn call) error {
	start := time.Now()
	select {
	case t.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-t.slot }()

	if err := t.waitForToken(ctx); err != nil {
		return err
	}
	metrics.RecordThrottleWait(time.Since(start))

	err := fn(ctx)
	if t.limiter != nil {
		// The bucket is full here: tokens only grew while the slot was held.
		t.limiter.AllowN(time.Now(), 1)
	}
	return err
}

// waitForToken blocks until the limiter holds a whole token.
func (t *Throttle) waitForToken(ctx context.Context) error {
	if t.limiter == nil {
		return nil
	}
	for {
		tokens := t.limiter.TokensAt(time.Now())
		if tokens >= 1 {
			return nil
		}
		timer := time.NewTimer(time.Duration((1 - tokens) * float64(t.delay)))
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}
