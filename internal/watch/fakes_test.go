// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package watch

import (
	"context"
	"fmt"
	"sync"

	"github.com/tomtom215/plextraktsync/internal/models"
)

// callLog records the remote calls made through fake sessions, in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// fakeSession records Update/Pause/Stop and can be made to fail.
type fakeSession struct {
	log *callLog
	key string
	err error
}

func (s *fakeSession) Update(_ context.Context, progress float64) error {
	s.log.add("update(%s,%g)", s.key, progress)
	return s.err
}

func (s *fakeSession) Pause(context.Context) error {
	s.log.add("pause(%s)", s.key)
	return s.err
}

func (s *fakeSession) Stop(context.Context) error {
	s.log.add("stop(%s)", s.key)
	return s.err
}

// sessionFactory records begin_scrobble for every session it creates.
func sessionFactory(log *callLog, err error) SessionFactory {
	return func(media *models.TraktMedia) ScrobbleSession {
		log.add("begin_scrobble(%s)", media.Key())
		return &fakeSession{log: log, key: media.Key(), err: err}
	}
}

type fakeIndex struct {
	items map[int]*models.PlexMedia
	err   error
	calls int
}

func (f *fakeIndex) FetchItem(_ context.Context, ratingKey int) (*models.PlexMedia, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.items[ratingKey], nil
}

type fakeMatcher struct {
	byRatingKey map[int]*models.TraktMedia
	err         error
	calls       int
}

func (f *fakeMatcher) FindByMedia(_ context.Context, media *models.PlexMedia) (*models.TraktMedia, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byRatingKey[media.RatingKey], nil
}

// The Matrix: rating key 9725, 100s long, Trakt id 481.
var (
	matrixPlex  = &models.PlexMedia{RatingKey: 9725, Type: models.PlexTypeMovie, Title: "The Matrix", Year: 1999, Duration: 100000}
	matrixTrakt = &models.TraktMedia{Type: models.TraktTypeMovie, Title: "The Matrix", Year: 1999, IDs: models.TraktIDs{Trakt: 481}}
)

func newFakeLookups() (*fakeIndex, *fakeMatcher) {
	index := &fakeIndex{items: map[int]*models.PlexMedia{9725: matrixPlex}}
	matcher := &fakeMatcher{byRatingKey: map[int]*models.TraktMedia{9725: matrixTrakt}}
	return index, matcher
}

func playing(ratingKey, state string, viewOffset int64) models.PlexNotificationContainer {
	return models.PlexNotificationContainer{
		Type: models.NotificationTypePlaying,
		Size: 1,
		PlaySessionStateNotification: []models.PlexPlayingNotification{{
			SessionKey: "23",
			RatingKey:  ratingKey,
			State:      state,
			ViewOffset: viewOffset,
		}},
	}
}

func item(ratingKey, state string, viewOffset int64) models.PlexPlayingNotification {
	return playing(ratingKey, state, viewOffset).PlaySessionStateNotification[0]
}

// pipeline is a Listener wired to fakes.
type pipeline struct {
	log      *callLog
	index    *fakeIndex
	matcher  *fakeMatcher
	sessions *SessionCache
	listener *Listener
}

func newPipeline(notifications <-chan models.PlexNotificationContainer, dedupe *Deduplicator, remoteErr error) *pipeline {
	p := &pipeline{log: &callLog{}, sessions: NewSessionCache()}
	p.index, p.matcher = newFakeLookups()
	p.listener = NewListener(ListenerConfig{
		Notifications: notifications,
		Resolver:      NewMediaResolver(p.index, p.matcher),
		Updater:       NewWatchStateUpdater(p.sessions, sessionFactory(p.log, remoteErr)),
		Dedupe:        dedupe,
	})
	return p
}
