// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package trakt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/plextraktsync/internal/metrics"
	"github.com/tomtom215/plextraktsync/internal/models"
)

// newTestClient points a Client at handler with throttling disabled.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		APIURL:         server.URL,
		ClientID:       "client-id",
		AccessToken:    "access-token",
		AppVersion:     "1.0.0",
		RequestTimeout: 5 * time.Second,
		LookupCacheTTL: time.Hour,
		Throttle:       NewThrottle(0),
	})
	t.Cleanup(client.Close)
	return client
}

func movie(guids ...string) *models.PlexMedia {
	m := &models.PlexMedia{RatingKey: 1, Type: models.PlexTypeMovie, Title: "The Matrix", Year: 1999, Duration: 8160000}
	for _, g := range guids {
		m.Guids = append(m.Guids, models.ParsePlexGuid(g))
	}
	return m
}

func episode(guids ...string) *models.PlexMedia {
	m := &models.PlexMedia{RatingKey: 2, Type: models.PlexTypeEpisode, ShowTitle: "Lost", Season: 1, Episode: 2, Duration: 2580000}
	for _, g := range guids {
		m.Guids = append(m.Guids, models.ParsePlexGuid(g))
	}
	return m
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(ClientConfig{APIURL: "https://api.trakt.tv/", ClientID: "id"})
	defer client.Close()

	if client.baseURL != "https://api.trakt.tv" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", client.baseURL)
	}
	if client.httpClient.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", client.httpClient.Timeout)
	}
	if client.Throttle() != DefaultThrottle() {
		t.Error("nil Throttle should select the shared default throttle")
	}
	if client.breaker.state() != "closed" {
		t.Errorf("breaker state = %q, want closed", client.breaker.state())
	}
}

func TestClient_Headers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"trakt-api-key":     "client-id",
			"trakt-api-version": "2",
			"Authorization":     "Bearer access-token",
			"Content-Type":      "application/json",
			"User-Agent":        "PlexTraktSync/1.0.0",
		}
		for header, want := range checks {
			if got := r.Header.Get(header); got != want {
				t.Errorf("%s = %q, want %q", header, got, want)
			}
		}
		if got := r.Header.Get("Cache-Control"); got != "" {
			t.Errorf("Cache-Control = %q, want unset for reads", got)
		}
		w.Write([]byte(`{"user":{"username":"sean"}}`))
	})

	user, err := client.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if user != "sean" {
		t.Errorf("CurrentUser() = %q, want sean", user)
	}
}

func TestClient_CurrentUser_AuthError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusUnauthorized)
	})

	_, err := client.CurrentUser(context.Background())
	if !IsAuthError(err) {
		t.Fatalf("IsAuthError(%v) = false, want true", err)
	}
	if IsNotFound(err) || IsRateLimited(err) {
		t.Error("401 must not classify as not found or rate limited")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("error should wrap *APIError")
	}
	if apiErr.Method != http.MethodGet || apiErr.Path != "/users/settings" {
		t.Errorf("APIError = %s %s", apiErr.Method, apiErr.Path)
	}
	if apiErr.Body != `{"error":"invalid_grant"}` {
		t.Errorf("Body = %q", apiErr.Body)
	}
}

func TestAPIError_RetryAfter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.CurrentUser(context.Background())
	if !IsRateLimited(err) {
		t.Fatalf("IsRateLimited(%v) = false", err)
	}
	var apiErr *APIError
	errors.As(err, &apiErr)
	if apiErr.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s", apiErr.RetryAfter)
	}
	if apiErr.IsClientError() {
		t.Error("429 is not a client error for breaker accounting")
	}
}

func TestFindByMedia_Movie(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/search/imdb/tt0133093" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("type") != "movie" {
			t.Errorf("type = %q, want movie", r.URL.Query().Get("type"))
		}
		json.NewEncoder(w).Encode([]models.TraktSearchResult{
			{Type: "show", Show: &models.TraktShow{Title: "Decoy", IDs: models.TraktIDs{Trakt: 1}}},
			{Type: "movie", Movie: &models.TraktMovie{Title: "The Matrix", Year: 1999, IDs: models.TraktIDs{Trakt: 481, IMDB: "tt0133093"}}},
		})
	})

	pm := movie("tmdb://603", "imdb://tt0133093")
	for i := 0; i < 2; i++ {
		tm, err := client.FindByMedia(context.Background(), pm)
		if err != nil {
			t.Fatalf("FindByMedia() error = %v", err)
		}
		if tm == nil || tm.IDs.Trakt != 481 || tm.Type != models.TraktTypeMovie {
			t.Fatalf("FindByMedia() = %v, want movie 481", tm)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1 (second lookup memoized)", calls.Load())
	}
	// One miss then one hit.
	if got := testutil.ToFloat64(metrics.TraktLookupCacheHitRatio); got != 0.5 {
		t.Errorf("lookup cache hit ratio = %v, want 0.5", got)
	}
	if got := testutil.ToFloat64(metrics.TraktLookupCacheEntries); got != 1 {
		t.Errorf("lookup cache entries = %v, want 1", got)
	}
}

func TestFindByMedia_MissIsMemoized(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`[]`))
	})

	pm := movie("imdb://tt0000000")
	for i := 0; i < 3; i++ {
		tm, err := client.FindByMedia(context.Background(), pm)
		if err != nil || tm != nil {
			t.Fatalf("FindByMedia() = %v, %v; want nil, nil", tm, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1", calls.Load())
	}
}

func TestFindByMedia_ErrorIsNotMemoized(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode([]models.TraktSearchResult{
			{Type: "movie", Movie: &models.TraktMovie{IDs: models.TraktIDs{Trakt: 481}}},
		})
	})

	pm := movie("imdb://tt0133093")
	if _, err := client.FindByMedia(context.Background(), pm); err == nil {
		t.Fatal("first FindByMedia() should fail on 502")
	}
	tm, err := client.FindByMedia(context.Background(), pm)
	if err != nil || tm == nil {
		t.Fatalf("second FindByMedia() = %v, %v; want a match", tm, err)
	}
}

func TestFindByMedia_NoCacheContextSkipsMemo(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`[]`))
	})

	pm := movie("imdb://tt0133093")
	client.FindByMedia(context.Background(), pm)
	client.FindByMedia(withoutCache(context.Background()), pm)
	if calls.Load() != 2 {
		t.Errorf("server calls = %d, want 2", calls.Load())
	}
}

func TestFindByMedia_NoUsableGuid(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})

	for _, pm := range []*models.PlexMedia{
		movie("local://1234", "plex://movie/5d776825880197001ec967c8"),
		{Type: "track", Guids: []models.PlexGuid{models.ParsePlexGuid("imdb://tt0133093")}},
	} {
		tm, err := client.FindByMedia(context.Background(), pm)
		if tm != nil || err != nil {
			t.Errorf("FindByMedia(%v) = %v, %v; want nil, nil", pm, tm, err)
		}
	}
}

func TestFindByMedia_EpisodeByID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/tvdb/127131" || r.URL.Query().Get("type") != "episode" {
			t.Errorf("request = %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode([]models.TraktSearchResult{{
			Type:    "episode",
			Show:    &models.TraktShow{Title: "Lost", Year: 2004},
			Episode: &models.TraktEpisode{Season: 1, Number: 2, Title: "Pilot (2)", IDs: models.TraktIDs{Trakt: 73641}},
		}})
	})

	tm, err := client.FindByMedia(context.Background(), episode("imdb://tt0636289", "tvdb://127131"))
	if err != nil {
		t.Fatalf("FindByMedia() error = %v", err)
	}
	if tm.Key() != "episode:73641" || tm.ShowTitle != "Lost" {
		t.Errorf("FindByMedia() = %+v", tm)
	}
}

func TestFindByMedia_LegacyEpisode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/tvdb/73739":
			if r.URL.Query().Get("type") != "show" {
				t.Errorf("type = %q, want show", r.URL.Query().Get("type"))
			}
			json.NewEncoder(w).Encode([]models.TraktSearchResult{
				{Type: "show", Show: &models.TraktShow{Title: "Lost", Year: 2004, IDs: models.TraktIDs{Trakt: 1388}}},
			})
		case "/shows/1388/seasons/1/episodes/2":
			json.NewEncoder(w).Encode(models.TraktEpisode{Season: 1, Number: 2, IDs: models.TraktIDs{Trakt: 73641}})
		default:
			http.NotFound(w, r)
		}
	})

	tm, err := client.FindByMedia(context.Background(), episode("com.plexapp.agents.thetvdb://73739/1/2?lang=en"))
	if err != nil {
		t.Fatalf("FindByMedia() error = %v", err)
	}
	if tm == nil || tm.IDs.Trakt != 73641 || tm.Season != 1 || tm.Number != 2 {
		t.Fatalf("FindByMedia() = %+v", tm)
	}

	// Missing episode resolves to no match.
	tm, err = client.FindByMedia(context.Background(), episode("com.plexapp.agents.thetvdb://73739/9/99"))
	if err != nil || tm != nil {
		t.Errorf("FindByMedia(missing episode) = %v, %v; want nil, nil", tm, err)
	}
}

func TestCircuitBreaker_TripsOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	for i := 0; i < 11 && client.breaker.state() != "open"; i++ {
		client.CurrentUser(context.Background())
	}
	if client.breaker.state() != "open" {
		t.Fatalf("breaker state = %q, want open", client.breaker.state())
	}

	before := calls.Load()
	if _, err := client.CurrentUser(context.Background()); err == nil {
		t.Fatal("expected rejection while open")
	}
	if calls.Load() != before {
		t.Error("open breaker must not reach the server")
	}
}

func TestCircuitBreaker_IgnoresClientErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	for i := 0; i < 15; i++ {
		client.CurrentUser(context.Background())
	}
	if client.breaker.state() != "closed" {
		t.Errorf("breaker state = %q, want closed after 4xx responses", client.breaker.state())
	}
}
