// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package plex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/plextraktsync/internal/models"
)

// newTestClient points a Client at handler with fast retries.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "test-token", 5*time.Second)
	client.baseDelay = time.Millisecond
	return client
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:32400/", "tok", 0)
	if client.BaseURL() != "http://localhost:32400" {
		t.Errorf("BaseURL() = %q, want trailing slash trimmed", client.BaseURL())
	}
	if client.Token() != "tok" {
		t.Errorf("Token() = %q", client.Token())
	}
	if client.httpClient.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s default", client.httpClient.Timeout)
	}
}

func TestClient_FetchItem(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Plex-Token") != "test-token" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("includeGuids") != "1" {
			t.Errorf("includeGuids = %q, want 1", r.URL.Query().Get("includeGuids"))
		}

		switch r.URL.Path {
		case "/library/metadata/9725":
			json.NewEncoder(w).Encode(models.PlexMetadataResponse{
				MediaContainer: models.PlexMetadataContainer{
					Size: 1,
					Metadata: []models.PlexMetadataDetails{{
						RatingKey: "9725",
						Type:      "movie",
						Title:     "The Matrix",
						Year:      1999,
						Duration:  8160000,
						Guids:     []models.PlexGuidTag{{ID: "imdb://tt0133093"}},
					}},
				},
			})
		case "/library/metadata/1":
			json.NewEncoder(w).Encode(models.PlexMetadataResponse{})
		case "/library/metadata/500":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		media, err := client.FetchItem(ctx, 9725)
		if err != nil {
			t.Fatalf("FetchItem() error = %v", err)
		}
		if media == nil {
			t.Fatal("FetchItem() = nil, want media")
		}
		if media.RatingKey != 9725 || media.Duration != 8160000 {
			t.Errorf("media = %+v", media)
		}
		if g, ok := media.PreferredGuid(); !ok || g.ID != "tt0133093" {
			t.Errorf("PreferredGuid() = %v, %v", g, ok)
		}
	})

	t.Run("not found is absent", func(t *testing.T) {
		media, err := client.FetchItem(ctx, 4040)
		if err != nil {
			t.Fatalf("FetchItem() error = %v", err)
		}
		if media != nil {
			t.Errorf("FetchItem() = %v, want nil", media)
		}
	})

	t.Run("empty container is absent", func(t *testing.T) {
		media, err := client.FetchItem(ctx, 1)
		if err != nil || media != nil {
			t.Errorf("FetchItem() = %v, %v; want nil, nil", media, err)
		}
	})

	t.Run("server error propagates", func(t *testing.T) {
		_, err := client.FetchItem(ctx, 500)
		if err == nil {
			t.Fatal("FetchItem() expected error")
		}
		if errors.Is(err, ErrNotFound) {
			t.Error("500 must not be reported as ErrNotFound")
		}
	})
}

func TestClient_Ping(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/identity" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Plex-Token") != "test-token" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(IdentityResponse{
			MediaContainer: IdentityContainer{MachineIdentifier: "abc", Version: "1.40.0"},
		})
	})

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	id, err := client.Identity(context.Background())
	if err != nil {
		t.Fatalf("Identity() error = %v", err)
	}
	if id.MachineIdentifier != "abc" {
		t.Errorf("MachineIdentifier = %q", id.MachineIdentifier)
	}

	client.token = "wrong"
	if err := client.Ping(context.Background()); err == nil {
		t.Error("Ping() with bad token expected error")
	}
}

func TestClient_DoRequestWithRateLimit(t *testing.T) {
	t.Run("retries then succeeds", func(t *testing.T) {
		var attempts atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if attempts.Add(1) < 3 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			json.NewEncoder(w).Encode(IdentityResponse{})
		})

		if err := client.Ping(context.Background()); err != nil {
			t.Fatalf("Ping() error = %v", err)
		}
		if got := attempts.Load(); got != 3 {
			t.Errorf("attempts = %d, want 3", got)
		}
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		var attempts atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		})
		client.maxRetries = 2

		if err := client.Ping(context.Background()); err == nil {
			t.Fatal("Ping() expected rate limit error")
		}
		if got := attempts.Load(); got != 3 {
			t.Errorf("attempts = %d, want 3 (1 + 2 retries)", got)
		}
	})

	t.Run("context canceled during backoff", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
		})

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := client.Ping(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Ping() error = %v, want deadline exceeded", err)
		}
	})
}
