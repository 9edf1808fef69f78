package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func newTestSpotify(t *testing.T, handler http.Handler) (*SpotifyService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	srv.baseURL = server.URL
	srv.SetToken(&oauth2.Token{AccessToken: "test_token"})

	return srv, server
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_secret": "x"})
			if err == nil {
				t.Error("expected error for missing client_id")
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_id": "x"})
			if err == nil {
				t.Error("expected error for missing client_secret")
			}
		})
	})

	t.Run("Get AuthURL", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.GetAuthURL("test_state")
		if !strings.Contains(authURL, "accounts.spotify.com") {
			t.Error("auth URL should contain Spotify domain")
		}
		if !strings.Contains(authURL, "test_client_id") {
			t.Error("auth URL should contain client_id")
		}
		if !strings.Contains(authURL, "test_state") {
			t.Error("auth URL should contain state")
		}
	})

	t.Run("Not Authenticated", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		if _, err := srv.ListPlaylists(context.Background()); err == nil {
			t.Error("expected error before authentication")
		}
	})
}

func TestSpotifyListPlaylists(t *testing.T) {
	calls := 0
	var serverURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/me/playlists", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if got := r.Header.Get("Authorization"); got != "Bearer test_token" {
			t.Errorf("Authorization = %q", got)
		}

		page := SpotifyPaginatedPlaylists{}
		switch r.URL.Query().Get("offset") {
		case "0", "":
			next := serverURL + "/me/playlists?offset=50"
			page.Next = &next
			page.Items = []SpotifySimplePlaylist{
				{ID: "pl1", Name: "Master Song List", Tracks: playlistTracksRef{Total: 2}},
				{ID: "pl2", Name: "Workout"},
			}
		default:
			page.Items = []SpotifySimplePlaylist{
				{ID: "pl3", Name: "Old Master"},
			}
		}
		json.NewEncoder(w).Encode(page)
	})

	srv, server := newTestSpotify(t, mux)
	serverURL = server.URL

	playlists, err := srv.ListPlaylists(context.Background())
	if err != nil {
		t.Fatalf("ListPlaylists() error = %v", err)
	}

	if len(playlists) != 3 {
		t.Fatalf("got %d playlists, want 3", len(playlists))
	}
	if calls != 2 {
		t.Errorf("expected 2 paginated calls, got %d", calls)
	}
	if playlists[0].Name != "Master Song List" || playlists[0].TrackCount != 2 {
		t.Errorf("unexpected first playlist: %+v", playlists[0])
	}
}

func TestSpotifyPlaylistTracks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/playlists/pl1/tracks", func(w http.ResponseWriter, r *http.Request) {
		page := SpotifyPaginatedTracks{
			Items: []SpotifyPlaylistTrack{
				{Track: SpotifyTrack{
					URI:        "spotify:track:1",
					Name:       "Tainted Love",
					Artists:    []SpotifyArtist{{Name: "Soft Cell"}},
					DurationMS: 157000,
				}},
			},
		}
		json.NewEncoder(w).Encode(page)
	})

	srv, _ := newTestSpotify(t, mux)

	tracks, err := srv.PlaylistTracks(context.Background(), "pl1")
	if err != nil {
		t.Fatalf("PlaylistTracks() error = %v", err)
	}

	if len(tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(tracks))
	}
	if tracks[0].ID != "spotify:track:1" {
		t.Errorf("track ID = %q, want URI", tracks[0].ID)
	}
	if tracks[0].DisplayName() != "Soft Cell - Tainted Love" {
		t.Errorf("DisplayName() = %q", tracks[0].DisplayName())
	}
	if tracks[0].Duration != 157 {
		t.Errorf("Duration = %d, want 157", tracks[0].Duration)
	}
}

func TestSpotifyCreatePlaylist(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SpotifyUser{ID: "user1"})
	})
	mux.HandleFunc("/users/user1/playlists", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var body struct {
			Name   string `json:"name"`
			Public bool   `json:"public"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.Public {
			t.Error("created playlist should be private")
		}
		json.NewEncoder(w).Encode(SpotifySimplePlaylist{ID: "new1", Name: body.Name})
	})

	srv, _ := newTestSpotify(t, mux)

	created, err := srv.CreatePlaylist(context.Background(), "Road Trip")
	if err != nil {
		t.Fatalf("CreatePlaylist() error = %v", err)
	}
	if created.ID != "new1" || created.Name != "Road Trip" {
		t.Errorf("unexpected created playlist: %+v", created)
	}
}

func TestSpotifyAddAndRemoveTracks(t *testing.T) {
	var addedURIs []string
	var replaceCalled bool

	mux := http.NewServeMux()
	mux.HandleFunc("/playlists/pl1/tracks", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			URIs []string `json:"uris"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}

		switch r.Method {
		case http.MethodPost:
			addedURIs = append(addedURIs, body.URIs...)
		case http.MethodPut:
			replaceCalled = true
			if len(body.URIs) != 0 {
				t.Errorf("replace body should be empty, got %v", body.URIs)
			}
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
		w.WriteHeader(http.StatusCreated)
	})

	srv, _ := newTestSpotify(t, mux)
	ctx := context.Background()

	if err := srv.AddTrack(ctx, "pl1", "spotify:track:9"); err != nil {
		t.Fatalf("AddTrack() error = %v", err)
	}
	if err := srv.RemoveAllTracks(ctx, "pl1"); err != nil {
		t.Fatalf("RemoveAllTracks() error = %v", err)
	}

	if len(addedURIs) != 1 || addedURIs[0] != "spotify:track:9" {
		t.Errorf("addedURIs = %v", addedURIs)
	}
	if !replaceCalled {
		t.Error("expected PUT replace call for RemoveAllTracks")
	}
}

func TestSpotifyAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/me/playlists", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	srv, _ := newTestSpotify(t, mux)

	if _, err := srv.ListPlaylists(context.Background()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
