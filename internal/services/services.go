// package services defines interface Service for interacting with music platform APIs
//
// Spotify, YouTube
package services

import (
	"context"
	"fmt"
)

// Service defines the interface for music service providers (Spotify, YouTube)
// that back playlist reconciliation. Implementations handle pagination and
// authentication internally; callers see flat listings.
type Service interface {
	// Authenticate performs OAuth or token-file authentication with the service.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// ListPlaylists retrieves all playlists for the authenticated user (metadata only).
	ListPlaylists(ctx context.Context) ([]Playlist, error)

	// PlaylistTracks retrieves the full track listing of a playlist.
	PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error)

	// CreatePlaylist creates a new private playlist with the given name.
	CreatePlaylist(ctx context.Context, name string) (*Playlist, error)

	// AddTrack appends a single track to a playlist.
	AddTrack(ctx context.Context, playlistID, trackID string) error

	// RemoveAllTracks removes every track from a playlist. Used by reset mode only.
	RemoveAllTracks(ctx context.Context, playlistID string) error

	// SearchTracks searches the service catalog for tracks matching the query.
	SearchTracks(ctx context.Context, query string) ([]Track, error)

	// Name returns the name of the service (e.g., "Spotify", "YouTube")
	Name() string
}

// Playlist represents a music playlist from any service
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Public      bool
}

// Track represents a music track from any service
type Track struct {
	ID       string
	Title    string
	Artist   string
	Album    string
	Duration int // Duration in seconds
	ISRC     string
}

// DisplayName returns the human-readable identity of the track: "Artist - Title"
// when the artist is known, the bare title otherwise. Matching runs against this.
func (t Track) DisplayName() string {
	if t.Artist == "" {
		return t.Title
	}
	return fmt.Sprintf("%s - %s", t.Artist, t.Title)
}
