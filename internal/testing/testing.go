// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/gmcculloug/mixtape/internal/services"
)

// MockService is a configurable test double for [services.Service]. Fields
// override the default benign behavior; call counters record mutations so
// tests can assert dry runs stay read-only.
type MockService struct {
	ServiceName string

	Playlists      []services.Playlist
	PlaylistErr    error
	TracksByID     map[string][]services.Track
	TracksErr      error
	CreateErr      error
	AddErr         error
	AddErrByTrack  map[string]error
	RemoveErr      error
	SearchResults  []services.Track

	CreateCalls []string            // Playlist names passed to CreatePlaylist
	AddCalls    map[string][]string // Playlist ID to added track IDs
	RemoveCalls []string            // Playlist IDs passed to RemoveAllTracks
}

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (m *MockService) ListPlaylists(ctx context.Context) ([]services.Playlist, error) {
	if m.PlaylistErr != nil {
		return nil, m.PlaylistErr
	}
	return m.Playlists, nil
}

func (m *MockService) PlaylistTracks(ctx context.Context, playlistID string) ([]services.Track, error) {
	if m.TracksErr != nil {
		return nil, m.TracksErr
	}
	return m.TracksByID[playlistID], nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, name string) (*services.Playlist, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.CreateCalls = append(m.CreateCalls, name)
	pl := services.Playlist{ID: fmt.Sprintf("created-%d", len(m.CreateCalls)), Name: name}
	m.Playlists = append(m.Playlists, pl)
	return &pl, nil
}

func (m *MockService) AddTrack(ctx context.Context, playlistID, trackID string) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	if err, ok := m.AddErrByTrack[trackID]; ok {
		return err
	}
	if m.AddCalls == nil {
		m.AddCalls = make(map[string][]string)
	}
	m.AddCalls[playlistID] = append(m.AddCalls[playlistID], trackID)
	return nil
}

func (m *MockService) RemoveAllTracks(ctx context.Context, playlistID string) error {
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.RemoveCalls = append(m.RemoveCalls, playlistID)
	return nil
}

func (m *MockService) SearchTracks(ctx context.Context, query string) ([]services.Track, error) {
	return m.SearchResults, nil
}

func (m *MockService) Name() string {
	if m.ServiceName != "" {
		return m.ServiceName
	}
	return "mock"
}

// Mutated reports whether any write call reached the service.
func (m *MockService) Mutated() bool {
	return len(m.CreateCalls) > 0 || len(m.AddCalls) > 0 || len(m.RemoveCalls) > 0
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
