// YouTube Data API v3 [Service] implementation
//
// Response types based on https://developers.google.com/youtube/v3/docs
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/gmcculloug/mixtape/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const youtubeBaseURL = "https://www.googleapis.com/youtube/v3"

// youtubeSnippet is the shared snippet shape for playlists and playlist items.
type youtubeSnippet struct {
	Title                 string             `json:"title"`
	Description           string             `json:"description"`
	VideoOwnerChannelName string             `json:"videoOwnerChannelTitle,omitempty"`
	PlaylistID            string             `json:"playlistId,omitempty"`
	ResourceID            *youtubeResourceID `json:"resourceId,omitempty"`
}

type youtubeResourceID struct {
	Kind    string `json:"kind"`
	VideoID string `json:"videoId"`
}

type youtubeStatus struct {
	PrivacyStatus string `json:"privacyStatus"`
}

type youtubeContentDetails struct {
	ItemCount int `json:"itemCount"`
}

// YouTubePlaylist represents a playlist resource.
type YouTubePlaylist struct {
	ID             string                `json:"id"`
	Snippet        youtubeSnippet        `json:"snippet"`
	Status         youtubeStatus         `json:"status"`
	ContentDetails youtubeContentDetails `json:"contentDetails"`
}

// YouTubePlaylistItem represents a playlistItem resource. The item ID is the
// playlist membership record, distinct from the underlying video ID.
type YouTubePlaylistItem struct {
	ID      string         `json:"id"`
	Snippet youtubeSnippet `json:"snippet"`
}

type youtubePlaylistPage struct {
	Items         []YouTubePlaylist `json:"items"`
	NextPageToken string            `json:"nextPageToken"`
}

type youtubePlaylistItemPage struct {
	Items         []YouTubePlaylistItem `json:"items"`
	NextPageToken string                `json:"nextPageToken"`
}

// YouTubeService implements the Service interface against the YouTube Data API v3.
//
// Authentication is a bearer token acquired by a one-time OAuth flow outside this
// package; the token JSON file path is supplied via credentials.
type YouTubeService struct {
	baseURL    string
	token      *oauth2.Token
	httpClient *http.Client
	limiter    *rate.Limiter
	maxResults int
}

// NewYouTubeService creates a new YouTube service instance.
//
// baseURL overrides the Google API endpoint (used in tests); empty selects the default.
func NewYouTubeService(baseURL string) *YouTubeService {
	if baseURL == "" {
		baseURL = youtubeBaseURL
	}

	return &YouTubeService{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(8), 4),
		maxResults: 50,
	}
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube"
}

// Authenticate loads the bearer token from the token file named in credentials.
//
// Expects credentials["token_path"] to point at a JSON-encoded [oauth2.Token],
// or credentials["access_token"] to carry a raw token.
func (y *YouTubeService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		y.token = &oauth2.Token{AccessToken: accessToken}
		return nil
	}

	tokenPath, ok := credentials["token_path"]
	if !ok || tokenPath == "" {
		return fmt.Errorf("%w: missing token_path or access_token", shared.ErrMissingCredentials)
	}

	data, err := os.ReadFile(tokenPath)
	if err != nil {
		return fmt.Errorf("%w: failed to read token file: %v", shared.ErrNotAuthenticated, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return fmt.Errorf("%w: failed to parse token file: %v", shared.ErrInvalidCredentials, err)
	}

	y.token = &token
	return nil
}

func (y *YouTubeService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if y.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	apiURL := y.baseURL + endpoint

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+y.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Message != "" {
			return fmt.Errorf("%w: youtube API status %d: %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Error.Message)
		}
		return fmt.Errorf("%w: youtube API status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// ListPlaylists retrieves all playlists owned by the authenticated channel,
// following page tokens.
func (y *YouTubeService) ListPlaylists(ctx context.Context) ([]Playlist, error) {
	var playlists []Playlist
	pageToken := ""

	for {
		endpoint := fmt.Sprintf("/playlists?part=id,snippet,status,contentDetails&mine=true&maxResults=%d", y.maxResults)
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var page youtubePlaylistPage
		if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			playlists = append(playlists, Playlist{
				ID:          item.ID,
				Name:        item.Snippet.Title,
				Description: item.Snippet.Description,
				TrackCount:  item.ContentDetails.ItemCount,
				Public:      item.Status.PrivacyStatus == "public",
			})
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return playlists, nil
}

// PlaylistTracks retrieves the full item listing of a playlist, following page tokens.
//
// Track IDs are video IDs; the song name is the video title with the channel
// name as artist when present.
func (y *YouTubeService) PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error) {
	items, err := y.playlistItems(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, len(items))
	for _, item := range items {
		track := Track{
			Title:  item.Snippet.Title,
			Artist: item.Snippet.VideoOwnerChannelName,
		}
		if item.Snippet.ResourceID != nil {
			track.ID = item.Snippet.ResourceID.VideoID
		}
		tracks = append(tracks, track)
	}

	return tracks, nil
}

// playlistItems fetches raw playlistItem resources, preserving item IDs for deletion.
func (y *YouTubeService) playlistItems(ctx context.Context, playlistID string) ([]YouTubePlaylistItem, error) {
	var items []YouTubePlaylistItem
	pageToken := ""

	for {
		endpoint := fmt.Sprintf("/playlistItems?part=id,snippet&playlistId=%s&maxResults=%d",
			url.QueryEscape(playlistID), y.maxResults)
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var page youtubePlaylistItemPage
		if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		items = append(items, page.Items...)

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return items, nil
}

// CreatePlaylist creates a new private playlist.
func (y *YouTubeService) CreatePlaylist(ctx context.Context, name string) (*Playlist, error) {
	body := struct {
		Snippet youtubeSnippet `json:"snippet"`
		Status  youtubeStatus  `json:"status"`
	}{
		Snippet: youtubeSnippet{Title: name},
		Status:  youtubeStatus{PrivacyStatus: "private"},
	}

	var created YouTubePlaylist
	if err := y.doRequest(ctx, http.MethodPost, "/playlists?part=snippet,status", body, &created); err != nil {
		return nil, err
	}

	return &Playlist{
		ID:          created.ID,
		Name:        created.Snippet.Title,
		Description: created.Snippet.Description,
		Public:      created.Status.PrivacyStatus == "public",
	}, nil
}

// AddTrack inserts a video into a playlist.
func (y *YouTubeService) AddTrack(ctx context.Context, playlistID, trackID string) error {
	body := struct {
		Snippet youtubeSnippet `json:"snippet"`
	}{
		Snippet: youtubeSnippet{
			PlaylistID: playlistID,
			ResourceID: &youtubeResourceID{
				Kind:    "youtube#video",
				VideoID: trackID,
			},
		},
	}

	return y.doRequest(ctx, http.MethodPost, "/playlistItems?part=snippet", body, nil)
}

// RemoveAllTracks deletes every item from a playlist, one item at a time.
//
// The Data API has no bulk clear; each deletion is an independent call and a
// partial failure leaves the playlist partially cleared.
func (y *YouTubeService) RemoveAllTracks(ctx context.Context, playlistID string) error {
	items, err := y.playlistItems(ctx, playlistID)
	if err != nil {
		return err
	}

	for _, item := range items {
		endpoint := fmt.Sprintf("/playlistItems?id=%s", url.QueryEscape(item.ID))
		if err := y.doRequest(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
			return fmt.Errorf("failed to remove item %s: %w", item.ID, err)
		}
	}

	return nil
}

// SearchTracks searches YouTube for videos matching the query.
func (y *YouTubeService) SearchTracks(ctx context.Context, query string) ([]Track, error) {
	endpoint := fmt.Sprintf("/search?part=snippet&type=video&q=%s&maxResults=%d",
		url.QueryEscape(query), y.maxResults)

	var page struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet youtubeSnippet `json:"snippet"`
		} `json:"items"`
	}

	if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, len(page.Items))
	for _, item := range page.Items {
		tracks = append(tracks, Track{
			ID:     item.ID.VideoID,
			Title:  item.Snippet.Title,
			Artist: item.Snippet.VideoOwnerChannelName,
		})
	}

	return tracks, nil
}
