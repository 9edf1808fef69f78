package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/gmcculloug/mixtape/internal/services"
)

// TrackCacheAdapter implements tasks.TrackCacher using TrackRepository.
//
// Provides automatic track caching with deduplication via the
// (service, service_id) constraint. Duplicate tracks are silently ignored.
type TrackCacheAdapter struct {
	repo *TrackRepository
}

// NewTrackCacheAdapter creates a new TrackCacheAdapter with the given repository
func NewTrackCacheAdapter(repo *TrackRepository) *TrackCacheAdapter {
	return &TrackCacheAdapter{repo: repo}
}

// RecordTracks caches every track observed in a playlist fetch. Tracks
// already cached for the service are skipped; the first real failure aborts
// the batch.
func (a *TrackCacheAdapter) RecordTracks(ctx context.Context, service, playlistID string, tracks []services.Track) error {
	for _, tr := range tracks {
		if err := ctx.Err(); err != nil {
			return err
		}

		if existing, err := a.repo.GetByServiceID(service, tr.ID); err == nil && existing != nil {
			continue
		}

		cached := &CachedTrack{
			Service:    service,
			ServiceID:  tr.ID,
			Title:      tr.Title,
			Artist:     tr.Artist,
			Album:      tr.Album,
			Duration:   tr.Duration,
			PlaylistID: playlistID,
		}

		if err := a.repo.Create(cached); err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint") {
				continue
			}
			return fmt.Errorf("failed to cache track: %w", err)
		}
	}

	return nil
}
