package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/gmcculloug/mixtape/internal/shared"
)

// CachedTrack is a row in the local track cache.
type CachedTrack struct {
	ID         string
	Sequence   int
	Service    string
	ServiceID  string
	Title      string
	Artist     string
	Album      string
	Duration   int
	PlaylistID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// TrackRepository handles CRUD for the tracks cache table.
//
// Rows are unique per (service, service_id); soft deletes keep history
// without breaking that constraint.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Create inserts a new cached track with generated ID and sequence
func (r *TrackRepository) Create(track *CachedTrack) error {
	if track.Service == "" || track.ServiceID == "" || track.Title == "" {
		return fmt.Errorf("%w: service, service_id, and title are required", shared.ErrInvalidInput)
	}

	sequence, err := NextSequence(r.db, "tracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	track.ID = shared.GenerateID()
	track.Sequence = sequence
	now := time.Now()
	track.CreatedAt = now
	track.UpdatedAt = now

	query := `
		INSERT INTO tracks (id, sequence, service, service_id, title, artist, album, duration, playlist_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		track.ID,
		track.Sequence,
		track.Service,
		track.ServiceID,
		track.Title,
		track.Artist,
		track.Album,
		track.Duration,
		track.PlaylistID,
		track.CreatedAt,
		track.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert track: %w", err)
	}

	return nil
}

// GetByServiceID retrieves a cached track by service and service_id
func (r *TrackRepository) GetByServiceID(service, serviceID string) (*CachedTrack, error) {
	query := `
		SELECT id, sequence, service, service_id, title, artist, album, duration, playlist_id, created_at, updated_at, deleted_at
		FROM tracks
		WHERE service = ? AND service_id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, service, serviceID))
}

// List retrieves all cached tracks matching the given criteria, excluding soft-deleted rows
func (r *TrackRepository) List(criteria map[string]any) ([]*CachedTrack, error) {
	query := `
		SELECT id, sequence, service, service_id, title, artist, album, duration, playlist_id, created_at, updated_at, deleted_at
		FROM tracks
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if service, ok := criteria["service"].(string); ok && service != "" {
		query += " AND service = ?"
		args = append(args, service)
	}

	if playlistID, ok := criteria["playlist_id"].(string); ok && playlistID != "" {
		query += " AND playlist_id = ?"
		args = append(args, playlistID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*CachedTrack
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// Delete soft-deletes a cached track by ID
func (r *TrackRepository) Delete(id string) error {
	query := `
		UPDATE tracks
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}

	return nil
}

// Clear soft-deletes every cached track, optionally scoped to one service.
// Returns the number of rows cleared.
func (r *TrackRepository) Clear(service string) (int, error) {
	query := "UPDATE tracks SET deleted_at = ? WHERE deleted_at IS NULL"
	args := []any{time.Now()}

	if service != "" {
		query += " AND service = ?"
		args = append(args, service)
	}

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to clear tracks: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(rows), nil
}

type scannable interface {
	Scan(dest ...any) error
}

// scanOne scans a single [sql.Row] into a [CachedTrack]
func (r *TrackRepository) scanOne(row *sql.Row) (*CachedTrack, error) {
	track, err := scanTrack(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: cache miss", shared.ErrTrackNotFound)
	}
	return track, err
}

func scanTrack(row scannable) (*CachedTrack, error) {
	var track CachedTrack
	var playlistID sql.NullString
	var deletedAt sql.NullTime

	err := row.Scan(
		&track.ID,
		&track.Sequence,
		&track.Service,
		&track.ServiceID,
		&track.Title,
		&track.Artist,
		&track.Album,
		&track.Duration,
		&playlistID,
		&track.CreatedAt,
		&track.UpdatedAt,
		&deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}

	if playlistID.Valid {
		track.PlaylistID = playlistID.String
	}
	if deletedAt.Valid {
		track.DeletedAt = &deletedAt.Time
	}

	return &track, nil
}
