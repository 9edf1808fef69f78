package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/gmcculloug/mixtape/internal/repositories"
	"github.com/gmcculloug/mixtape/internal/shared"
)

// openCache opens the configured cache database and returns a track repository.
func (r *Runner) openCache() (*repositories.TrackRepository, *sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repositories.NewTrackRepository(db), db, nil
}

// CacheTracks lists tracks recorded during previous reconcile runs.
func (r *Runner) CacheTracks(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd.String("config"))

	repo, db, err := r.openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	tracks, err := repo.List(map[string]any{"service": cmd.String("service")})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, true)
	}

	if len(tracks) == 0 {
		r.writePlain("Cache is empty. Tracks are recorded during 'mixtape sync' runs.\n")
		return nil
	}

	r.writePlain("%d cached tracks:\n\n", len(tracks))
	for _, tr := range tracks {
		r.writePlain("%4d. [%s] %s - %s\n", tr.Sequence, tr.Service, tr.Artist, tr.Title)
	}

	return nil
}

// CacheClear soft-deletes cached tracks, optionally scoped to one service.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd.String("config"))

	repo, db, err := r.openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	cleared, err := repo.Clear(cmd.String("service"))
	if err != nil {
		return err
	}

	r.logger.Info("cache cleared", "tracks", cleared)
	r.writePlain("✓ Cleared %d cached tracks\n", cleared)
	return nil
}
