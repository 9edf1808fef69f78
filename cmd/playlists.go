package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/gmcculloug/mixtape/internal/shared"
)

// Playlists lists the playlists on the selected service, marking the master
// playlists that feed candidate pooling.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd.String("config"))

	svc, err := r.musicService(ctx, cmd.String("service"))
	if err != nil {
		return err
	}

	r.logger.Info("listing playlists", "service", svc.Name())

	playlists, err := svc.ListPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	masterCount := 0
	r.writePlain("Found %d playlists on %s:\n\n", len(playlists), svc.Name())
	for i, pl := range playlists {
		marker := " "
		if shared.IsMasterPlaylist(pl.Name, r.config.Matching.MasterKeyword) {
			marker = "*"
			masterCount++
		}
		r.writePlain("%s %d. %s\n", marker, i+1, pl.Name)
		r.writePlain("     Tracks: %d  Visibility: %s\n", pl.TrackCount, shared.VisibilityString(pl.Public))
	}

	r.writePlain("\n* master playlist (%d)\n", masterCount)
	if masterCount == 0 {
		r.writePlain("⚠ No master playlists found; 'mixtape sync' will fail until one exists.\n")
	}

	return nil
}
