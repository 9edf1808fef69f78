package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/gmcculloug/mixtape/internal/formatter"
	"github.com/gmcculloug/mixtape/internal/shared"
	"github.com/gmcculloug/mixtape/internal/songlist"
	"github.com/gmcculloug/mixtape/internal/tasks"
	"github.com/gmcculloug/mixtape/internal/ui"
)

// Sync reconciles the named target playlist against the song list file.
//
// Positional arguments form the playlist name, joined with spaces, so quoting
// is optional: `mixtape sync Road Trip` and `mixtape sync "Road Trip"` are
// equivalent.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd.String("config"))

	targetName := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if targetName == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	entries, err := songlist.Load(cmd.String("input"))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		// An empty song list is a valid zero-match run, not a failure.
		r.logger.Warn("song list is empty", "input", cmd.String("input"))
	}

	svc, err := r.musicService(ctx, cmd.String("service"))
	if err != nil {
		return err
	}

	engine := r.engine(svc, cmd.Float("threshold"))

	opts := tasks.RunOptions{
		TargetName: targetName,
		Entries:    entries,
		DryRun:     cmd.Bool("dry-run"),
		Reset:      cmd.Bool("reset"),
	}

	r.logger.Info("starting reconcile",
		"target", targetName,
		"service", svc.Name(),
		"songs", len(entries),
		"dry_run", opts.DryRun,
		"reset", opts.Reset,
	)

	if cmd.Bool("interactive") {
		model := ui.NewModel(ctx, engine, opts)
		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	}

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase.String(), "step", update.Step, "total", update.Total)
		}
	}()

	result, err := engine.Run(ctx, progress, opts)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	if err := r.writeReport(result, cmd.String("format")); err != nil {
		return err
	}

	if path := cmd.String("unmatched-file"); path != "" && !result.DryRun {
		written, err := formatter.WriteUnmatched(result, path)
		if err != nil {
			return err
		}
		if written != "" {
			r.writePlainln("Unmatched songs written to %s", written)
		}
	}

	return nil
}

// writeReport renders the run result in the requested format.
func (r *Runner) writeReport(result *tasks.RunResult, format string) error {
	switch strings.ToLower(format) {
	case "", "text":
		return r.writePlain("%s", formatter.ReportToText(result))
	case "markdown", "md":
		return r.writePlain("%s", formatter.ReportToMarkdown(result))
	case "csv":
		data, err := formatter.ReportToCSV(result)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	case "json":
		return r.writeJSON(result, true)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}
