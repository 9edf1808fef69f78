package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/gmcculloug/mixtape/internal/match"
	"github.com/gmcculloug/mixtape/internal/repositories"
	"github.com/gmcculloug/mixtape/internal/services"
	"github.com/gmcculloug/mixtape/internal/shared"
	"github.com/gmcculloug/mixtape/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer

	// service overrides lazy construction, used by tests.
	service services.Service
	cache   tasks.TrackCacher
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Logger  *log.Logger
	Output  io.Writer
	Service services.Service
	Cache   tasks.TrackCacher
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:  opts.Config,
		logger:  opts.Logger,
		output:  opts.Output,
		service: opts.Service,
		cache:   opts.Cache,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, playlistsCommand, authCommand, setupCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// reloadConfig swaps in the config at path when the flag points somewhere
// other than the already-loaded file.
func (r *Runner) reloadConfig(path string) {
	if path == "" {
		return
	}
	if config, err := shared.LoadConfig(path); err == nil {
		r.config = config
	} else {
		r.logger.Warn("failed to load config, keeping current", "path", path, "error", err)
	}
}

// musicService builds and authenticates the selected service variant.
// Exactly two are supported: "youtube" (default) and "spotify".
func (r *Runner) musicService(ctx context.Context, name string) (services.Service, error) {
	if r.service != nil {
		return r.service, nil
	}

	switch strings.ToLower(name) {
	case "", "youtube", "yt":
		svc := services.NewYouTubeService(r.config.Credentials.YouTube.BaseURL)
		tokenPath := expandPath(r.config.Credentials.YouTube.TokenPath)
		if tokenPath == "" {
			return nil, fmt.Errorf("%w: credentials.youtube.token_path not configured", shared.ErrMissingConfig)
		}
		if err := svc.Authenticate(ctx, map[string]string{"token_path": tokenPath}); err != nil {
			return nil, err
		}
		return svc, nil

	case "spotify":
		svc, err := services.NewSpotifyService(r.config.Credentials.Spotify.Map())
		if err != nil {
			return nil, err
		}
		token, err := loadToken(expandPath(r.config.Credentials.Spotify.TokenPath))
		if err != nil {
			return nil, fmt.Errorf("%w: run 'mixtape auth spotify' first: %v", shared.ErrNotAuthenticated, err)
		}
		svc.SetToken(token)
		return svc, nil

	default:
		return nil, fmt.Errorf("%w: unknown service %q (expected youtube or spotify)", shared.ErrInvalidFlag, name)
	}
}

// engine constructs a ReconcileEngine around the selected service.
func (r *Runner) engine(svc services.Service, threshold float64) *tasks.ReconcileEngine {
	if threshold <= 0 {
		threshold = r.config.Matching.Threshold
	}

	return tasks.NewReconcileEngine(tasks.EngineOpts{
		Service:       svc,
		Matcher:       match.NewMatcher(match.Config{Threshold: threshold}),
		Cache:         r.trackCache(),
		MasterKeyword: r.config.Matching.MasterKeyword,
	})
}

// trackCache lazily opens the configured cache database the first time an
// engine needs it. The cache is observational: open failure is logged and the
// run proceeds without one.
func (r *Runner) trackCache() tasks.TrackCacher {
	if r.cache != nil {
		return r.cache
	}

	repo, _, err := r.openCache()
	if err != nil {
		r.logger.Warn("track cache unavailable, continuing without it", "error", err)
		return nil
	}

	r.cache = repositories.NewTrackCacheAdapter(repo)
	return r.cache
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// expandPath resolves a leading ~ to the user home directory.
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// loadToken reads a persisted OAuth2 token from disk.
func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}

	return &token, nil
}

// saveToken persists an OAuth2 token to disk, creating parent directories.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}
