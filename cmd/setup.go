package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/gmcculloug/mixtape/internal/shared"
)

// setupConfigAt loads the config at path, scaffolding it from the embedded
// template first when missing. Any failure falls back to defaults so setup
// can still initialize the database.
func (r *Runner) setupConfigAt(path string) *shared.Config {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := shared.CreateConfigFile(path); err != nil {
			r.logger.Warn("could not scaffold config, using defaults", "path", path, "error", err)
			return shared.DefaultConfig()
		}
		r.logger.Info("config file created", "path", path)
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("could not load config, using defaults", "path", path, "error", err)
		return shared.DefaultConfig()
	}
	return config
}

// SetupDatabase creates the track cache database and brings its schema current.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.setupConfigAt(cmd.String("config"))

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.writePlain("✓ Database ready at %s\n", config.Database.Path)
	return nil
}

// SetupConfig scaffolds a config.toml from the embedded template.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.writePlain("✓ Config written to %s\n", configPath)
	r.writePlainln("Fill in credentials.spotify or credentials.youtube before syncing.")
	return nil
}
