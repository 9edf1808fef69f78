// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// Flag constructors return fresh instances so commands never share state.
func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func serviceFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "service",
		Aliases: []string{"s"},
		Usage:   "Music service to use (youtube or spotify)",
		Value:   "youtube",
	}
}

// syncCommand reconciles a target playlist against a song list.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Reconcile a playlist with a song list using master playlist tracks",
		ArgsUsage: "<playlist name>",
		Flags: []cli.Flag{
			configFlag(),
			serviceFlag(),
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Path to the song list file",
				Value:   "song_list.txt",
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Report the plan without changing anything",
			},
			&cli.BoolFlag{
				Name:  "reset",
				Usage: "Empty the target playlist before adding",
			},
			&cli.FloatFlag{
				Name:  "threshold",
				Usage: "Minimum similarity score in [0,1] for a match",
			},
			&cli.BoolFlag{
				Name:  "interactive",
				Usage: "Review the plan in a TUI before applying",
			},
			&cli.StringFlag{
				Name:  "unmatched-file",
				Usage: "Write unmatched songs to this file",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Report format (text, markdown, csv, json)",
				Value:   "text",
			},
		},
		Action: r.Sync,
	}
}

// playlistsCommand lists playlists on the selected service.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "List playlists, marking master playlists",
		Flags: []cli.Flag{
			configFlag(),
			serviceFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Playlists,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "spotify",
				Usage:  "Authenticate with Spotify using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthSpotify,
			},
			{
				Name:   "status",
				Usage:  "Check stored credentials for both services",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthStatus,
			},
		},
	}
}

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Create a config.toml from the embedded template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
		},
	}
}

// cacheCommand inspects the local track cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the local track cache",
		Commands: []*cli.Command{
			{
				Name:  "tracks",
				Usage: "List cached tracks",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "service",
						Usage: "Filter by service name",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheTracks,
			},
			{
				Name:  "clear",
				Usage: "Clear cached tracks",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "service",
						Usage: "Only clear one service's tracks",
					},
				},
				Action: r.CacheClear,
			},
		},
	}
}
