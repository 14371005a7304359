// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// configFlag is shared by every command that reads config.toml.
func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// authCommand handles Spotify authentication
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authenticate with Spotify using OAuth2 and cache the token",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check the cached token and probe the API",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthStatus,
			},
		},
	}
}

// topCommand handles top-item listings
func topCommand(r *Runner) *cli.Command {
	topFlags := []cli.Flag{
		configFlag(),
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Number of items to fetch (1-50)",
			Value: 50,
		},
		&cli.StringFlag{
			Name:    "time-range",
			Aliases: []string{"t"},
			Usage:   "Listening window: short_term, medium_term, or long_term",
			Value:   "medium_term",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "csv",
			Usage: "Write CSV to the output directory",
		},
		&cli.BoolFlag{
			Name:  "save",
			Usage: "Save raw JSON to the output directory",
		},
	}

	return &cli.Command{
		Name:  "top",
		Usage: "List your most played tracks and artists",
		Commands: []*cli.Command{
			{
				Name:   "tracks",
				Usage:  "List your top tracks",
				Flags:  topFlags,
				Action: r.TopTracks,
			},
			{
				Name:   "artists",
				Usage:  "List your top artists",
				Flags:  topFlags,
				Action: r.TopArtists,
			},
		},
	}
}

// featuresCommand handles batch audio-feature fetches
func featuresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "features",
		Usage:     "Fetch audio features for track ids in chunks",
		ArgsUsage: "[track-id...]",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "from-top",
				Usage: "Fetch features for your current top tracks instead of explicit ids",
			},
			&cli.StringFlag{
				Name:    "time-range",
				Aliases: []string{"t"},
				Usage:   "Listening window for --from-top",
				Value:   "medium_term",
			},
			&cli.IntFlag{
				Name:  "chunk-size",
				Usage: "Track ids per request (1-100)",
			},
			&cli.IntFlag{
				Name:  "delay",
				Usage: "Milliseconds to pause between chunks",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
		},
		Action: r.Features,
	}
}

// collectCommand handles full collection runs
func collectCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "collect",
		Usage: "Run a full collection pass: top items, features, recommendations, CSVs",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "time-range",
				Aliases: []string{"t"},
				Usage:   "Listening window: short_term, medium_term, or long_term",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Top-item count (1-50)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory for CSV files",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Collect all three time ranges through a worker pool",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent workers for --all",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Skip caching the run to the database",
			},
		},
		Action: r.Collect,
	}
}

// recsCommand handles seed-based recommendations
func recsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "recs",
		Usage: "Fetch recommendations from seed genres",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringSliceFlag{
				Name:    "genres",
				Aliases: []string{"g"},
				Usage:   "Seed genres (up to 5); derived from your top artists when omitted",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Recommendation count (1-100)",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "csv",
				Usage: "Write CSV to the output directory",
			},
		},
		Action: r.Recs,
	}
}

// libraryCommand handles saved-track export
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "library",
		Usage: "Export your saved tracks",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum saved tracks to fetch (0 = all)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "csv",
				Usage: "Write CSV to the output directory",
				Value: true,
			},
		},
		Action: r.Library,
	}
}

// cacheCommand handles the local run cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and manage cached collection runs",
		Commands: []*cli.Command{
			{
				Name:  "runs",
				Usage: "List cached collection runs",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheRuns,
			},
			{
				Name:      "clear",
				Usage:     "Remove a cached run and its rows",
				ArgsUsage: "run-id",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.CacheClear,
			},
		},
	}
}

// checkCommand handles API diagnostics
func checkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Probe credentials and API endpoints step by step",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "id",
				Usage: "Track ID used for the lookup probes",
				Value: "11dFghVXANMlKmJXsNCbNl",
			},
		},
		Action: r.Check,
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

// tuiCommand returns the top-level TUI command for browsing cached runs.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing cached runs",
		Flags:   []cli.Flag{configFlag()},
		Action:  r.TUI,
	}
}
