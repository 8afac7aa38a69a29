// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// getCommand downloads a single track.
func getCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "get",
		Aliases: []string{"dl"},
		Usage:   "Download one track through the strategy chain",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "title",
				Aliases: []string{"t"},
				Usage:   "Track title",
			},
			&cli.StringFlag{
				Name:    "artist",
				Aliases: []string{"a"},
				Usage:   "Track artist",
			},
			&cli.StringFlag{
				Name:  "album",
				Usage: "Album name (improves matching)",
			},
			&cli.IntFlag{
				Name:  "duration",
				Usage: "Track duration in seconds (enables duration filtering)",
			},
			&cli.StringFlag{
				Name:  "spotify-id",
				Usage: "Resolve track metadata from a Spotify track ID",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory",
				Value:   ".",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Skip recording the download in the history database",
			},
		},
		Action: r.Get,
	}
}

// playlistCommand downloads every track of a playlist.
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Download all tracks of a Spotify playlist",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "id",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory",
				Value:   ".",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Maximum track starts per second",
				Value: 0.5,
			},
			&cli.BoolFlag{
				Name:  "keep-going",
				Usage: "Continue after a track fails",
				Value: true,
			},
		},
		Action: r.Playlist,
	}
}

// searchCommand queries the YouTube Music proxy without downloading.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search for a track on YouTube Music",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Search,
	}
}

// historyCommand inspects and exports the download history.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Download history operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded downloads",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status (complete or error)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of records to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "export",
				Usage: "Export history to CSV, Markdown, or plain text",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, markdown, or text",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Base output path (extension appended)",
					},
				},
				Action: r.HistoryExport,
			},
		},
	}
}

// serveCommand runs the HTTP download API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the download API server",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Bind host (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Bind port (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand launches the interactive download interface.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Download a track with an interactive progress display",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "title",
				Aliases: []string{"t"},
				Usage:   "Track title",
			},
			&cli.StringFlag{
				Name:    "artist",
				Aliases: []string{"a"},
				Usage:   "Track artist",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory",
				Value:   ".",
			},
		},
		Action: r.TUI,
	}
}
