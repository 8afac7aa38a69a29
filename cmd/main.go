package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/trackdl/internal/services"
	"github.com/desertthunder/trackdl/internal/shared"
	"github.com/desertthunder/trackdl/internal/strategies"
	"github.com/desertthunder/trackdl/internal/tasks"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var catalog services.Catalog
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(map[string]string{
			"client_id":     config.Credentials.Spotify.ClientID,
			"client_secret": config.Credentials.Spotify.ClientSecret,
		}); err == nil {
			catalog = svc
		}
	}

	youtube := services.NewYouTubeService(config.Credentials.YouTube.ProxyURL)
	if config.Credentials.YouTube.HeadersPath != "" {
		youtube.SetAuthFile(config.Credentials.YouTube.HeadersPath)
	}
	apiService := services.NewAPIService(config.Credentials.YouTube.ProxyURL, nil)

	runner := NewRunner(RunnerOpts{
		Config:   config,
		Catalog:  catalog,
		Searcher: youtube,
		API:      apiService,
		Engine:   buildEngine(config, youtube, logger),
		Logger:   logger,
	})

	app := &cli.Command{
		Name:     "trackdl",
		Usage:    "Download audio tracks with automatic backend fallback",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

// buildEngine assembles the strategy chain in the order configured under
// [downloader].strategies and wires it to a scratch store.
func buildEngine(config *shared.Config, searcher services.TrackSearcher, logger *log.Logger) *tasks.Engine {
	store := tasks.NewArtifactStore(config.Downloader.WorkDir, logger)

	var chain []strategies.Strategy
	for _, name := range config.Downloader.Strategies {
		switch name {
		case "yt-dlp":
			chain = append(chain, strategies.NewYTDLPStrategy(
				config.Downloader.YTDLPBinary,
				config.Downloader.DownloadTimeout(),
				config.Downloader.DurationToleranceSec,
			))
		case "youtube-stream":
			chain = append(chain, strategies.NewStreamStrategy(searcher, nil, config.Downloader.DownloadTimeout()))
		default:
			logger.Warn("unknown strategy in config, skipping", "strategy", name)
		}
	}

	return tasks.NewEngine(chain, store, logger)
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration, database, and backends",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize the history database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "check",
				Usage:  "Probe every configured backend and report availability",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupCheck,
			},
			{
				Name:  "youtube",
				Usage: "Configure YouTube Music authentication from browser headers",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command copied from browser dev tools",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "File containing the cURL command",
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open YouTube Music in the browser first",
					},
				},
				Action: r.SetupYouTube,
			},
		},
	}
}
