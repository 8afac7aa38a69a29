package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/trackdl/internal/shared"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// SetupCheck probes every configured backend and reports what a download
// would be able to use. Probes and the proxy health check share one budget
// from [downloader] probe_timeout_sec so a wedged backend cannot stall the
// report.
func (r *Runner) SetupCheck(ctx context.Context, cmd *cli.Command) error {
	r.writePlainHeader("Backend Availability")

	probeCtx, cancel := context.WithTimeout(ctx, r.config.Downloader.ProbeTimeout())
	defer cancel()

	available := 0
	for _, probe := range r.engine.Probe(probeCtx) {
		if probe.Available {
			r.writePlain("✓ %s\n", probe.Strategy)
			available++
		} else {
			r.writePlain("✗ %s (not available)\n", probe.Strategy)
		}
	}

	if h, ok := r.searcher.(interface{ Health(context.Context) error }); ok {
		if err := h.Health(probeCtx); err != nil {
			r.writePlain("✗ %s proxy (%v)\n", r.searcher.Name(), err)
		} else {
			r.writePlain("✓ %s proxy\n", r.searcher.Name())
		}
	}

	if available == 0 {
		return fmt.Errorf("%w: no download backend is available", shared.ErrBackendUnavailable)
	}

	r.writePlain("\n%d backend(s) ready\n", available)
	return nil
}

// SetupYouTube configures YouTube Music authentication from browser headers.
//
// Accepts a cURL command copied from the browser's dev tools and forwards
// the parsed headers to the proxy's setup endpoint.
func (r *Runner) SetupYouTube(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if cmd.Bool("open") {
		if err := shared.OpenBrowser("https://music.youtube.com"); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	r.logger.Info("parsing cURL command for YouTube Music headers")

	var curlHeaders *shared.CurlHeaders
	var err error

	if curlFile != "" {
		curlHeaders, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		curlHeaders, err = shared.ParseCurlCommand([]byte(curlCmd))
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	headersRaw := curlHeaders.ToHeadersRaw()

	r.logger.Debug("generated headers_raw", "length", len(headersRaw))
	r.logger.Info("calling YouTube Music proxy setup endpoint")

	setupResp, err := r.api.SetupBrowser(ctx, headersRaw)
	if err != nil {
		return fmt.Errorf("setup request failed: %w", err)
	}

	if !setupResp.Success {
		return fmt.Errorf("setup failed: %s", setupResp.Message)
	}

	r.logger.Info("setup successful", "message", setupResp.Message)
	r.writePlain("YouTube Music authentication configured.\n")
	return nil
}
