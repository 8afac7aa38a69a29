package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/trackdl/internal/models"
	"github.com/desertthunder/trackdl/internal/shared"
	"github.com/desertthunder/trackdl/internal/tasks"
)

// Get downloads one track through the strategy chain, printing progress as
// it arrives and saving the finished file to the output directory.
func (r *Runner) Get(ctx context.Context, cmd *cli.Command) error {
	req, err := r.buildRequest(ctx, cmd)
	if err != nil {
		return err
	}
	outputDir := cmd.String("output")

	r.logger.Info("starting download", "title", req.Title, "artist", req.Artist)
	r.writePlain("Downloading %s\n\n", req.PrimaryQuery())

	progressCh := make(chan tasks.ProgressEvent, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		lastPct := -1
		for ev := range progressCh {
			switch ev.Stage {
			case tasks.StageSearching:
				r.writePlain("🔍 %s\n", ev.Message)
			case tasks.StageDownloading:
				if ev.Progress != lastPct {
					r.writePlain("⬇  %3d%% %s\n", ev.Progress, ev.Message)
					lastPct = ev.Progress
				}
			case tasks.StageConverting:
				r.writePlain("🎵 %s\n", ev.Message)
			}
		}
	}()

	result, runErr := r.engine.Run(ctx, req, progressCh)
	close(progressCh)
	<-done

	if !cmd.Bool("no-history") {
		r.recordHistory(req, result, runErr)
	}
	if runErr != nil {
		return runErr
	}

	path, err := writeArtifact(result.Artifact, outputDir)
	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Download Complete!")
	r.writePlain("Saved: %s\n", path)
	r.writePlain("Size: %s\n", shared.FormatBytes(result.Artifact.Size()))
	r.writePlain("Strategy: %s\n", result.Strategy)
	r.writePlain("Elapsed: %s\n", result.Elapsed.Round(time.Millisecond))
	return nil
}

// buildRequest assembles the download request from flags, or from the
// catalog when a Spotify track ID is given.
func (r *Runner) buildRequest(ctx context.Context, cmd *cli.Command) (models.DownloadRequest, error) {
	if spotifyID := cmd.String("spotify-id"); spotifyID != "" {
		if r.catalog == nil {
			return models.DownloadRequest{}, fmt.Errorf("%w: Spotify credentials not configured", shared.ErrMissingCredentials)
		}
		track, err := r.catalog.ResolveTrack(ctx, spotifyID)
		if err != nil {
			return models.DownloadRequest{}, fmt.Errorf("failed to resolve track: %w", err)
		}
		return models.DownloadRequest{
			Title:       track.Title,
			Artist:      track.Artist,
			Album:       track.Album,
			DurationMS:  track.DurationMS,
			AlbumArtURL: track.AlbumArtURL,
		}, nil
	}

	req := models.DownloadRequest{
		Title:      cmd.String("title"),
		Artist:     cmd.String("artist"),
		Album:      cmd.String("album"),
		DurationMS: int(cmd.Int("duration")) * 1000,
	}
	if err := req.Validate(); err != nil {
		return models.DownloadRequest{}, fmt.Errorf("%w: %v", shared.ErrMissingArgument, err)
	}
	return req, nil
}

// recordHistory persists the outcome, logging instead of failing the command
// when the database is unavailable.
func (r *Runner) recordHistory(req models.DownloadRequest, result *tasks.Result, runErr error) {
	history, closeFn, err := r.openHistory()
	if err != nil {
		r.logger.Warn("history unavailable", "error", err)
		return
	}
	defer closeFn()

	if err := history.Create(tasks.HistoryRecord(req, result, runErr)); err != nil {
		r.logger.Warn("failed to record download", "error", err)
	}
}

// writeArtifact saves the in-memory artifact into dir under its suggested
// filename.
func writeArtifact(artifact *models.Artifact, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, artifact.SuggestedFilename)
	if err := os.WriteFile(path, artifact.Bytes, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}
