package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/trackdl/internal/models"
	"github.com/desertthunder/trackdl/internal/services"
	"github.com/desertthunder/trackdl/internal/shared"
)

// defaultPlaylistRate paces playlist downloads at one track every two
// seconds so bulk runs stay polite to the upstream services.
const defaultPlaylistRate = rate.Limit(0.5)

// PlaylistOptions configures a bulk playlist acquisition.
type PlaylistOptions struct {
	// OutputDir receives one audio file per successfully acquired track.
	OutputDir string

	// Rate caps track starts per second. Zero applies the default pace.
	Rate rate.Limit

	// ContinueOnError keeps the run going after a track fails instead of
	// aborting the remainder of the playlist.
	ContinueOnError bool
}

// PlaylistUpdate carries one track's progress event annotated with its
// position in the playlist.
type PlaylistUpdate struct {
	Index int
	Total int
	Track models.Track
	Event ProgressEvent
}

// TrackOutcome is the per-track result of a playlist run.
type TrackOutcome struct {
	Track    models.Track
	Filename string
	Strategy string
	Err      error
}

// PlaylistResult summarizes a playlist run.
type PlaylistResult struct {
	Playlist  models.Playlist
	Outcomes  []TrackOutcome
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// RunPlaylist resolves a playlist through the catalog and acquires each of
// its tracks in order, writing the audio files into opts.OutputDir. Track
// starts are rate limited. Updates are optional and delivered best-effort;
// the returned result is authoritative.
func (e *Engine) RunPlaylist(ctx context.Context, catalog services.Catalog, playlistID string, opts PlaylistOptions, updates chan<- PlaylistUpdate) (*PlaylistResult, error) {
	start := time.Now()
	export, err := catalog.ResolvePlaylist(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("resolve playlist %s: %w", playlistID, err)
	}

	outDir := opts.OutputDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	limit := opts.Rate
	if limit <= 0 {
		limit = defaultPlaylistRate
	}
	limiter := rate.NewLimiter(limit, 1)

	logger := shared.WithLogger(e.logger, "playlist", export.Playlist.Name, "tracks", len(export.Tracks))
	logger.Info("starting playlist download")

	result := &PlaylistResult{Playlist: export.Playlist}
	for i, track := range export.Tracks {
		if err := limiter.Wait(ctx); err != nil {
			result.Elapsed = time.Since(start)
			return result, fmt.Errorf("playlist run canceled: %w", err)
		}

		outcome := e.runPlaylistTrack(ctx, track, i, len(export.Tracks), outDir, updates)
		result.Outcomes = append(result.Outcomes, outcome)
		if outcome.Err != nil {
			result.Failed++
			logger.Warn("track failed", "index", i+1, "title", track.Title, "error", outcome.Err)
			if !opts.ContinueOnError {
				result.Elapsed = time.Since(start)
				return result, fmt.Errorf("track %d of %d failed: %w", i+1, len(export.Tracks), outcome.Err)
			}
			continue
		}
		result.Succeeded++
	}

	result.Elapsed = time.Since(start)
	logger.Info("playlist download finished",
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"elapsed", result.Elapsed)
	return result, nil
}

// runPlaylistTrack acquires one playlist entry and persists its artifact to
// disk. Progress events are forwarded onto the playlist update channel with
// the track's position attached.
func (e *Engine) runPlaylistTrack(ctx context.Context, track models.Track, index, total int, outDir string, updates chan<- PlaylistUpdate) TrackOutcome {
	req := models.DownloadRequest{
		Title:       track.Title,
		Artist:      track.Artist,
		Album:       track.Album,
		DurationMS:  track.DurationMS,
		AlbumArtURL: track.AlbumArtURL,
	}

	inner := make(chan ProgressEvent, 32)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range inner {
			if updates == nil {
				continue
			}
			select {
			case updates <- PlaylistUpdate{Index: index, Total: total, Track: track, Event: ev}:
			default:
				// Channel full, skip this update
			}
		}
	}()

	res, err := e.Run(ctx, req, inner)
	close(inner)
	<-done
	if err != nil {
		return TrackOutcome{Track: track, Err: err}
	}

	path := filepath.Join(outDir, res.Artifact.SuggestedFilename)
	if werr := os.WriteFile(path, res.Artifact.Bytes, 0o644); werr != nil {
		return TrackOutcome{Track: track, Err: fmt.Errorf("write %s: %w", path, werr)}
	}
	return TrackOutcome{Track: track, Filename: res.Artifact.SuggestedFilename, Strategy: res.Strategy}
}
