package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/trackdl/internal/shared"
)

// Search queries the YouTube Music proxy for a track without downloading it.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	r.logger.Info("searching", "query", query)

	track, err := r.searcher.SearchTrack(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(track, true)
	}

	r.writePlain("Found: %s - %s\n", track.Artist, track.Title)
	if track.Album != "" {
		r.writePlain("Album: %s\n", track.Album)
	}
	if track.DurationMS > 0 {
		r.writePlain("Duration: %s\n", shared.FormatDuration(track.DurationMS))
	}
	r.writePlain("Video ID: %s\n", track.ID)
	return nil
}
