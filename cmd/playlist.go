package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"github.com/desertthunder/trackdl/internal/shared"
	"github.com/desertthunder/trackdl/internal/tasks"
)

// Playlist downloads every track of a Spotify playlist into the output
// directory, rate limited and resilient to individual track failures.
func (r *Runner) Playlist(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.StringArg("id")
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}
	if r.catalog == nil {
		return fmt.Errorf("%w: Spotify credentials not configured", shared.ErrMissingCredentials)
	}

	opts := tasks.PlaylistOptions{
		OutputDir:       cmd.String("output"),
		Rate:            rate.Limit(cmd.Float("rate")),
		ContinueOnError: cmd.Bool("keep-going"),
	}

	r.writePlain("Downloading playlist %s\n\n", playlistID)

	updates := make(chan tasks.PlaylistUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range updates {
			switch u.Event.Stage {
			case tasks.StageSearching:
				if u.Event.Progress <= 2 {
					r.writePlain("[%d/%d] %s - %s\n", u.Index+1, u.Total, u.Track.Artist, u.Track.Title)
				}
			case tasks.StageComplete:
				r.writePlain("   ✓ %s\n", u.Event.Filename)
			case tasks.StageError:
				r.writePlain("   ✗ %s\n", u.Event.Message)
			}
		}
	}()

	result, err := r.engine.RunPlaylist(ctx, r.catalog, playlistID, opts, updates)
	close(updates)
	<-done

	if result != nil {
		r.writePlain("\n")
		r.writePlainHeader("Playlist Download Finished")
		r.writePlain("Playlist: %s\n", result.Playlist.Name)
		r.writePlain("Succeeded: %d\n", result.Succeeded)
		r.writePlain("Failed: %d\n", result.Failed)
		r.writePlain("Elapsed: %s\n", result.Elapsed)

		if result.Failed > 0 {
			r.writePlain("\nFailed tracks:\n")
			for _, outcome := range result.Outcomes {
				if outcome.Err != nil {
					r.writePlain("  - %s - %s\n", outcome.Track.Artist, outcome.Track.Title)
				}
			}
		}
	}

	return err
}
