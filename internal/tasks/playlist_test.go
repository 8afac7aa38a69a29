package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"golang.org/x/time/rate"

	"github.com/desertthunder/trackdl/internal/models"
	"github.com/desertthunder/trackdl/internal/strategies"
	th "github.com/desertthunder/trackdl/internal/testing"
)

func playlistCatalog() *th.MockCatalog {
	return &th.MockCatalog{
		PlaylistFn: func(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
			return &models.PlaylistExport{
				Playlist: models.Playlist{ID: playlistID, Name: "Road Trip", TrackCount: 2},
				Tracks: []models.Track{
					{ID: "t1", Title: "Song A", Artist: "Artist X"},
					{ID: "t2", Title: "Song B", Artist: "Artist Y"},
				},
			}, nil
		},
	}
}

func TestRunPlaylist(t *testing.T) {
	t.Run("DownloadsEveryTrack", func(t *testing.T) {
		engine, _ := newTestEngine(t, succeedingStrategy("yt-dlp", []byte("audio")))
		outDir := t.TempDir()

		result, err := engine.RunPlaylist(context.Background(), playlistCatalog(), "pl1", PlaylistOptions{
			OutputDir: outDir,
			Rate:      rate.Limit(1000),
		}, nil)
		if err != nil {
			t.Fatalf("RunPlaylist failed: %v", err)
		}

		if result.Succeeded != 2 || result.Failed != 0 {
			t.Errorf("unexpected counts: %d ok, %d failed", result.Succeeded, result.Failed)
		}
		th.AssertFileExists(t, filepath.Join(outDir, "Artist X - Song A.mp3"))
		th.AssertFileExists(t, filepath.Join(outDir, "Artist Y - Song B.mp3"))
	})

	t.Run("ContinueOnError", func(t *testing.T) {
		mixed := &th.MockStrategy{
			StrategyName: "yt-dlp",
			Available:    true,
			ExecuteFn: func(ctx context.Context, req models.DownloadRequest, query, destDir string, fn strategies.ProgressFunc) (*strategies.Output, error) {
				if req.Title == "Song A" {
					return nil, errors.New("unrecoverable")
				}
				return succeedingStrategy("yt-dlp", []byte("audio")).ExecuteFn(ctx, req, query, destDir, fn)
			},
		}
		engine, _ := newTestEngine(t, mixed)
		outDir := t.TempDir()

		result, err := engine.RunPlaylist(context.Background(), playlistCatalog(), "pl1", PlaylistOptions{
			OutputDir:       outDir,
			Rate:            rate.Limit(1000),
			ContinueOnError: true,
		}, nil)
		if err != nil {
			t.Fatalf("RunPlaylist failed: %v", err)
		}

		if result.Succeeded != 1 || result.Failed != 1 {
			t.Errorf("unexpected counts: %d ok, %d failed", result.Succeeded, result.Failed)
		}
		th.AssertFileExists(t, filepath.Join(outDir, "Artist Y - Song B.mp3"))
	})

	t.Run("AbortsWithoutContinue", func(t *testing.T) {
		engine, _ := newTestEngine(t, failingStrategy("yt-dlp", errors.New("down")))

		result, err := engine.RunPlaylist(context.Background(), playlistCatalog(), "pl1", PlaylistOptions{
			OutputDir: t.TempDir(),
			Rate:      rate.Limit(1000),
		}, nil)
		if err == nil {
			t.Fatal("expected abort on first failure")
		}
		if len(result.Outcomes) != 1 {
			t.Errorf("expected run to stop after first track, got %d outcomes", len(result.Outcomes))
		}
	})

	t.Run("ResolveFailure", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		catalog := &th.MockCatalog{
			PlaylistFn: func(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
				return nil, errors.New("not found")
			},
		}

		_, err := engine.RunPlaylist(context.Background(), catalog, "missing", PlaylistOptions{OutputDir: t.TempDir()}, nil)
		if err == nil {
			t.Fatal("expected resolve error")
		}
	})

	t.Run("ForwardsUpdates", func(t *testing.T) {
		engine, _ := newTestEngine(t, succeedingStrategy("yt-dlp", []byte("audio")))
		updates := make(chan PlaylistUpdate, 256)

		_, err := engine.RunPlaylist(context.Background(), playlistCatalog(), "pl1", PlaylistOptions{
			OutputDir: t.TempDir(),
			Rate:      rate.Limit(1000),
		}, updates)
		if err != nil {
			t.Fatalf("RunPlaylist failed: %v", err)
		}
		close(updates)

		sawIndexes := map[int]bool{}
		for u := range updates {
			if u.Total != 2 {
				t.Errorf("unexpected total %d", u.Total)
			}
			sawIndexes[u.Index] = true
		}
		if !sawIndexes[0] || !sawIndexes[1] {
			t.Errorf("missing updates for some tracks: %v", sawIndexes)
		}
	})
}
