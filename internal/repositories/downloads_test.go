package repositories

import (
	"strings"
	"testing"

	"github.com/desertthunder/trackdl/internal/models"
	th "github.com/desertthunder/trackdl/internal/testing"
)

func historyRow(title, artist, status string) *models.PersistedDownload {
	d := models.NewPersistedDownload(models.DownloadRequest{
		Title:      title,
		Artist:     artist,
		Album:      "Album Z",
		DurationMS: 215000,
	})
	d.Status = status
	d.Strategy = "yt-dlp"
	if status == "complete" {
		d.Filename = artist + " - " + title + ".mp3"
		d.SizeBytes = 4096
	} else {
		d.Failure = "all download strategies exhausted"
	}
	d.ElapsedMS = 1500
	return d
}

func TestDownloadRepository(t *testing.T) {
	t.Run("CreateAndGet", func(t *testing.T) {
		db := th.MustOpenDB(t)
		repo := NewDownloadRepository(db)

		d := historyRow("Song A", "Artist X", "complete")
		if err := repo.Create(d); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if d.ID() == "" {
			t.Error("Create should assign an id")
		}
		if d.Sequence == 0 {
			t.Error("Create should assign a sequence")
		}

		got, err := repo.Get(d.ID())
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Title != "Song A" || got.Artist != "Artist X" {
			t.Errorf("unexpected record: %+v", got)
		}
		if got.Filename != "Artist X - Song A.mp3" {
			t.Errorf("filename = %q", got.Filename)
		}
		if got.Status != "complete" {
			t.Errorf("status = %q", got.Status)
		}
	})

	t.Run("SequenceIncrements", func(t *testing.T) {
		db := th.MustOpenDB(t)
		repo := NewDownloadRepository(db)

		first := historyRow("Song A", "Artist X", "complete")
		second := historyRow("Song B", "Artist Y", "error")
		if err := repo.Create(first); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if err := repo.Create(second); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if second.Sequence != first.Sequence+1 {
			t.Errorf("sequence did not increment: %d then %d", first.Sequence, second.Sequence)
		}
	})

	t.Run("CreateInvalid", func(t *testing.T) {
		db := th.MustOpenDB(t)
		repo := NewDownloadRepository(db)

		d := historyRow("", "Artist X", "complete")
		if err := repo.Create(d); err == nil {
			t.Error("expected validation error for empty title")
		}

		d = historyRow("Song A", "Artist X", "pending")
		if err := repo.Create(d); err == nil || !strings.Contains(err.Error(), "invalid status") {
			t.Errorf("expected invalid status error, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := th.MustOpenDB(t)
		repo := NewDownloadRepository(db)

		d := historyRow("Song A", "Artist X", "error")
		if err := repo.Create(d); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		d.Status = "complete"
		d.Failure = ""
		d.Filename = "Artist X - Song A.mp3"
		if err := repo.Update(d); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		got, err := repo.Get(d.ID())
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Status != "complete" || got.Failure != "" {
			t.Errorf("update not persisted: %+v", got)
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		db := th.MustOpenDB(t)
		repo := NewDownloadRepository(db)

		d := historyRow("Song A", "Artist X", "complete")
		d.SetID("no-such-id")
		if err := repo.Update(d); err == nil {
			t.Error("expected error updating a missing record")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := th.MustOpenDB(t)
		repo := NewDownloadRepository(db)

		d := historyRow("Song A", "Artist X", "complete")
		if err := repo.Create(d); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if err := repo.Delete(d.ID()); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := repo.Get(d.ID()); err == nil {
			t.Error("expected Get to fail after delete")
		}
		if err := repo.Delete(d.ID()); err == nil {
			t.Error("expected second delete to fail")
		}
	})

	t.Run("List", func(t *testing.T) {
		db := th.MustOpenDB(t)
		repo := NewDownloadRepository(db)

		rows := []*models.PersistedDownload{
			historyRow("Song A", "Artist X", "complete"),
			historyRow("Song B", "Artist X", "error"),
			historyRow("Song C", "Artist Y", "complete"),
		}
		for _, d := range rows {
			if err := repo.Create(d); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 records, got %d", len(all))
		}
		if all[0].Title != "Song C" {
			t.Errorf("expected newest first, got %q", all[0].Title)
		}

		complete, err := repo.List(map[string]any{"status": "complete"})
		if err != nil {
			t.Fatalf("List by status failed: %v", err)
		}
		if len(complete) != 2 {
			t.Errorf("expected 2 complete records, got %d", len(complete))
		}

		artistX, err := repo.List(map[string]any{"artist": "Artist X"})
		if err != nil {
			t.Fatalf("List by artist failed: %v", err)
		}
		if len(artistX) != 2 {
			t.Errorf("expected 2 Artist X records, got %d", len(artistX))
		}

		limited, err := repo.List(map[string]any{"limit": 1})
		if err != nil {
			t.Fatalf("List with limit failed: %v", err)
		}
		if len(limited) != 1 || limited[0].Title != "Song C" {
			t.Errorf("limit should keep the newest record, got %+v", limited)
		}
	})
}

func TestNextSequence(t *testing.T) {
	db := th.MustOpenDB(t)

	first, err := NextSequence(db, "downloads")
	if err != nil {
		t.Fatalf("NextSequence failed: %v", err)
	}
	second, err := NextSequence(db, "downloads")
	if err != nil {
		t.Fatalf("NextSequence failed: %v", err)
	}

	if first != 1 || second != 2 {
		t.Errorf("expected 1 then 2, got %d then %d", first, second)
	}
}
