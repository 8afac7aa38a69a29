package tasks

import (
	"encoding/json"
	"testing"
)

func TestStage(t *testing.T) {
	cases := []struct {
		stage    Stage
		name     string
		terminal bool
	}{
		{StageSearching, "searching", false},
		{StageDownloading, "downloading", false},
		{StageConverting, "converting", false},
		{StageComplete, "complete", true},
		{StageError, "error", true},
	}

	for _, tc := range cases {
		if tc.stage.String() != tc.name {
			t.Errorf("Stage(%d).String() = %q, want %q", tc.stage, tc.stage.String(), tc.name)
		}
		if tc.stage.Terminal() != tc.terminal {
			t.Errorf("Stage %s Terminal() = %v", tc.name, tc.stage.Terminal())
		}
	}

	data, err := json.Marshal(StageDownloading)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"downloading"` {
		t.Errorf("unexpected JSON: %s", data)
	}
}

func TestRescaleTransfer(t *testing.T) {
	cases := []struct {
		native float64
		want   int
	}{
		{0, 20},
		{50, 55},
		{100, 90},
		{-10, 20},
		{150, 90},
	}
	for _, tc := range cases {
		if got := rescaleTransfer(tc.native); got != tc.want {
			t.Errorf("rescaleTransfer(%v) = %d, want %d", tc.native, got, tc.want)
		}
	}
}

func TestEventConstructors(t *testing.T) {
	t.Run("SearchingCapped", func(t *testing.T) {
		ev := searchingEvent(50, "probing")
		if ev.Progress > searchCeil {
			t.Errorf("searching progress escaped its window: %d", ev.Progress)
		}
	})

	t.Run("ConvertingClamped", func(t *testing.T) {
		low := convertingEvent(10, "x")
		if low.Progress != convertFloor {
			t.Errorf("expected clamp to %d, got %d", convertFloor, low.Progress)
		}
		high := convertingEvent(99, "x")
		if high.Progress != convertCeil {
			t.Errorf("expected clamp to %d, got %d", convertCeil, high.Progress)
		}
	})

	t.Run("Complete", func(t *testing.T) {
		ev := completeEvent("data:audio/mpeg;base64,x", "a.mp3")
		if ev.Progress != 100 || ev.Stage != StageComplete {
			t.Errorf("unexpected complete event: %+v", ev)
		}
		if ev.Filename != "a.mp3" {
			t.Errorf("filename not carried: %+v", ev)
		}
	})
}

func TestEmitter(t *testing.T) {
	t.Run("ClampsRegression", func(t *testing.T) {
		ch := make(chan ProgressEvent, 8)
		em := newEmitter(ch)
		em.emit(downloadingEvent(50, "a"))
		em.emit(downloadingEvent(30, "b"))
		close(ch)

		var got []int
		for ev := range ch {
			got = append(got, ev.Progress)
		}
		if len(got) != 2 || got[1] < got[0] {
			t.Errorf("progress regressed: %v", got)
		}
	})

	t.Run("NothingAfterTerminal", func(t *testing.T) {
		ch := make(chan ProgressEvent, 8)
		em := newEmitter(ch)
		em.emit(errorEvent("failed"))
		em.emit(downloadingEvent(50, "late"))
		em.emit(completeEvent("", "late.mp3"))
		close(ch)

		count := 0
		for range ch {
			count++
		}
		if count != 1 {
			t.Errorf("expected 1 event after terminal, got %d", count)
		}
	})

	t.Run("DropsWhenFull", func(t *testing.T) {
		ch := make(chan ProgressEvent, 1)
		em := newEmitter(ch)
		em.emit(downloadingEvent(20, "a"))
		em.emit(downloadingEvent(30, "b"))
		if len(ch) != 1 {
			t.Errorf("expected overflow drop, channel has %d", len(ch))
		}
	})

	t.Run("NilChannel", func(t *testing.T) {
		em := newEmitter(nil)
		em.emit(downloadingEvent(20, "a"))
		em.emit(completeEvent("", "a.mp3"))
	})
}
