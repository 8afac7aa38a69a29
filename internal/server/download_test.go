package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/trackdl/internal/models"
	"github.com/desertthunder/trackdl/internal/repositories"
	"github.com/desertthunder/trackdl/internal/shared"
	"github.com/desertthunder/trackdl/internal/strategies"
	"github.com/desertthunder/trackdl/internal/tasks"
	th "github.com/desertthunder/trackdl/internal/testing"
)

func testHandler(t *testing.T, history *repositories.DownloadRepository, chain ...strategies.Strategy) *DownloadHandler {
	t.Helper()
	logger := shared.NewLogger(io.Discard)
	store := tasks.NewArtifactStore(t.TempDir(), logger)
	engine := tasks.NewEngine(chain, store, logger)
	return NewDownloadHandler(engine, history, logger)
}

func workingStrategy(name string) *th.MockStrategy {
	return &th.MockStrategy{
		StrategyName: name,
		Available:    true,
		ExecuteFn: func(ctx context.Context, req models.DownloadRequest, query, destDir string, fn strategies.ProgressFunc) (*strategies.Output, error) {
			path := filepath.Join(destDir, "track.mp3")
			if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
				return nil, err
			}
			fn(50, "halfway")
			fn(100, "done")
			return &strategies.Output{Path: path, MimeType: "audio/mpeg", Ext: ".mp3"}, nil
		},
	}
}

func postDownload(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/download", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEvents(t *testing.T, body *bytes.Buffer) []tasks.ProgressEvent {
	t.Helper()
	var events []tasks.ProgressEvent
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev tasks.ProgressEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("invalid NDJSON line %q: %v", line, err)
		}
		events = append(events, ev)
	}
	return events
}

func TestDownloadHandler(t *testing.T) {
	t.Run("StreamsProgressToCompletion", func(t *testing.T) {
		h := testHandler(t, nil, workingStrategy("yt-dlp"))

		rec := postDownload(t, h, `{"title":"Song A","artist":"Artist X"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/x-ndjson" {
			t.Errorf("content type = %q", ct)
		}

		events := decodeEvents(t, rec.Body)
		if len(events) < 2 {
			t.Fatalf("expected multiple events, got %d", len(events))
		}

		last := events[len(events)-1]
		if last.Stage != tasks.StageComplete || last.Progress != 100 {
			t.Errorf("last event = %+v, want complete at 100", last)
		}
		if !strings.HasPrefix(last.DownloadURL, "data:audio/mpeg;base64,") {
			t.Errorf("downloadUrl = %q", last.DownloadURL)
		}
		if last.Filename != "Artist X - Song A.mp3" {
			t.Errorf("filename = %q", last.Filename)
		}

		for i := 1; i < len(events); i++ {
			if events[i].Progress < events[i-1].Progress {
				t.Errorf("progress regressed at event %d: %v", i, events)
			}
		}
	})

	t.Run("StreamsTerminalError", func(t *testing.T) {
		h := testHandler(t, nil, &th.MockStrategy{StrategyName: "yt-dlp", Available: false})

		rec := postDownload(t, h, `{"title":"Song A","artist":"Artist X"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		events := decodeEvents(t, rec.Body)
		last := events[len(events)-1]
		if last.Stage != tasks.StageError {
			t.Errorf("last event = %+v, want error stage", last)
		}
		if !strings.Contains(last.Message, "no download backend is available") {
			t.Errorf("message = %q", last.Message)
		}
	})

	t.Run("InvalidBody", func(t *testing.T) {
		h := testHandler(t, nil, workingStrategy("yt-dlp"))

		rec := postDownload(t, h, `{not json`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("MissingFields", func(t *testing.T) {
		h := testHandler(t, nil, workingStrategy("yt-dlp"))

		rec := postDownload(t, h, `{"title":"Song A"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("MethodNotAllowed", func(t *testing.T) {
		h := testHandler(t, nil, workingStrategy("yt-dlp"))

		req := httptest.NewRequest(http.MethodGet, "/api/download", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})

	t.Run("Health", func(t *testing.T) {
		h := testHandler(t, nil, workingStrategy("yt-dlp"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("RecordsHistory", func(t *testing.T) {
		db := th.MustOpenDB(t)
		repo := repositories.NewDownloadRepository(db)
		h := testHandler(t, repo, workingStrategy("yt-dlp"))

		postDownload(t, h, `{"title":"Song A","artist":"Artist X"}`)

		records, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 history row, got %d", len(records))
		}
		if records[0].Status != "complete" || records[0].Strategy != "yt-dlp" {
			t.Errorf("unexpected history row: %+v", records[0])
		}
	})
}

func TestRouterDispatch(t *testing.T) {
	h := testHandler(t, nil, workingStrategy("yt-dlp"))
	logger := shared.NewLogger(io.Discard)

	router := NewBasicRouter()
	router.Use(Recovery(logger))
	router.Handler(h)

	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	missing, err := http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", missing.StatusCode)
	}
}
