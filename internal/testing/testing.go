// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/desertthunder/trackdl/internal/models"
	"github.com/desertthunder/trackdl/internal/shared"
	"github.com/desertthunder/trackdl/internal/strategies"
)

// MockCatalog is a configurable test double for [services.Catalog]
type MockCatalog struct {
	TrackFn    func(ctx context.Context, trackID string) (*models.Track, error)
	PlaylistFn func(ctx context.Context, playlistID string) (*models.PlaylistExport, error)
}

func (m *MockCatalog) ResolveTrack(ctx context.Context, trackID string) (*models.Track, error) {
	if m.TrackFn != nil {
		return m.TrackFn(ctx, trackID)
	}
	return &models.Track{ID: trackID, Title: "Song A", Artist: "Artist X"}, nil
}

func (m *MockCatalog) ResolvePlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	if m.PlaylistFn != nil {
		return m.PlaylistFn(ctx, playlistID)
	}
	return &models.PlaylistExport{Playlist: models.Playlist{ID: playlistID, Name: "Mock Playlist"}}, nil
}

func (m *MockCatalog) Name() string { return "mock" }

// MockSearcher is a configurable test double for [services.TrackSearcher]
type MockSearcher struct {
	SearchFn func(ctx context.Context, query string) (*models.Track, error)
}

func (m *MockSearcher) SearchTrack(ctx context.Context, query string) (*models.Track, error) {
	if m.SearchFn != nil {
		return m.SearchFn(ctx, query)
	}
	return &models.Track{ID: "video123", Title: "Song A", Artist: "Artist X"}, nil
}

func (m *MockSearcher) Name() string { return "mock" }

// MockStrategy is a configurable test double for [strategies.Strategy]
type MockStrategy struct {
	StrategyName string
	Available    bool
	ExecuteFn    func(ctx context.Context, req models.DownloadRequest, query, destDir string, fn strategies.ProgressFunc) (*strategies.Output, error)

	// Calls records the queries Execute received, in order.
	Calls []string
}

func (m *MockStrategy) Name() string { return m.StrategyName }

func (m *MockStrategy) Probe(ctx context.Context) bool { return m.Available }

func (m *MockStrategy) Execute(ctx context.Context, req models.DownloadRequest, query, destDir string, fn strategies.ProgressFunc) (*strategies.Output, error) {
	m.Calls = append(m.Calls, query)
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, req, query, destDir, fn)
	}
	return nil, errors.New("no execute function configured")
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MustOpenDB opens an in-memory SQLite database with all migrations applied.
// The database is closed when the test finishes.
func MustOpenDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// MustWriteFile writes content to path, failing the test on error
func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("Path still exists: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
