package tasks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/trackdl/internal/models"
	"github.com/desertthunder/trackdl/internal/shared"
	"github.com/desertthunder/trackdl/internal/strategies"
)

// ArtifactStore hands out scratch directories for in-flight acquisitions and
// converts their output files into in-memory artifacts. Every directory it
// creates is removed before the request returns; nothing an acquisition
// writes survives on disk.
type ArtifactStore struct {
	baseDir string
	logger  *log.Logger
}

// NewArtifactStore creates a store rooted at baseDir. An empty baseDir falls
// back to the system temporary directory.
func NewArtifactStore(baseDir string, logger *log.Logger) *ArtifactStore {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ArtifactStore{baseDir: baseDir, logger: logger}
}

// Acquire creates a fresh scratch directory keyed by a random identifier and
// returns it together with a release function. The release function removes
// the directory and everything beneath it; callers must invoke it on every
// path, including panics.
func (s *ArtifactStore) Acquire() (string, func(), error) {
	dir := filepath.Join(s.baseDir, "trackdl-"+shared.GenerateID())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create scratch dir: %w", err)
	}
	release := func() {
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("failed to remove scratch dir", "dir", dir, "error", err)
		}
	}
	return dir, release, nil
}

// Collect reads a strategy's output file into memory and deletes the backing
// file. The returned artifact owns the only remaining copy of the audio.
func (s *ArtifactStore) Collect(out *strategies.Output, req models.DownloadRequest) (*models.Artifact, error) {
	data, err := os.ReadFile(out.Path)
	if err != nil {
		return nil, fmt.Errorf("read output file: %w", err)
	}
	if rmErr := os.Remove(out.Path); rmErr != nil {
		s.logger.Warn("failed to remove output file", "path", out.Path, "error", rmErr)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty output file", shared.ErrTransferFailed)
	}
	return &models.Artifact{
		Bytes:             data,
		MimeType:          out.MimeType,
		SuggestedFilename: artifactFilename(req, out.Ext),
	}, nil
}

// artifactFilename builds a user-facing filename from the request metadata,
// "Artist - Title" when both are present.
func artifactFilename(req models.DownloadRequest, ext string) string {
	title := strings.TrimSpace(req.Title)
	artist := strings.TrimSpace(req.Artist)
	var base string
	switch {
	case artist != "" && title != "":
		base = fmt.Sprintf("%s - %s", artist, title)
	case title != "":
		base = title
	default:
		base = "track"
	}
	return shared.SanitizeFilename(base + ext)
}
