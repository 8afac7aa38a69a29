package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/trackdl/internal/shared"
)

// Model defines the base interface for all persistent models in the download service.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Track represents a music track resolved from the catalog API.
type Track struct {
	ID          string // Service-specific identifier (Spotify track ID, YouTube video ID)
	Title       string
	Artist      string
	Album       string
	DurationMS  int
	AlbumArtURL string
	ISRC        string // International Standard Recording Code for matching
}

// Playlist represents a resolved playlist without its tracks.
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Public      bool
}

// PlaylistExport represents a playlist with all its tracks.
type PlaylistExport struct {
	Playlist Playlist
	Tracks   []Track
}

// DownloadRequest describes one artifact to acquire. Immutable once submitted.
type DownloadRequest struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	DurationMS int    `json:"duration_ms,omitempty"`

	// SourceHint optionally names a backend to prefer; opaque to everything
	// except chain configuration.
	SourceHint string `json:"source_hint,omitempty"`

	// AlbumArtURL passes through from the catalog; only filename derivation
	// and tagging care about it.
	AlbumArtURL string `json:"album_art_url,omitempty"`
}

// Validate checks that the request carries enough information to build a query.
func (r DownloadRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(r.Artist) == "" {
		return fmt.Errorf("artist is required")
	}
	return nil
}

// PrimaryQuery derives the main search string ("Artist - Title"). The title
// is cleaned of decorated suffixes first so queries match across backends.
func (r DownloadRequest) PrimaryQuery() string {
	return fmt.Sprintf("%s - %s", r.Artist, r.queryTitle())
}

// AlternateQuery derives the fallback search string ("Title Artist"), used to
// retry a strategy once before moving on to the next one.
func (r DownloadRequest) AlternateQuery() string {
	return fmt.Sprintf("%s %s", r.queryTitle(), r.Artist)
}

// queryTitle is the title as it appears in search queries. A title that is
// nothing but a decoration ("(Live)") falls back to its raw form.
func (r DownloadRequest) queryTitle() string {
	if clean := shared.CleanTrackTitle(r.Title); clean != "" {
		return clean
	}
	return r.Title
}

// Artifact is the acquired byte payload plus its metadata. The bytes are
// owned by whoever holds the struct; the scratch file they were read from is
// gone by the time an Artifact escapes the download engine.
type Artifact struct {
	Bytes             []byte
	MimeType          string
	SuggestedFilename string
}

// Size returns the payload size in bytes.
func (a *Artifact) Size() int64 {
	return int64(len(a.Bytes))
}

// PersistedDownload is the history record for one acquisition that reached a
// terminal state. Implements [Model].
type PersistedDownload struct {
	id         string
	Sequence   int64
	Title      string
	Artist     string
	Album      string
	DurationMS int
	Strategy   string // Winning (or last attempted) strategy name
	Filename   string
	SizeBytes  int64
	Status     string // "complete" or "error"
	Failure    string // Terminal failure message, empty on success
	ElapsedMS  int64
	createdAt  time.Time
	updatedAt  time.Time
}

// NewPersistedDownload creates a history record stamped with the current time.
func NewPersistedDownload(req DownloadRequest) *PersistedDownload {
	now := time.Now().UTC()
	return &PersistedDownload{
		Title:      req.Title,
		Artist:     req.Artist,
		Album:      req.Album,
		DurationMS: req.DurationMS,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (d *PersistedDownload) ID() string           { return d.id }
func (d *PersistedDownload) CreatedAt() time.Time { return d.createdAt }
func (d *PersistedDownload) UpdatedAt() time.Time { return d.updatedAt }

// SetID assigns the identifier; repositories call this on insert.
func (d *PersistedDownload) SetID(id string) { d.id = id }

// SetTimestamps restores persisted timestamps when scanning rows.
func (d *PersistedDownload) SetTimestamps(created, updated time.Time) {
	d.createdAt = created
	d.updatedAt = updated
}

// Touch bumps the updated timestamp.
func (d *PersistedDownload) Touch() { d.updatedAt = time.Now().UTC() }

// Validate checks the record before insert or update.
func (d *PersistedDownload) Validate() error {
	if d.Title == "" {
		return fmt.Errorf("title is required")
	}
	if d.Artist == "" {
		return fmt.Errorf("artist is required")
	}
	switch d.Status {
	case "complete", "error":
	default:
		return fmt.Errorf("invalid status: %q", d.Status)
	}
	return nil
}
