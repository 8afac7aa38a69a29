package services

import (
	"context"

	"github.com/desertthunder/trackdl/internal/models"
)

// Catalog defines the metadata collaborator: resolves identifiers from a
// music catalog into track and playlist metadata. Credential acquisition and
// token caching live entirely behind this boundary.
type Catalog interface {
	// ResolveTrack retrieves metadata for a single track by ID.
	ResolveTrack(ctx context.Context, trackID string) (*models.Track, error)

	// ResolvePlaylist retrieves a playlist with all its tracks.
	ResolvePlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error)

	// Name returns the name of the catalog service (e.g., "Spotify")
	Name() string
}

// TrackSearcher finds a playable track for a free-form query. The streaming
// backend uses it to turn a query string into a video ID it can open.
type TrackSearcher interface {
	// SearchTrack searches for a track matching the query.
	// Returns the best match or an error if no match is found.
	SearchTrack(ctx context.Context, query string) (*models.Track, error)

	// Name returns the name of the search service (e.g., "YouTube Music")
	Name() string
}
