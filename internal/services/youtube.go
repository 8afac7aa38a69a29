// YouTube Music [TrackSearcher] implementation
//
// Communicates with the FastAPI proxy server wrapping the ytmusicapi Python
// library. The streaming backend uses it to resolve a query into a playable
// video ID without spawning a process.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/trackdl/internal/models"
	"github.com/desertthunder/trackdl/internal/shared"
)

const defaultYTBaseURL string = "http://localhost:8080"

// YouTubeArtist represents an artist in YouTube Music responses.
type YouTubeArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// YouTubeService implements [TrackSearcher] for YouTube Music via proxy.
type YouTubeService struct {
	baseURL    string
	authFile   string
	httpClient *http.Client
}

// NewYouTubeService creates a new YouTube Music service instance.
func NewYouTubeService(baseURL string) *YouTubeService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}

	return &YouTubeService{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube Music"
}

// SetAuthFile stores the browser headers file path sent with subsequent
// requests (written by `trackdl setup youtube`).
func (y *YouTubeService) SetAuthFile(path string) {
	y.authFile = path
}

func (y *YouTubeService) doRequest(ctx context.Context, method, endpoint string, result any) error {
	apiURL := y.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, method, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if y.authFile != "" {
		req.Header.Set("X-Auth-File", y.authFile)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("youtube music API error (status %d): %s", resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("youtube music API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Health checks the proxy's health endpoint.
func (y *YouTubeService) Health(ctx context.Context) error {
	return y.doRequest(ctx, http.MethodGet, "/health", nil)
}

// SearchTrack searches for a track matching the query, returning the best match.
//
// Calls GET /api/search?q={query}&filter=songs on the proxy. The returned
// track's ID is the YouTube video ID, which the streaming backend opens
// directly.
func (y *YouTubeService) SearchTrack(ctx context.Context, query string) (*models.Track, error) {
	endpoint := fmt.Sprintf("/api/search?q=%s&filter=songs", url.QueryEscape(query))

	var results []struct {
		VideoID string          `json:"videoId"`
		Title   string          `json:"title"`
		Artists []YouTubeArtist `json:"artists"`
		Album   *struct {
			Name string `json:"name"`
		} `json:"album"`
		DurationSec int    `json:"duration_seconds"`
		ISRC        string `json:"isrc,omitempty"`
	}

	if err := y.doRequest(ctx, http.MethodGet, endpoint, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no results found for %q", shared.ErrNoMatchFound, query)
	}

	result := results[0]
	track := &models.Track{
		ID:         result.VideoID,
		Title:      result.Title,
		DurationMS: result.DurationSec * 1000,
		ISRC:       result.ISRC,
	}

	if len(result.Artists) > 0 {
		track.Artist = result.Artists[0].Name
	}

	if result.Album != nil {
		track.Album = result.Album.Name
	}

	return track, nil
}
