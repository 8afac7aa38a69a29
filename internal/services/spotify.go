// Spotify API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/desertthunder/trackdl/internal/models"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	Album       SpotifyAlbum    `json:"album"`
	DurationMS  int             `json:"duration_ms"`
	Explicit    bool            `json:"explicit"`
	ExternalIDs externalIDs     `json:"external_ids"`
	URI         string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	TotalTracks int            `json:"total_tracks"`
	Images      []SpotifyImage `json:"images"`
	URI         string         `json:"uri"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
type SpotifyPlaylistTrack struct {
	AddedAt string       `json:"added_at"`
	Track   SpotifyTrack `json:"track"`
}

type playlistTracks struct {
	Total int                    `json:"total"`
	Items []SpotifyPlaylistTrack `json:"items"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Public      bool           `json:"public"`
	Tracks      playlistTracks `json:"tracks"`
	Images      []SpotifyImage `json:"images"`
	URI         string         `json:"uri"`
}

// SpotifyService implements [Catalog] against the Spotify Web API.
//
// Uses the OAuth2 client credentials grant: the embedded token source caches
// the access token together with its expiry and refreshes it lazily once
// expired. The cache is process wide but confined to this type; nothing in
// the download core sees it.
type SpotifyService struct {
	config     *clientcredentials.Config
	initClient sync.Once
	httpClient *http.Client
}

// NewSpotifyService creates a new Spotify service with the given credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("missing client_id in credentials")
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("missing client_secret in credentials")
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}

	return &SpotifyService{config: config}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// client returns the token-refreshing HTTP client, created on first use.
func (s *SpotifyService) client() *http.Client {
	s.initClient.Do(func() {
		if s.httpClient == nil {
			s.httpClient = s.config.Client(context.Background())
		}
	})
	return s.httpClient
}

// doRequest performs an authenticated HTTP request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, result any) error {
	apiURL := spotifyBaseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, method, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client().Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("spotify API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Track retrieves a single track by ID.
func (s *SpotifyService) Track(ctx context.Context, trackID string) (*SpotifyTrack, error) {
	var track SpotifyTrack
	endpoint := fmt.Sprintf("/tracks/%s", trackID)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// Playlist retrieves a playlist by ID.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*SpotifyPlaylist, error) {
	endpoint := fmt.Sprintf("/playlists/%s", playlistID)

	var playlist SpotifyPlaylist
	if err := s.doRequest(ctx, http.MethodGet, endpoint, &playlist); err != nil {
		return nil, err
	}

	return &playlist, nil
}

// Catalog interface implementation

// ResolveTrack retrieves metadata for a single track by its Spotify ID.
func (s *SpotifyService) ResolveTrack(ctx context.Context, trackID string) (*models.Track, error) {
	st, err := s.Track(ctx, trackID)
	if err != nil {
		return nil, err
	}
	return convertSpotifyTrack(st), nil
}

// ResolvePlaylist retrieves a playlist with all its tracks.
func (s *SpotifyService) ResolvePlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	sp, err := s.Playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	playlist := models.Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		TrackCount:  sp.Tracks.Total,
		Public:      sp.Public,
	}

	tracks := make([]models.Track, 0, len(sp.Tracks.Items))
	for _, item := range sp.Tracks.Items {
		tracks = append(tracks, *convertSpotifyTrack(&item.Track))
	}

	return &models.PlaylistExport{
		Playlist: playlist,
		Tracks:   tracks,
	}, nil
}

func convertSpotifyTrack(st *SpotifyTrack) *models.Track {
	track := &models.Track{
		ID:         st.ID,
		Title:      st.Name,
		Album:      st.Album.Name,
		DurationMS: st.DurationMS,
		ISRC:       st.ExternalIDs.ISRC,
	}

	names := make([]string, 0, len(st.Artists))
	for _, a := range st.Artists {
		names = append(names, a.Name)
	}
	track.Artist = strings.Join(names, ", ")

	if len(st.Album.Images) > 0 {
		track.AlbumArtURL = st.Album.Images[0].URL
	}

	return track
}
