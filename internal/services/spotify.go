// Spotify implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/v04/jukebox/internal/models"
	"github.com/v04/jukebox/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Country     string `json:"country"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	PreviewURL   string          `json:"preview_url"`
	ExternalURLs externalURLs    `json:"external_urls"`
	URI          string          `json:"uri"`
}

// AsEnriched converts the catalog track to the enriched form returned to callers.
func (t SpotifyTrack) AsEnriched() models.EnrichedTrack {
	names := make([]string, 0, len(t.Artists))
	for _, artist := range t.Artists {
		names = append(names, artist.Name)
	}

	enriched := models.EnrichedTrack{
		Title:       t.Name,
		Artist:      strings.Join(names, ", "),
		PreviewURL:  t.PreviewURL,
		ExternalURL: t.ExternalURLs.Spotify,
		CatalogID:   t.ID,
		URI:         t.URI,
	}

	if len(t.Album.Images) > 0 {
		enriched.ArtworkURL = t.Album.Images[0].URL
	}

	return enriched
}

type savedTrackItem struct {
	AddedAt string       `json:"added_at"`
	Track   SpotifyTrack `json:"track"`
}

type playedTrackItem struct {
	PlayedAt string       `json:"played_at"`
	Track    SpotifyTrack `json:"track"`
}

type simplePlaylist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type paginatedPlaylists struct {
	Items []simplePlaylist `json:"items"`
	Next  *string          `json:"next"`
}

// SpotifyService implements the [Catalog] interface for Spotify API interactions.
// Uses [oauth2] for token exchange and refresh grants.
type SpotifyService struct {
	config     *oauth2.Config
	httpClient *http.Client
	baseURL    string
}

// NewSpotifyService creates a new Spotify catalog client with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string, timeout time.Duration) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:3001/callback"
	}

	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-library-read",
			"playlist-modify-private",
			"playlist-modify-public",
			"user-read-email",
			"user-read-recently-played",
			"user-read-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    spotifyBaseURL,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// AuthCodeURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) AuthCodeURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token pair.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return token, nil
}

// Refresh performs a refresh-token grant. The catalog may rotate the refresh
// token; when it does not, the previous one is carried over.
func (s *SpotifyService) Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	if token == nil || token.RefreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}

	refreshed, err := s.config.TokenSource(ctx, &oauth2.Token{RefreshToken: token.RefreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = token.RefreshToken
	}

	return refreshed, nil
}

// doRequest performs an authenticated HTTP request against the Spotify API.
//
// A 401 response maps to [shared.ErrTokenExpired] so callers can distinguish
// expired auth from other failures; every other failure maps to
// [shared.ErrCatalogUnavailable] and is not retried here.
func (s *SpotifyService) doRequest(ctx context.Context, token, method, endpoint string, body any, result any) error {
	if token == "" {
		return shared.ErrNotAuthenticated
	}

	apiURL := s.baseURL + endpoint

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: status 401", shared.ErrTokenExpired)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrCatalogUnavailable, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrCatalogUnavailable, err)
		}
	}

	return nil
}

// CurrentUser retrieves the current authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context, token string) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, token, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Search performs a free-text track search and returns up to limit results.
func (s *SpotifyService) Search(ctx context.Context, token, query string, limit int) ([]SpotifyTrack, error) {
	if limit <= 0 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=%d", url.QueryEscape(query), limit)

	var response struct {
		Tracks struct {
			Items []SpotifyTrack `json:"items"`
		} `json:"tracks"`
	}

	if err := s.doRequest(ctx, token, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return response.Tracks.Items, nil
}

// LikedTracks retrieves the user's saved tracks.
func (s *SpotifyService) LikedTracks(ctx context.Context, token string, limit int) ([]models.ListeningItem, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("/me/tracks?limit=%d", limit)

	var response struct {
		Items []savedTrackItem `json:"items"`
	}

	if err := s.doRequest(ctx, token, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	items := make([]models.ListeningItem, 0, len(response.Items))
	for _, item := range response.Items {
		items = append(items, listeningItem(item.Track))
	}

	return items, nil
}

// RecentlyPlayed retrieves the user's listening history.
func (s *SpotifyService) RecentlyPlayed(ctx context.Context, token string, limit int) ([]models.ListeningItem, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("/me/player/recently-played?limit=%d", limit)

	var response struct {
		Items []playedTrackItem `json:"items"`
	}

	if err := s.doRequest(ctx, token, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	items := make([]models.ListeningItem, 0, len(response.Items))
	for _, item := range response.Items {
		items = append(items, listeningItem(item.Track))
	}

	return items, nil
}

// UserPlaylists retrieves all of the current user's playlists, following pagination.
func (s *SpotifyService) UserPlaylists(ctx context.Context, token string) ([]models.Playlist, error) {
	var all []models.Playlist
	limit := 50
	offset := 0

	for {
		endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)

		var response paginatedPlaylists
		if err := s.doRequest(ctx, token, http.MethodGet, endpoint, nil, &response); err != nil {
			return nil, err
		}

		for _, pl := range response.Items {
			all = append(all, models.Playlist{ID: pl.ID, Name: pl.Name})
		}

		if response.Next == nil {
			break
		}
		offset += limit
	}

	return all, nil
}

// CreatePlaylist creates a private playlist for the given user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, token, userID, name string) (*models.Playlist, error) {
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))

	body := map[string]any{
		"name":   name,
		"public": false,
	}

	var created simplePlaylist
	if err := s.doRequest(ctx, token, http.MethodPost, endpoint, body, &created); err != nil {
		return nil, err
	}

	return &models.Playlist{ID: created.ID, Name: created.Name}, nil
}

// AddTracks appends track URIs to a playlist in a single call.
func (s *SpotifyService) AddTracks(ctx context.Context, token, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return fmt.Errorf("%w: empty uri batch", shared.ErrInvalidArgument)
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	body := map[string]any{"uris": uris}

	return s.doRequest(ctx, token, http.MethodPost, endpoint, body, nil)
}

func listeningItem(track SpotifyTrack) models.ListeningItem {
	item := models.ListeningItem{Name: track.Name, CatalogID: track.ID}
	if len(track.Artists) > 0 {
		item.Artist = track.Artists[0].Name
	}
	return item
}
