package services

import (
	"context"

	"github.com/v04/jukebox/internal/models"
	"golang.org/x/oauth2"
)

// Catalog defines the read/write operations the jukebox needs from the music catalog.
// Every call carries the caller's bearer token; an expired-auth response is surfaced
// as [shared.ErrTokenExpired] so the caller can attempt exactly one refresh-and-retry.
type Catalog interface {
	// AuthCodeURL returns the OAuth2 authorization URL for user login.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for a token pair.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// Refresh performs a refresh-token grant and returns the replacement token pair.
	Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)

	// CurrentUser retrieves the authenticated user's profile.
	CurrentUser(ctx context.Context, token string) (*SpotifyUser, error)

	// Search performs a free-text track search and returns up to limit results.
	Search(ctx context.Context, token, query string, limit int) ([]SpotifyTrack, error)

	// LikedTracks retrieves the user's saved tracks.
	LikedTracks(ctx context.Context, token string, limit int) ([]models.ListeningItem, error)

	// RecentlyPlayed retrieves the user's listening history.
	RecentlyPlayed(ctx context.Context, token string, limit int) ([]models.ListeningItem, error)

	// UserPlaylists retrieves all playlists owned by or followed by the user.
	UserPlaylists(ctx context.Context, token string) ([]models.Playlist, error)

	// CreatePlaylist creates a private playlist for the given user.
	CreatePlaylist(ctx context.Context, token, userID, name string) (*models.Playlist, error)

	// AddTracks appends track URIs to a playlist in a single call.
	AddTracks(ctx context.Context, token, playlistID string, uris []string) error

	// Name returns the name of the catalog service.
	Name() string
}

// Suggester produces structured track suggestions from a free-text prompt.
type Suggester interface {
	// Suggest sends the composed prompt to the model and returns parsed suggestions.
	Suggest(ctx context.Context, prompt, likedSummary, recentSummary string) ([]models.Suggestion, error)
}
