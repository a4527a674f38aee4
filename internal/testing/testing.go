// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/v04/jukebox/internal/models"
	"github.com/v04/jukebox/internal/services"
	"golang.org/x/oauth2"
)

// MockCatalog is a minimal test double for [services.Catalog]
type MockCatalog struct{}

func (m *MockCatalog) AuthCodeURL(state string) string {
	return "https://example.com/authorize?state=" + state
}

func (m *MockCatalog) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "mock-access", RefreshToken: "mock-refresh"}, nil
}

func (m *MockCatalog) Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "mock-refreshed", RefreshToken: token.RefreshToken}, nil
}

func (m *MockCatalog) CurrentUser(ctx context.Context, token string) (*services.SpotifyUser, error) {
	return &services.SpotifyUser{ID: "mock-user"}, nil
}

func (m *MockCatalog) Search(ctx context.Context, token, query string, limit int) ([]services.SpotifyTrack, error) {
	return []services.SpotifyTrack{}, nil
}

func (m *MockCatalog) LikedTracks(ctx context.Context, token string, limit int) ([]models.ListeningItem, error) {
	return []models.ListeningItem{}, nil
}

func (m *MockCatalog) RecentlyPlayed(ctx context.Context, token string, limit int) ([]models.ListeningItem, error) {
	return []models.ListeningItem{}, nil
}

func (m *MockCatalog) UserPlaylists(ctx context.Context, token string) ([]models.Playlist, error) {
	return []models.Playlist{}, nil
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, token, userID, name string) (*models.Playlist, error) {
	return &models.Playlist{ID: "mock-playlist", Name: name}, nil
}

func (m *MockCatalog) AddTracks(ctx context.Context, token, playlistID string, uris []string) error {
	return nil
}

func (m *MockCatalog) Name() string { return "mock" }

// MockSuggester is a test double for [services.Suggester] with canned output
type MockSuggester struct {
	Suggestions []models.Suggestion
	Err         error
}

func (m *MockSuggester) Suggest(ctx context.Context, prompt, likedSummary, recentSummary string) ([]models.Suggestion, error) {
	return m.Suggestions, m.Err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
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
