// Package session holds the per-session token state for the jukebox backend.
//
// A session is created by the OAuth callback and keyed by an opaque identifier
// handed to the client as a cookie. The token pair is the only state shared
// across requests within a session; it is mutated in place on refresh and
// destroyed when the session ends. Nothing here is persisted.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/v04/jukebox/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// expirySkew is subtracted from token expiry so a token about to lapse
// mid-request is refreshed up front.
const expirySkew = 30 * time.Second

// Refresher performs a refresh-token grant, returning the replacement pair.
type Refresher interface {
	Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)
}

// Session is one user's server-side record: an opaque ID and a token pair.
type Session struct {
	ID        string
	Token     *oauth2.Token
	CreatedAt time.Time
}

// Store keeps active sessions in memory and serializes token refreshes per
// session so overlapping requests never issue two concurrent refresh grants.
type Store struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	refresher Refresher
	flight    singleflight.Group
	now       func() time.Time
}

// NewStore creates an empty session store backed by the given refresher.
func NewStore(refresher Refresher) *Store {
	return &Store{
		sessions:  make(map[string]*Session),
		refresher: refresher,
		now:       time.Now,
	}
}

// Create registers a new session for the given token pair and returns it.
func (s *Store) Create(token *oauth2.Token) *Session {
	sess := &Session{
		ID:        shared.GenerateID(),
		Token:     token,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

// Get returns the session for the given ID, or nil if none exists.
func (s *Store) Get(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// Destroy removes the session for the given ID.
func (s *Store) Destroy(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len reports the number of active sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ValidToken returns an access token that has not passed its expiry at call
// time, refreshing the stored pair first when needed. Returns
// [shared.ErrNotAuthenticated] when no session exists and
// [shared.ErrRefreshFailed] when the refresh grant is rejected; the latter is
// terminal for the session and the caller must restart authentication.
func (s *Store) ValidToken(ctx context.Context, id string) (string, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	var token *oauth2.Token
	if ok {
		token = sess.Token
	}
	s.mu.RUnlock()

	if !ok || token == nil {
		return "", shared.ErrNotAuthenticated
	}

	if s.usable(token) {
		return token.AccessToken, nil
	}

	return s.refresh(ctx, id, token.AccessToken)
}

// ForceRefresh exchanges the session's refresh token after a downstream call
// reported expired auth. The grant is skipped when the stored access token no
// longer matches usedToken: a concurrent caller already refreshed, and its
// result is returned instead.
func (s *Store) ForceRefresh(ctx context.Context, id, usedToken string) (string, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || sess.Token == nil {
		return "", shared.ErrNotAuthenticated
	}

	return s.refresh(ctx, id, usedToken)
}

// refresh performs a single-flight refresh grant keyed by session ID.
// Concurrent callers for the same session share one exchange result.
func (s *Store) refresh(ctx context.Context, id, staleToken string) (string, error) {
	result, err, _ := s.flight.Do(id, func() (any, error) {
		s.mu.RLock()
		sess, ok := s.sessions[id]
		s.mu.RUnlock()

		if !ok || sess.Token == nil {
			return "", shared.ErrNotAuthenticated
		}

		// Another caller may have replaced the pair while this one waited.
		if sess.Token.AccessToken != staleToken && s.usable(sess.Token) {
			return sess.Token.AccessToken, nil
		}

		if sess.Token.RefreshToken == "" {
			return "", fmt.Errorf("%w: %v", shared.ErrRefreshFailed, shared.ErrNoRefreshToken)
		}

		refreshed, err := s.refresher.Refresh(ctx, sess.Token)
		if err != nil {
			return "", err
		}

		s.mu.Lock()
		sess.Token = refreshed
		s.mu.Unlock()

		return refreshed.AccessToken, nil
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

// usable reports whether the token can still be sent downstream: a non-empty
// access token whose expiry, minus skew, has not passed. Tokens without an
// expiry are treated as usable.
func (s *Store) usable(token *oauth2.Token) bool {
	if token.AccessToken == "" {
		return false
	}
	if token.Expiry.IsZero() {
		return true
	}
	return token.Expiry.Add(-expirySkew).After(s.now())
}
