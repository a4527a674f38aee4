package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/v04/jukebox/internal/services"
	"github.com/v04/jukebox/internal/session"
	"github.com/v04/jukebox/internal/shared"
)

// stateTTL bounds how long an issued authorization state stays redeemable.
const stateTTL = 10 * time.Minute

// AuthHandler drives the OAuth2 authorization-code flow for browser sessions.
//
// /login issues a random state and redirects to the catalog's authorize URL;
// /callback validates the state, exchanges the code for a token pair, creates
// a server-side session, and hands the opaque session ID back as a cookie.
// Implements the [Handler] interface for registration with a [Router].
type AuthHandler struct {
	catalog    services.Catalog
	sessions   *session.Store
	cookieName string
	logger     *log.Logger

	mu     sync.Mutex
	states map[string]time.Time
}

// NewAuthHandler creates an auth handler over the given catalog and session store.
func NewAuthHandler(catalog services.Catalog, sessions *session.Store, cookieName string, logger *log.Logger) *AuthHandler {
	return &AuthHandler{
		catalog:    catalog,
		sessions:   sessions,
		cookieName: cookieName,
		logger:     logger,
		states:     make(map[string]time.Time),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthHandler) Routes() []string {
	return []string{"/login", "/callback"}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/login":
		h.login(w, r)
	case "/callback":
		h.callback(w, r)
	default:
		http.NotFound(w, r)
	}
}

// login issues a fresh state token and redirects the browser to the catalog's
// authorization page. The state is kept server-side for CSRF validation.
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	state := shared.GenerateID()

	h.mu.Lock()
	for s, issued := range h.states {
		if time.Since(issued) > stateTTL {
			delete(h.states, s)
		}
	}
	h.states[state] = time.Now()
	h.mu.Unlock()

	http.Redirect(w, r, h.catalog.AuthCodeURL(state), http.StatusFound)
}

// callback validates the state parameter, exchanges the authorization code for
// a token pair, and binds the new session to the browser via cookie.
func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")

	h.mu.Lock()
	issued, known := h.states[state]
	delete(h.states, state)
	h.mu.Unlock()

	if !known || time.Since(issued) > stateTTL {
		h.logger.Warn("callback rejected", "error", shared.ErrInvalidState)
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		errParam := r.URL.Query().Get("error")
		errDesc := r.URL.Query().Get("error_description")
		h.logger.Warn("authorization denied", "error", errParam, "description", errDesc)
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.catalog.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("token exchange failed", "error", err)
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	sess := h.sessions.Create(token)

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("session established", "session", sess.ID)

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Spotify Connected</h1>
        <p>You can close this tab and return to the jukebox.</p>
    </div>
</body>
</html>
`)
}
