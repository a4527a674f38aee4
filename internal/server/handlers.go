package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/v04/jukebox/internal/models"
	"github.com/v04/jukebox/internal/services"
	"github.com/v04/jukebox/internal/session"
	"github.com/v04/jukebox/internal/shared"
	"github.com/v04/jukebox/internal/tasks"
)

// contextLimit caps how many liked and recent items are summarized for the model.
const contextLimit = 10

// APIHandler serves the jukebox's JSON endpoints, sequencing token validation,
// context gathering, suggestion, enrichment and materialization per request.
type APIHandler struct {
	catalog    services.Catalog
	suggester  services.Suggester
	engine     tasks.Engine
	sessions   *session.Store
	cookieName string
	logger     *log.Logger
}

// NewAPIHandler creates the API handler with its collaborators.
func NewAPIHandler(catalog services.Catalog, suggester services.Suggester, engine tasks.Engine, sessions *session.Store, cookieName string, logger *log.Logger) *APIHandler {
	return &APIHandler{
		catalog:    catalog,
		suggester:  suggester,
		engine:     engine,
		sessions:   sessions,
		cookieName: cookieName,
		logger:     logger,
	}
}

// Register wires the API routes into the router.
func (h *APIHandler) Register(router Router) {
	router.Handle(http.MethodGet, "/", http.HandlerFunc(h.Root))
	router.Handle(http.MethodPost, "/generate", http.HandlerFunc(h.Generate))
	router.Handle(http.MethodGet, "/playlists", http.HandlerFunc(h.Playlists))
	router.Handle(http.MethodPost, "/add-to-playlist", http.HandlerFunc(h.AddToPlaylist))
	router.Handle(http.MethodPost, "/logout", http.HandlerFunc(h.Logout))
}

// Root reports service health and whether the caller has a live session.
func (h *APIHandler) Root(w http.ResponseWriter, r *http.Request) {
	authenticated := false
	if id := SessionID(r); id != "" && h.sessions.Get(id) != nil {
		authenticated = true
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"service":       "jukebox",
		"authenticated": authenticated,
	})
}

// Generate turns a free-text prompt into enriched, playable tracks.
//
// Sequence: valid token → listening context → model suggestions → catalog
// enrichment. Performs no catalog mutation, so any stage failure aborts the
// request with that stage's error and leaves nothing dangling.
func (h *APIHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prompt string `json:"prompt"`
	}
	// An absent body means an absent prompt, which the suggester defaults.
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, h.logger, shared.ErrInvalidInput)
		return
	}

	ctx := r.Context()
	sessionID := SessionID(r)

	token, err := h.sessions.ValidToken(ctx, sessionID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	// Context gathering is best-effort: a failed read degrades the prompt,
	// it does not fail the request.
	var liked, recent []models.ListeningItem
	err = h.withRetry(r, token, func(t string) error {
		var readErr error
		liked, readErr = h.catalog.LikedTracks(ctx, t, contextLimit)
		return readErr
	})
	if err != nil {
		if terminal(err) {
			writeError(w, h.logger, err)
			return
		}
		h.logger.Warn("liked tracks unavailable", "error", err)
	}

	err = h.withRetry(r, token, func(t string) error {
		var readErr error
		recent, readErr = h.catalog.RecentlyPlayed(ctx, t, contextLimit)
		return readErr
	})
	if err != nil {
		if terminal(err) {
			writeError(w, h.logger, err)
			return
		}
		h.logger.Warn("recent tracks unavailable", "error", err)
	}

	suggestions, err := h.suggester.Suggest(ctx, body.Prompt,
		models.SummarizeListening(liked), models.SummarizeListening(recent))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	// Token may have been rotated by a retry above.
	token, err = h.sessions.ValidToken(ctx, sessionID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	progress := make(chan tasks.ProgressUpdate, 64)
	go h.drainProgress(progress)
	result, err := h.engine.Enrich(ctx, progress, token, suggestions)
	close(progress)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("generation complete",
		"suggested", len(suggestions),
		"resolved", len(result.Resolved),
		"dropped", len(result.Dropped),
	)

	writeJSON(w, http.StatusOK, map[string]any{"playlist": result.Resolved})
}

// Playlists lists the caller's catalog playlists.
func (h *APIHandler) Playlists(w http.ResponseWriter, r *http.Request) {
	token, err := h.sessions.ValidToken(r.Context(), SessionID(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var playlists []models.Playlist
	err = h.withRetry(r, token, func(t string) error {
		var listErr error
		playlists, listErr = h.catalog.UserPlaylists(r.Context(), t)
		return listErr
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if playlists == nil {
		playlists = []models.Playlist{}
	}
	writeJSON(w, http.StatusOK, playlists)
}

// AddToPlaylist materializes the submitted tracks into the named playlist.
//
// This endpoint mutates the catalog and has no rollback: a failure after the
// playlist was created may leave it empty. That outcome is reported, not hidden.
func (h *APIHandler) AddToPlaylist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PlaylistName string                 `json:"playlistName"`
		Tracks       []models.EnrichedTrack `json:"tracks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.PlaylistName == "" {
		writeError(w, h.logger, shared.ErrInvalidInput)
		return
	}

	token, err := h.sessions.ValidToken(r.Context(), SessionID(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	progress := make(chan tasks.ProgressUpdate, 64)
	go h.drainProgress(progress)

	var result *models.AddResult
	err = h.withRetry(r, token, func(t string) error {
		var addErr error
		result, addErr = h.engine.Materialize(r.Context(), progress, t, body.PlaylistName, body.Tracks)
		return addErr
	})
	close(progress)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Added to playlist",
		"playlist": result.Playlist,
		"added":    result.Added,
		"dropped":  result.Dropped,
	})
}

// Logout destroys the caller's session and clears the cookie.
func (h *APIHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id := SessionID(r); id != "" {
		h.sessions.Destroy(id)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	writeJSON(w, http.StatusOK, map[string]any{"message": "Logged out"})
}

// withRetry runs fn with the given token and, when the catalog reports expired
// auth, performs exactly one refresh-and-retry. Never loops.
func (h *APIHandler) withRetry(r *http.Request, token string, fn func(token string) error) error {
	err := fn(token)
	if !errors.Is(err, shared.ErrTokenExpired) {
		return err
	}

	refreshed, refreshErr := h.sessions.ForceRefresh(r.Context(), SessionID(r), token)
	if refreshErr != nil {
		return refreshErr
	}

	return fn(refreshed)
}

// drainProgress surfaces pipeline phases in the debug log so progress
// reporting never blocks the engine. The sending handler closes the channel.
func (h *APIHandler) drainProgress(progress <-chan tasks.ProgressUpdate) {
	for update := range progress {
		h.logger.Debug(update.Message, "phase", update.Phase.String(), "step", update.Step, "total", update.Total)
	}
}

// terminal reports whether the error ends the request regardless of fallbacks.
func terminal(err error) bool {
	return errors.Is(err, shared.ErrRefreshFailed) || errors.Is(err, shared.ErrNotAuthenticated)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps the error taxonomy onto HTTP statuses. Messages stay
// generic; raw model output is never echoed to the caller.
func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	var status int
	var message string

	switch {
	case errors.Is(err, shared.ErrNotAuthenticated):
		status, message = http.StatusUnauthorized, "Not authenticated"
	case errors.Is(err, shared.ErrRefreshFailed):
		status, message = http.StatusUnauthorized, "Session expired, please log in again"
	case errors.Is(err, shared.ErrInvalidInput):
		status, message = http.StatusBadRequest, "Invalid request body"
	case errors.Is(err, shared.ErrMalformedSuggestion):
		status, message = http.StatusInternalServerError, "Generation failed"
	case errors.Is(err, shared.ErrNoTracksResolved):
		status, message = http.StatusUnprocessableEntity, "No tracks could be resolved"
	case errors.Is(err, shared.ErrPlaylistUnresolvable):
		status, message = http.StatusInternalServerError, "Could not resolve playlist owner"
	case errors.Is(err, shared.ErrCatalogUnavailable):
		status, message = http.StatusBadGateway, "Catalog unavailable"
	default:
		status, message = http.StatusInternalServerError, "Internal error"
	}

	logger.Error("request failed", "status", status, "error", err)
	writeJSON(w, status, map[string]string{"message": message})
}
