package tasks

import (
	"context"
	"fmt"

	"github.com/v04/jukebox/internal/models"
	"github.com/v04/jukebox/internal/services"
	"github.com/v04/jukebox/internal/shared"
	"golang.org/x/time/rate"
)

// EnrichResult carries both sides of an enrichment pass: suggestions resolved
// to playable tracks and suggestions dropped with their reasons. The public
// contract only returns Resolved; Dropped exists so the behavior is verifiable
// without re-deriving it from logs.
type EnrichResult struct {
	Resolved []models.EnrichedTrack
	Dropped  []models.DroppedSuggestion
}

// Engine defines the jukebox's two pipeline operations.
type Engine interface {
	// Enrich maps each suggestion to at most one catalog track via search.
	Enrich(ctx context.Context, progress chan<- ProgressUpdate, token string, suggestions []models.Suggestion) (*EnrichResult, error)

	// Materialize finds or creates the named playlist and appends resolved track URIs.
	Materialize(ctx context.Context, progress chan<- ProgressUpdate, token, playlistName string, tracks []models.EnrichedTrack) (*models.AddResult, error)
}

// JukeboxEngine implements [Engine] against a [services.Catalog].
type JukeboxEngine struct {
	catalog     services.Catalog
	searchLimit rate.Limit
}

// NewJukeboxEngine creates an engine over the given catalog. searchesPerSecond
// caps the enrichment search fan-out; values <= 0 fall back to 5.
func NewJukeboxEngine(catalog services.Catalog, searchesPerSecond float64) *JukeboxEngine {
	if searchesPerSecond <= 0 {
		searchesPerSecond = 5.0
	}
	return &JukeboxEngine{
		catalog:     catalog,
		searchLimit: rate.Limit(searchesPerSecond),
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *JukeboxEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Enrich issues one rate-limited search per distinct suggestion (title + artist as a
// single free-text query, track kind, top result) and converts hits into
// enriched tracks. Unmatched suggestions are skipped in place, so output order
// follows input order among matched items and the output may legitimately be
// shorter than the input. A single search failure never aborts the remaining
// suggestions.
func (e *JukeboxEngine) Enrich(ctx context.Context, progress chan<- ProgressUpdate, token string, suggestions []models.Suggestion) (*EnrichResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrCatalogUnavailable)
	}

	result := &EnrichResult{Resolved: []models.EnrichedTrack{}, Dropped: []models.DroppedSuggestion{}}
	if len(suggestions) == 0 {
		return result, nil
	}

	limiter := rate.NewLimiter(e.searchLimit, 1)
	total := len(suggestions)
	seen := make(map[string]bool, total)

	for i, suggestion := range suggestions {
		e.sendProgress(progress, searchTrackUpdate(i+1, total, suggestion))

		// Models occasionally repeat a track; search each one once.
		key := shared.NormalizeTrackKey(suggestion.Title, suggestion.Artist)
		if seen[key] {
			result.Dropped = append(result.Dropped, models.DroppedSuggestion{
				Suggestion: suggestion,
				Reason:     "duplicate suggestion",
			})
			continue
		}
		seen[key] = true

		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		query := suggestion.Title + " " + suggestion.Artist
		hits, err := e.catalog.Search(ctx, token, query, 1)
		if err != nil {
			result.Dropped = append(result.Dropped, models.DroppedSuggestion{
				Suggestion: suggestion,
				Reason:     err.Error(),
			})
			continue
		}

		if len(hits) == 0 {
			result.Dropped = append(result.Dropped, models.DroppedSuggestion{
				Suggestion: suggestion,
				Reason:     "no match",
			})
			continue
		}

		result.Resolved = append(result.Resolved, hits[0].AsEnriched())
	}

	e.sendProgress(progress, enrichedUpdate(len(result.Resolved), total))
	return result, nil
}

// Materialize resolves the playlist by name (find-or-create, case-sensitive
// exact match, private visibility on create), re-resolves tracks lacking a
// known URI via top-1 search, and submits the surviving URI batch in one
// add-tracks call. An empty resolved batch is never submitted.
//
// Not idempotent across calls: materializing the same name twice appends to
// the existing playlist. Duplicate URIs within one batch are dropped, first
// occurrence wins; there is no cross-call de-duplication.
func (e *JukeboxEngine) Materialize(ctx context.Context, progress chan<- ProgressUpdate, token, playlistName string, tracks []models.EnrichedTrack) (*models.AddResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrCatalogUnavailable)
	}

	e.sendProgress(progress, resolveOwnerUpdate())

	user, err := e.catalog.CurrentUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrPlaylistUnresolvable, err)
	}

	playlists, err := e.catalog.UserPlaylists(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrPlaylistUnresolvable, err)
	}

	var target *models.Playlist
	for _, pl := range playlists {
		if pl.Name == playlistName {
			target = &pl
			break
		}
	}

	created := false
	if target == nil {
		e.sendProgress(progress, createPlaylistUpdate(playlistName))

		target, err = e.catalog.CreatePlaylist(ctx, token, user.ID, playlistName)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrPlaylistUnresolvable, err)
		}
		created = true
	}

	uris := make([]string, 0, len(tracks))
	seen := make(map[string]bool, len(tracks))
	dropped := 0

	for i, track := range tracks {
		e.sendProgress(progress, resolveTrackUpdate(i+1, len(tracks), track))

		uri := track.URI
		if uri == "" {
			hits, err := e.catalog.Search(ctx, token, track.Title+" "+track.Artist, 1)
			if err != nil || len(hits) == 0 {
				dropped++
				continue
			}
			uri = hits[0].URI
		}

		if uri == "" || seen[uri] {
			dropped++
			continue
		}

		seen[uri] = true
		uris = append(uris, uri)
	}

	if len(uris) == 0 {
		return nil, fmt.Errorf("%w: playlist %q", shared.ErrNoTracksResolved, playlistName)
	}

	e.sendProgress(progress, addTracksUpdate(len(uris), target))

	if err := e.catalog.AddTracks(ctx, token, target.ID, uris); err != nil {
		return nil, err
	}

	return &models.AddResult{
		Playlist: *target,
		Created:  created,
		Added:    len(uris),
		Dropped:  dropped,
	}, nil
}
