package tasks

import (
	"fmt"

	"github.com/v04/jukebox/internal/models"
)

// ProgressUpdate represents a progress event during a pipeline operation.
//
// Used to send real-time updates to the HTTP or CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	SearchTracks Phase = iota
	Enriched
	ResolveOwner
	CreatePlaylist
	ResolveTracks
	AddTracks
)

func (p Phase) String() string {
	switch p {
	case SearchTracks:
		return "search_tracks"
	case Enriched:
		return "enriched"
	case ResolveOwner:
		return "resolve_owner"
	case CreatePlaylist:
		return "create_playlist"
	case ResolveTracks:
		return "resolve_tracks"
	case AddTracks:
		return "add_tracks"
	default:
		return ""
	}
}

func searchTrackUpdate(step, total int, s models.Suggestion) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Searching catalog for %s - %s...", s.Title, s.Artist),
		Data:    s,
	}
}

func enrichedUpdate(resolved, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Enriched,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Resolved %d of %d suggestions", resolved, total),
	}
}

func resolveOwnerUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveOwner,
		Step:    1,
		Total:   1,
		Message: "Resolving playlist owner...",
	}
}

func createPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q...", name),
	}
}

func resolveTrackUpdate(step, total int, track models.EnrichedTrack) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Resolving URI for %s - %s...", track.Title, track.Artist),
		Data:    track,
	}
}

func addTracksUpdate(count int, pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Adding %d tracks to %s...", count, pl.Name),
		Data:    pl,
	}
}
