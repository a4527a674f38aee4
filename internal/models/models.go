package models

import "strings"

// Suggestion is a model-produced track recommendation with no catalog identity yet.
type Suggestion struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// ListeningItem is a snapshot of a saved or recently played track, used only as prompt context.
type ListeningItem struct {
	Name      string `json:"name"`
	Artist    string `json:"artist"`
	CatalogID string `json:"id"`
}

// EnrichedTrack is a suggestion resolved against the catalog. CatalogID is always non-empty;
// suggestions that fail to resolve are dropped rather than forwarded with a null identity.
type EnrichedTrack struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	PreviewURL  string `json:"preview_url,omitempty"`
	ArtworkURL  string `json:"image,omitempty"`
	ExternalURL string `json:"spotify_url"`
	CatalogID   string `json:"id"`
	URI         string `json:"uri,omitempty"`
}

// Playlist represents a playlist as the catalog reports it.
type Playlist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DroppedSuggestion records a suggestion that could not be resolved, with the reason.
type DroppedSuggestion struct {
	Suggestion Suggestion `json:"suggestion"`
	Reason     string     `json:"reason"`
}

// AddResult is the outcome of materializing tracks into a named playlist.
type AddResult struct {
	Playlist Playlist `json:"playlist"`
	Created  bool     `json:"created"`
	Added    int      `json:"added"`
	Dropped  int      `json:"dropped"`
}

// SummarizeListening joins listening items as a compact "Name - Artist" list for the model prompt.
func SummarizeListening(items []ListeningItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.Name+" - "+item.Artist)
	}
	return strings.Join(parts, ", ")
}
