// Package models defines domain entities shared across the jukebox service.
//
// The package contains lightweight data transfer objects only:
//   - [Suggestion] : An untrusted (title, artist) pair produced by the suggestion model
//   - [EnrichedTrack] : A suggestion resolved to a real Spotify catalog entry
//   - [ListeningItem] : A read-only snapshot of a library or history entry, used as model context
//   - [Playlist] : Basic playlist identity as the catalog reports it
//   - [AddResult] : Outcome of materializing tracks into a playlist
//
// All entities are ephemeral per-request; nothing in this package is persisted.
package models
