// Package tasks implements the suggestion-to-catalog enrichment pipeline and playlist materialization.
//
// # Core Operations
//
// The [Engine] interface defines two operations:
//
//  1. [Engine.Enrich] : Resolve model suggestions against the catalog
//     - One rate-limited search per suggestion (title + artist, track kind, top result)
//     - Matched suggestions become enriched tracks with a canonical catalog identity
//     - Unmatched suggestions are skipped in place and recorded in the dropped list
//     - One search failure never aborts the remaining suggestions
//
//  2. [Engine.Materialize] : Persist enriched tracks into a named playlist
//     - Resolves the owner, finds the playlist by exact name or creates it private
//     - Re-resolves tracks lacking a known URI via top-1 search
//     - De-duplicates URIs within the batch, then submits one add-tracks call
//     - Never issues an add call with an empty URI batch
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
// Updates use select with default to prevent blocking.
//
// # Implementation
//
// [JukeboxEngine] implements [Engine] with a single dependency on [services.Catalog].
// The search fan-out is paced with a [rate.Limiter] so a long suggestion list cannot
// hammer the catalog's search endpoint.
package tasks
