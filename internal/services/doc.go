// Package services implements clients for the jukebox's two external collaborators:
// the Spotify catalog and the generative suggestion model.
//
// # Catalog Interface
//
// [Catalog] abstracts the read/write operations the jukebox needs from the music
// catalog: search, library and history reads, playlist list/create, and the
// add-tracks write. [SpotifyService] is the production implementation.
//
// Every call carries a bearer token supplied by the caller; the client holds no
// token state of its own. Token exchange and refresh grants go through
// [oauth2.Config], which handles client authentication against the token endpoint.
//
// # Suggestion Engine
//
// [SuggestionService] implements [Suggester] over an OpenAI-compatible chat
// completion API (the Gemini endpoint by default). The model is instructed to
// answer with a strict JSON object, but its raw output may be wrapped in code
// fences or surrounding prose, so [ExtractJSON] excises the bracket-delimited
// payload before [ParseSuggestions] applies a strict parse. Failures are
// rejected, never guess-repaired.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : no token supplied
//   - [shared.ErrTokenExpired] : catalog answered 401, one refresh-and-retry is warranted
//   - [shared.ErrCatalogUnavailable] : network failure or non-auth error status
//   - [shared.ErrRefreshFailed] : refresh-token grant rejected, terminal for the session
//   - [shared.ErrMalformedSuggestion] : no usable JSON recoverable from model output
package services
