// Package server provides HTTP routing, middleware, and the jukebox's web endpoints.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Authentication
//
// [AuthHandler] implements the OAuth2 authorization code flow against the catalog.
// The login route issues a random state parameter and redirects to the catalog's
// consent page; the callback validates the state (CSRF protection), exchanges the
// authorization code for tokens, creates a server-side session, and hands the
// browser an opaque session cookie. Tokens never leave the server.
//
// # API Endpoints
//
// [APIHandler] serves the JSON API: health, prompt-driven playlist generation,
// playlist listing, materialization, and logout. Catalog reads that fail with an
// expired token are retried exactly once after a forced refresh.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
