package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Session and token errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrNoRefreshToken   = fmt.Errorf("no refresh token available")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")
	ErrInvalidState     = fmt.Errorf("invalid state parameter")

	// Catalog errors
	ErrCatalogUnavailable = fmt.Errorf("catalog unavailable")

	// Generation errors
	ErrMalformedSuggestion  = fmt.Errorf("malformed suggestion payload")
	ErrPlaylistUnresolvable = fmt.Errorf("playlist owner unresolvable")
	ErrNoTracksResolved     = fmt.Errorf("no tracks resolved")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
