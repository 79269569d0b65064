package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")

	// Cache errors
	ErrCacheCorrupt = fmt.Errorf("cache file corrupt")
	ErrCacheWrite   = fmt.Errorf("cache write failed")

	// API and matching errors
	ErrAPIRequest          = fmt.Errorf("API request failed")
	ErrSearchUnavailable   = fmt.Errorf("search unavailable")
	ErrPlaylistNotFound    = fmt.Errorf("playlist not found")
	ErrNoSongs             = fmt.Errorf("no songs found")
	ErrNoTracks            = fmt.Errorf("no tracks to add")
	ErrAmbiguousUnresolved = fmt.Errorf("ambiguous match unresolved")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
