package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrTrackNotFound      = fmt.Errorf("track not found")
	ErrCreatePlaylist     = fmt.Errorf("playlist creation failed")

	// Source errors
	ErrMalformedInput = fmt.Errorf("malformed playlist data")
	ErrEmptySource    = fmt.Errorf("no songs found in source playlist")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
