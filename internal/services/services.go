// package services defines interface Destination for the playlist service tracks are copied into
//
// Spotify (via github.com/zmb3/spotify/v2)
package services

import (
	"context"

	"github.com/desertthunder/amx/internal/models"
)

// Destination is the remote catalog a transfer writes to.
type Destination interface {
	// Authenticate establishes a session and returns the account it belongs to.
	Authenticate(ctx context.Context) (*models.User, error)

	// CreatePlaylist creates a playlist owned by the authenticated user and returns its ID.
	CreatePlaylist(ctx context.Context, name, description string) (string, error)

	// SearchTrack looks up the best catalog match for title and artist.
	// Returns an error wrapping [shared.ErrTrackNotFound] when nothing matches.
	SearchTrack(ctx context.Context, title, artist string) (*models.Track, error)

	// AddTrackToPlaylist appends one track to a playlist.
	AddTrackToPlaylist(ctx context.Context, playlistID, trackID string) error

	// GetPlaylistInfo retrieves playlist metadata.
	GetPlaylistInfo(ctx context.Context, playlistID string) (*models.PlaylistInfo, error)

	// GetUserPlaylists retrieves every playlist of the authenticated user.
	GetUserPlaylists(ctx context.Context) ([]models.PlaylistInfo, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}
