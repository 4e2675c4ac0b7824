package tasks

import (
	"fmt"

	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/source"
)

// ProgressUpdate represents a progress event during a transfer.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data, a [models.ItemResult] during SearchTracks
}

// Operation phase enumeration
type Phase int

const (
	Authenticate Phase = iota
	FetchSource
	CreatePlaylist
	SearchTracks
	Summary
)

func (p Phase) String() string {
	switch p {
	case Authenticate:
		return "authenticate"
	case FetchSource:
		return "fetch_source"
	case CreatePlaylist:
		return "create_playlist"
	case SearchTracks:
		return "search_tracks"
	case Summary:
		return "summary"
	default:
		return ""
	}
}

func authenticateUpdate(service string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Authenticate,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Authenticating with %s...", service),
	}
}

func authenticatedUpdate(user *models.User) ProgressUpdate {
	name := user.DisplayName
	if name == "" {
		name = user.ID
	}
	return ProgressUpdate{
		Phase:   Authenticate,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Authenticated as %s", name),
		Data:    user,
	}
}

func fetchSourceUpdate(req source.Request) ProgressUpdate {
	msg := fmt.Sprintf("Fetching playlist '%s' for %s...", req.PlaylistName, req.Username)
	switch req.Mode() {
	case source.ModeFile:
		msg = fmt.Sprintf("Reading playlist from %s...", req.File)
	case source.ModeURL:
		msg = fmt.Sprintf("Fetching playlist page %s...", req.URL)
	}
	return ProgressUpdate{Phase: FetchSource, Step: 0, Total: 1, Message: msg}
}

func foundTracksUpdate(tracks []models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d songs", len(tracks)),
		Data:    tracks,
	}
}

func createPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist '%s'...", name),
	}
}

func createdPlaylistUpdate(name, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", name, id),
		Data:    id,
	}
}

func searchTracksUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Searching for %d songs...", total),
	}
}

func itemUpdate(item models.ItemResult, total int) ProgressUpdate {
	var msg string
	switch item.Status {
	case models.StatusAdded:
		msg = fmt.Sprintf("[%d/%d] ✓ Added: %s", item.Index, total, item.Track)
	case models.StatusMatched:
		msg = fmt.Sprintf("[%d/%d] ✓ Found: %s", item.Index, total, item.Track)
	case models.StatusSkipped:
		msg = fmt.Sprintf("[%d/%d] - Skipped invalid record: %v", item.Index, total, item.Err)
	case models.StatusNotFound:
		msg = fmt.Sprintf("[%d/%d] ✗ Not found: %s", item.Index, total, item.Track)
	default:
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %v", item.Index, total, item.Track, item.Err)
	}
	return ProgressUpdate{Phase: SearchTracks, Step: item.Index, Total: total, Message: msg, Data: item}
}

func summaryUpdate(outcome *models.TransferOutcome) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Summary,
		Step:    outcome.Transferred,
		Total:   outcome.Total,
		Message: fmt.Sprintf("Transferred %d of %d songs (%s)", outcome.Transferred, outcome.Total, outcome.SuccessRateString()),
		Data:    outcome,
	}
}
