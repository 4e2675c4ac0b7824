// package tasks implements the playlist transfer between the source importer and a destination service.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/services"
	"github.com/desertthunder/amx/internal/shared"
	"github.com/desertthunder/amx/internal/source"
)

// Source produces the ordered track list of a source playlist.
//
// Implemented by [source.Importer].
type Source interface {
	Import(ctx context.Context, req source.Request) ([]models.Track, error)
}

// TransferRequest describes one transfer run.
type TransferRequest struct {
	Source      source.Request
	Name        string // Destination playlist name, defaults to Source.PlaylistName
	Description string // Destination playlist description, the service default when empty
}

// PlaylistName resolves the destination playlist name.
func (r TransferRequest) PlaylistName() string {
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	return r.Source.PlaylistName
}

// TransferEngine copies a source playlist into a destination service.
type TransferEngine struct {
	dest   services.Destination
	src    Source
	logger *log.Logger
}

// NewTransferEngine creates a [TransferEngine]. A nil logger writes to stderr.
func NewTransferEngine(dest services.Destination, src Source, logger *log.Logger) *TransferEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TransferEngine{dest: dest, src: src, logger: logger}
}

// send delivers an update, blocking until the consumer reads it or ctx ends.
func send(ctx context.Context, progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	case <-ctx.Done():
	}
}

// Run authenticates, imports the source playlist, creates the destination playlist and adds every match in source order.
//
// Per-track failures are recorded in the outcome and never abort the run. Authentication, an empty import and playlist
// creation failures abort with an error wrapping [shared.ErrAuthFailed], [shared.ErrEmptySource] and
// [shared.ErrCreatePlaylist] respectively. On cancellation the partial outcome is returned together with ctx.Err().
func (e *TransferEngine) Run(ctx context.Context, req TransferRequest, progress chan<- ProgressUpdate) (*models.TransferOutcome, error) {
	tracks, err := e.prepare(ctx, req, progress)
	if err != nil {
		return nil, err
	}

	name := req.PlaylistName()
	send(ctx, progress, createPlaylistUpdate(name))

	playlistID, err := e.dest.CreatePlaylist(ctx, name, req.Description)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, shared.ErrCreatePlaylist) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrCreatePlaylist, err)
	}
	send(ctx, progress, createdPlaylistUpdate(name, playlistID))
	e.logger.Info("created playlist", "name", name, "id", playlistID)

	outcome := &models.TransferOutcome{PlaylistID: playlistID, PlaylistName: name}
	err = e.each(ctx, tracks, outcome, progress, func(item *models.ItemResult) {
		if err := e.dest.AddTrackToPlaylist(ctx, playlistID, item.Match.ID); err != nil {
			item.Status, item.Err = models.StatusAddFailed, err
			return
		}
		item.Status = models.StatusAdded
	})
	if err != nil {
		return outcome, err
	}

	send(ctx, progress, summaryUpdate(outcome))
	return outcome, nil
}

// DryRun authenticates, imports and searches like [TransferEngine.Run] without creating a playlist or adding tracks.
//
// Found tracks are recorded with [models.StatusMatched].
func (e *TransferEngine) DryRun(ctx context.Context, req TransferRequest, progress chan<- ProgressUpdate) (*models.TransferOutcome, error) {
	tracks, err := e.prepare(ctx, req, progress)
	if err != nil {
		return nil, err
	}

	outcome := &models.TransferOutcome{PlaylistName: req.PlaylistName()}
	err = e.each(ctx, tracks, outcome, progress, func(item *models.ItemResult) {
		item.Status = models.StatusMatched
	})
	if err != nil {
		return outcome, err
	}

	send(ctx, progress, summaryUpdate(outcome))
	return outcome, nil
}

// prepare runs the authentication and import steps shared by Run and DryRun.
func (e *TransferEngine) prepare(ctx context.Context, req TransferRequest, progress chan<- ProgressUpdate) ([]models.Track, error) {
	if e.dest == nil {
		return nil, fmt.Errorf("%w: destination service not initialized", shared.ErrServiceUnavailable)
	}
	if e.src == nil {
		return nil, fmt.Errorf("%w: source importer not initialized", shared.ErrServiceUnavailable)
	}

	send(ctx, progress, authenticateUpdate(e.dest.Name()))
	user, err := e.dest.Authenticate(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, shared.ErrAuthFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}
	send(ctx, progress, authenticatedUpdate(user))

	send(ctx, progress, fetchSourceUpdate(req.Source))
	tracks, err := e.src.Import(ctx, req.Source)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrEmptySource, err)
	}
	if len(tracks) == 0 {
		return nil, shared.ErrEmptySource
	}
	send(ctx, progress, foundTracksUpdate(tracks))

	return tracks, nil
}

// each searches for every track in order and calls onMatch for the ones found. onMatch sets the final status.
func (e *TransferEngine) each(
	ctx context.Context, tracks []models.Track, outcome *models.TransferOutcome,
	progress chan<- ProgressUpdate, onMatch func(*models.ItemResult),
) error {
	total := len(tracks)
	send(ctx, progress, searchTracksUpdate(total))

	for i, track := range tracks {
		if err := ctx.Err(); err != nil {
			return err
		}

		item := e.search(ctx, i+1, track)
		if item.Status == "" {
			onMatch(&item)
		}

		// A request cut short by cancellation is not a result.
		if err := ctx.Err(); err != nil && !item.Status.Found() {
			return err
		}

		outcome.Record(item)
		e.logger.Debug("processed track", "index", item.Index, "track", track.String(), "status", item.Status)
		send(ctx, progress, itemUpdate(item, total))
	}
	return nil
}

// search looks up one track. The returned item has an empty status when a match was found.
func (e *TransferEngine) search(ctx context.Context, index int, track models.Track) models.ItemResult {
	item := models.ItemResult{Index: index, Track: track}

	if err := track.Validate(); err != nil {
		item.Status, item.Err = models.StatusSkipped, err
		return item
	}

	match, err := e.dest.SearchTrack(ctx, track.Title, track.Artist)
	switch {
	case errors.Is(err, shared.ErrTrackNotFound):
		item.Status, item.Err = models.StatusNotFound, err
	case err != nil:
		item.Status, item.Err = models.StatusSearchFailed, err
	case match == nil:
		item.Status = models.StatusNotFound
	default:
		item.Match = match
	}
	return item
}
