package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/amx/internal/formatter"
	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/shared"
	"github.com/desertthunder/amx/internal/source"
	"github.com/desertthunder/amx/internal/tasks"
	"github.com/desertthunder/amx/internal/ui"
	"github.com/urfave/cli/v3"
)

// sourceRequest reads the source flags shared by the transfer and preview commands.
func sourceRequest(cmd *cli.Command) (source.Request, error) {
	req := source.Request{
		Username:     strings.TrimSpace(cmd.String("apple_username")),
		PlaylistName: strings.TrimSpace(cmd.String("playlist_name")),
		File:         cmd.String("file"),
		URL:          cmd.String("url"),
		Limit:        int(cmd.Int("limit")),
	}

	if req.Username == "" {
		return req, fmt.Errorf("%w: --apple_username is required", shared.ErrMissingArgument)
	}
	if req.PlaylistName == "" {
		return req, fmt.Errorf("%w: --playlist_name is required", shared.ErrMissingArgument)
	}
	if req.Limit < 0 {
		return req, fmt.Errorf("%w: --limit must not be negative", shared.ErrInvalidArgument)
	}
	return req, nil
}

// Transfer copies the source playlist to Spotify, or only searches with --dry-run.
func (r *Runner) Transfer(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	src, err := sourceRequest(cmd)
	if err != nil {
		return err
	}
	req := tasks.TransferRequest{
		Source:      src,
		Name:        cmd.String("spotify_playlist_name"),
		Description: cmd.String("description"),
	}

	dest, err := r.destination()
	if err != nil {
		return err
	}

	verbose := cmd.Bool("verbose")
	dryRun := cmd.Bool("dry-run")
	logger := shared.WithLogger(r.logger, "run", shared.GenerateID())
	engine := tasks.NewTransferEngine(dest, r.src, logger)

	logger.Info("starting transfer", "source", src.Mode(), "playlist", src.PlaylistName, "dest", req.PlaylistName(), "dry_run", dryRun)
	r.writeBanner(req, dryRun)

	progress := make(chan tasks.ProgressUpdate)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writeProgress(update, verbose)
		}
	}()

	var outcome *models.TransferOutcome
	if dryRun {
		outcome, err = engine.DryRun(ctx, req, progress)
	} else {
		outcome, err = engine.Run(ctx, req, progress)
	}
	close(progress)
	<-done

	if err != nil {
		return err
	}

	r.writeSummary(outcome, dryRun, verbose)

	if path := cmd.String("report"); path != "" {
		format, err := formatter.WriteReport(path, outcome)
		if err != nil {
			return err
		}
		r.writePlain("\nReport (%s) written to %s\n", format, path)
	}
	return nil
}

func (r *Runner) writeBanner(req tasks.TransferRequest, dryRun bool) {
	subtitle := fmt.Sprintf("'%s' → '%s'", req.Source.PlaylistName, req.PlaylistName())
	if dryRun {
		subtitle += " (dry run)"
	}
	r.writePlain("%s\n", ui.Styles.Banner("🎵 Apple Music to Spotify Playlist Transfer", subtitle))
}

func (r *Runner) writeProgress(update tasks.ProgressUpdate, verbose bool) {
	done := update.Step > 0 && update.Step == update.Total

	switch update.Phase {
	case tasks.Authenticate, tasks.FetchSource, tasks.CreatePlaylist:
		if done {
			r.writePlain("%s %s\n", ui.Styles.OK("✓"), update.Message)
		} else {
			r.writePlain("→ %s\n", update.Message)
		}
	case tasks.SearchTracks:
		item, ok := update.Data.(models.ItemResult)
		if !ok {
			r.writePlain("→ %s\n", update.Message)
			return
		}
		if verbose {
			if item.Status.Found() {
				r.writePlain("  %s\n", ui.Styles.OK(update.Message))
			} else {
				r.writePlain("  %s\n", ui.Styles.Warn(update.Message))
			}
		}
	}
}

func (r *Runner) writeSummary(outcome *models.TransferOutcome, dryRun, verbose bool) {
	r.writePlain("\n")
	r.writeRule()
	if dryRun {
		r.writePlain("🔎 Dry run complete, nothing was changed\n")
		r.writePlain("%s %s\n", ui.Styles.OK("✓"), ui.Styles.Field("Found", fmt.Sprintf("%d songs", outcome.Transferred)))
	} else {
		r.writePlain("🎉 Transfer Complete!\n")
		r.writePlain("%s %s\n", ui.Styles.OK("✓"), ui.Styles.Field("Transferred", fmt.Sprintf("%d songs", outcome.Transferred)))
	}
	r.writePlain("%s %s\n", ui.Styles.Err("✗"), ui.Styles.Field("Not found", fmt.Sprintf("%d songs", outcome.NotFound)))
	r.writePlain("📊 Success rate: %s\n", outcome.SuccessRateString())

	if failed := outcome.Failed(); len(failed) > 0 && !verbose {
		r.writePlain("\nNot transferred:\n")
		for _, item := range failed {
			r.writePlain("  - %s (%s)\n", item.Track, item.Status)
		}
	}

	if !dryRun && outcome.Transferred > 0 {
		r.writePlain("\n🔗 Your new Spotify playlist: %s\n", outcome.PlaylistName)
	}
}
