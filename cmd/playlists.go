package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/amx/internal/shared"
	"github.com/desertthunder/amx/internal/ui"
	"github.com/urfave/cli/v3"
)

// Playlists lists the current user's Spotify playlists.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	dest, err := r.destination()
	if err != nil {
		return err
	}
	if _, err := dest.Authenticate(ctx); err != nil {
		return err
	}

	playlists, err := dest.GetUserPlaylists(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}

	r.writePlain("%s\n\n", ui.Styles.Title(fmt.Sprintf("Found %d playlists", len(playlists))))
	for i, p := range playlists {
		r.writePlain("%d. %s %s\n", i+1, p.Name, ui.Styles.Help(fmt.Sprintf("(%d tracks, ID: %s)", p.TrackCount, p.ID)))
	}
	return nil
}

// Playlist shows one Spotify playlist by ID.
func (r *Runner) Playlist(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	if id == "" {
		return fmt.Errorf("%w: --id is required", shared.ErrMissingArgument)
	}

	if err := r.prepare(cmd); err != nil {
		return err
	}

	dest, err := r.destination()
	if err != nil {
		return err
	}
	if _, err := dest.Authenticate(ctx); err != nil {
		return err
	}

	info, err := dest.GetPlaylistInfo(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(info, true)
	}

	visibility := "private"
	if info.Public {
		visibility = "public"
	}
	r.writePlain("%s\n", ui.Styles.Title(info.Name))
	r.writePlain("%s\n", ui.Styles.Field("ID", info.ID))
	if info.Description != "" {
		r.writePlain("%s\n", ui.Styles.Field("Description", info.Description))
	}
	if info.Owner != "" {
		r.writePlain("%s\n", ui.Styles.Field("Owner", info.Owner))
	}
	r.writePlain("%s\n", ui.Styles.Field("Tracks", info.TrackCount))
	r.writePlain("%s\n", ui.Styles.Field("Visibility", visibility))
	return nil
}
