package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/amx/internal/formatter"
	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Preview imports the source playlist and prints it without contacting Spotify.
func (r *Runner) Preview(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	req, err := sourceRequest(cmd)
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	tracks, err := r.src.Import(ctx, req)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return shared.ErrEmptySource
	}

	data, err := formatter.EncodeTracks(format, req.PlaylistName, tracks)
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write preview: %w", err)
		}
		r.writePlain("Wrote %d songs to %s\n", len(tracks), path)
	} else if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if dupes := duplicates(tracks); len(dupes) > 0 {
		r.logger.Warn("playlist contains repeated songs, each copy is transferred", "count", len(dupes))
	}
	return nil
}

// duplicates returns the repeated songs, compared by normalized title and artist.
func duplicates(tracks []models.Track) []models.Track {
	seen := make(map[string]bool, len(tracks))
	var dupes []models.Track
	for _, t := range tracks {
		key := shared.NormalizeTrackKey(t.Title, t.Artist)
		if seen[key] {
			dupes = append(dupes, t)
			continue
		}
		seen[key] = true
	}
	return dupes
}
