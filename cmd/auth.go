package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/amx/internal/ui"
	"github.com/urfave/cli/v3"
)

// sessionResetter is implemented by destinations that cache their session.
type sessionResetter interface {
	Logout() error
}

// Auth authenticates with Spotify, running the browser flow when no valid cached token exists.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	dest, err := r.destination()
	if err != nil {
		return err
	}

	if cmd.Bool("reset") {
		if resetter, ok := dest.(sessionResetter); ok {
			if err := resetter.Logout(); err != nil {
				return fmt.Errorf("failed to reset session: %w", err)
			}
			r.logger.Info("cleared cached session")
		}
	}

	r.writePlain("→ Authenticating with %s...\n", dest.Name())
	user, err := dest.Authenticate(ctx)
	if err != nil {
		return err
	}

	name := user.DisplayName
	if name == "" {
		name = user.ID
	}
	r.writePlain("%s Authenticated as %s\n", ui.Styles.OK("✓"), name)
	if r.config.Credentials.Spotify.TokenCache != "" {
		r.writePlain("%s Session cached in %s\n", ui.Styles.OK("✓"), r.config.Credentials.Spotify.TokenCache)
	}
	return nil
}
