package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// ConfigShow prints the effective configuration after file and environment overrides.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}
	return r.writePlain("%s", r.config.Describe())
}
