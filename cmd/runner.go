package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/amx/internal/services"
	"github.com/desertthunder/amx/internal/shared"
	"github.com/desertthunder/amx/internal/source"
	"github.com/desertthunder/amx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Dependencies left nil in [RunnerOpts] are built on first use from the configuration named by --config, so commands
// that never talk to Spotify do not need credentials.
type Runner struct {
	config  *shared.Config
	dest    services.Destination
	src     tasks.Source
	logger  *log.Logger
	output  io.Writer
	verbose bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	Destination services.Destination
	Source      tasks.Source
	Logger      *log.Logger
	Output      io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		dest:   opts.Destination,
		src:    opts.Source,
		logger: opts.Logger,
		output: opts.Output,
	}
}

// prepare applies --verbose and loads the configuration and importer when they were not injected.
func (r *Runner) prepare(cmd *cli.Command) error {
	if cmd.Bool("verbose") {
		r.verbose = true
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if r.config == nil {
		config, err := shared.Load(cmd.String("config"))
		if err != nil {
			return err
		}
		r.config = config
	}

	if r.src == nil {
		r.src = source.NewImporter(source.ImporterOpts{
			Source: r.config.Source,
			HTTP:   r.config.HTTP,
			Logger: r.logger,
		})
	}
	return nil
}

// destination returns the Spotify client, creating it from the configuration on first use.
func (r *Runner) destination() (services.Destination, error) {
	if r.dest != nil {
		return r.dest, nil
	}
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	svc, err := services.NewSpotifyService(services.SpotifyOpts{
		Credentials: r.config.Credentials.Spotify,
		HTTP:        r.config.HTTP,
		Logger:      r.logger,
		Output:      r.output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Spotify service: %w", err)
	}

	r.dest = svc
	return svc, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeRule() {
	r.writePlain("══════════════════════════════════════════════════\n")
}
