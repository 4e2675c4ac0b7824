package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/amx/internal/shared"
	"github.com/desertthunder/amx/internal/ui"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(os.Stderr), Output: os.Stdout})
	code := run(ctx, runner, os.Args, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the application and maps the result to an exit code.
func run(ctx context.Context, runner *Runner, args []string, stderr io.Writer) int {
	err := rootCommand(runner).Run(ctx, args)
	if err == nil {
		return 0
	}

	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		fmt.Fprintf(stderr, "\n%s Transfer cancelled by user\n", ui.Styles.Err("✗"))
		return 1
	}

	fmt.Fprintf(stderr, "%s An error occurred: %v\n", ui.Styles.Err("✗"), err)
	if runner.verbose {
		fmt.Fprint(stderr, errorTrace(err))
	}
	return 1
}

// errorTrace lists the wrapped error chain, outermost first.
func errorTrace(err error) string {
	trace := "Error trace:\n"
	for depth := 0; err != nil; depth++ {
		trace += fmt.Sprintf("  %d: %T: %v\n", depth, err, err)
		switch e := err.(type) {
		case interface{ Unwrap() []error }:
			errs := e.Unwrap()
			if len(errs) == 0 {
				return trace
			}
			err = errs[len(errs)-1]
		default:
			err = errors.Unwrap(err)
		}
	}
	return trace
}
