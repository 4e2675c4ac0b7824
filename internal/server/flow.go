package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/amx/internal/shared"
	"golang.org/x/oauth2"
)

// FlowOpts contains the dependencies of a [Flow].
type FlowOpts struct {
	RedirectURI string                    // Callback URL registered with the provider
	AuthURL     func(state string) string // Builds the consent URL for a state token
	Exchanger   Exchanger
	OpenBrowser func(url string) error // Defaults to [shared.OpenBrowser]
	Output      io.Writer
	Logger      *log.Logger
	Timeout     time.Duration // Defaults to 2 minutes
}

// Flow runs the authorization code flow against a local callback server.
type Flow struct {
	opts FlowOpts
}

// NewFlow creates a [Flow], filling unset options with defaults.
func NewFlow(opts FlowOpts) *Flow {
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	return &Flow{opts: opts}
}

// Authorize asks the user for consent in the browser and returns the exchanged token.
func (f *Flow) Authorize(ctx context.Context) (*oauth2.Token, error) {
	redirect, err := url.Parse(f.opts.RedirectURI)
	if err != nil || redirect.Host == "" {
		return nil, fmt.Errorf("%w: invalid redirect URI %q", shared.ErrInvalidConfig, f.opts.RedirectURI)
	}

	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	handler := NewOAuthHandler(f.opts.Exchanger, state, redirect.Path)
	router := NewBasicRouter()
	router.Use(LogRequests(f.opts.Logger))
	router.Handler(handler)

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", redirect.Host, err)
	}

	httpServer := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serverErrors := make(chan error, 1)
	go func() {
		f.opts.Logger.Debug("starting OAuth callback server", "addr", listener.Addr().String())
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			f.opts.Logger.Warn("error shutting down server", "error", err)
		}
	}()

	authURL := f.opts.AuthURL(state)
	fmt.Fprintf(f.opts.Output, "→ Opening browser for Spotify authorization...\n")
	if err := f.opts.OpenBrowser(authURL); err != nil {
		f.opts.Logger.Warn("failed to open browser automatically", "error", err)
		fmt.Fprintf(f.opts.Output, "⚠ Could not open browser automatically.\nPlease open this URL in your browser:\n%s\n\n", authURL)
	}
	fmt.Fprintf(f.opts.Output, "→ Waiting for authorization (%s timeout)...\n", f.opts.Timeout)

	timeout := time.NewTimer(f.opts.Timeout)
	defer timeout.Stop()

	var result OAuthResult
	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, f.opts.Timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, result.Error()
	}
	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}
	return result.Token, nil
}
