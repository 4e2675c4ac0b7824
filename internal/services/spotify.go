// Spotify implementation of [Destination]
//
// API reference: https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/server"
	"github.com/desertthunder/amx/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// DefaultDescription is used for playlists created without a description.
	DefaultDescription = "Transferred from Apple Music"

	defaultRedirectURI = "http://localhost:8080/callback"
	searchLimit        = 5
	playlistPageSize   = 50
	authTimeout        = 2 * time.Minute
)

// Scopes lists the OAuth scopes a transfer needs.
var Scopes = []string{
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopeUserReadPrivate,
}

// Authorizer obtains a new token through user consent.
type Authorizer interface {
	Authorize(ctx context.Context) (*oauth2.Token, error)
}

// SpotifyService implements the [Destination] interface for Spotify.
type SpotifyService struct {
	auth       *spotifyauth.Authenticator
	authorizer Authorizer
	cache      *TokenCache
	client     *spotify.Client
	user       *models.User
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
	logger     *log.Logger
}

// SpotifyOpts contains configuration options for creating a [SpotifyService].
type SpotifyOpts struct {
	Credentials shared.SpotifyConfig
	HTTP        shared.HTTPConfig
	Logger      *log.Logger
	Output      io.Writer    // Receives prompts during browser authorization
	Authorizer  Authorizer   // Defaults to a local callback [server.Flow]
	HTTPClient  *http.Client // Base client for API and token requests
	BaseURL     string       // API base URL override, must end with "/"
}

// NewSpotifyService creates a new Spotify service with the given credentials.
func NewSpotifyService(opts SpotifyOpts) (*SpotifyService, error) {
	creds := opts.Credentials
	if creds.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}
	if creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}
	if creds.RedirectURI == "" {
		creds.RedirectURI = defaultRedirectURI
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.HTTP.Timeout()}
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(creds.ClientID),
		spotifyauth.WithClientSecret(creds.ClientSecret),
		spotifyauth.WithRedirectURL(creds.RedirectURI),
		spotifyauth.WithScopes(Scopes...),
	)

	authorizer := opts.Authorizer
	if authorizer == nil {
		authorizer = server.NewFlow(server.FlowOpts{
			RedirectURI: creds.RedirectURI,
			AuthURL:     func(state string) string { return auth.AuthURL(state) },
			Exchanger:   auth,
			Output:      opts.Output,
			Logger:      opts.Logger,
			Timeout:     authTimeout,
		})
	}

	retries := opts.HTTP.MaxRetries
	if retries < 0 {
		retries = 0
	}

	return &SpotifyService{
		auth:       auth,
		authorizer: authorizer,
		cache:      NewTokenCache(creds.TokenCache),
		httpClient: opts.HTTPClient,
		baseURL:    opts.BaseURL,
		timeout:    opts.HTTP.Timeout(),
		limiter:    rate.NewLimiter(rate.Every(opts.HTTP.SpotifyInterval()), 1),
		maxRetries: retries,
		backoff:    opts.HTTP.Backoff(),
		logger:     shared.WithLogger(opts.Logger, "service", "spotify"),
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticate restores the cached session or runs the browser authorization flow, then verifies the token by fetching the
// current user. The token is written back to the cache on success.
func (s *SpotifyService) Authenticate(ctx context.Context) (*models.User, error) {
	token, err := s.cache.Load()
	if err != nil {
		s.logger.Warn("ignoring unreadable token cache", "path", s.cache.Path(), "error", err)
	}

	if token != nil {
		s.connect(ctx, token)
		user, err := s.currentUser(ctx)
		if err == nil {
			s.saveToken()
			return user, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.Warn("cached token rejected, reauthorizing", "error", err)
	}

	token, err = s.authorizer.Authorize(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	s.connect(ctx, token)
	user, err := s.currentUser(ctx)
	if err != nil {
		s.client, s.user = nil, nil
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	s.saveToken()
	return user, nil
}

// Logout removes the cached token so the next [SpotifyService.Authenticate] asks for consent again.
func (s *SpotifyService) Logout() error {
	s.client, s.user = nil, nil
	return s.cache.Clear()
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.auth.AuthURL(state)
}

// connect builds the API client for token. Refreshed tokens are written back to the cache, and request
// deadlines come from [SpotifyService.call] rather than the client.
func (s *SpotifyService) connect(ctx context.Context, token *oauth2.Token) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	httpClient := s.auth.Client(ctx, token)
	httpClient.Timeout = 0
	if transport, ok := httpClient.Transport.(*oauth2.Transport); ok {
		transport.Base = &statusTransport{base: transport.Base}
		transport.Source = newSavingTokenSource(transport.Source, s.cache, token, s.logger)
	}

	var opts []spotify.ClientOption
	if s.baseURL != "" {
		opts = append(opts, spotify.WithBaseURL(s.baseURL))
	}
	s.client = spotify.New(httpClient, opts...)
}

func (s *SpotifyService) currentUser(ctx context.Context) (*models.User, error) {
	var me *spotify.PrivateUser
	err := s.call(ctx, "current user", func(ctx context.Context) error {
		var err error
		me, err = s.client.CurrentUser(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.user = &models.User{ID: me.ID, DisplayName: me.DisplayName}
	return s.user, nil
}

func (s *SpotifyService) saveToken() {
	token, err := s.client.Token()
	if err != nil {
		s.logger.Warn("failed to read session token", "error", err)
		return
	}
	if err := s.cache.Save(token); err != nil {
		s.logger.Warn("failed to cache session token", "path", s.cache.Path(), "error", err)
	}
}

func (s *SpotifyService) ready() error {
	if s.client == nil || s.user == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}
	return nil
}

// CreatePlaylist creates a public playlist owned by the authenticated user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name, description string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: playlist name is empty", shared.ErrInvalidArgument)
	}
	if description == "" {
		description = DefaultDescription
	}

	var playlist *spotify.FullPlaylist
	err := s.call(ctx, "create playlist", func(ctx context.Context) error {
		var err error
		playlist, err = s.client.CreatePlaylistForUser(ctx, s.user.ID, name, description, true, false)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrCreatePlaylist, err)
	}

	s.logger.Debug("created playlist", "id", playlist.ID, "name", name)
	return string(playlist.ID), nil
}

// SearchQueries returns the queries [SpotifyService.SearchTrack] tries, strictest first.
func SearchQueries(title, artist string) []string {
	return []string{
		fmt.Sprintf("track:%s artist:%s", title, artist),
		fmt.Sprintf("%s %s", title, artist),
		"\"" + title + "\" \"" + artist + "\"",
	}
}

// SearchTrack returns the first result of the first query in [SearchQueries] that yields any results.
//
// A failed request stops the search and the remaining queries are not tried.
func (s *SpotifyService) SearchTrack(ctx context.Context, title, artist string) (*models.Track, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	for _, query := range SearchQueries(title, artist) {
		var result *spotify.SearchResult
		err := s.call(ctx, "search", func(ctx context.Context) error {
			var err error
			result, err = s.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(searchLimit))
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("%w: search failed for '%s' by '%s': %v", shared.ErrAPIRequest, title, artist, err)
		}

		if result.Tracks != nil && len(result.Tracks.Tracks) > 0 {
			s.logger.Debug("search matched", "query", query)
			return convertTrack(result.Tracks.Tracks[0]), nil
		}
	}

	return nil, fmt.Errorf("%w: '%s' by '%s'", shared.ErrTrackNotFound, title, artist)
}

// AddTrackToPlaylist appends one track to the playlist.
func (s *SpotifyService) AddTrackToPlaylist(ctx context.Context, playlistID, trackID string) error {
	if err := s.ready(); err != nil {
		return err
	}

	err := s.call(ctx, "add track", func(ctx context.Context) error {
		_, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), spotify.ID(trackID))
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: failed to add track %s: %v", shared.ErrAPIRequest, trackID, err)
	}
	return nil
}

// GetPlaylistInfo retrieves a playlist's metadata by ID.
func (s *SpotifyService) GetPlaylistInfo(ctx context.Context, playlistID string) (*models.PlaylistInfo, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var playlist *spotify.FullPlaylist
	err := s.call(ctx, "get playlist", func(ctx context.Context) error {
		var err error
		playlist, err = s.client.GetPlaylist(ctx, spotify.ID(playlistID))
		return err
	})
	if err != nil {
		if StatusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return &models.PlaylistInfo{
		ID:          string(playlist.ID),
		Name:        playlist.Name,
		Description: playlist.Description,
		Owner:       playlist.Owner.DisplayName,
		TrackCount:  int(playlist.Tracks.Total),
		Public:      playlist.IsPublic,
	}, nil
}

// GetUserPlaylists retrieves all playlists of the current user, following pagination.
func (s *SpotifyService) GetUserPlaylists(ctx context.Context) ([]models.PlaylistInfo, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var all []models.PlaylistInfo
	offset := 0

	for {
		var page *spotify.SimplePlaylistPage
		err := s.call(ctx, "list playlists", func(ctx context.Context) error {
			var err error
			page, err = s.client.CurrentUsersPlaylists(ctx, spotify.Limit(playlistPageSize), spotify.Offset(offset))
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}

		for _, p := range page.Playlists {
			all = append(all, models.PlaylistInfo{
				ID:          string(p.ID),
				Name:        p.Name,
				Description: p.Description,
				Owner:       p.Owner.DisplayName,
				TrackCount:  int(p.Tracks.Total),
				Public:      p.IsPublic,
			})
		}

		if page.Next == "" || len(page.Playlists) == 0 {
			break
		}
		offset += len(page.Playlists)
	}

	return all, nil
}

func convertTrack(t spotify.FullTrack) *models.Track {
	track := &models.Track{
		ID:    string(t.ID),
		Title: t.Name,
		Album: t.Album.Name,
	}
	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
	}
	return track
}

// StatusCode extracts the HTTP status from a Spotify API error, or 0 when err is not one.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status
	}
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	var apiErrPtr *spotify.Error
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Status
	}
	return 0
}
