package source

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/shared"
	"golang.org/x/time/rate"
)

// Mode identifies where an [Importer] reads tracks from.
type Mode string

const (
	ModeSample Mode = "sample"
	ModeFile   Mode = "file"
	ModeURL    Mode = "url"
)

// Request describes the source playlist to import.
type Request struct {
	Username     string // Source account, used for display only
	PlaylistName string // Source playlist name
	File         string // JSON or CSV export to read
	URL          string // HTML page to parse
	Limit        int    // Maximum tracks to return, 0 for all
}

// Mode resolves the import mode: a file takes precedence over a URL, and the sample list is used when neither is set.
func (r Request) Mode() Mode {
	switch {
	case r.File != "":
		return ModeFile
	case r.URL != "":
		return ModeURL
	default:
		return ModeSample
	}
}

// Importer reads source playlists.
type Importer struct {
	client    *http.Client
	logger    *log.Logger
	userAgent string
	selectors shared.SelectorConfig
	limiter   *rate.Limiter
}

// ImporterOpts contains the dependencies of an [Importer].
type ImporterOpts struct {
	Source shared.SourceConfig
	HTTP   shared.HTTPConfig
	Client *http.Client
	Logger *log.Logger
}

// NewImporter creates an [Importer]. A nil client gets the configured request timeout, a nil logger writes to stderr.
func NewImporter(opts ImporterOpts) *Importer {
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.HTTP.Timeout()}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Importer{
		client:    opts.Client,
		logger:    opts.Logger,
		userAgent: opts.Source.UserAgent,
		selectors: opts.Source.Selectors,
		limiter:   rate.NewLimiter(rate.Every(opts.HTTP.AppleMusicInterval()), 1),
	}
}

// Import reads the playlist described by req and applies its limit.
func (i *Importer) Import(ctx context.Context, req Request) ([]models.Track, error) {
	mode := req.Mode()
	logger := shared.WithLogger(i.logger, "mode", mode, "playlist", req.PlaylistName)

	var tracks []models.Track
	var err error

	switch mode {
	case ModeFile:
		logger.Debug("reading playlist file", "path", req.File)
		tracks, err = i.FromFile(req.File)
	case ModeURL:
		logger.Debug("fetching playlist page", "url", req.URL)
		tracks, err = i.FromURL(ctx, req.URL)
	default:
		logger.Warn("Apple Music playlists cannot be read directly, using built-in sample data", "user", req.Username)
		tracks = i.Sample(0)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to import %s playlist: %w", mode, err)
	}

	tracks = Truncate(tracks, req.Limit)
	logger.Debug("imported tracks", "count", len(tracks), "limit", req.Limit)
	return tracks, nil
}
