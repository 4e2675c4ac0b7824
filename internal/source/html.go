package source

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/shared"
)

// FromURL fetches an HTML page and extracts tracks with the configured selectors. The request is not retried.
func (i *Importer) FromURL(ctx context.Context, pageURL string) ([]models.Track, error) {
	if err := i.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid playlist URL: %v", shared.ErrInvalidInput, err)
	}
	if i.userAgent != "" {
		req.Header.Set("User-Agent", i.userAgent)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d fetching %s", shared.ErrAPIRequest, resp.StatusCode, pageURL)
	}

	return ParseHTML(resp.Body, i.selectors)
}

// ParseHTML extracts one track per element matching sel.Row. Title, artist and album are read from the first match of their
// selectors inside the row; rows missing a title or artist are skipped.
func ParseHTML(r io.Reader, sel shared.SelectorConfig) ([]models.Track, error) {
	if sel.Row == "" || sel.Title == "" || sel.Artist == "" {
		return nil, fmt.Errorf("%w: row, title and artist selectors are required", shared.ErrInvalidInput)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse HTML: %v", shared.ErrMalformedInput, err)
	}

	tracks := []models.Track{}
	doc.Find(sel.Row).Each(func(_ int, row *goquery.Selection) {
		title := row.Find(sel.Title).First()
		artist := row.Find(sel.Artist).First()
		if title.Length() == 0 || artist.Length() == 0 {
			return
		}

		album := ""
		if sel.Album != "" {
			album = shared.CollapseSpace(row.Find(sel.Album).First().Text())
		}

		if track, ok := newTrack(shared.CollapseSpace(title.Text()), shared.CollapseSpace(artist.Text()), album); ok {
			tracks = append(tracks, track)
		}
	})

	return tracks, nil
}
