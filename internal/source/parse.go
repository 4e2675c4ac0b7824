package source

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/shared"
)

var errMissingColumns = errors.New("header must contain title and artist columns")

// FromFile reads a playlist export from path and parses it with [Importer.ParseText].
func (i *Importer) FromFile(path string) ([]models.Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read playlist file: %v", shared.ErrInvalidInput, err)
	}
	return i.ParseText(string(data))
}

// ParseText interprets data as a JSON array of objects, falling back to CSV with a header row.
//
// Records without a non-empty title and artist are dropped. When neither format parses, the result is empty and the error wraps
// [shared.ErrMalformedInput].
func (i *Importer) ParseText(data string) ([]models.Track, error) {
	tracks, jsonErr := parseJSON(data)
	if jsonErr == nil {
		return tracks, nil
	}
	i.logger.Debug("playlist data is not JSON, trying CSV", "error", jsonErr)

	tracks, csvErr := parseCSV(data)
	if csvErr == nil {
		return tracks, nil
	}

	return []models.Track{}, fmt.Errorf("%w: not JSON (%v) and not CSV (%v)", shared.ErrMalformedInput, jsonErr, csvErr)
}

func parseJSON(data string) ([]models.Track, error) {
	var items []map[string]any
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, err
	}

	tracks := []models.Track{}
	for _, item := range items {
		if track, ok := newTrack(stringValue(item["title"]), stringValue(item["artist"]), stringValue(item["album"])); ok {
			tracks = append(tracks, track)
		}
	}
	return tracks, nil
}

func parseCSV(data string) ([]models.Track, error) {
	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(data, "\ufeff")))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := map[string]int{}
	for idx, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, seen := columns[key]; !seen {
			columns[key] = idx
		}
	}

	titleIdx, hasTitle := columns["title"]
	artistIdx, hasArtist := columns["artist"]
	if !hasTitle || !hasArtist {
		return nil, errMissingColumns
	}
	albumIdx, hasAlbum := columns["album"]

	field := func(row []string, idx int) string {
		if idx < len(row) {
			return row[idx]
		}
		return ""
	}

	tracks := []models.Track{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		album := ""
		if hasAlbum {
			album = field(row, albumIdx)
		}
		if track, ok := newTrack(field(row, titleIdx), field(row, artistIdx), album); ok {
			tracks = append(tracks, track)
		}
	}
	return tracks, nil
}

func newTrack(title, artist, album string) (models.Track, bool) {
	track := models.Track{
		Title:  shared.NormalizeText(title),
		Artist: shared.NormalizeText(artist),
		Album:  shared.NormalizeText(album),
	}
	return track, track.Validate() == nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
