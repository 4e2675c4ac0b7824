// package formatter renders track lists and transfer reports as JSON, CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/shared"
)

// Format is an output encoding.
type Format string

const (
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "text"
)

// ParseFormat resolves a format name. "md" and "txt" are accepted as aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "text", "txt", "":
		return Text, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want json, csv, markdown or text)", shared.ErrInvalidArgument, name)
	}
}

// FormatFromPath picks the format from a file extension, falling back to text.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON
	case ".csv":
		return CSV
	case ".md", ".markdown":
		return Markdown
	default:
		return Text
	}
}

// EncodeTracks renders a source track list. JSON and CSV output can be read back by the file importer.
func EncodeTracks(format Format, name string, tracks []models.Track) ([]byte, error) {
	switch format {
	case JSON:
		if tracks == nil {
			tracks = []models.Track{}
		}
		return shared.MarshalJSON(tracks, true)
	case CSV:
		return tracksToCSV(tracks)
	case Markdown:
		return tracksToMarkdown(name, tracks), nil
	case Text:
		return tracksToText(name, tracks), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

func tracksToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"title", "artist", "album"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, track := range tracks {
		if err := writer.Write([]string{track.Title, track.Artist, track.Album}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func tracksToMarkdown(name string, tracks []models.Track) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", name)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(tracks))
	buf.WriteString("## Tracks\n\n")
	for i, track := range tracks {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s\n", i+1, track.Artist, track.Title, albumPart)
	}
	return buf.Bytes()
}

func tracksToText(name string, tracks []models.Track) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", name)
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(tracks))
	for i, track := range tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, track.Artist, track.Title)
	}
	return buf.Bytes()
}

// Report is the serializable form of a [models.TransferOutcome].
type Report struct {
	PlaylistID   string       `json:"playlist_id,omitempty"`
	PlaylistName string       `json:"playlist_name"`
	Transferred  int          `json:"transferred"`
	NotFound     int          `json:"not_found"`
	Total        int          `json:"total"`
	SuccessRate  string       `json:"success_rate"`
	Items        []ReportItem `json:"items"`
}

// ReportItem is one row of a [Report].
type ReportItem struct {
	Index  int           `json:"index"`
	Track  models.Track  `json:"track"`
	Status string        `json:"status"`
	Match  *models.Track `json:"match,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// NewReport converts an outcome into a [Report].
func NewReport(outcome *models.TransferOutcome) Report {
	report := Report{
		PlaylistID:   outcome.PlaylistID,
		PlaylistName: outcome.PlaylistName,
		Transferred:  outcome.Transferred,
		NotFound:     outcome.NotFound,
		Total:        outcome.Total,
		SuccessRate:  outcome.SuccessRateString(),
		Items:        make([]ReportItem, 0, len(outcome.Items)),
	}
	for _, item := range outcome.Items {
		row := ReportItem{Index: item.Index, Track: item.Track, Status: string(item.Status), Match: item.Match}
		if item.Err != nil {
			row.Error = item.Err.Error()
		}
		report.Items = append(report.Items, row)
	}
	return report
}

// EncodeReport renders a transfer outcome.
func EncodeReport(format Format, outcome *models.TransferOutcome) ([]byte, error) {
	report := NewReport(outcome)
	switch format {
	case JSON:
		return shared.MarshalJSON(report, true)
	case CSV:
		return reportToCSV(report)
	case Markdown:
		return reportToMarkdown(report), nil
	case Text:
		return reportToText(report), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

func reportToCSV(report Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"index", "title", "artist", "album", "status", "match_id", "match_title", "match_artist", "error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range report.Items {
		var matchID, matchTitle, matchArtist string
		if item.Match != nil {
			matchID, matchTitle, matchArtist = item.Match.ID, item.Match.Title, item.Match.Artist
		}
		record := []string{
			strconv.Itoa(item.Index),
			item.Track.Title,
			item.Track.Artist,
			item.Track.Album,
			item.Status,
			matchID,
			matchTitle,
			matchArtist,
			item.Error,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func reportToMarkdown(report Report) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Transfer report: %s\n\n", report.PlaylistName)
	if report.PlaylistID != "" {
		fmt.Fprintf(&buf, "**Playlist ID**: %s\n", report.PlaylistID)
	}
	fmt.Fprintf(&buf, "**Transferred**: %d\n", report.Transferred)
	fmt.Fprintf(&buf, "**Not found**: %d\n", report.NotFound)
	fmt.Fprintf(&buf, "**Total**: %d\n", report.Total)
	fmt.Fprintf(&buf, "**Success rate**: %s\n\n", report.SuccessRate)

	buf.WriteString("## Tracks\n\n")
	buf.WriteString("| # | Song | Status | Match |\n")
	buf.WriteString("| --- | --- | --- | --- |\n")
	for _, item := range report.Items {
		match := ""
		if item.Match != nil {
			match = escapeCell(item.Match.String())
		}
		song := escapeCell(fmt.Sprintf("%s - %s", item.Track.Title, item.Track.Artist))
		fmt.Fprintf(&buf, "| %d | %s | %s | %s |\n", item.Index, song, item.Status, match)
	}
	return buf.Bytes()
}

func reportToText(report Report) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", report.PlaylistName)
	fmt.Fprintf(&buf, "Transferred: %d\n", report.Transferred)
	fmt.Fprintf(&buf, "Not found: %d\n", report.NotFound)
	fmt.Fprintf(&buf, "Total: %d\n", report.Total)
	fmt.Fprintf(&buf, "Success rate: %s\n\n", report.SuccessRate)

	for _, item := range report.Items {
		fmt.Fprintf(&buf, "%d. [%s] %s - %s", item.Index, item.Status, item.Track.Title, item.Track.Artist)
		if item.Error != "" {
			fmt.Fprintf(&buf, " (%s)", item.Error)
		}
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// WriteReport writes the outcome to path in the format implied by its extension.
func WriteReport(path string, outcome *models.TransferOutcome) (Format, error) {
	format := FormatFromPath(path)
	data, err := EncodeReport(format, outcome)
	if err != nil {
		return format, fmt.Errorf("failed to generate report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return format, fmt.Errorf("failed to write report file: %w", err)
	}
	return format, nil
}
