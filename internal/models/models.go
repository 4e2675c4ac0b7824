package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/amx/internal/shared"
)

// Track is a single song record. ID is empty for source records and holds the destination catalog ID for matches.
type Track struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
}

// Validate reports whether the track can be searched for: title and artist must be non-empty.
func (t Track) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: track title is empty", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(t.Artist) == "" {
		return fmt.Errorf("%w: track artist is empty", shared.ErrInvalidInput)
	}
	return nil
}

// String renders the track as "Title - Artist".
func (t Track) String() string {
	return fmt.Sprintf("%s - %s", t.Title, t.Artist)
}

// User is the authenticated destination account.
type User struct {
	ID          string
	DisplayName string
}

// PlaylistInfo holds destination playlist metadata.
type PlaylistInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Owner       string `json:"owner,omitempty"`
	TrackCount  int    `json:"tracks"`
	Public      bool   `json:"public"`
}

// ItemStatus is the per-track outcome of a transfer.
type ItemStatus string

const (
	StatusAdded        ItemStatus = "added"
	StatusMatched      ItemStatus = "matched" // found during a dry run, nothing was added
	StatusNotFound     ItemStatus = "not_found"
	StatusSearchFailed ItemStatus = "search_failed"
	StatusAddFailed    ItemStatus = "add_failed"
	StatusSkipped      ItemStatus = "skipped"
)

// Found reports whether the track has a destination match that was added, or would be in a dry run.
func (s ItemStatus) Found() bool {
	return s == StatusAdded || s == StatusMatched
}

// ItemResult records what happened to one source track.
type ItemResult struct {
	Index  int        // 1-based position in the source list
	Track  Track      // Source record
	Match  *Track     // Destination match (nil if none)
	Status ItemStatus // Outcome
	Err    error      // Cause for failed statuses
}

// TransferOutcome holds the counters for one transfer run.
//
// Every item that was not added counts toward NotFound, so Transferred + NotFound == Total.
type TransferOutcome struct {
	PlaylistID   string
	PlaylistName string
	Transferred  int
	NotFound     int
	Total        int
	Items        []ItemResult
}

// Record appends an item result and updates the counters.
func (o *TransferOutcome) Record(item ItemResult) {
	o.Items = append(o.Items, item)
	o.Total++
	if item.Status.Found() {
		o.Transferred++
	} else {
		o.NotFound++
	}
}

// SuccessRate returns transferred / total * 100, or 0 for an empty run.
func (o *TransferOutcome) SuccessRate() float64 {
	if o.Total == 0 {
		return 0
	}
	return float64(o.Transferred) / float64(o.Total) * 100
}

// SuccessRateString formats [TransferOutcome.SuccessRate] with one decimal place, e.g. "70.0%".
func (o *TransferOutcome) SuccessRateString() string {
	return fmt.Sprintf("%.1f%%", o.SuccessRate())
}

// Failed returns the items that were not added.
func (o *TransferOutcome) Failed() []ItemResult {
	var failed []ItemResult
	for _, item := range o.Items {
		if !item.Status.Found() {
			failed = append(failed, item)
		}
	}
	return failed
}
