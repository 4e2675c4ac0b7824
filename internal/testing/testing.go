// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/shared"
	"github.com/desertthunder/amx/internal/source"
)

// MockDestination is a test double for [services.Destination].
//
// Matches maps "title|artist" to the returned track; anything missing is reported as not found.
type MockDestination struct {
	mu sync.Mutex

	User       *models.User
	AuthErr    error
	CreateErr  error
	SearchErrs map[string]error // keyed like Matches
	AddErrs    map[string]error // keyed by destination track ID
	Matches    map[string]models.Track
	Playlists  []models.PlaylistInfo
	ListErr    error
	InfoErr    error
	OnSearch   func(title, artist string) // Called before each search
	Created    []string                   // Names of created playlists
	Descs      []string
	Searches   []string // "title|artist" in call order
	Added      []string // Track IDs in call order
	AuthCalls  int
	PlaylistID string
}

// NewMockDestination returns a destination that authenticates as "tester" and matches the given tracks.
func NewMockDestination(matches ...models.Track) *MockDestination {
	m := &MockDestination{
		User:       &models.User{ID: "tester", DisplayName: "Tester"},
		Matches:    map[string]models.Track{},
		SearchErrs: map[string]error{},
		AddErrs:    map[string]error{},
		PlaylistID: "playlist-1",
	}
	for i, t := range matches {
		if t.ID == "" {
			t.ID = fmt.Sprintf("track-%d", i+1)
		}
		m.Matches[Key(t.Title, t.Artist)] = t
	}
	return m
}

// Key builds the lookup key used by [MockDestination].
func Key(title, artist string) string {
	return title + "|" + artist
}

func (m *MockDestination) Name() string { return "mock" }

func (m *MockDestination) Authenticate(ctx context.Context) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AuthCalls++
	if m.AuthErr != nil {
		return nil, m.AuthErr
	}
	return m.User, nil
}

func (m *MockDestination) CreatePlaylist(ctx context.Context, name, description string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	m.Created = append(m.Created, name)
	m.Descs = append(m.Descs, description)
	return m.PlaylistID, nil
}

func (m *MockDestination) SearchTrack(ctx context.Context, title, artist string) (*models.Track, error) {
	if m.OnSearch != nil {
		m.OnSearch(title, artist)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := Key(title, artist)
	m.Searches = append(m.Searches, key)
	if err := m.SearchErrs[key]; err != nil {
		return nil, err
	}
	if t, ok := m.Matches[key]; ok {
		return &t, nil
	}
	return nil, fmt.Errorf("%w: '%s' by '%s'", shared.ErrTrackNotFound, title, artist)
}

func (m *MockDestination) AddTrackToPlaylist(ctx context.Context, playlistID, trackID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.AddErrs[trackID]; err != nil {
		return err
	}
	m.Added = append(m.Added, trackID)
	return nil
}

func (m *MockDestination) GetPlaylistInfo(ctx context.Context, playlistID string) (*models.PlaylistInfo, error) {
	if m.InfoErr != nil {
		return nil, m.InfoErr
	}
	for _, p := range m.Playlists {
		if p.ID == playlistID {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
}

func (m *MockDestination) GetUserPlaylists(ctx context.Context) ([]models.PlaylistInfo, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Playlists, nil
}

// MockSource is a test double for the playlist importer.
type MockSource struct {
	Tracks   []models.Track
	Err      error
	Requests []source.Request
}

func (m *MockSource) Import(ctx context.Context, req source.Request) ([]models.Track, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return source.Truncate(m.Tracks, req.Limit), nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
