package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/shared"
)

func newTestImporter(t *testing.T) *Importer {
	t.Helper()
	config := shared.DefaultConfig()
	config.HTTP.AppleMusicRateLimitDelay = 0
	return NewImporter(ImporterOpts{
		Source: config.Source,
		HTTP:   config.HTTP,
		Logger: shared.NewLogger(io.Discard),
	})
}

func TestSample(t *testing.T) {
	imp := newTestImporter(t)

	t.Run("returns every built-in track without a limit", func(t *testing.T) {
		if got := imp.Sample(0); len(got) != 10 {
			t.Errorf("expected 10 tracks, got %d", len(got))
		}
	})

	t.Run("limit truncation", func(t *testing.T) {
		for _, limit := range []int{-1, 0, 1, 3, 9, 10, 11, 100} {
			got := imp.Sample(limit)
			want := len(samplePlaylist)
			if limit > 0 && limit < want {
				want = limit
			}
			if len(got) != want {
				t.Errorf("limit %d: expected %d tracks, got %d", limit, want, len(got))
			}
		}
	})

	t.Run("first three tracks in order", func(t *testing.T) {
		got := imp.Sample(3)
		want := []string{"Bohemian Rhapsody", "Hotel California", "Stairway to Heaven"}
		for i, title := range want {
			if got[i].Title != title {
				t.Errorf("track %d: expected %q, got %q", i, title, got[i].Title)
			}
		}
	})

	t.Run("returns a copy", func(t *testing.T) {
		got := imp.Sample(1)
		got[0].Title = "changed"
		if samplePlaylist[0].Title != "Bohemian Rhapsody" {
			t.Error("expected sample playlist to be unchanged")
		}
	})
}

func TestParseText(t *testing.T) {
	imp := newTestImporter(t)

	t.Run("JSON round trip", func(t *testing.T) {
		cases := []models.Track{
			{Title: "Song One", Artist: "Artist One", Album: "Album One"},
			{Title: "Déjà Vu", Artist: "Crosby, Stills & Nash", Album: ""},
			{Title: "\"Quoted\"", Artist: "A/B", Album: "x, y"},
		}

		data, err := shared.MarshalJSON(cases, false)
		if err != nil {
			t.Fatalf("failed to marshal: %v", err)
		}

		got, err := imp.ParseText(string(data))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != len(cases) {
			t.Fatalf("expected %d tracks, got %d", len(cases), len(got))
		}
		for i := range cases {
			if got[i] != cases[i] {
				t.Errorf("track %d: expected %+v, got %+v", i, cases[i], got[i])
			}
		}
	})

	t.Run("JSON drops records without title or artist", func(t *testing.T) {
		data := `[{"title":"A","artist":"B"},{"title":"only title"},{"artist":"only artist"},{"title":"","artist":"x"}]`
		got, err := imp.ParseText(data)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 1 || got[0].Title != "A" || got[0].Album != "" {
			t.Errorf("expected single record A/B, got %+v", got)
		}
	})

	t.Run("falls back to CSV", func(t *testing.T) {
		data := "Title,Artist,Album\nHey Jude,The Beatles,1967-1970\n\"Sweet Child O' Mine\",Guns N' Roses,\"Appetite, for Destruction\"\n"
		got, err := imp.ParseText(data)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(got))
		}
		if got[1].Album != "Appetite, for Destruction" {
			t.Errorf("expected quoted album, got %q", got[1].Album)
		}
	})

	t.Run("CSV without album column", func(t *testing.T) {
		got, err := imp.ParseText("artist,title\nQueen,Bohemian Rhapsody\n")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := models.Track{Title: "Bohemian Rhapsody", Artist: "Queen"}
		if len(got) != 1 || got[0] != want {
			t.Errorf("expected %+v, got %+v", want, got)
		}
	})

	t.Run("CSV short rows are tolerated", func(t *testing.T) {
		got, err := imp.ParseText("title,artist,album\nImagine,John Lennon\nLonely\n")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 1 || got[0].Title != "Imagine" {
			t.Errorf("expected one valid row, got %+v", got)
		}
	})

	t.Run("neither JSON nor CSV", func(t *testing.T) {
		got, err := imp.ParseText("not json, not csv{{{")
		if !errors.Is(err, shared.ErrMalformedInput) {
			t.Errorf("expected ErrMalformedInput, got %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty list, got %+v", got)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if _, err := imp.ParseText(""); !errors.Is(err, shared.ErrMalformedInput) {
			t.Errorf("expected ErrMalformedInput, got %v", err)
		}
	})
}

func TestFromFile(t *testing.T) {
	imp := newTestImporter(t)
	dir := t.TempDir()

	t.Run("reads JSON file", func(t *testing.T) {
		path := filepath.Join(dir, "playlist.json")
		if err := os.WriteFile(path, []byte(`[{"title":"Purple Rain","artist":"Prince","album":"Purple Rain"}]`), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		got, err := imp.FromFile(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 1 || got[0].Artist != "Prince" {
			t.Errorf("unexpected tracks: %+v", got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := imp.FromFile(filepath.Join(dir, "missing.csv"))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

const playlistPage = `<html><body>
<div class="song-row"><div class="song-title"> Hotel California </div><div class="song-artist">Eagles</div></div>
<div class="song-row"><div class="song-title">No Artist</div></div>
<div class="song-row"><div class="song-title">Imagine</div><div class="song-artist">John   Lennon</div></div>
</body></html>`

func TestFromURL(t *testing.T) {
	imp := newTestImporter(t)

	t.Run("parses rows with default selectors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "Mozilla/5.0") {
				t.Errorf("expected configured user agent, got %q", ua)
			}
			fmt.Fprint(w, playlistPage)
		}))
		defer server.Close()

		got, err := imp.FromURL(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := []models.Track{
			{Title: "Hotel California", Artist: "Eagles"},
			{Title: "Imagine", Artist: "John Lennon"},
		}
		if len(got) != len(want) {
			t.Fatalf("expected %d tracks, got %+v", len(want), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("track %d: expected %+v, got %+v", i, want[i], got[i])
			}
		}
	})

	t.Run("non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		got, err := imp.FromURL(context.Background(), server.URL)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected no tracks, got %+v", got)
		}
	})

	t.Run("unreachable host", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		if _, err := imp.FromURL(context.Background(), url); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestParseHTML(t *testing.T) {
	t.Run("custom selectors with album", func(t *testing.T) {
		page := `<ul>
<li class="track"><span class="name">Billie Jean</span><span class="by">Michael Jackson</span><em>Thriller</em></li>
<li class="track"><span class="name">Hey Jude</span><span class="by">The Beatles</span></li>
</ul>`
		sel := shared.SelectorConfig{Row: "li.track", Title: ".name", Artist: ".by", Album: "em"}

		got, err := ParseHTML(strings.NewReader(page), sel)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(got))
		}
		if got[0].Album != "Thriller" || got[1].Album != "" {
			t.Errorf("unexpected albums: %+v", got)
		}
	})

	t.Run("missing selectors", func(t *testing.T) {
		_, err := ParseHTML(strings.NewReader("<p></p>"), shared.SelectorConfig{Row: "div"})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("no matching rows", func(t *testing.T) {
		got, err := ParseHTML(strings.NewReader("<p>nothing</p>"), shared.DefaultConfig().Source.Selectors)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected no tracks, got %+v", got)
		}
	})
}

func TestImport(t *testing.T) {
	imp := newTestImporter(t)
	ctx := context.Background()

	t.Run("mode resolution", func(t *testing.T) {
		cases := []struct {
			req  Request
			want Mode
		}{
			{Request{}, ModeSample},
			{Request{URL: "http://example.com"}, ModeURL},
			{Request{File: "a.json", URL: "http://example.com"}, ModeFile},
		}
		for _, c := range cases {
			if got := c.req.Mode(); got != c.want {
				t.Errorf("expected %s, got %s", c.want, got)
			}
		}
	})

	t.Run("sample mode with limit", func(t *testing.T) {
		got, err := imp.Import(ctx, Request{Username: "user", PlaylistName: "Mix", Limit: 3})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 3 || got[2].Title != "Stairway to Heaven" {
			t.Errorf("unexpected tracks: %+v", got)
		}
	})

	t.Run("file mode applies limit", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "list.csv")
		content := "title,artist\nA,1\nB,2\nC,3\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		got, err := imp.Import(ctx, Request{File: path, Limit: 2})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 2 || got[1].Title != "B" {
			t.Errorf("unexpected tracks: %+v", got)
		}
	})

	t.Run("file mode error is wrapped", func(t *testing.T) {
		_, err := imp.Import(ctx, Request{File: filepath.Join(t.TempDir(), "nope.json")})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
