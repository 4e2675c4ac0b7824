package shared

import (
	"strings"
	"testing"
)

func TestNormalizeTrackKey(t *testing.T) {
	tc := []struct {
		name   string
		title  string
		artist string
		want   string
	}{
		{
			name:   "basic normalization",
			title:  "Song Title",
			artist: "Artist Name",
			want:   "song title|artist name",
		},
		{
			name:   "extra whitespace",
			title:  "  Song   Title  ",
			artist: "  Artist   Name  ",
			want:   "song title|artist name",
		},
		{
			name:   "mixed case",
			title:  "SoNg TiTlE",
			artist: "ArTiSt NaMe",
			want:   "song title|artist name",
		},
		{
			name:   "decomposed accents",
			title:  "Cafe\u0301",
			artist: "Beyonce\u0301",
			want:   "caf\u00e9|beyonc\u00e9",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTrackKey(tt.title, tt.artist)
			if got != tt.want {
				t.Errorf("NormalizeTrackKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	t.Run("GenerateState", func(t *testing.T) {
		a, err := GenerateState()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		b, _ := GenerateState()
		if len(a) != 32 {
			t.Errorf("expected 32 hex chars, got %d", len(a))
		}
		if a == b {
			t.Error("expected distinct state tokens")
		}
	})

	t.Run("GenerateID", func(t *testing.T) {
		if id := GenerateID(); len(id) != 36 {
			t.Errorf("expected uuid string, got %q", id)
		}
	})

	t.Run("MaskSecret", func(t *testing.T) {
		if got := MaskSecret(""); got != "Not set" {
			t.Errorf("expected 'Not set', got %q", got)
		}
		if got := MaskSecret("secret"); got != "********" {
			t.Errorf("expected mask, got %q", got)
		}
	})

	t.Run("MarshalJSON", func(t *testing.T) {
		data, err := MarshalJSON(map[string]int{"a": 1}, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(string(data), "\n  \"a\": 1") {
			t.Errorf("expected indented JSON, got %s", data)
		}
	})
}
