// package shared defines shared helpers
package shared

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

// GenerateState returns a random hex token for the OAuth state parameter.
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NormalizeText trims surrounding whitespace and converts to Unicode NFC.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// CollapseSpace replaces every run of whitespace with a single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeTrackKey builds a case-insensitive comparison key from title and artist.
func NormalizeTrackKey(title, artist string) string {
	key := func(s string) string { return strings.ToLower(NormalizeText(CollapseSpace(s))) }
	return key(title) + "|" + key(artist)
}

// MarshalJSON encodes v, indented when pretty is set.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// MaskSecret hides a credential for display.
func MaskSecret(s string) string {
	if s == "" {
		return "Not set"
	}
	return strings.Repeat("*", 8)
}
