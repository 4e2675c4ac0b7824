package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration.
//
// It is built once at startup from the embedded defaults, an optional TOML file and the environment, and then passed by value to
// the components that need it.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Source      SourceConfig      `toml:"source"`
	HTTP        HTTPConfig        `toml:"http"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials and the token cache location.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	TokenCache   string `toml:"token_cache"`
}

// SourceConfig contains settings for fetching source playlists.
type SourceConfig struct {
	UserAgent string         `toml:"user_agent"`
	Selectors SelectorConfig `toml:"selectors"`
}

// SelectorConfig holds the CSS selectors used to extract tracks from an HTML page.
//
// Title, Artist and Album are evaluated relative to each Row match. An empty Album selector leaves albums blank.
type SelectorConfig struct {
	Row    string `toml:"row"`
	Title  string `toml:"title"`
	Artist string `toml:"artist"`
	Album  string `toml:"album"`
}

// HTTPConfig contains timeouts, retry and rate limit settings. Durations are expressed in seconds.
type HTTPConfig struct {
	RequestTimeout           int     `toml:"request_timeout"`
	MaxRetries               int     `toml:"max_retries"`
	RetryDelay               float64 `toml:"retry_delay"`
	SpotifyRateLimitDelay    float64 `toml:"spotify_rate_limit_delay"`
	AppleMusicRateLimitDelay float64 `toml:"apple_music_rate_limit_delay"`
}

// Timeout returns the per-request timeout.
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.RequestTimeout) * time.Second
}

// Backoff returns the initial delay between retries.
func (h HTTPConfig) Backoff() time.Duration {
	return seconds(h.RetryDelay)
}

// SpotifyInterval returns the minimum spacing between Spotify API calls.
func (h HTTPConfig) SpotifyInterval() time.Duration {
	return seconds(h.SpotifyRateLimitDelay)
}

// AppleMusicInterval returns the minimum spacing between source page fetches.
func (h HTTPConfig) AppleMusicInterval() time.Duration {
	return seconds(h.AppleMusicRateLimitDelay)
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

// LoadConfig reads and parses a TOML configuration file from the specified path on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Load builds the process configuration: defaults, then the TOML file at path when it exists, then environment variables.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return config, nil
}

// ApplyEnv overrides configuration values with environment variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("SPOTIFY_CLIENT_ID", &c.Credentials.Spotify.ClientID)
	str("SPOTIFY_CLIENT_SECRET", &c.Credentials.Spotify.ClientSecret)
	str("SPOTIFY_REDIRECT_URI", &c.Credentials.Spotify.RedirectURI)
	str("SPOTIFY_TOKEN_CACHE", &c.Credentials.Spotify.TokenCache)
	str("APPLE_MUSIC_USER_AGENT", &c.Source.UserAgent)

	ints := []struct {
		key string
		dst *int
	}{
		{"REQUEST_TIMEOUT", &c.HTTP.RequestTimeout},
		{"MAX_RETRIES", &c.HTTP.MaxRetries},
	}
	for _, e := range ints {
		v, ok := lookup(e.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer, got %q", ErrInvalidConfig, e.key, v)
		}
		*e.dst = n
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"RETRY_DELAY", &c.HTTP.RetryDelay},
		{"SPOTIFY_RATE_LIMIT_DELAY", &c.HTTP.SpotifyRateLimitDelay},
		{"APPLE_MUSIC_RATE_LIMIT_DELAY", &c.HTTP.AppleMusicRateLimitDelay},
	}
	for _, e := range floats {
		v, ok := lookup(e.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %q", ErrInvalidConfig, e.key, v)
		}
		*e.dst = f
	}

	return nil
}

// Validate checks that the mandatory Spotify credentials are present.
func (c *Config) Validate() error {
	if c.Credentials.Spotify.ClientID == "" {
		return fmt.Errorf("%w: SPOTIFY_CLIENT_ID environment variable is not set", ErrMissingCredentials)
	}
	if c.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: SPOTIFY_CLIENT_SECRET environment variable is not set", ErrMissingCredentials)
	}
	return nil
}

// Describe renders the configuration for display with secrets masked.
func (c *Config) Describe() string {
	var b strings.Builder
	sp := c.Credentials.Spotify
	fmt.Fprintf(&b, "Configuration:\n")
	fmt.Fprintf(&b, "  Spotify Client ID: %s\n", MaskSecret(sp.ClientID))
	fmt.Fprintf(&b, "  Spotify Client Secret: %s\n", MaskSecret(sp.ClientSecret))
	fmt.Fprintf(&b, "  Spotify Redirect URI: %s\n", sp.RedirectURI)
	fmt.Fprintf(&b, "  Token Cache: %s\n", sp.TokenCache)
	fmt.Fprintf(&b, "  Request Timeout: %ds\n", c.HTTP.RequestTimeout)
	fmt.Fprintf(&b, "  Max Retries: %d\n", c.HTTP.MaxRetries)
	fmt.Fprintf(&b, "  Retry Delay: %gs\n", c.HTTP.RetryDelay)
	fmt.Fprintf(&b, "  Spotify Rate Limit Delay: %gs\n", c.HTTP.SpotifyRateLimitDelay)
	fmt.Fprintf(&b, "  Apple Music Rate Limit Delay: %gs\n", c.HTTP.AppleMusicRateLimitDelay)
	fmt.Fprintf(&b, "  Selectors: row=%q title=%q artist=%q album=%q\n",
		c.Source.Selectors.Row, c.Source.Selectors.Title, c.Source.Selectors.Artist, c.Source.Selectors.Album)
	return b.String()
}
