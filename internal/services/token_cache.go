package services

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

// TokenCache persists the OAuth session token between runs. An empty path disables caching.
type TokenCache struct {
	path string
}

type cachedToken struct {
	AccessToken  string    `toml:"access_token"`
	TokenType    string    `toml:"token_type"`
	RefreshToken string    `toml:"refresh_token"`
	Expiry       time.Time `toml:"expiry"`
}

// NewTokenCache creates a [TokenCache] backed by the file at path.
func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path}
}

// Path returns the cache file location.
func (c *TokenCache) Path() string {
	return c.path
}

// Load returns the cached token, or nil when nothing is cached.
func (c *TokenCache) Load() (*oauth2.Token, error) {
	if c.path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token cache: %w", err)
	}

	var cached cachedToken
	if err := toml.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("failed to parse token cache: %w", err)
	}
	if cached.AccessToken == "" && cached.RefreshToken == "" {
		return nil, nil
	}

	return &oauth2.Token{
		AccessToken:  cached.AccessToken,
		TokenType:    cached.TokenType,
		RefreshToken: cached.RefreshToken,
		Expiry:       cached.Expiry,
	}, nil
}

// Save writes the token to the cache file, readable only by the current user.
func (c *TokenCache) Save(token *oauth2.Token) error {
	if c.path == "" || token == nil {
		return nil
	}

	var buf bytes.Buffer
	err := toml.NewEncoder(&buf).Encode(cachedToken{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	})
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.WriteFile(c.path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	return nil
}

// Clear deletes the cache file. A missing file is not an error.
func (c *TokenCache) Clear() error {
	if c.path == "" {
		return nil
	}
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token cache: %w", err)
	}
	return nil
}

// savingTokenSource writes every new token it hands out to the cache, so a refresh mid-run survives the process.
type savingTokenSource struct {
	mu     sync.Mutex
	src    oauth2.TokenSource
	cache  *TokenCache
	last   string
	logger *log.Logger
}

// newSavingTokenSource wraps src. The current token is assumed to be cached already.
func newSavingTokenSource(src oauth2.TokenSource, cache *TokenCache, current *oauth2.Token, logger *log.Logger) *savingTokenSource {
	ts := &savingTokenSource{src: src, cache: cache, logger: logger}
	if current != nil {
		ts.last = current.AccessToken
	}
	return ts
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if token.AccessToken == s.last {
		return token, nil
	}

	s.last = token.AccessToken
	if err := s.cache.Save(token); err != nil {
		s.logger.Warn("failed to cache refreshed token", "path", s.cache.Path(), "error", err)
	} else {
		s.logger.Debug("cached refreshed token", "path", s.cache.Path())
	}
	return token, nil
}
