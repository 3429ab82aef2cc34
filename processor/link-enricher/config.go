package linkenricher

import (
	"fmt"
	"time"
)

// DefaultUserAgent identifies as a desktop browser. Some sites only serve
// their metadata tags to browsers.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36"

const (
	defaultFetchTimeout   = 30 * time.Second
	defaultMaxRedirects   = 3
	defaultMaxContentSize = 10 * 1024 * 1024 // 10MB
)

// Config holds configuration for link enrichment.
type Config struct {
	// FetchTimeout is the maximum time for fetching one page, redirects included.
	FetchTimeout string `json:"fetch_timeout" yaml:"fetch_timeout"`

	// MaxRedirects is the number of redirect hops followed before failing.
	MaxRedirects int `json:"max_redirects" yaml:"max_redirects"`

	// MaxContentSize is the maximum response body size in bytes.
	MaxContentSize int64 `json:"max_content_size" yaml:"max_content_size"`

	// UserAgent is the User-Agent header for HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// BlockPrivateNetworks refuses links and redirects that target loopback,
	// private or link-local addresses.
	BlockPrivateNetworks bool `json:"block_private_networks" yaml:"block_private_networks"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.FetchTimeout != "" {
		d, err := time.ParseDuration(c.FetchTimeout)
		if err != nil {
			return fmt.Errorf("invalid fetch_timeout format: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("fetch_timeout must be positive")
		}
	}
	if c.MaxRedirects < 0 {
		return fmt.Errorf("max_redirects must be non-negative")
	}
	if c.MaxContentSize < 0 {
		return fmt.Errorf("max_content_size must be non-negative")
	}
	return nil
}

// parseDurationOrDefault parses a duration string and returns the default if empty or invalid.
func parseDurationOrDefault(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// GetFetchTimeout returns the fetch timeout as a duration.
func (c *Config) GetFetchTimeout() time.Duration {
	return parseDurationOrDefault(c.FetchTimeout, defaultFetchTimeout)
}

// GetMaxRedirects returns the redirect limit with default.
func (c *Config) GetMaxRedirects() int {
	if c.MaxRedirects <= 0 {
		return defaultMaxRedirects
	}
	return c.MaxRedirects
}

// GetMaxContentSize returns the max content size with default.
func (c *Config) GetMaxContentSize() int64 {
	if c.MaxContentSize <= 0 {
		return defaultMaxContentSize
	}
	return c.MaxContentSize
}

// GetUserAgent returns the user agent with default.
func (c *Config) GetUserAgent() string {
	if c.UserAgent == "" {
		return DefaultUserAgent
	}
	return c.UserAgent
}

// DefaultConfig returns default configuration for link enrichment.
func DefaultConfig() Config {
	return Config{
		FetchTimeout:   "30s",
		MaxRedirects:   defaultMaxRedirects,
		MaxContentSize: defaultMaxContentSize,
		UserAgent:      DefaultUserAgent,
	}
}
