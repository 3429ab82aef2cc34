// Package config provides configuration loading and management for semtimeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	timelinedocuments "github.com/c360studio/semtimeline/output/timeline-documents"
	linkenricher "github.com/c360studio/semtimeline/processor/link-enricher"
	"gopkg.in/yaml.v3"
)

// Config represents the complete semtimeline configuration
type Config struct {
	Timeline TimelineConfig      `yaml:"timeline"`
	Fetch    linkenricher.Config `yaml:"fetch"`
	Output   OutputConfig        `yaml:"output"`
	NATS     NATSConfig          `yaml:"nats"`
	Metrics  MetricsConfig       `yaml:"metrics"`
	Watch    WatchConfig         `yaml:"watch"`
}

// TimelineConfig configures where events come from and how they are built
type TimelineConfig struct {
	// Source is a CSV file path or doublestar glob (e.g. "data/**/*.csv")
	Source string `yaml:"source"`
	// Title is the document title (default: "Timeline")
	Title string `yaml:"title"`
	// NoHeader treats the first row of each file as data
	NoHeader bool `yaml:"no_header"`
	// Concurrency bounds simultaneous reference fetches (default: 4)
	Concurrency int `yaml:"concurrency"`
	// Offline classifies references without fetching them
	Offline bool `yaml:"offline"`
}

// OutputConfig configures the built document
type OutputConfig struct {
	// Path is the output file (empty = stdout)
	Path string `yaml:"path"`
	// Format is json or yaml
	Format string `yaml:"format"`
}

// NATSConfig configures publishing of built documents
type NATSConfig struct {
	// URL is the NATS server URL (empty = publishing disabled)
	URL string `yaml:"url"`
	// Subject receives one message per build
	Subject string `yaml:"subject"`
	// Timeout bounds connecting and flushing
	Timeout time.Duration `yaml:"timeout"`
}

// MetricsConfig configures the Prometheus endpoint served in watch mode
type MetricsConfig struct {
	// Addr is the listen address (empty = disabled, e.g. ":9090")
	Addr string `yaml:"addr"`
}

// WatchConfig configures rebuild-on-change
type WatchConfig struct {
	// Debounce is the quiet period after the last change before rebuilding
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Timeline: TimelineConfig{
			Source:      "timeline.csv",
			Title:       timelinedocuments.DefaultTitle,
			Concurrency: 4,
		},
		Fetch: linkenricher.DefaultConfig(),
		Output: OutputConfig{
			Path:   "",
			Format: string(timelinedocuments.FormatJSON),
		},
		NATS: NATSConfig{
			URL:     "", // Disabled
			Subject: timelinedocuments.DefaultSubject,
			Timeout: 5 * time.Second,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Timeline.Source == "" {
		return fmt.Errorf("timeline.source is required")
	}
	if c.Timeline.Concurrency < 0 {
		return fmt.Errorf("timeline.concurrency must be non-negative")
	}
	if err := c.Fetch.Validate(); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if _, err := timelinedocuments.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if c.NATS.URL != "" && c.NATS.Subject == "" {
		return fmt.Errorf("nats.subject is required when nats.url is set")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must be non-negative")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file. ${VAR} and
// ${VAR:-default} references are expanded before parsing.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal([]byte(ExpandEnvWithDefaults(string(data))), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Timeline
	if other.Timeline.Source != "" {
		c.Timeline.Source = other.Timeline.Source
	}
	if other.Timeline.Title != "" {
		c.Timeline.Title = other.Timeline.Title
	}
	if other.Timeline.NoHeader {
		c.Timeline.NoHeader = true
	}
	if other.Timeline.Concurrency != 0 {
		c.Timeline.Concurrency = other.Timeline.Concurrency
	}
	if other.Timeline.Offline {
		c.Timeline.Offline = true
	}

	// Fetch
	if other.Fetch.FetchTimeout != "" {
		c.Fetch.FetchTimeout = other.Fetch.FetchTimeout
	}
	if other.Fetch.MaxRedirects != 0 {
		c.Fetch.MaxRedirects = other.Fetch.MaxRedirects
	}
	if other.Fetch.MaxContentSize != 0 {
		c.Fetch.MaxContentSize = other.Fetch.MaxContentSize
	}
	if other.Fetch.UserAgent != "" {
		c.Fetch.UserAgent = other.Fetch.UserAgent
	}
	if other.Fetch.BlockPrivateNetworks {
		c.Fetch.BlockPrivateNetworks = true
	}

	// Output
	if other.Output.Path != "" {
		c.Output.Path = other.Output.Path
	}
	if other.Output.Format != "" {
		c.Output.Format = other.Output.Format
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Subject != "" {
		c.NATS.Subject = other.NATS.Subject
	}
	if other.NATS.Timeout != 0 {
		c.NATS.Timeout = other.NATS.Timeout
	}

	// Metrics
	if other.Metrics.Addr != "" {
		c.Metrics.Addr = other.Metrics.Addr
	}

	// Watch
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
}

var envRefRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnvWithDefaults replaces ${VAR} with the variable's value and
// ${VAR:-default} with the value or, when unset or empty, the default.
func ExpandEnvWithDefaults(s string) string {
	return envRefRe.ReplaceAllStringFunc(s, func(ref string) string {
		m := envRefRe.FindStringSubmatch(ref)
		if v := os.Getenv(m[1]); v != "" {
			return v
		}
		return m[2]
	})
}
