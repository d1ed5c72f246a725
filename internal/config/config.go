package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Build   BuildConfig   `yaml:"build"`
	Output  OutputConfig  `yaml:"output"`
	State   StateConfig   `yaml:"state"`
	Daemon  DaemonConfig  `yaml:"daemon"`
	Events  EventsConfig  `yaml:"events"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// SourceConfig describes the upstream repository the JSON export is built from
type SourceConfig struct {
	RepoURL    string `yaml:"repo_url"`
	RepoDir    string `yaml:"repo_dir"`
	MinVersion string `yaml:"min_version"` // Minimal version with JSON docs support
}

// BuildConfig controls the export build and conversion
type BuildConfig struct {
	DataDir   string `yaml:"data_dir"`   // Directory holding docs_<version>.json exports
	AssetsDir string `yaml:"assets_dir"` // Directory the export build writes assets into
	JSONSlug  string `yaml:"json_slug"`  // Filename prefix of the export, defaults to "docs"
	Workers   int    `yaml:"workers"`    // Page rendering worker count
	Force     bool   `yaml:"force"`      // Rebuild even when the state store says unchanged
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Directory    string `yaml:"directory"`
	Clean        bool   `yaml:"clean"`         // Clean output directory before build
	UnpackLatest bool   `yaml:"unpack_latest"` // Copy the latest version's tree over the output root
}

// StateConfig configures the build-record store
type StateConfig struct {
	Path string `yaml:"path"` // SQLite path, ":memory:" for ephemeral
}

// DaemonConfig configures daemon mode scheduling
type DaemonConfig struct {
	Interval string `yaml:"interval"` // Go duration between fetch+build runs
}

// IntervalDuration parses the configured interval.
func (d DaemonConfig) IntervalDuration() (time.Duration, error) {
	interval, err := time.ParseDuration(d.Interval)
	if err != nil {
		return 0, fmt.Errorf("invalid daemon interval %q: %w", d.Interval, err)
	}
	return interval, nil
}

// EventsConfig configures optional NATS build-event publishing
type EventsConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// MetricsConfig configures the optional Prometheus listener
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Note: .env file couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ApplyDefaults()
	return &config, nil
}

// ApplyDefaults fills zero values with the defaults used throughout the CLI.
func (c *Config) ApplyDefaults() {
	if c.Source.RepoURL == "" {
		c.Source.RepoURL = "https://github.com/typst/typst.git"
	}
	if c.Source.RepoDir == "" {
		c.Source.RepoDir = "build/typst"
	}
	if c.Source.MinVersion == "" {
		c.Source.MinVersion = "0.11.0"
	}
	if c.Build.DataDir == "" {
		c.Build.DataDir = "build/json"
	}
	if c.Build.AssetsDir == "" {
		c.Build.AssetsDir = "build/assets"
	}
	if c.Build.JSONSlug == "" {
		c.Build.JSONSlug = "docs"
	}
	if c.Build.Workers <= 0 {
		c.Build.Workers = 4
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "dist"
	}
	if c.State.Path == "" {
		c.State.Path = "build/state.db"
	}
	if c.Daemon.Interval == "" {
		c.Daemon.Interval = "24h"
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "typdocs.builds"
	}
	if c.Metrics.Listen == "" {
		c.Metrics.Listen = ":9105"
	}
}

// Default returns a configuration with all defaults applied, used when no
// config file is present.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Default()
	example.Events.NATSURL = "nats://localhost:4222"

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Configuration file created: %s\n", configPath)
	return nil
}
