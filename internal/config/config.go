// Package config loads and validates the sitebuilder configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Site      SiteConfig      `yaml:"site"`
	Generator GeneratorConfig `yaml:"generator"`
	Assets    AssetsConfig    `yaml:"assets"`
	Publish   PublishConfig   `yaml:"publish"`
	Events    EventsConfig    `yaml:"events"`
	NATS      NATSConfig      `yaml:"nats"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port      int `yaml:"port"`
	AdminPort int `yaml:"admin_port"`
}

// SiteConfig holds the site store location and callback defaults.
type SiteConfig struct {
	// Directory is where generated documents and assets live.
	Directory string `yaml:"directory"`
	// DefaultCallbackURL is used when a generation request carries none.
	DefaultCallbackURL string `yaml:"default_callback_url"`
}

// GeneratorConfig configures the external text generator.
type GeneratorConfig struct {
	BaseURL string `yaml:"base_url"`
	// APIKey is normally supplied via ${SITEBUILDER_GENERATOR_API_KEY}
	// expansion; never hardcode credentials in the file.
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
	// Timeout is a Go duration string, e.g. "45s".
	Timeout string `yaml:"timeout"`
	// RefineInputs enables the best-effort input refinement pass before
	// assembly.
	RefineInputs bool `yaml:"refine_inputs"`
}

// AssetsConfig bounds asset fetching during submission.
type AssetsConfig struct {
	// FetchTimeout is the per-asset download timeout (Go duration string).
	FetchTimeout string `yaml:"fetch_timeout"`
	// Concurrency caps parallel downloads within one submission.
	Concurrency int `yaml:"concurrency"`
}

// PublishConfig selects and configures the publisher.
type PublishConfig struct {
	// Mode selects the publisher implementation: "s3", "git", or "none".
	Mode string `yaml:"mode"`
	// AutoDeploy triggers a publish after every asset submission.
	AutoDeploy bool `yaml:"auto_deploy"`
	S3         S3PublishConfig  `yaml:"s3"`
	Git        GitPublishConfig `yaml:"git"`
}

// S3PublishConfig drives the aws-cli backed publisher.
type S3PublishConfig struct {
	Bucket string `yaml:"bucket"`
	// DistributionID enables CloudFront invalidation after the sync.
	DistributionID string `yaml:"distribution_id,omitempty"`
	// CLIPath overrides the aws binary lookup (defaults to "aws").
	CLIPath string `yaml:"cli_path,omitempty"`
}

// GitPublishConfig drives the go-git backed pages publisher.
type GitPublishConfig struct {
	URL         string `yaml:"url"`
	Branch      string `yaml:"branch"`
	AuthorName  string `yaml:"author_name,omitempty"`
	AuthorEmail string `yaml:"author_email,omitempty"`
	Token       string `yaml:"token,omitempty"`
}

// EventsConfig configures the sqlite lifecycle event log.
type EventsConfig struct {
	// Path is the sqlite database path; ":memory:" is allowed for tests.
	Path string `yaml:"path"`
	// Retention is how long events are kept before pruning (Go duration string).
	Retention string `yaml:"retention"`
	// PruneInterval is how often the maintenance scheduler prunes.
	PruneInterval string `yaml:"prune_interval"`
}

// NATSConfig configures optional lifecycle event publication.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Load loads configuration from the specified file, expanding environment
// variables in the YAML content. A local .env file is loaded first so
// secrets can live outside the config file.
func Load(configPath string) (*Config, error) {
	// Best effort; a missing .env is the normal case in production.
	_ = godotenv.Load()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FetchTimeout returns the parsed per-asset fetch timeout.
func (c *AssetsConfig) FetchTimeoutDuration() time.Duration {
	return parseDurationOr(c.FetchTimeout, 30*time.Second)
}

// TimeoutDuration returns the parsed generator request timeout.
func (c *GeneratorConfig) TimeoutDuration() time.Duration {
	return parseDurationOr(c.Timeout, 45*time.Second)
}

// RetentionDuration returns the parsed event retention window.
func (c *EventsConfig) RetentionDuration() time.Duration {
	return parseDurationOr(c.Retention, 30*24*time.Hour)
}

// PruneIntervalDuration returns the parsed maintenance interval.
func (c *EventsConfig) PruneIntervalDuration() time.Duration {
	return parseDurationOr(c.PruneInterval, time.Hour)
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
