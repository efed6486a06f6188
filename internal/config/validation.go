package config

import (
	"fmt"
	"time"
)

// Validate checks invariants that would otherwise surface as confusing
// runtime failures.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Server.AdminPort < 0 || c.Server.AdminPort > 65535 {
		return fmt.Errorf("server.admin_port must be in 0..65535, got %d", c.Server.AdminPort)
	}
	if c.Server.AdminPort == c.Server.Port && c.Server.AdminPort != 0 {
		return fmt.Errorf("server.admin_port must differ from server.port")
	}
	if c.Site.Directory == "" {
		return fmt.Errorf("site.directory is required")
	}
	if c.Assets.Concurrency < 1 {
		return fmt.Errorf("assets.concurrency must be at least 1, got %d", c.Assets.Concurrency)
	}
	for field, value := range map[string]string{
		"generator.timeout":     c.Generator.Timeout,
		"assets.fetch_timeout":  c.Assets.FetchTimeout,
		"events.retention":      c.Events.Retention,
		"events.prune_interval": c.Events.PruneInterval,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s: invalid duration %q: %w", field, value, err)
		}
	}

	switch c.Publish.Mode {
	case "", "none":
		// no publisher configured; deploy endpoints report failure
	case "s3":
		if c.Publish.S3.Bucket == "" {
			return fmt.Errorf("publish.s3.bucket is required when publish.mode is s3")
		}
	case "git":
		if c.Publish.Git.URL == "" {
			return fmt.Errorf("publish.git.url is required when publish.mode is git")
		}
	default:
		return fmt.Errorf("publish.mode must be one of none, s3, git; got %q", c.Publish.Mode)
	}

	if c.NATS.Enabled {
		if c.NATS.URL == "" {
			return fmt.Errorf("nats.url is required when nats.enabled is true")
		}
		if c.NATS.Subject == "" {
			return fmt.Errorf("nats.subject is required when nats.enabled is true")
		}
	}
	return nil
}
