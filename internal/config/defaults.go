package config

import (
	"fmt"
	"os"
)

// Default returns a configuration populated with workable local defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      9000,
			AdminPort: 9090,
		},
		Site: SiteConfig{
			Directory:          "./static_site",
			DefaultCallbackURL: "http://localhost:9000/submit-assets",
		},
		Generator: GeneratorConfig{
			BaseURL:      "https://api.openai.com/v1",
			Model:        "gpt-4o-mini",
			Timeout:      "45s",
			RefineInputs: true,
		},
		Assets: AssetsConfig{
			FetchTimeout: "30s",
			Concurrency:  4,
		},
		Publish: PublishConfig{
			Mode:       "none",
			AutoDeploy: true,
		},
		Events: EventsConfig{
			Path:          "./data/events.db",
			Retention:     "720h",
			PruneInterval: "1h",
		},
		NATS: NATSConfig{
			Enabled: false,
			URL:     "nats://127.0.0.1:4222",
			Subject: "sitebuilder.lifecycle",
		},
	}
}

const starterConfig = `# sitebuilder configuration
server:
  port: 9000
  admin_port: 9090

site:
  directory: ./static_site
  default_callback_url: http://localhost:9000/submit-assets

generator:
  base_url: https://api.openai.com/v1
  api_key: ${SITEBUILDER_GENERATOR_API_KEY}
  model: gpt-4o-mini
  timeout: 45s
  refine_inputs: true

assets:
  fetch_timeout: 30s
  concurrency: 4

publish:
  mode: none # s3 | git | none
  auto_deploy: true
  s3:
    bucket: ""
    distribution_id: ""
  git:
    url: ""
    branch: pages

events:
  path: ./data/events.db
  retention: 720h
  prune_interval: 1h

nats:
  enabled: false
  url: nats://127.0.0.1:4222
  subject: sitebuilder.lifecycle
`

// Init writes a starter configuration file. It refuses to overwrite an
// existing file unless force is set.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	if err := os.WriteFile(configPath, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}
