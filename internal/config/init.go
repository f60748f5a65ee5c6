package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const exampleConfig = `# cmpsite configuration
site:
  title: "Commerce Mesh Protocol"
  tagline: "Open Protocol for Commerce Infrastructure"
  description: "The Commerce Mesh Protocol enables AI agents, brands, and commerce infrastructure to coordinate through standardized, decentralized nodes."
  base_url: "/"
  language: "en"

content:
  # Markdown file with YAML front matter. Leave empty for the built-in landing page.
  path: "content/index.md"

output:
  directory: "./build"
  clean: true

plugins:
  gtm:
    # Tags are only injected when NODE_ENV=production, the build is not a deploy
    # preview and DISABLE_GTM is not "true".
    tag_id: "${GTM_ID}"

logging:
  level: "info"
  format: "text"

metrics:
  # Prometheus textfile written after each build (optional).
  textfile: ""
`

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil { //nolint:gosec // config file is not secret
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
