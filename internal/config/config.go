package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	siteerrors "github.com/commercemesh/cmpsite/internal/errors"
)

// Config represents the site configuration loaded from site.yaml.
type Config struct {
	Site    SiteConfig              `yaml:"site"`
	Content ContentConfig           `yaml:"content"`
	Output  OutputConfig            `yaml:"output"`
	Plugins map[string]PluginConfig `yaml:"plugins,omitempty"`
	Logging LoggingConfig           `yaml:"logging"`
	Metrics MetricsConfig           `yaml:"metrics,omitempty"`
}

// SiteConfig holds page-level metadata.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Tagline     string `yaml:"tagline,omitempty"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Language    string `yaml:"language,omitempty"`
}

// ContentConfig points at the landing page source. An empty path uses the built-in content.
type ContentConfig struct {
	Path string `yaml:"path,omitempty"`
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Clean output directory before build
}

// PluginConfig toggles a plugin and carries its free-form options.
type PluginConfig struct {
	Enabled *bool          `yaml:"enabled,omitempty"`
	Options map[string]any `yaml:",inline"`
}

// LoggingConfig selects level and handler format.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig controls the Prometheus textfile written after each build.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// PluginEnabled reports whether the named plugin is enabled, falling back to def.
func (c *Config) PluginEnabled(name string, def bool) bool {
	pc, ok := c.Plugins[name]
	if !ok || pc.Enabled == nil {
		return def
	}
	return *pc.Enabled
}

// PluginOptions returns the options of the named plugin (never nil).
func (c *Config) PluginOptions(name string) map[string]any {
	pc, ok := c.Plugins[name]
	if !ok || pc.Options == nil {
		return map[string]any{}
	}
	return pc.Options
}

// PluginString returns a string option of the named plugin, or "".
func (c *Config) PluginString(name, key string) string {
	s, _ := c.PluginOptions(name)[key].(string)
	return s
}

// Load loads configuration from the specified file.
// Environment variables referenced as ${VAR} are expanded before parsing.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, siteerrors.ConfigNotFound(configPath)
		}
		return nil, siteerrors.ConfigInvalid(configPath, err)
	}
	return Parse(configPath, data)
}

// Parse decodes raw YAML on top of the defaults, then normalizes and validates.
func Parse(source string, data []byte) (*Config, error) {
	cfg := Default()
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, siteerrors.ConfigInvalid(source, fmt.Errorf("failed to unmarshal config: %w", err))
	}

	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
