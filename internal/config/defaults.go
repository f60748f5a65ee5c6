package config

import "strings"

const (
	DefaultTitle     = "Commerce Mesh Protocol"
	DefaultTagline   = "Open Protocol for Commerce Infrastructure"
	DefaultLanguage  = "en"
	DefaultOutputDir = "./build"

	PluginGTM        = "gtm"
	PluginLiveReload = "livereload"
)

// Default returns the configuration used when a field is absent from site.yaml.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			Title:       DefaultTitle,
			Tagline:     DefaultTagline,
			Description: "The Commerce Mesh Protocol enables AI agents, brands, and commerce infrastructure to coordinate through standardized, decentralized nodes.",
			BaseURL:     "/",
			Language:    DefaultLanguage,
		},
		Output: OutputConfig{
			Directory: DefaultOutputDir,
			Clean:     true,
		},
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}
}

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// SiteDefaultApplier fills blank site metadata.
type SiteDefaultApplier struct{}

func (SiteDefaultApplier) Domain() string { return "site" }

func (SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	cfg.Site.Title = strings.TrimSpace(cfg.Site.Title)
	if cfg.Site.Title == "" {
		cfg.Site.Title = DefaultTitle
	}
	if strings.TrimSpace(cfg.Site.Language) == "" {
		cfg.Site.Language = DefaultLanguage
	}
	if cfg.Site.BaseURL == "" {
		cfg.Site.BaseURL = "/"
	}
	if !strings.HasSuffix(cfg.Site.BaseURL, "/") {
		cfg.Site.BaseURL += "/"
	}
	return nil
}

// OutputDefaultApplier handles output defaults.
type OutputDefaultApplier struct{}

func (OutputDefaultApplier) Domain() string { return "output" }

func (OutputDefaultApplier) ApplyDefaults(cfg *Config) error {
	if strings.TrimSpace(cfg.Output.Directory) == "" {
		cfg.Output.Directory = DefaultOutputDir
	}
	return nil
}

// LoggingDefaultApplier normalizes logging enums.
type LoggingDefaultApplier struct{}

func (LoggingDefaultApplier) Domain() string { return "logging" }

func (LoggingDefaultApplier) ApplyDefaults(cfg *Config) error {
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	return nil
}

var defaultAppliers = []DefaultApplier{
	SiteDefaultApplier{},
	OutputDefaultApplier{},
	LoggingDefaultApplier{},
}

func applyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
