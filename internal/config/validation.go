package config

import (
	"net/url"
	"strings"

	"golang.org/x/text/language"

	siteerrors "github.com/commercemesh/cmpsite/internal/errors"
)

// ValidateConfig validates the complete configuration structure.
func ValidateConfig(cfg *Config) error {
	return newConfigurationValidator(cfg).validate()
}

// configurationValidator coordinates validation across configuration domains.
type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateSite(); err != nil {
		return err
	}
	if err := cv.validateOutput(); err != nil {
		return err
	}
	return cv.validatePlugins()
}

func (cv *configurationValidator) validateSite() error {
	site := cv.config.Site
	if strings.TrimSpace(site.Title) == "" {
		return siteerrors.ValidationFailed("site.title", "must not be empty")
	}
	tag, err := language.Parse(site.Language)
	if err != nil {
		return siteerrors.ValidationFailed("site.language", "not a valid BCP 47 language tag: "+err.Error())
	}
	cv.config.Site.Language = tag.String()

	if _, err := url.Parse(site.BaseURL); err != nil {
		return siteerrors.ValidationFailed("site.base_url", err.Error())
	}
	return nil
}

func (cv *configurationValidator) validateOutput() error {
	dir := strings.TrimSpace(cv.config.Output.Directory)
	if dir == "/" || dir == "." {
		return siteerrors.ValidationFailed("output.directory", "refusing to use "+dir+" as output directory")
	}
	return nil
}

func (cv *configurationValidator) validatePlugins() error {
	for name := range cv.config.Plugins {
		switch name {
		case PluginGTM, PluginLiveReload:
		default:
			return siteerrors.ValidationFailed("plugins."+name, "unknown plugin")
		}
	}
	return nil
}
