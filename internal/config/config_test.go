package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	siteerrors "github.com/commercemesh/cmpsite/internal/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsFillMissingFields(t *testing.T) {
	cfg, err := Load(writeConfig(t, "site:\n  title: Docs\n"))
	require.NoError(t, err)

	assert.Equal(t, "Docs", cfg.Site.Title)
	assert.Equal(t, DefaultTagline, cfg.Site.Tagline)
	assert.Equal(t, "en", cfg.Site.Language)
	assert.Equal(t, "/", cfg.Site.BaseURL)
	assert.Equal(t, DefaultOutputDir, cfg.Output.Directory)
	assert.True(t, cfg.Output.Clean)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
}

func TestLoad_ExpandsEnvAndPluginOptions(t *testing.T) {
	t.Setenv("CMPSITE_TEST_GTM", "GTM-FROMENV")
	cfg, err := Load(writeConfig(t, `
site:
  base_url: https://cmp.example.org
  language: en-us
plugins:
  gtm:
    tag_id: "${CMPSITE_TEST_GTM}"
  livereload:
    enabled: false
output:
  clean: false
logging:
  level: WARNING
  format: JSON
`))
	require.NoError(t, err)

	assert.Equal(t, "GTM-FROMENV", cfg.PluginString(PluginGTM, "tag_id"))
	assert.True(t, cfg.PluginEnabled(PluginGTM, true))
	assert.False(t, cfg.PluginEnabled(PluginLiveReload, true))
	assert.Equal(t, "https://cmp.example.org/", cfg.Site.BaseURL)
	assert.Equal(t, "en-US", cfg.Site.Language)
	assert.False(t, cfg.Output.Clean)
	assert.Equal(t, LogLevelWarn, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, siteerrors.IsCategory(err, siteerrors.CategoryConfig))

	_, err = Load(writeConfig(t, "site: [unclosed"))
	require.Error(t, err)
	assert.True(t, siteerrors.IsCategory(err, siteerrors.CategoryConfig))

	_, err = Load(writeConfig(t, "site:\n  language: \"not a tag!\"\n"))
	require.Error(t, err)
	assert.True(t, siteerrors.IsCategory(err, siteerrors.CategoryValidation))

	_, err = Load(writeConfig(t, "plugins:\n  sitemap: {}\n"))
	require.Error(t, err)
	assert.True(t, siteerrors.IsCategory(err, siteerrors.CategoryValidation))

	_, err = Load(writeConfig(t, "output:\n  directory: /\n"))
	require.Error(t, err)
}

func TestPluginAccessorsOnEmptyConfig(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.PluginEnabled(PluginGTM, true))
	assert.NotNil(t, cfg.PluginOptions(PluginGTM))
	assert.Empty(t, cfg.PluginString(PluginGTM, "tag_id"))
}

func TestNormalizeLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, NormalizeLogLevel(" Debug "))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("verbose"))
	assert.Equal(t, LogLevelError.SlogLevel().String(), "ERROR")
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "site.yaml")
	require.NoError(t, Init(path, false))
	require.Error(t, Init(path, false), "existing file must not be overwritten")
	require.NoError(t, Init(path, true))

	t.Setenv("GTM_ID", "GTM-INIT")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "GTM-INIT", cfg.PluginString(PluginGTM, "tag_id"))
	assert.Equal(t, "content/index.md", cfg.Content.Path)
}
