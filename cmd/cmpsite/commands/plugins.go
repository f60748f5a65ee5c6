package commands

import (
	"log/slog"
	"strings"

	"github.com/commercemesh/cmpsite/internal/config"
	siteerrors "github.com/commercemesh/cmpsite/internal/errors"
	"github.com/commercemesh/cmpsite/internal/logfields"
	"github.com/commercemesh/cmpsite/internal/plugin"
	"github.com/commercemesh/cmpsite/internal/plugin/gtm"
	"github.com/commercemesh/cmpsite/internal/plugin/livereload"
)

// registryOptions selects the plugins a command registers beyond configuration.
type registryOptions struct {
	TagID      string
	LiveReload bool
}

// newRegistry registers the tag plugins enabled in cfg. The GTM plugin is on
// unless plugins.gtm.enabled is false; a non-empty opts.TagID overrides its tag_id.
// Bad GTM options only produce a warning: analytics settings never fail a build.
func newRegistry(cfg *config.Config, opts registryOptions, logger *slog.Logger) (*plugin.Registry, error) {
	reg := plugin.NewRegistry()

	if cfg.PluginEnabled(config.PluginGTM, true) {
		tagID := strings.TrimSpace(opts.TagID)
		if tagID == "" {
			tagID = cfg.PluginString(config.PluginGTM, gtm.OptionTagID)
		}
		p := gtm.New(gtm.Options{TagID: tagID}, logger)
		if err := p.Validate(cfg.PluginOptions(config.PluginGTM)); err != nil {
			logger.Warn("Ignoring invalid plugin options",
				logfields.Plugin(config.PluginGTM),
				logfields.TagID(p.TagID()),
				logfields.Error(err))
		}
		if err := reg.Register(p); err != nil {
			return nil, siteerrors.InternalError("register plugin", err)
		}
	}

	if opts.LiveReload && cfg.PluginEnabled(config.PluginLiveReload, true) && !reg.Has(livereload.Name) {
		if err := reg.Register(livereload.New(livereload.DefaultEndpoint)); err != nil {
			return nil, siteerrors.InternalError("register plugin", err)
		}
	}
	logger.Debug("Tag plugins registered", slog.Int("count", reg.Count()))
	return reg, nil
}
