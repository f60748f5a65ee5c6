package plugin

import (
	"context"
	"log/slog"

	"github.com/commercemesh/cmpsite/internal/buildenv"
	"github.com/commercemesh/cmpsite/internal/htmltag"
	"github.com/commercemesh/cmpsite/internal/logfields"
)

// CollectTags invokes every tags plugin in the registry and merges their output.
// A failing plugin is logged and skipped: tag injection never fails a build.
func CollectTags(ctx context.Context, r *Registry, env buildenv.BuildEnvironment, logger *slog.Logger) htmltag.Set {
	if logger == nil {
		logger = slog.Default()
	}
	var out htmltag.Set
	for _, p := range r.ListByType(PluginTypeTags) {
		md := p.Metadata()
		injector, ok := p.(TagInjector)
		if !ok {
			logger.Warn("Plugin registered as tags type does not inject tags", logfields.Plugin(md.Name))
			continue
		}
		set, err := injector.InjectHTMLTags(ctx, env)
		if err != nil {
			logger.Warn("Skipping plugin tags",
				logfields.Plugin(md.Name),
				logfields.Error(NewPluginError(md.Name, "inject_html_tags", err)))
			continue
		}
		out = out.Merge(set)
	}
	return out
}
