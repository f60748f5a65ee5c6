// Package livereload injects the preview server's reload client into generated pages.
package livereload

import (
	"context"
	"fmt"

	"github.com/commercemesh/cmpsite/internal/buildenv"
	"github.com/commercemesh/cmpsite/internal/htmltag"
	"github.com/commercemesh/cmpsite/internal/plugin"
)

const (
	Name    = "livereload"
	version = "v1.0.0"

	// DefaultEndpoint is the server-sent events path served by the preview server.
	DefaultEndpoint = "/__livereload"
)

const clientScript = `(function(){var es=new EventSource(%q);es.onmessage=function(){location.reload();};})();`

// Plugin emits a single body-end script connecting to the reload endpoint.
type Plugin struct {
	plugin.BasePlugin
	endpoint string
}

var _ plugin.TagInjector = (*Plugin)(nil)

// New creates the plugin; an empty endpoint uses DefaultEndpoint.
func New(endpoint string) *Plugin {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Plugin{endpoint: endpoint}
}

func (p *Plugin) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        Name,
		Version:     version,
		Type:        plugin.PluginTypeTags,
		Description: "Reload client for the local preview server",
	}
}

// InjectHTMLTags ignores the environment; the plugin is only registered for previews.
func (p *Plugin) InjectHTMLTags(context.Context, buildenv.BuildEnvironment) (htmltag.Set, error) {
	return htmltag.Set{
		BodyEnd: []htmltag.Tag{{
			Name:      "script",
			InnerHTML: fmt.Sprintf(clientScript, p.endpoint),
		}},
	}, nil
}
