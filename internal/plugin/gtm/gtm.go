// Package gtm injects the Google Tag Manager container snippet into production builds.
//
// Injection happens only when every gate in Evaluate passes. Any other
// environment yields an empty tag set and never an error.
package gtm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/commercemesh/cmpsite/internal/buildenv"
	"github.com/commercemesh/cmpsite/internal/htmltag"
	"github.com/commercemesh/cmpsite/internal/logfields"
	"github.com/commercemesh/cmpsite/internal/plugin"
)

const (
	// Name is the registry name of the plugin.
	Name    = "gtm-production-only"
	version = "v1.0.0"

	// DefaultTagID is used when no container id is configured.
	DefaultTagID = "GTM-MQ6GKFL8"

	// OptionTagID is the site.yaml option key under plugins.gtm.
	OptionTagID = "tag_id"

	// Marker appears in every bootstrap snippet whatever the tag id; a page
	// containing it already loads a container.
	Marker = "googletagmanager.com/gtm.js"
)

const bootstrapScript = `(function(w,d,s,l,i){w[l]=w[l]||[];w[l].push({'gtm.start':
new Date().getTime(),event:'gtm.js'});var f=d.getElementsByTagName(s)[0],
j=d.createElement(s),dl=l!='dataLayer'?'&l='+l:'';j.async=true;j.src=
'https://www.googletagmanager.com/gtm.js?id='+i+dl;f.parentNode.insertBefore(j,f);
})(window,document,'script','dataLayer','%s');`

const noscriptFrame = `<iframe src="https://www.googletagmanager.com/ns.html?id=%s"
height="0" width="0" style="display:none;visibility:hidden"></iframe>`

// Decision holds the computed gate values for one build.
type Decision struct {
	IsProd   bool
	Disabled bool
}

// Inject reports whether tags should be emitted.
func (d Decision) Inject() bool {
	return d.IsProd && !d.Disabled
}

// Evaluate applies the production gates to an environment snapshot.
func Evaluate(env buildenv.BuildEnvironment) Decision {
	return Decision{
		IsProd:   env.IsProduction() && !env.IsDeployPreview(),
		Disabled: env.AnalyticsDisabled,
	}
}

// Tags returns the container snippet pair for tagID without any gating.
func Tags(tagID string) htmltag.Set {
	return htmltag.Set{
		Head: []htmltag.Tag{{
			Name:      "script",
			InnerHTML: fmt.Sprintf(bootstrapScript, tagID),
		}},
		BodyEnd: []htmltag.Tag{{
			Name:      "noscript",
			InnerHTML: fmt.Sprintf(noscriptFrame, tagID),
		}},
	}
}

// Options configures the plugin.
type Options struct {
	TagID string
}

// Plugin is the tag injector registered with the plugin registry.
type Plugin struct {
	tagID  string
	logger *slog.Logger
}

var _ plugin.TagInjector = (*Plugin)(nil)

// ValidTagID reports whether id is safe to embed in the script literal and the
// iframe URL: one or more ASCII letters, digits, '-' or '_'.
func ValidTagID(id string) bool {
	if id == "" {
		return false
	}
	return strings.IndexFunc(id, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_')
	}) < 0
}

// New creates the plugin. An empty TagID falls back to DefaultTagID; so does
// an invalid one, with a warning.
func New(opts Options, logger *slog.Logger) *Plugin {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(logfields.Plugin(Name))

	tagID := strings.TrimSpace(opts.TagID)
	switch {
	case tagID == "":
		tagID = DefaultTagID
	case !ValidTagID(tagID):
		logger.Warn("Invalid GTM tag id, using default",
			slog.String("configured", tagID),
			logfields.TagID(DefaultTagID))
		tagID = DefaultTagID
	}
	return &Plugin{tagID: tagID, logger: logger}
}

// TagID returns the effective container id.
func (p *Plugin) TagID() string { return p.tagID }

func (p *Plugin) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        Name,
		Version:     version,
		Type:        plugin.PluginTypeTags,
		Description: "Google Tag Manager snippet for production builds only",
	}
}

// Validate accepts an optional tag_id that is a string of letters, digits, '-'
// or '_'. An empty string is accepted and means DefaultTagID.
func (p *Plugin) Validate(options map[string]any) error {
	raw, ok := options[OptionTagID]
	if !ok || raw == nil {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		return fmt.Errorf("%s must be a string, got %T", OptionTagID, raw)
	}
	if s = strings.TrimSpace(s); s != "" && !ValidTagID(s) {
		return fmt.Errorf("%s %q contains characters outside [A-Za-z0-9_-]", OptionTagID, s)
	}
	return nil
}

// InjectHTMLTags returns the snippet pair when every gate passes and an empty
// set otherwise. The returned error is always nil.
func (p *Plugin) InjectHTMLTags(_ context.Context, env buildenv.BuildEnvironment) (htmltag.Set, error) {
	d := Evaluate(env)
	if !d.Inject() {
		p.logger.Info("Skipping GTM injection",
			slog.Bool("is_prod", d.IsProd),
			slog.Bool("gtm_disabled", d.Disabled))
		return htmltag.Set{}, nil
	}
	p.logger.Info("Injecting GTM", logfields.TagID(p.tagID))
	return Tags(p.tagID), nil
}
