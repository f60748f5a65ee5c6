// Package plugin provides the plugin system cmpsite uses to contribute HTML tags
// to generated pages.
package plugin

import (
	"context"
	"fmt"

	"github.com/commercemesh/cmpsite/internal/buildenv"
	"github.com/commercemesh/cmpsite/internal/htmltag"
)

// Plugin represents a cmpsite plugin with metadata and option validation.
type Plugin interface {
	// Metadata returns the plugin's metadata (name, version, type).
	Metadata() PluginMetadata

	// Validate checks the plugin options taken from site.yaml.
	Validate(options map[string]any) error
}

// TagInjector is implemented by plugins of type PluginTypeTags. It is invoked
// once per build with the environment snapshot taken by the caller.
type TagInjector interface {
	Plugin

	InjectHTMLTags(ctx context.Context, env buildenv.BuildEnvironment) (htmltag.Set, error)
}

// PluginMetadata describes a plugin's identity.
type PluginMetadata struct {
	// Name is the unique plugin identifier (e.g., "gtm-production-only").
	Name string

	// Version is the semantic version (e.g., "v1.0.0").
	Version string

	Type PluginType

	Description string
}

// String returns a human-readable representation of the plugin metadata.
func (m PluginMetadata) String() string {
	return fmt.Sprintf("%s@%s (%s)", m.Name, m.Version, m.Type)
}

// Validate checks if the plugin metadata is valid.
func (m PluginMetadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("plugin version is required")
	}
	if !m.Type.IsValid() {
		return fmt.Errorf("invalid plugin type: %s", m.Type)
	}
	return nil
}

// BasePlugin accepts any options. Plugins embed it when they have nothing to validate.
type BasePlugin struct{}

// Validate is a no-op default implementation.
func (BasePlugin) Validate(map[string]any) error {
	return nil
}
