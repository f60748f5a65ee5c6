package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages plugin registration and lookup.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]map[string]Plugin // map[name]map[version]Plugin
}

// NewRegistry creates a new empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]map[string]Plugin),
	}
}

// Register adds a plugin to the registry.
// Returns an error if a plugin with the same name and version already exists.
func (r *Registry) Register(plugin Plugin) error {
	if plugin == nil {
		return fmt.Errorf("cannot register nil plugin")
	}

	metadata := plugin.Metadata()
	if err := metadata.Validate(); err != nil {
		return fmt.Errorf("invalid plugin metadata: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.plugins[metadata.Name] == nil {
		r.plugins[metadata.Name] = make(map[string]Plugin)
	}

	if _, exists := r.plugins[metadata.Name][metadata.Version]; exists {
		return fmt.Errorf("plugin %s@%s already registered", metadata.Name, metadata.Version)
	}

	r.plugins[metadata.Name][metadata.Version] = plugin
	return nil
}

// List returns all registered plugins ordered by name, then version.
// Injection order follows this ordering, so output is stable across builds.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Plugin
	for _, versions := range r.plugins {
		for _, plugin := range versions {
			result = append(result, plugin)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		mi, mj := result[i].Metadata(), result[j].Metadata()
		if mi.Name != mj.Name {
			return mi.Name < mj.Name
		}
		return mi.Version < mj.Version
	})
	return result
}

// ListByType returns all plugins of a specific type, in List order.
func (r *Registry) ListByType(pluginType PluginType) []Plugin {
	var result []Plugin
	for _, plugin := range r.List() {
		if plugin.Metadata().Type == pluginType {
			result = append(result, plugin)
		}
	}
	return result
}

// Has checks if a plugin with the given name exists (any version).
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.plugins[name]
	return ok
}

// Count returns the total number of registered plugins (all versions).
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, versions := range r.plugins {
		count += len(versions)
	}

	return count
}
