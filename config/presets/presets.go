// Package presets contains named configurations that a config file or
// flags can override.
package presets

import (
	"fmt"
	"maps"
	"slices"

	"github.com/esgf/solrsync/config"
)

var presets = map[string]config.Config{}

func register(name string, cfg config.Config) {
	if _, exists := presets[name]; exists {
		panic(fmt.Sprintf("preset %s already registered", name))
	}
	presets[name] = cfg
}

// Options returns the names of all presets.
func Options() []string {
	return slices.Sorted(maps.Keys(presets))
}

// Get returns the named preset.
func Get(name string) (config.Config, error) {
	cfg, ok := presets[name]
	if !ok {
		return config.Config{}, fmt.Errorf("preset %q not found, options: %v", name, Options())
	}
	return cfg, nil
}
