package provider

import (
	_ "embed"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

//go:embed defaults.toml
var defaultsTOML []byte

// Defaults is the provider table shipped with the engine.
type Defaults struct {
	SchemaVersion int      `toml:"schema_version"`
	DefaultSearch string   `toml:"default_search"`
	Providers     []Config `toml:"providers"`
}

// LoadDefaults parses the embedded provider table.
func LoadDefaults() (*Defaults, error) {
	var d Defaults
	if err := toml.Unmarshal(defaultsTOML, &d); err != nil {
		return nil, fmt.Errorf("parsing defaults.toml: %w", err)
	}
	for i := range d.Providers {
		if d.Providers[i].SchemaVersion == 0 {
			d.Providers[i].SchemaVersion = d.SchemaVersion
		}
	}
	return &d, nil
}

// DefaultRegistry builds a version-0 registry from the embedded table.
func DefaultRegistry() (*Registry, error) {
	d, err := LoadDefaults()
	if err != nil {
		return nil, err
	}
	return NewRegistry(d.Providers, 0, d.DefaultSearch), nil
}
