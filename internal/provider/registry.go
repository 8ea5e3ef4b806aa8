package provider

import "sort"

// Registry is an immutable, ordered snapshot of provider configuration.
type Registry struct {
	configs         []Config
	version         int64
	defaultSearchID string
}

// NewRegistry builds a registry snapshot. Later duplicates of an ID are
// dropped so IDs stay unique.
func NewRegistry(configs []Config, version int64, defaultSearchID string) *Registry {
	seen := make(map[string]bool, len(configs))
	ordered := make([]Config, 0, len(configs))
	for _, c := range configs {
		if c.ID == "" || seen[c.ID] || !c.Category.Valid() {
			continue
		}
		seen[c.ID] = true
		ordered = append(ordered, c)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Category != ordered[j].Category {
			return ordered[i].Category < ordered[j].Category
		}
		return less(ordered[i], ordered[j])
	})
	return &Registry{configs: ordered, version: version, defaultSearchID: defaultSearchID}
}

// Version is the configuration version the snapshot was taken at.
func (r *Registry) Version() int64 { return r.version }

// DefaultSearchID is the configured default search provider, or "".
func (r *Registry) DefaultSearchID() string { return r.defaultSearchID }

// All returns every config, enabled or not.
func (r *Registry) All() []Config {
	return append([]Config(nil), r.configs...)
}

// Enabled returns the enabled configs grouped by category and ordered within it.
func (r *Registry) Enabled() []Config {
	var out []Config
	for _, c := range r.configs {
		if c.Enabled {
			out = append(out, c)
		}
	}
	return out
}

// ByCategory returns the enabled configs of one category in configured order.
func (r *Registry) ByCategory(category Category) []Config {
	var out []Config
	for _, c := range r.configs {
		if c.Enabled && c.Category == category {
			out = append(out, c)
		}
	}
	return out
}

// First returns the first enabled config of a category.
func (r *Registry) First(category Category) (Config, bool) {
	for _, c := range r.configs {
		if c.Enabled && c.Category == category {
			return c, true
		}
	}
	return Config{}, false
}

// IsEnabled reports whether any provider of the category is enabled.
func (r *Registry) IsEnabled(category Category) bool {
	_, ok := r.First(category)
	return ok
}

// Lookup finds a config by ID regardless of its enabled flag.
func (r *Registry) Lookup(id string) (Config, bool) {
	for _, c := range r.configs {
		if c.ID == id {
			return c, true
		}
	}
	return Config{}, false
}
