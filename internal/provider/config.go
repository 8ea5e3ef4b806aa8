package provider

import (
	"net/url"
	"strings"
)

// SearchTermsPlaceholder is substituted with the escaped query in URL templates.
const SearchTermsPlaceholder = "{searchTerms}"

// Config describes one result provider. IDs are globally unique; Order sorts
// providers within a category with ties broken by ID.
type Config struct {
	ID            string   `json:"id" toml:"id"`
	Category      Category `json:"category" toml:"category"`
	DisplayName   string   `json:"display_name,omitempty" toml:"display_name,omitempty"`
	Enabled       bool     `json:"enabled" toml:"enabled"`
	Order         int      `json:"order" toml:"order"`
	SchemaVersion int      `json:"schema_version" toml:"schema_version"`
	URLTemplate   string   `json:"url_template,omitempty" toml:"url_template,omitempty"`
	Promotable    bool     `json:"promotable" toml:"promotable"`
}

// Label returns the display name override, falling back to the ID.
func (c Config) Label() string {
	if name := strings.TrimSpace(c.DisplayName); name != "" {
		return name
	}
	return c.ID
}

// HasTemplate reports whether the provider carries a usable URL template.
func (c Config) HasTemplate() bool {
	return strings.TrimSpace(c.URLTemplate) != ""
}

// ExpandTemplate substitutes the query into a URL template.
func ExpandTemplate(template, query string) string {
	return strings.ReplaceAll(template, SearchTermsPlaceholder, url.QueryEscape(query))
}

// less orders configs by order index, then ID.
func less(a, b Config) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	return a.ID < b.ID
}
