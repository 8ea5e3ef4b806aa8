package search

import (
	"strings"

	"github.com/pders01/justtype/internal/provider"
)

// BuildSearchTemplates creates one template result per enabled search
// provider. When the default provider is promotable it is returned as
// primary and left out of others; otherwise it leads others.
func BuildSearchTemplates(query string, reg *provider.Registry) (primary *SearchTemplateResult, others []SearchTemplateResult) {
	q := strings.TrimSpace(query)
	if q == "" || reg == nil {
		return nil, nil
	}

	defaultID := reg.DefaultSearchID()
	var lead []SearchTemplateResult
	for _, cfg := range reg.ByCategory(provider.CategorySearch) {
		if !cfg.HasTemplate() {
			continue
		}
		item := SearchTemplateResult{ProviderID: cfg.ID, Title: cfg.Label(), Query: q}
		switch {
		case cfg.ID == defaultID && cfg.Promotable:
			primary = &item
		case cfg.ID == defaultID:
			lead = append(lead, item)
		default:
			others = append(others, item)
		}
	}
	return primary, append(lead, others...)
}
