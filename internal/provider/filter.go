package provider

import (
	"strings"
	"unicode"
)

// categoryAliases maps every accepted "@word" to the category it selects.
var categoryAliases = map[string]Category{
	"app":           CategoryApps,
	"apps":          CategoryApps,
	"contact":       CategoryContacts,
	"contacts":      CategoryContacts,
	"notif":         CategoryNotifications,
	"notification":  CategoryNotifications,
	"notifications": CategoryNotifications,
	"action":        CategoryAction,
	"actions":       CategoryAction,
	"search":        CategorySearch,
	"searches":      CategorySearch,
}

// Filter is the outcome of parsing a raw query for a leading "@category" token.
type Filter struct {
	// Category is CategoryNone when no filter was recognised.
	Category Category
	// Query is the text left to rank against.
	Query string
}

// Active reports whether the filter restricts results to one category.
func (f Filter) Active() bool {
	return f.Category != CategoryNone
}

// Permits reports whether results of category c may be shown under this filter.
func (f Filter) Permits(c Category) bool {
	return !f.Active() || f.Category == c
}

// ParseFilter extracts a leading "@category" token from raw. An unknown
// "@word" is ordinary search text, so raw is returned untouched.
func ParseFilter(raw string) Filter {
	trimmed := strings.TrimLeftFunc(raw, unicode.IsSpace)
	if !strings.HasPrefix(trimmed, "@") {
		return Filter{Query: raw}
	}

	body := trimmed[1:]
	token, rest := body, ""
	if idx := strings.IndexFunc(body, unicode.IsSpace); idx >= 0 {
		token = body[:idx]
		rest = strings.TrimLeftFunc(body[idx:], unicode.IsSpace)
	}

	category, ok := categoryAliases[strings.ToLower(token)]
	if !ok {
		return Filter{Query: raw}
	}
	return Filter{Category: category, Query: rest}
}
