package provider

import (
	"fmt"
	"strings"
)

// Category identifies the kind of results a provider contributes.
type Category int

const (
	// CategoryNone is the zero value. It is used for "no category filter" and is
	// never a valid provider category.
	CategoryNone Category = iota
	CategoryApps
	CategoryNotifications
	CategoryAction
	CategoryContacts
	CategorySearch
)

// Categories lists every concrete category in declaration order.
var Categories = []Category{
	CategoryApps,
	CategoryNotifications,
	CategoryAction,
	CategoryContacts,
	CategorySearch,
}

// String returns the canonical upper-case name of the category
func (c Category) String() string {
	switch c {
	case CategoryApps:
		return "APPS"
	case CategoryNotifications:
		return "NOTIFICATIONS"
	case CategoryAction:
		return "ACTION"
	case CategoryContacts:
		return "CONTACTS"
	case CategorySearch:
		return "SEARCH"
	default:
		return "NONE"
	}
}

// Valid reports whether c names a concrete category.
func (c Category) Valid() bool {
	return c >= CategoryApps && c <= CategorySearch
}

// ParseCategory parses the canonical name of a category, case-insensitively.
func ParseCategory(s string) (Category, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "APPS":
		return CategoryApps, nil
	case "NOTIFICATIONS":
		return CategoryNotifications, nil
	case "ACTION":
		return CategoryAction, nil
	case "CONTACTS":
		return CategoryContacts, nil
	case "SEARCH":
		return CategorySearch, nil
	default:
		return CategoryNone, fmt.Errorf("unknown category %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so categories are stored by name.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("cannot marshal category %d", int(c))
	}
	return []byte(strings.ToLower(c.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
