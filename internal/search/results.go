package search

import (
	"fmt"

	"github.com/pders01/justtype/internal/provider"
)

// ItemKind discriminates the ResultItem variants.
type ItemKind int

const (
	KindApp ItemKind = iota
	KindAction
	KindContact
	KindSearchTemplate
	KindNotification
)

func (k ItemKind) String() string {
	switch k {
	case KindApp:
		return "app"
	case KindAction:
		return "action"
	case KindContact:
		return "contact"
	case KindSearchTemplate:
		return "search"
	case KindNotification:
		return "notification"
	default:
		return "unknown"
	}
}

// ResultItem is one row of a result section. The set of implementations is
// closed; consumers switch on the concrete type.
type ResultItem interface {
	Kind() ItemKind
	// Key is a stable identity for diffing, derived from the item's fields.
	Key() string
	isResultItem()
}

// AppResult references a launchable entry.
type AppResult struct {
	EntryID string
}

// ActionResult is a quick or contextual action.
type ActionResult struct {
	ActionID string
	Title    string
	Subtitle string
	Argument string
}

// ContactResult is a contact candidate supplied by the caller.
type ContactResult struct {
	ProviderID string
	StableID   string
	Title      string
	Subtitle   string
}

// SearchTemplateResult is a web search through a URL-template provider.
type SearchTemplateResult struct {
	ProviderID string
	Title      string
	Query      string
}

// NotificationActionItem describes one executable notification action.
type NotificationActionItem struct {
	Index             int
	Title             string
	RequiresTextInput bool
}

// NotificationResult is a live or historical notification.
type NotificationResult struct {
	NotificationKey string
	Title           string
	Subtitle        string
	Actions         []NotificationActionItem
	Timestamp       int64
	IsLive          bool
}

func (AppResult) Kind() ItemKind            { return KindApp }
func (ActionResult) Kind() ItemKind         { return KindAction }
func (ContactResult) Kind() ItemKind        { return KindContact }
func (SearchTemplateResult) Kind() ItemKind { return KindSearchTemplate }
func (NotificationResult) Kind() ItemKind   { return KindNotification }

func (r AppResult) Key() string { return "app:" + r.EntryID }
func (r ActionResult) Key() string {
	return fmt.Sprintf("action:%s:%s", r.ActionID, r.Argument)
}
func (r ContactResult) Key() string {
	return fmt.Sprintf("contact:%s:%s", r.ProviderID, r.StableID)
}
func (r SearchTemplateResult) Key() string {
	return fmt.Sprintf("search:%s:%s", r.ProviderID, r.Query)
}
func (r NotificationResult) Key() string { return "notification:" + r.NotificationKey }

func (AppResult) isResultItem()            {}
func (ActionResult) isResultItem()         {}
func (ContactResult) isResultItem()        {}
func (SearchTemplateResult) isResultItem() {}
func (NotificationResult) isResultItem()   {}

// Section is a non-empty, ordered group of items from one category. An empty
// Title means the section visually continues the one before it.
type Section struct {
	ProviderID string
	Title      string
	Category   provider.Category
	Items      []ResultItem
}

// State is the complete, immutable outcome of one query.
type State struct {
	Query string
	// Filter is provider.CategoryNone when no category filter is active.
	Filter   provider.Category
	Sections []Section
}

// Empty reports whether no section was produced.
func (s State) Empty() bool {
	return len(s.Sections) == 0
}

// Items flattens every section in order.
func (s State) Items() []ResultItem {
	var out []ResultItem
	for _, sec := range s.Sections {
		out = append(out, sec.Items...)
	}
	return out
}
