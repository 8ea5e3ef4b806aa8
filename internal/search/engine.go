package search

import (
	"strings"
	"time"

	"github.com/pders01/justtype/internal/debuglog"
	"github.com/pders01/justtype/internal/notify"
	"github.com/pders01/justtype/internal/provider"
	"github.com/pders01/justtype/internal/storage"
)

// Section titles. An empty title continues the previous section.
const (
	TitleApps          = "APPS"
	TitleNotifications = "NOTIFICATIONS"
	TitleSmartActions  = "SMART ACTIONS"
	TitleContacts      = "CONTACTS"
	TitleMoreSearches  = "MORE SEARCHES"
	TitleQuickActions  = "QUICK ACTIONS"
)

// Provider IDs of sections that are not backed by one configured provider.
const (
	SmartActionsProviderID = "smart_actions"
	SearchesProviderID     = "searches"
)

// Smart action IDs.
const (
	SmartCallID      = "smart_call"
	SmartTextID      = "smart_text"
	SmartSearchWebID = "smart_search_web"
)

const maxFallbackCount = 3

// Input is everything one query is ranked against. Callers pass a consistent
// snapshot; Search never mutates it.
type Input struct {
	// Query is the raw text, including any leading "@category" token.
	Query         string
	Entries       []storage.Entry
	Favorites     []string
	Providers     *provider.Registry
	Contacts      []ContactResult
	Notifications notify.Reader

	NotificationOptions NotificationOptions
	Now                 time.Time
}

// Engine composes the per-category rankers into one sectioned result.
type Engine struct {
	actions *ActionMatcher
}

// NewEngine returns an engine that offers quick actions from matcher.
func NewEngine(matcher *ActionMatcher) *Engine {
	if matcher == nil {
		matcher = NewActionMatcher(nil, nil)
	}
	return &Engine{actions: matcher}
}

// NewDefaultEngine returns an engine using the built-in action table.
func NewDefaultEngine() (*Engine, error) {
	matcher, err := DefaultActionMatcher()
	if err != nil {
		return nil, err
	}
	return NewEngine(matcher), nil
}

// Search ranks in and assembles the sections in their fixed order: apps,
// related notifications, notifications, smart actions, contacts, primary
// search, more searches, quick actions. Empty sections are omitted.
func (e *Engine) Search(in Input) State {
	filter := provider.ParseFilter(in.Query)
	query := filter.Query
	blank := strings.TrimSpace(query) == ""

	reg := in.Providers
	if reg == nil {
		reg = provider.NewRegistry(nil, 0, "")
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	participates := func(c provider.Category) bool {
		return filter.Permits(c) && reg.IsEnabled(c)
	}

	var apps []storage.Entry
	if participates(provider.CategoryApps) {
		apps = RankApps(query, in.Entries, in.Favorites, now)
	}

	var related, others []NotificationResult
	if participates(provider.CategoryNotifications) {
		if !filter.Active() && !blank && len(apps) > 0 {
			related = RelatedNotifications(in.Notifications, packagesOf(apps), in.NotificationOptions)
		}
		if filter.Category == provider.CategoryNotifications {
			shown := make(map[string]bool, len(related))
			for _, r := range related {
				shown[r.NotificationKey] = true
			}
			others = AllNotifications(in.Notifications, shown, in.NotificationOptions)
		}
	}

	var contacts []ContactResult
	if participates(provider.CategoryContacts) {
		contacts = in.Contacts
	}

	var smart []ActionResult
	if !filter.Active() {
		smart = smartActions(query, reg, len(apps), contacts)
	}

	var primary *SearchTemplateResult
	var templates []SearchTemplateResult
	if participates(provider.CategorySearch) {
		primary, templates = BuildSearchTemplates(query, reg)
	}

	var quick []ActionResult
	if participates(provider.CategoryAction) {
		quick = e.actions.Match(query)
	}

	b := sectionBuilder{reg: reg}
	b.add(provider.CategoryApps, "", TitleApps, appItems(apps))
	b.add(provider.CategoryNotifications, "", "", notificationItems(related))
	b.add(provider.CategoryNotifications, "", TitleNotifications, notificationItems(others))
	b.add(provider.CategoryAction, SmartActionsProviderID, TitleSmartActions, actionItems(smart))
	b.add(provider.CategoryContacts, "", TitleContacts, contactItems(contacts))
	if primary != nil {
		b.add(provider.CategorySearch, primary.ProviderID, "", []ResultItem{*primary})
	}
	b.add(provider.CategorySearch, SearchesProviderID, TitleMoreSearches, templateItems(templates))
	b.add(provider.CategoryAction, "", TitleQuickActions, actionItems(quick))

	debuglog.Debugf("search %q filter=%s: %d sections", query, filter.Category, len(b.sections))
	return State{Query: query, Filter: filter.Category, Sections: b.sections}
}

// smartActions suggests cross-category shortcuts: call or text the only
// matching contact, and a web search when few local results matched.
func smartActions(query string, reg *provider.Registry, appCount int, contacts []ContactResult) []ActionResult {
	var out []ActionResult
	if len(contacts) == 1 {
		c := contacts[0]
		if number := strings.TrimSpace(c.Subtitle); number != "" {
			out = append(out,
				ActionResult{ActionID: SmartCallID, Title: "Call " + c.Title, Subtitle: number, Argument: number},
				ActionResult{ActionID: SmartTextID, Title: "Text " + c.Title, Subtitle: number, Argument: number},
			)
		}
	}

	q := strings.TrimSpace(query)
	appsFew := reg.IsEnabled(provider.CategoryApps) && appCount <= maxFallbackCount
	contactsFew := reg.IsEnabled(provider.CategoryContacts) && len(contacts) <= maxFallbackCount
	if q != "" && appsFew && contactsFew {
		out = append(out, ActionResult{
			ActionID: SmartSearchWebID,
			Title:    `Search Web for "` + q + `"`,
			Argument: q,
		})
	}
	return out
}

func packagesOf(entries []storage.Entry) []string {
	seen := make(map[string]bool, len(entries))
	var out []string
	for _, e := range entries {
		pkg := e.Package()
		if pkg == "" || seen[pkg] {
			continue
		}
		seen[pkg] = true
		out = append(out, pkg)
	}
	return out
}

type sectionBuilder struct {
	reg      *provider.Registry
	sections []Section
}

// add appends a section unless items is empty. An empty providerID resolves
// to the first enabled provider of the category.
func (b *sectionBuilder) add(category provider.Category, providerID, title string, items []ResultItem) {
	if len(items) == 0 {
		return
	}
	if providerID == "" {
		if cfg, ok := b.reg.First(category); ok {
			providerID = cfg.ID
		}
	}
	b.sections = append(b.sections, Section{
		ProviderID: providerID,
		Title:      title,
		Category:   category,
		Items:      items,
	})
}

func appItems(entries []storage.Entry) []ResultItem {
	out := make([]ResultItem, len(entries))
	for i, e := range entries {
		out[i] = AppResult{EntryID: e.ID}
	}
	return out
}

func notificationItems(results []NotificationResult) []ResultItem {
	out := make([]ResultItem, len(results))
	for i, r := range results {
		out[i] = r
	}
	return out
}

func actionItems(actions []ActionResult) []ResultItem {
	out := make([]ResultItem, len(actions))
	for i, a := range actions {
		out[i] = a
	}
	return out
}

func contactItems(contacts []ContactResult) []ResultItem {
	out := make([]ResultItem, len(contacts))
	for i, c := range contacts {
		out[i] = c
	}
	return out
}

func templateItems(templates []SearchTemplateResult) []ResultItem {
	out := make([]ResultItem, len(templates))
	for i, t := range templates {
		out[i] = t
	}
	return out
}
