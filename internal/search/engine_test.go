package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/justtype/internal/notify"
	"github.com/pders01/justtype/internal/provider"
	"github.com/pders01/justtype/internal/storage"
)

func testRegistry(overrides ...func(*provider.Config)) *provider.Registry {
	configs := append([]provider.Config{
		{ID: "apps", Category: provider.CategoryApps, Enabled: true},
		{ID: "notifications", Category: provider.CategoryNotifications, Enabled: true},
		{ID: "actions", Category: provider.CategoryAction, Enabled: true},
		{ID: "contacts", Category: provider.CategoryContacts, Enabled: true},
	}, searchConfigs()...)
	for i := range configs {
		for _, o := range overrides {
			o(&configs[i])
		}
	}
	return provider.NewRegistry(configs, 1, "google")
}

func disable(id string) func(*provider.Config) {
	return func(c *provider.Config) {
		if c.ID == id {
			c.Enabled = false
		}
	}
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewDefaultEngine()
	require.NoError(t, err)
	return e
}

// slot maps a section to its position in the fixed assembly order.
func slot(s Section) int {
	switch {
	case s.Title == TitleApps:
		return 0
	case s.Title == "" && s.Category == provider.CategoryNotifications:
		return 1
	case s.Title == TitleNotifications:
		return 2
	case s.Title == TitleSmartActions:
		return 3
	case s.Title == TitleContacts:
		return 4
	case s.Title == "" && s.Category == provider.CategorySearch:
		return 5
	case s.Title == TitleMoreSearches:
		return 6
	case s.Title == TitleQuickActions:
		return 7
	}
	return -1
}

func sectionTitles(state State) []string {
	titles := make([]string, len(state.Sections))
	for i, s := range state.Sections {
		titles[i] = s.Title
	}
	return titles
}

func assertWellFormed(t *testing.T, state State) {
	t.Helper()
	prev := -1
	for _, s := range state.Sections {
		require.NotEmpty(t, s.Items, "section %q", s.Title)
		cur := slot(s)
		require.GreaterOrEqual(t, cur, 0, "unknown section %q", s.Title)
		require.Greater(t, cur, prev, "section %q out of order", s.Title)
		prev = cur
	}
}

func TestSearchScenarioAppsFilter(t *testing.T) {
	ix := newTestIndex(t, surface("n", "com.android.chrome", "chrome update", 0))
	state := testEngine(t).Search(Input{
		Query:         "@apps chrome",
		Entries:       []storage.Entry{{ID: "com.android.chrome/main", Title: "Chrome"}},
		Providers:     testRegistry(),
		Contacts:      []ContactResult{{ProviderID: "contacts", StableID: "1", Title: "Chrome Support", Subtitle: "555"}},
		Notifications: ix,
		Now:           testNow,
	})

	assert.Equal(t, provider.CategoryApps, state.Filter)
	assert.Equal(t, "chrome", state.Query)
	require.Len(t, state.Sections, 1)
	assert.Equal(t, TitleApps, state.Sections[0].Title)
	assert.Equal(t, "apps", state.Sections[0].ProviderID)
	assert.Equal(t, []ResultItem{AppResult{EntryID: "com.android.chrome/main"}}, state.Sections[0].Items)
}

func TestSearchScenarioBlankQueryPinnedAndRecent(t *testing.T) {
	state := testEngine(t).Search(Input{
		Entries: []storage.Entry{
			{ID: "c", Title: "Camera", LastLaunched: ago(time.Hour)},
			{ID: "a", Title: "Alpha", Pinned: true},
			{ID: "b", Title: "Beta", Pinned: true},
		},
		Providers: testRegistry(),
		Now:       testNow,
	})

	assertWellFormed(t, state)
	require.NotEmpty(t, state.Sections)
	assert.Equal(t, []ResultItem{AppResult{"a"}, AppResult{"b"}, AppResult{"c"}}, state.Sections[0].Items)
	assert.Equal(t, []string{TitleApps, TitleQuickActions}, sectionTitles(state))
}

func TestSearchScenarioNumericCall(t *testing.T) {
	state := testEngine(t).Search(Input{
		Query:     "call 555123",
		Entries:   []storage.Entry{{ID: "mail", Title: "Mail"}},
		Providers: testRegistry(),
		Now:       testNow,
	})

	assertWellFormed(t, state)
	assert.Equal(t, []string{TitleSmartActions, "", TitleMoreSearches, TitleQuickActions}, sectionTitles(state))

	quick := state.Sections[len(state.Sections)-1]
	require.Len(t, quick.Items, 1)
	assert.Equal(t, ActionResult{ActionID: "call", Title: `Call "555123"`, Subtitle: "Phone", Argument: "555123"}, quick.Items[0])

	smart := state.Sections[0]
	assert.Equal(t, SmartActionsProviderID, smart.ProviderID)
	assert.Equal(t, []ResultItem{ActionResult{ActionID: SmartSearchWebID, Title: `Search Web for "call 555123"`, Argument: "call 555123"}}, smart.Items)

	primary := state.Sections[1]
	assert.Equal(t, "google", primary.ProviderID)
	assert.Equal(t, []ResultItem{SearchTemplateResult{ProviderID: "google", Title: "Google", Query: "call 555123"}}, primary.Items)
}

func TestSearchScenarioRelatedNotificationsContinueApps(t *testing.T) {
	ix := newTestIndex(t,
		surface("msg", "com.alex.messenger", "Alex: lunch?", time.Minute),
		surface("other", "com.other", "alex mentioned you", 0),
	)
	state := testEngine(t).Search(Input{
		Query:         "alex",
		Entries:       []storage.Entry{{ID: "com.alex.messenger/main", Title: "Alex Messenger"}},
		Providers:     testRegistry(),
		Notifications: ix,
		Now:           testNow,
	})

	assertWellFormed(t, state)
	require.GreaterOrEqual(t, len(state.Sections), 2)
	assert.Equal(t, TitleApps, state.Sections[0].Title)

	related := state.Sections[1]
	assert.Equal(t, "", related.Title)
	assert.Equal(t, provider.CategoryNotifications, related.Category)
	assert.Equal(t, "notifications", related.ProviderID)
	require.Len(t, related.Items, 1)
	assert.Equal(t, "notification:msg", related.Items[0].Key())

	assert.NotContains(t, sectionTitles(state), TitleNotifications)
}

func TestSearchNoRelatedNotificationsForBlankQuery(t *testing.T) {
	ix := newTestIndex(t, surface("msg", "com.alex", "hi", 0))
	state := testEngine(t).Search(Input{
		Entries:       []storage.Entry{{ID: "com.alex/main", Title: "Alex", Pinned: true}},
		Providers:     testRegistry(),
		Notifications: ix,
		Now:           testNow,
	})

	for _, s := range state.Sections {
		assert.NotEqual(t, provider.CategoryNotifications, s.Category)
	}
}

func TestSearchNotificationsFilterListsEverything(t *testing.T) {
	ix := newTestIndex(t,
		surface("live", "com.a", "Build passed", time.Minute),
		surface("old", "com.b", "Package delivered", time.Hour),
	)
	require.True(t, ix.MarkDismissed("old"))

	state := testEngine(t).Search(Input{
		Query:         "@notif zzz",
		Entries:       []storage.Entry{{ID: "com.a/main", Title: "zzz"}},
		Providers:     testRegistry(),
		Notifications: ix.Snapshot(),
		Now:           testNow,
	})

	assert.Equal(t, provider.CategoryNotifications, state.Filter)
	require.Len(t, state.Sections, 1)
	sec := state.Sections[0]
	assert.Equal(t, TitleNotifications, sec.Title)
	require.Len(t, sec.Items, 2)
	assert.Equal(t, "notification:live", sec.Items[0].Key())
	assert.Equal(t, "notification:old", sec.Items[1].Key())
}

func TestSearchSmartContactActions(t *testing.T) {
	contact := ContactResult{ProviderID: "contacts", StableID: "7", Title: "Jo", Subtitle: "+1 555 0100"}
	in := Input{
		Query:     "jo",
		Providers: testRegistry(),
		Contacts:  []ContactResult{contact},
		Now:       testNow,
	}

	state := testEngine(t).Search(in)
	assertWellFormed(t, state)
	require.Equal(t, TitleSmartActions, state.Sections[0].Title)
	smart := state.Sections[0].Items
	require.Len(t, smart, 3)
	assert.Equal(t, ActionResult{ActionID: SmartCallID, Title: "Call Jo", Subtitle: "+1 555 0100", Argument: "+1 555 0100"}, smart[0])
	assert.Equal(t, SmartTextID, smart[1].(ActionResult).ActionID)
	assert.Equal(t, SmartSearchWebID, smart[2].(ActionResult).ActionID)
	assert.Equal(t, TitleContacts, state.Sections[1].Title)

	in.Query = "@contacts jo"
	state = testEngine(t).Search(in)
	assert.Equal(t, []string{TitleContacts}, sectionTitles(state))
}

func TestSearchSmartActionsNeedSingleContactWithNumber(t *testing.T) {
	in := Input{
		Query:     "jo",
		Providers: testRegistry(),
		Contacts: []ContactResult{
			{ProviderID: "contacts", StableID: "1", Title: "Jo", Subtitle: "555"},
			{ProviderID: "contacts", StableID: "2", Title: "Joe", Subtitle: "556"},
		},
		Now: testNow,
	}
	smart := smartActions(in.Query, in.Providers, 0, in.Contacts)
	assert.Equal(t, []string{SmartSearchWebID}, actionIDs(smart))

	smart = smartActions("jo", in.Providers, 0, []ContactResult{{Title: "Jo", Subtitle: "  "}})
	assert.Equal(t, []string{SmartSearchWebID}, actionIDs(smart))
}

func TestSearchWebFallbackSuppression(t *testing.T) {
	var many []ContactResult
	for _, id := range []string{"1", "2", "3", "4"} {
		many = append(many, ContactResult{ProviderID: "contacts", StableID: id, Title: "Sam " + id})
	}

	tests := []struct {
		name     string
		reg      *provider.Registry
		appCount int
		contacts []ContactResult
		query    string
		want     bool
	}{
		{name: "few results", reg: testRegistry(), appCount: 3, want: true, query: "sam"},
		{name: "many apps", reg: testRegistry(), appCount: 4, query: "sam"},
		{name: "many contacts", reg: testRegistry(), contacts: many, query: "sam"},
		{name: "apps disabled", reg: testRegistry(disable("apps")), query: "sam"},
		{name: "contacts disabled", reg: testRegistry(disable("contacts")), query: "sam"},
		{name: "blank query", reg: testRegistry(), query: " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := smartActions(tt.query, tt.reg, tt.appCount, tt.contacts)
			if tt.want {
				assert.Equal(t, []string{SmartSearchWebID}, actionIDs(got))
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestSearchDisabledCategoriesAreSkipped(t *testing.T) {
	reg := testRegistry(disable("apps"), disable("actions"), disable("google"), disable("ddg"), disable("wiki"))
	state := testEngine(t).Search(Input{
		Query:     "chrome",
		Entries:   []storage.Entry{{ID: "chrome", Title: "Chrome"}},
		Providers: reg,
		Now:       testNow,
	})

	assert.True(t, state.Empty())
}

func TestSearchSectionsAlwaysWellFormed(t *testing.T) {
	ix := newTestIndex(t,
		surface("n1", "com.mail", "Mail from Sam", time.Minute),
		surface("n2", "com.chat", "Sam says hi", 2*time.Minute),
	)
	require.True(t, ix.MarkDismissed("n2"))
	entries := []storage.Entry{
		{ID: "com.mail/inbox", Title: "Mail", Pinned: true},
		{ID: "com.chat/main", Title: "Chat", LastLaunched: ago(time.Hour)},
		{ID: "com.notes/main", Title: "Sam's Notes"},
	}
	contacts := []ContactResult{{ProviderID: "contacts", StableID: "s", Title: "Sam", Subtitle: "555 1234"}}

	queries := []string{
		"", " ", "sam", "mail", "new", "call 5551234", "555 1234", "@apps", "@apps ma",
		"@notifications", "@notif sam", "@contacts", "@actions", "@actions set alarm",
		"@search", "@search kittens", "@unknown sam", "zzz",
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			state := testEngine(t).Search(Input{
				Query:         q,
				Entries:       entries,
				Favorites:     []string{"com.chat/main"},
				Providers:     testRegistry(),
				Contacts:      contacts,
				Notifications: ix.Snapshot(),
				Now:           testNow,
			})
			assertWellFormed(t, state)
			if state.Filter != provider.CategoryNone {
				for _, s := range state.Sections {
					assert.Equal(t, state.Filter, s.Category)
				}
			}
		})
	}
}

func TestSearchUnknownFilterIsPlainText(t *testing.T) {
	state := testEngine(t).Search(Input{
		Query:     "@unknown",
		Providers: testRegistry(),
		Now:       testNow,
	})

	assert.Equal(t, provider.CategoryNone, state.Filter)
	assert.Equal(t, "@unknown", state.Query)
}

func TestSearchWithoutRegistry(t *testing.T) {
	state := testEngine(t).Search(Input{Query: "chrome", Entries: []storage.Entry{{ID: "c", Title: "Chrome"}}})
	assert.True(t, state.Empty())
}

func TestStateItemsFlattens(t *testing.T) {
	state := State{Sections: []Section{
		{Items: []ResultItem{AppResult{"a"}}},
		{Items: []ResultItem{ContactResult{ProviderID: "p", StableID: "1"}}},
	}}
	items := state.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "app:a", items[0].Key())
	assert.Equal(t, "contact:p:1", items[1].Key())
	assert.Equal(t, KindContact, items[1].Kind())
}

var _ notify.Reader = (*notify.Snapshot)(nil)
