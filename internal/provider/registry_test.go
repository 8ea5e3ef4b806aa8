package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOrdering(t *testing.T) {
	reg := NewRegistry([]Config{
		{ID: "b", Category: CategorySearch, Enabled: true, Order: 1},
		{ID: "a", Category: CategorySearch, Enabled: true, Order: 1},
		{ID: "z", Category: CategorySearch, Enabled: true, Order: 0},
		{ID: "apps", Category: CategoryApps, Enabled: true},
		{ID: "off", Category: CategorySearch, Enabled: false},
		{ID: "a", Category: CategoryContacts, Enabled: true},
		{ID: "bad", Category: CategoryNone, Enabled: true},
	}, 3, "a")

	var ids []string
	for _, c := range reg.ByCategory(CategorySearch) {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"z", "a", "b"}, ids)

	assert.Len(t, reg.All(), 5, "duplicate and invalid configs are dropped")
	assert.Equal(t, int64(3), reg.Version())
	assert.Equal(t, "a", reg.DefaultSearchID())
	assert.True(t, reg.IsEnabled(CategoryApps))
	assert.False(t, reg.IsEnabled(CategoryContacts))

	off, ok := reg.Lookup("off")
	require.True(t, ok)
	assert.False(t, off.Enabled)
}

func TestDefaultRegistry(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)

	for _, c := range Categories {
		assert.True(t, reg.IsEnabled(c), "category %s should ship enabled", c)
	}

	google, ok := reg.Lookup(reg.DefaultSearchID())
	require.True(t, ok)
	assert.True(t, google.Promotable)
	assert.Contains(t, google.URLTemplate, SearchTermsPlaceholder)
	assert.Equal(t, 1, google.SchemaVersion)
}

func TestExpandTemplate(t *testing.T) {
	got := ExpandTemplate("https://example.com/?q={searchTerms}", "go & rust")
	assert.Equal(t, "https://example.com/?q=go+%26+rust", got)
}

func TestConfigLabel(t *testing.T) {
	assert.Equal(t, "Google", Config{ID: "google", DisplayName: "Google"}.Label())
	assert.Equal(t, "ddg", Config{ID: "ddg", DisplayName: "  "}.Label())
}
