package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/justtype/internal/provider"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_SeedDefaults(t *testing.T) {
	store := setupTestStore(t)
	defaults, err := provider.LoadDefaults()
	require.NoError(t, err)

	seeded, err := store.Seed(defaults)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = store.Seed(defaults)
	require.NoError(t, err)
	assert.False(t, seeded, "seeding twice must not overwrite user changes")

	reg, err := store.Registry()
	require.NoError(t, err)
	assert.Equal(t, int64(1), reg.Version())
	assert.Equal(t, defaults.DefaultSearch, reg.DefaultSearchID())
	assert.Len(t, reg.All(), len(defaults.Providers))
}

func TestStore_ProviderUpdatesBumpVersion(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.SaveProvider(provider.Config{ID: "apps", Category: provider.CategoryApps, Enabled: true}))
	require.NoError(t, store.SaveProvider(provider.Config{
		ID:          "ddg",
		Category:    provider.CategorySearch,
		Enabled:     true,
		Order:       2,
		URLTemplate: "https://duckduckgo.com/?q={searchTerms}",
	}))

	v, err := store.ProvidersVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	require.NoError(t, store.SetEnabled("apps", false))
	require.NoError(t, store.SetOrder("ddg", 0))
	require.NoError(t, store.SetDefaultSearch("ddg"))

	reg, err := store.Registry()
	require.NoError(t, err)
	assert.Equal(t, int64(5), reg.Version())
	assert.False(t, reg.IsEnabled(provider.CategoryApps))
	assert.Equal(t, "ddg", reg.DefaultSearchID())

	ddg, err := store.GetProvider("ddg")
	require.NoError(t, err)
	assert.Equal(t, 0, ddg.Order)
	assert.Equal(t, provider.CategorySearch, ddg.Category)
}

func TestStore_ProviderValidation(t *testing.T) {
	store := setupTestStore(t)

	tests := []struct {
		name string
		cfg  provider.Config
	}{
		{name: "missing id", cfg: provider.Config{Category: provider.CategoryApps}},
		{name: "missing category", cfg: provider.Config{ID: "x"}},
		{name: "template without placeholder", cfg: provider.Config{ID: "s", Category: provider.CategorySearch, URLTemplate: "https://example.com/"}},
		{name: "template with bad scheme", cfg: provider.Config{ID: "s", Category: provider.CategorySearch, URLTemplate: "javascript:{searchTerms}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, store.SaveProvider(tt.cfg))
		})
	}
}

func TestStore_SetDefaultSearchErrors(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.SaveProvider(provider.Config{ID: "apps", Category: provider.CategoryApps}))

	err := store.SetDefaultSearch("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Error(t, store.SetDefaultSearch("apps"))

	require.NoError(t, store.SetDefaultSearch(""))
	id, err := store.DefaultSearch()
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestStore_UpdateMissingProvider(t *testing.T) {
	store := setupTestStore(t)
	assert.ErrorIs(t, store.SetEnabled("nope", true), ErrNotFound)
	_, err := store.GetProvider("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Entries(t *testing.T) {
	store := setupTestStore(t)

	launched := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, store.SaveEntries([]Entry{
		{ID: "org.mozilla/.Main", Title: "firefox"},
		{ID: "com.chrome/.Main", Title: "Chrome", Pinned: true},
	}))
	require.NoError(t, store.MarkLaunched("com.chrome/.Main", launched))

	entries, err := store.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Chrome", entries[0].Title)
	require.NotNil(t, entries[0].LastLaunched)
	assert.True(t, entries[0].LastLaunched.Equal(launched))

	t.Run("refresh keeps launch history", func(t *testing.T) {
		require.NoError(t, store.SaveEntries([]Entry{{ID: "com.chrome/.Main", Title: "Chrome Beta"}}))
		entries, err := store.Entries()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.NotNil(t, entries[0].LastLaunched)
		assert.True(t, entries[0].LastLaunched.Equal(launched))
	})

	assert.ErrorIs(t, store.MarkLaunched("missing", launched), ErrNotFound)
}

func TestStore_Favorites(t *testing.T) {
	store := setupTestStore(t)

	favs, err := store.Favorites()
	require.NoError(t, err)
	assert.Empty(t, favs)

	require.NoError(t, store.SetFavorites([]string{"b", "a"}))
	favs, err = store.Favorites()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, favs)
}

func TestEntryPackage(t *testing.T) {
	assert.Equal(t, "com.chat", Entry{ID: "com.chat/.Main"}.Package())
	assert.Equal(t, "explicit", Entry{ID: "com.chat/.Main", PackageName: "explicit"}.Package())
	assert.Equal(t, "plain", Entry{ID: "plain"}.Package())
}
