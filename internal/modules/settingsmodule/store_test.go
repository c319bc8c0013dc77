package settingsmodule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sphildreth/melodee/internal/database"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.OpenForTesting()
	require.NoError(t, err)
	return NewStore(db, nil)
}

func TestSetAndGetRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "search.default_page_size", "25"))

	v, err := store.GetInt(ctx, "search.default_page_size")
	require.NoError(t, err)
	assert.Equal(t, 25, v)

	// Overwrite keeps a single row.
	require.NoError(t, store.Set(ctx, "search.default_page_size", "100"))
	v, err = store.GetInt(ctx, "search.default_page_size")
	require.NoError(t, err)
	assert.Equal(t, 100, v)

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.NotNil(t, all[0].LastUpdatedAt)
}

func TestGetMissingKey(t *testing.T) {
	store := testStore(t)

	_, err := store.GetString(context.Background(), "no.such.key")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestMalformedValueIsParseError(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "transcoding.default_bitrate", "not-a-number"))

	_, err := store.GetInt(ctx, "transcoding.default_bitrate")
	assert.ErrorIs(t, err, database.ErrParse)
	assert.NotErrorIs(t, err, database.ErrNotFound)

	_, err = store.GetBool(ctx, "transcoding.default_bitrate")
	assert.ErrorIs(t, err, database.ErrParse)
}

func TestTypedAccessors(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "scrobbling.enabled", "true"))
	require.NoError(t, store.Set(ctx, "scrobbling.minimum_play_duration", "45s"))
	require.NoError(t, store.Set(ctx, "processing.duplicate_threshold", "0.9"))
	require.NoError(t, store.Set(ctx, "processing.ignored_file_patterns", `["*.tmp","*.bak"]`))

	b, err := store.GetBool(ctx, "scrobbling.enabled")
	require.NoError(t, err)
	assert.True(t, b)

	d, err := store.GetDuration(ctx, "scrobbling.minimum_play_duration")
	require.NoError(t, err)
	assert.Equal(t, "45s", d.String())

	f, err := store.GetFloat(ctx, "processing.duplicate_threshold")
	require.NoError(t, err)
	assert.InDelta(t, 0.9, f, 1e-9)

	list, err := store.GetStringList(ctx, "processing.ignored_file_patterns")
	require.NoError(t, err)
	assert.Equal(t, []string{"*.tmp", "*.bak"}, list)
}

func TestSeedDefaults(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	// A pre-existing value survives seeding.
	require.NoError(t, store.Set(ctx, "search.default_page_size", "10"))

	require.NoError(t, store.SeedDefaults(ctx))

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(Keys))

	v, err := store.GetInt(ctx, "search.default_page_size")
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	// Seeding twice inserts nothing new.
	require.NoError(t, store.SeedDefaults(ctx))
	again, err := store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, again, len(all))
}

func TestListByCategory(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.SeedDefaults(ctx))

	imaging, err := store.ListByCategory(ctx, database.SettingCategoryImaging)
	require.NoError(t, err)
	require.NotEmpty(t, imaging)
	for _, s := range imaging {
		assert.Equal(t, database.SettingCategoryImaging, s.Category)
	}

	// Ordered by key.
	for i := 1; i < len(imaging); i++ {
		assert.Less(t, imaging[i-1].Key, imaging[i].Key)
	}
}

func TestLockedSettingRejectsWrites(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "scrobbling.enabled", "true"))

	setting, err := store.Get(ctx, "scrobbling.enabled")
	require.NoError(t, err)
	assert.NotEmpty(t, setting.APIKey)

	setting.IsLocked = true
	require.NoError(t, store.db.Save(setting).Error)

	assert.ErrorIs(t, store.Set(ctx, "scrobbling.enabled", "false"), database.ErrLocked)
	assert.ErrorIs(t, store.Delete(ctx, "scrobbling.enabled"), database.ErrLocked)

	v, err := store.GetBool(ctx, "scrobbling.enabled")
	require.NoError(t, err)
	assert.True(t, v)

	// An elevated store bypasses the lock.
	require.NoError(t, store.Elevated().Set(ctx, "scrobbling.enabled", "false"))
	v, err = store.GetBool(ctx, "scrobbling.enabled")
	require.NoError(t, err)
	assert.False(t, v)

	require.NoError(t, store.Elevated().Delete(ctx, "scrobbling.enabled"))
	_, err = store.Get(ctx, "scrobbling.enabled")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestSetAssignsAPIKey(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "search.default_page_size", "25"))
	require.NoError(t, store.Set(ctx, "transcoding.enabled", "true"))

	a, err := store.Get(ctx, "search.default_page_size")
	require.NoError(t, err)
	b, err := store.Get(ctx, "transcoding.enabled")
	require.NoError(t, err)

	assert.NotEmpty(t, a.APIKey)
	assert.NotEmpty(t, b.APIKey)
	assert.NotEqual(t, a.APIKey, b.APIKey)
}

func TestDeleteSetting(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "transcoding.enabled", "true"))
	require.NoError(t, store.Delete(ctx, "transcoding.enabled"))

	_, err := store.Get(ctx, "transcoding.enabled")
	assert.ErrorIs(t, err, database.ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "transcoding.enabled"), database.ErrNotFound)
}
