package usermodule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sphildreth/melodee/internal/database"
)

func TestPlaylistNameUniquePerOwner(t *testing.T) {
	db, user, _ := activityFixture(t)
	repo := NewPlaylistRepo(db)
	ctx := context.Background()

	first := &database.Playlist{UserID: user.ID, Name: "Morning"}
	require.NoError(t, repo.Create(ctx, first))

	dup := &database.Playlist{UserID: user.ID, Name: "Morning"}
	assert.ErrorIs(t, repo.Create(ctx, dup), database.ErrConstraintViolation)

	// Another user may reuse the name.
	other := &database.User{PasswordEncrypted: "x"}
	other.SetUserName("second")
	other.SetEmail("second@example.com")
	require.NoError(t, db.Create(other).Error)
	theirs := &database.Playlist{UserID: other.ID, Name: "Morning"}
	assert.NoError(t, repo.Create(ctx, theirs))
}

func TestPlaylistOrderingAndMembership(t *testing.T) {
	db, user, songs := activityFixture(t)
	repo := NewPlaylistRepo(db)
	ctx := context.Background()

	playlist := &database.Playlist{UserID: user.ID, Name: "Mix"}
	require.NoError(t, repo.Create(ctx, playlist))

	for _, song := range songs {
		require.NoError(t, repo.AddSong(ctx, playlist.ID, song.ID))
	}

	// A song appears at most once per playlist.
	assert.ErrorIs(t, repo.AddSong(ctx, playlist.ID, songs[0].ID), database.ErrConstraintViolation)

	entries, err := repo.Songs(ctx, playlist.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, entry := range entries {
		assert.Equal(t, i+1, entry.PlaylistOrder)
		assert.Equal(t, songs[i].APIKey, entry.SongAPIKey)
	}

	require.NoError(t, repo.RemoveSong(ctx, playlist.ID, songs[1].ID))
	entries, err = repo.Songs(ctx, playlist.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, songs[0].APIKey, entries[0].SongAPIKey)
	assert.Equal(t, songs[2].APIKey, entries[1].SongAPIKey)
}

func TestPlaylistRecomputeAggregates(t *testing.T) {
	db, user, songs := activityFixture(t)
	repo := NewPlaylistRepo(db)
	ctx := context.Background()

	playlist := &database.Playlist{UserID: user.ID, Name: "Agg"}
	require.NoError(t, repo.Create(ctx, playlist))
	for _, song := range songs {
		require.NoError(t, repo.AddSong(ctx, playlist.ID, song.ID))
	}

	require.NoError(t, repo.RecomputeAggregates(ctx, playlist.ID))

	reloaded, err := repo.GetByID(ctx, playlist.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.SongCount)
	assert.InDelta(t, 600.0, reloaded.Duration, 0.01)
}

func TestPlaylistDeleteRemovesMembershipNotSongs(t *testing.T) {
	db, user, songs := activityFixture(t)
	repo := NewPlaylistRepo(db)
	ctx := context.Background()

	playlist := &database.Playlist{UserID: user.ID, Name: "Doomed"}
	require.NoError(t, repo.Create(ctx, playlist))
	require.NoError(t, repo.AddSong(ctx, playlist.ID, songs[0].ID))

	require.NoError(t, repo.Delete(ctx, playlist.ID))

	var membership, catalogSongs int64
	db.Model(&database.PlaylistSong{}).Count(&membership)
	db.Model(&database.Song{}).Count(&catalogSongs)
	assert.Zero(t, membership)
	assert.Equal(t, int64(3), catalogSongs)
}

func TestLockedPlaylistRejectsMutation(t *testing.T) {
	db, user, _ := activityFixture(t)
	repo := NewPlaylistRepo(db)
	ctx := context.Background()

	playlist := &database.Playlist{UserID: user.ID, Name: "Frozen"}
	require.NoError(t, repo.Create(ctx, playlist))
	require.NoError(t, db.Model(playlist).Update("is_locked", true).Error)

	playlist.Name = "Thawed"
	assert.ErrorIs(t, repo.Update(ctx, playlist), database.ErrLocked)
	assert.ErrorIs(t, repo.Delete(ctx, playlist.ID), database.ErrLocked)

	playlist.IsLocked = true
	require.NoError(t, repo.Elevated().Update(ctx, playlist))
	require.NoError(t, repo.Elevated().Delete(ctx, playlist.ID))
}
