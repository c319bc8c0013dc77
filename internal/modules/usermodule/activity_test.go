package usermodule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sphildreth/melodee/internal/database"
)

// activityFixture opens a fresh database with one user and a small
// catalog tree: one artist, one album, one disc and three songs.
func activityFixture(t *testing.T) (*gorm.DB, *database.User, []database.Song) {
	t.Helper()
	db, err := database.OpenForTesting()
	require.NoError(t, err)

	user := &database.User{PasswordEncrypted: "x"}
	user.SetUserName("listener")
	user.SetEmail("listener@example.com")
	require.NoError(t, db.Create(user).Error)

	lib := &database.Library{Path: "/music", Type: database.LibraryTypeStorage}
	require.NoError(t, db.Create(lib).Error)

	artist := &database.Artist{LibraryID: lib.ID}
	artist.SetName(database.NewNameInfo("Yo La Tengo"))
	require.NoError(t, db.Create(artist).Error)

	album := &database.Album{ArtistID: artist.ID, ReleaseDate: time.Date(1997, 4, 22, 0, 0, 0, 0, time.UTC)}
	album.SetName(database.NewNameInfo("I Can Hear the Heart Beating as One"))
	require.NoError(t, db.Create(album).Error)

	disc := &database.AlbumDisc{AlbumID: album.ID, DiscNumber: 1}
	require.NoError(t, db.Create(disc).Error)

	songs := make([]database.Song, 3)
	for n := range songs {
		song := database.Song{
			AlbumDiscID: disc.ID,
			SongNumber:  n + 1,
			FileName:    "track.flac",
			FileHash:    string(rune('a' + n)),
			Duration:    200,
		}
		song.SetTitle(database.NewNameInfo("Track"))
		require.NoError(t, db.Create(&song).Error)
		songs[n] = song
	}
	return db, user, songs
}

func TestStarAndUnstar(t *testing.T) {
	db, user, songs := activityFixture(t)
	tracker := NewActivityTracker(db, nil)
	ctx := context.Background()

	require.NoError(t, tracker.Star(ctx, user.ID, songs[0].ID, TargetSong))

	var row database.UserSong
	require.NoError(t, db.Where("user_id = ? AND song_id = ?", user.ID, songs[0].ID).First(&row).Error)
	assert.True(t, row.IsStarred)
	assert.NotNil(t, row.StarredAt)

	require.NoError(t, tracker.Unstar(ctx, user.ID, songs[0].ID, TargetSong))
	row = database.UserSong{}
	require.NoError(t, db.Where("user_id = ? AND song_id = ?", user.ID, songs[0].ID).First(&row).Error)
	assert.False(t, row.IsStarred)
	assert.Nil(t, row.StarredAt)
}

func TestStarIsIndependentPerTargetType(t *testing.T) {
	db, user, _ := activityFixture(t)
	tracker := NewActivityTracker(db, nil)
	ctx := context.Background()

	var artist database.Artist
	require.NoError(t, db.First(&artist).Error)
	var album database.Album
	require.NoError(t, db.First(&album).Error)

	require.NoError(t, tracker.Star(ctx, user.ID, artist.ID, TargetArtist))
	require.NoError(t, tracker.Star(ctx, user.ID, album.ID, TargetAlbum))

	var artistRows, albumRows, songRows int64
	db.Model(&database.UserArtist{}).Count(&artistRows)
	db.Model(&database.UserAlbum{}).Count(&albumRows)
	db.Model(&database.UserSong{}).Count(&songRows)
	assert.Equal(t, int64(1), artistRows)
	assert.Equal(t, int64(1), albumRows)
	assert.Equal(t, int64(0), songRows)
}

func TestSetRatingBounds(t *testing.T) {
	db, user, songs := activityFixture(t)
	tracker := NewActivityTracker(db, nil)
	ctx := context.Background()

	assert.ErrorIs(t, tracker.SetRating(ctx, user.ID, songs[0].ID, TargetSong, 6), database.ErrConstraintViolation)
	assert.ErrorIs(t, tracker.SetRating(ctx, user.ID, songs[0].ID, TargetSong, -1), database.ErrConstraintViolation)

	require.NoError(t, tracker.SetRating(ctx, user.ID, songs[0].ID, TargetSong, 5))

	var row database.UserSong
	require.NoError(t, db.Where("user_id = ? AND song_id = ?", user.ID, songs[0].ID).First(&row).Error)
	assert.Equal(t, 5, row.Rating)
}

func TestRecordPlayAggregates(t *testing.T) {
	db, user, songs := activityFixture(t)
	tracker := NewActivityTracker(db, nil)
	ctx := context.Background()

	playedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, tracker.RecordPlay(ctx, user.ID, songs[0].ID, playedAt))
	require.NoError(t, tracker.RecordPlay(ctx, user.ID, songs[0].ID, playedAt.Add(time.Hour)))

	var row database.UserSong
	require.NoError(t, db.Where("user_id = ? AND song_id = ?", user.ID, songs[0].ID).First(&row).Error)
	assert.Equal(t, 2, row.PlayedCount)
	require.NotNil(t, row.LastPlayedAt)

	// Plays roll up to the album activity row as well.
	var albumRow database.UserAlbum
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&albumRow).Error)
	assert.Equal(t, 2, albumRow.PlayedCount)
}

func TestScrobbleRequiresPlay(t *testing.T) {
	db, user, songs := activityFixture(t)
	tracker := NewActivityTracker(db, nil)
	ctx := context.Background()
	playedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	err := tracker.RecordScrobble(ctx, user.ID, songs[0].ID, "https://last.fm", playedAt)
	assert.ErrorIs(t, err, database.ErrConstraintViolation)

	require.NoError(t, tracker.RecordPlay(ctx, user.ID, songs[0].ID, playedAt))
	require.NoError(t, tracker.RecordScrobble(ctx, user.ID, songs[0].ID, "https://last.fm", playedAt))

	// The same (service, song, timestamp) tuple is rejected; a later
	// play of the same song is fine.
	err = tracker.RecordScrobble(ctx, user.ID, songs[0].ID, "https://last.fm", playedAt)
	assert.ErrorIs(t, err, database.ErrConstraintViolation)
	require.NoError(t, tracker.RecordScrobble(ctx, user.ID, songs[0].ID, "https://last.fm", playedAt.Add(time.Minute)))
}

func TestScrobbleFailureDoesNotUnwindPlay(t *testing.T) {
	db, user, songs := activityFixture(t)
	tracker := NewActivityTracker(db, nil)
	ctx := context.Background()
	playedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, tracker.RecordPlay(ctx, user.ID, songs[0].ID, playedAt))
	require.NoError(t, tracker.RecordScrobble(ctx, user.ID, songs[0].ID, "https://last.fm", playedAt))

	require.NoError(t, tracker.RecordPlay(ctx, user.ID, songs[0].ID, playedAt))
	// Duplicate scrobble fails, but the second play above already stuck.
	_ = tracker.RecordScrobble(ctx, user.ID, songs[0].ID, "https://last.fm", playedAt)

	var row database.UserSong
	require.NoError(t, db.Where("user_id = ? AND song_id = ?", user.ID, songs[0].ID).First(&row).Error)
	assert.Equal(t, 2, row.PlayedCount)
}

func TestQueueOrderingAndCursor(t *testing.T) {
	db, user, songs := activityFixture(t)
	tracker := NewActivityTracker(db, nil)
	ctx := context.Background()

	for _, song := range songs {
		require.NoError(t, tracker.Enqueue(ctx, user.ID, song.ID, "test"))
	}

	entries, err := tracker.Queue(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, songs[0].APIKey, entries[0].SongAPIKey)

	// Move the last song between the first two without renumbering.
	require.NoError(t, tracker.SetQueuePosition(ctx, user.ID, songs[2].ID, 1.5))
	entries, err = tracker.Queue(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, songs[2].APIKey, entries[1].SongAPIKey)

	// The cursor flip is atomic: exactly one current song at all times.
	require.NoError(t, tracker.SetCurrentSong(ctx, user.ID, songs[0].ID, "test"))
	require.NoError(t, tracker.SetCurrentSong(ctx, user.ID, songs[1].ID, "test"))

	var current int64
	require.NoError(t, db.Model(&database.PlayQueue{}).
		Where("user_id = ? AND is_current_song = ?", user.ID, true).
		Count(&current).Error)
	assert.Equal(t, int64(1), current)

	entry, err := tracker.CurrentSong(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, songs[1].ID, entry.SongID)
}

func TestSetCurrentSongRequiresQueuedRow(t *testing.T) {
	db, user, songs := activityFixture(t)
	tracker := NewActivityTracker(db, nil)
	ctx := context.Background()

	err := tracker.SetCurrentSong(ctx, user.ID, songs[0].ID, "test")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestQueueRejectsDuplicateSong(t *testing.T) {
	db, user, songs := activityFixture(t)
	tracker := NewActivityTracker(db, nil)
	ctx := context.Background()

	require.NoError(t, tracker.Enqueue(ctx, user.ID, songs[0].ID, "test"))
	err := tracker.Enqueue(ctx, user.ID, songs[0].ID, "test")
	assert.ErrorIs(t, err, database.ErrConstraintViolation)
}

func TestDequeueAndNotFound(t *testing.T) {
	db, user, songs := activityFixture(t)
	tracker := NewActivityTracker(db, nil)
	ctx := context.Background()

	require.NoError(t, tracker.Enqueue(ctx, user.ID, songs[0].ID, "test"))
	require.NoError(t, tracker.Dequeue(ctx, user.ID, songs[0].ID))
	assert.ErrorIs(t, tracker.Dequeue(ctx, user.ID, songs[0].ID), database.ErrNotFound)
}

func TestBookmarkUpsert(t *testing.T) {
	db, user, songs := activityFixture(t)
	tracker := NewActivityTracker(db, nil)
	ctx := context.Background()

	require.NoError(t, tracker.SaveBookmark(ctx, user.ID, songs[0].ID, 42.5, "first"))
	require.NoError(t, tracker.SaveBookmark(ctx, user.ID, songs[0].ID, 99.0, "later"))

	var bookmarks []database.Bookmark
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&bookmarks).Error)
	require.Len(t, bookmarks, 1)
	assert.Equal(t, 99.0, bookmarks[0].Position)
	assert.Equal(t, "later", bookmarks[0].Comment)

	require.NoError(t, tracker.DeleteBookmark(ctx, user.ID, songs[0].ID))
	assert.ErrorIs(t, tracker.DeleteBookmark(ctx, user.ID, songs[0].ID), database.ErrNotFound)
}
