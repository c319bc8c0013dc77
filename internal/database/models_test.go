package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenForTesting()
	require.NoError(t, err)
	return db
}

func seedLibrary(t *testing.T, db *gorm.DB, typ LibraryType) *Library {
	t.Helper()
	lib := &Library{Path: "/music/" + string(typ), Type: typ}
	require.NoError(t, db.Create(lib).Error)
	return lib
}

func seedArtist(t *testing.T, db *gorm.DB, lib *Library, name string) *Artist {
	t.Helper()
	artist := &Artist{LibraryID: lib.ID}
	artist.SetName(NewNameInfo(name))
	require.NoError(t, db.Create(artist).Error)
	return artist
}

func seedAlbumTree(t *testing.T, db *gorm.DB, artist *Artist, albumName string) (*Album, *AlbumDisc, *Song) {
	t.Helper()
	album := &Album{ArtistID: artist.ID, ReleaseDate: time.Date(1997, 5, 1, 0, 0, 0, 0, time.UTC)}
	album.SetName(NewNameInfo(albumName))
	require.NoError(t, db.Create(album).Error)

	disc := &AlbumDisc{AlbumID: album.ID, DiscNumber: 1}
	require.NoError(t, db.Create(disc).Error)

	song := &Song{
		AlbumDiscID: disc.ID,
		SongNumber:  1,
		FileName:    "01-track.flac",
		FileHash:    "aa11",
	}
	song.SetTitle(NewNameInfo("Opening Track"))
	require.NoError(t, db.Create(song).Error)
	return album, disc, song
}

func seedUser(t *testing.T, db *gorm.DB, name string) *User {
	t.Helper()
	user := &User{PasswordEncrypted: "x"}
	user.SetUserName(name)
	user.SetEmail(name + "@example.com")
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestApiKeyAssignedOnCreate(t *testing.T) {
	db := testDB(t)
	lib := seedLibrary(t, db, LibraryTypeStorage)
	assert.NotEmpty(t, lib.APIKey)
	assert.Len(t, lib.APIKey, 36)
}

func TestLibraryTypeUnique(t *testing.T) {
	db := testDB(t)
	seedLibrary(t, db, LibraryTypeStorage)

	dup := &Library{Path: "/elsewhere", Type: LibraryTypeStorage}
	err := db.Create(dup).Error
	require.Error(t, err)
	assert.ErrorIs(t, TranslateError(err), ErrConstraintViolation)

	// A different type is fine.
	seedLibrary(t, db, LibraryTypeInbound)
}

func TestArtistUniquePerLibrary(t *testing.T) {
	db := testDB(t)
	lib := seedLibrary(t, db, LibraryTypeStorage)
	seedArtist(t, db, lib, "Radiohead")

	dup := &Artist{LibraryID: lib.ID}
	dup.SetName(NewNameInfo("Radiohead"))
	err := db.Create(dup).Error
	require.Error(t, err)
	assert.ErrorIs(t, TranslateError(err), ErrConstraintViolation)

	// Same name in another library is a distinct artist.
	other := seedLibrary(t, db, LibraryTypeStaging)
	seedArtist(t, db, other, "Radiohead")
}

func TestArtistNormalizedCollision(t *testing.T) {
	db := testDB(t)
	lib := seedLibrary(t, db, LibraryTypeStorage)
	seedArtist(t, db, lib, "Björk")

	// Distinct display names that normalize identically collide.
	dup := &Artist{LibraryID: lib.ID}
	dup.SetName(NewNameInfo("bjork"))
	err := db.Create(dup).Error
	require.Error(t, err)
	assert.ErrorIs(t, TranslateError(err), ErrConstraintViolation)
}

func TestSongNumberUniquePerDisc(t *testing.T) {
	db := testDB(t)
	lib := seedLibrary(t, db, LibraryTypeStorage)
	artist := seedArtist(t, db, lib, "Portishead")
	_, disc, _ := seedAlbumTree(t, db, artist, "Dummy")

	dup := &Song{AlbumDiscID: disc.ID, SongNumber: 1, FileName: "dupe.flac", FileHash: "bb22"}
	dup.SetTitle(NewNameInfo("Duplicate Number"))
	err := db.Create(dup).Error
	require.Error(t, err)
	assert.ErrorIs(t, TranslateError(err), ErrConstraintViolation)
}

func TestLibraryDeleteCascadesToSongs(t *testing.T) {
	db := testDB(t)
	lib := seedLibrary(t, db, LibraryTypeStorage)
	artist := seedArtist(t, db, lib, "Massive Attack")
	seedAlbumTree(t, db, artist, "Mezzanine")

	require.NoError(t, db.Delete(&Library{}, lib.ID).Error)

	var artists, albums, discs, songs int64
	db.Model(&Artist{}).Count(&artists)
	db.Model(&Album{}).Count(&albums)
	db.Model(&AlbumDisc{}).Count(&discs)
	db.Model(&Song{}).Count(&songs)
	assert.Zero(t, artists)
	assert.Zero(t, albums)
	assert.Zero(t, discs)
	assert.Zero(t, songs)
}

func TestContributorArtistSetNull(t *testing.T) {
	db := testDB(t)
	lib := seedLibrary(t, db, LibraryTypeStorage)
	artist := seedArtist(t, db, lib, "Tricky")
	album, _, song := seedAlbumTree(t, db, artist, "Maxinquaye")

	guest := seedArtist(t, db, lib, "Martina Topley-Bird")
	contrib := &Contributor{
		AlbumID:         album.ID,
		SongID:          &song.ID,
		ArtistID:        &guest.ID,
		Role:            "vocals",
		ContributorType: ContributorTypeFeatured,
	}
	require.NoError(t, db.Create(contrib).Error)

	require.NoError(t, db.Delete(&Artist{}, guest.ID).Error)

	var reloaded Contributor
	require.NoError(t, db.First(&reloaded, contrib.ID).Error)
	assert.Nil(t, reloaded.ArtistID)
	assert.Equal(t, album.ID, reloaded.AlbumID)
}

func TestUserDeleteCascadesActivity(t *testing.T) {
	db := testDB(t)
	lib := seedLibrary(t, db, LibraryTypeStorage)
	artist := seedArtist(t, db, lib, "Air")
	_, _, song := seedAlbumTree(t, db, artist, "Moon Safari")
	user := seedUser(t, db, "alice")

	require.NoError(t, db.Create(&UserSong{UserID: user.ID, SongID: song.ID, IsStarred: true}).Error)
	require.NoError(t, db.Create(&Bookmark{UserID: user.ID, SongID: song.ID, Position: 42.5}).Error)
	require.NoError(t, db.Create(&PlayQueue{UserID: user.ID, SongID: song.ID, SongAPIKey: song.APIKey}).Error)

	require.NoError(t, db.Delete(&User{}, user.ID).Error)

	var userSongs, bookmarks, queue int64
	db.Model(&UserSong{}).Count(&userSongs)
	db.Model(&Bookmark{}).Count(&bookmarks)
	db.Model(&PlayQueue{}).Count(&queue)
	assert.Zero(t, userSongs)
	assert.Zero(t, bookmarks)
	assert.Zero(t, queue)

	// The catalog is untouched.
	var songs int64
	db.Model(&Song{}).Count(&songs)
	assert.EqualValues(t, 1, songs)
}

func TestUserNameUnique(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "alice")

	dup := &User{PasswordEncrypted: "x"}
	dup.SetUserName("alice")
	dup.SetEmail("alice2@example.com")
	err := db.Create(dup).Error
	require.Error(t, err)
	assert.ErrorIs(t, TranslateError(err), ErrConstraintViolation)
}

func TestScrobbleTupleUnique(t *testing.T) {
	db := testDB(t)
	lib := seedLibrary(t, db, LibraryTypeStorage)
	artist := seedArtist(t, db, lib, "Boards of Canada")
	_, _, song := seedAlbumTree(t, db, artist, "Geogaddi")
	user := seedUser(t, db, "bob")

	scrobble := &Scrobble{UserID: user.ID, ServiceURL: "https://last.fm", SongID: song.ID, PlayTimeInMs: 1000}
	require.NoError(t, db.Create(scrobble).Error)

	dup := &Scrobble{UserID: user.ID, ServiceURL: "https://last.fm", SongID: song.ID, PlayTimeInMs: 1000}
	err := db.Create(dup).Error
	require.Error(t, err)
	assert.ErrorIs(t, TranslateError(err), ErrConstraintViolation)

	// Same song at a later time is a new play.
	again := &Scrobble{UserID: user.ID, ServiceURL: "https://last.fm", SongID: song.ID, PlayTimeInMs: 2000}
	require.NoError(t, db.Create(again).Error)
}

func TestPlaylistNameUniquePerUser(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	require.NoError(t, db.Create(&Playlist{UserID: alice.ID, Name: "Favorites"}).Error)

	err := db.Create(&Playlist{UserID: alice.ID, Name: "Favorites"}).Error
	require.Error(t, err)
	assert.ErrorIs(t, TranslateError(err), ErrConstraintViolation)

	// Another user may reuse the name.
	require.NoError(t, db.Create(&Playlist{UserID: bob.ID, Name: "Favorites"}).Error)
}

func TestShareIsExpired(t *testing.T) {
	now := time.Now().UTC()
	share := &Share{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, share.IsExpired(now))
	assert.True(t, share.IsExpired(now.Add(time.Hour)))
	assert.True(t, share.IsExpired(now.Add(2*time.Hour)))
}

func TestExternalIDsRoundTrip(t *testing.T) {
	db := testDB(t)
	lib := seedLibrary(t, db, LibraryTypeStorage)

	artist := &Artist{LibraryID: lib.ID, ExternalIDs: ExternalIDs{
		ProviderMusicBrainz: "mbid-123",
		ProviderSpotify:     "spotify-456",
	}}
	artist.SetName(NewNameInfo("Aphex Twin"))
	require.NoError(t, db.Create(artist).Error)

	var reloaded Artist
	require.NoError(t, db.First(&reloaded, artist.ID).Error)
	assert.Equal(t, "mbid-123", reloaded.ExternalIDs[ProviderMusicBrainz])
	assert.Equal(t, "spotify-456", reloaded.ExternalIDs[ProviderSpotify])
}

func TestStringListRoundTrip(t *testing.T) {
	db := testDB(t)
	lib := seedLibrary(t, db, LibraryTypeStorage)
	artist := seedArtist(t, db, lib, "Autechre")

	album := &Album{
		ArtistID:    artist.ID,
		ReleaseDate: time.Date(1994, 11, 7, 0, 0, 0, 0, time.UTC),
		Genres:      StringList{"IDM", "Electronic"},
	}
	album.SetName(NewNameInfo("Amber"))
	require.NoError(t, db.Create(album).Error)

	var reloaded Album
	require.NoError(t, db.First(&reloaded, album.ID).Error)
	assert.Equal(t, StringList{"IDM", "Electronic"}, reloaded.Genres)
	assert.True(t, reloaded.Genres.Contains("IDM"))
	assert.False(t, reloaded.Genres.Contains("Jazz"))
}
