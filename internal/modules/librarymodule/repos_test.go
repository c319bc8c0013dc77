package librarymodule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sphildreth/melodee/internal/database"
)

func repoFixture(t *testing.T) (*gorm.DB, *database.Library) {
	t.Helper()
	db, err := database.OpenForTesting()
	require.NoError(t, err)
	lib := &database.Library{Path: "/music", Type: database.LibraryTypeStorage}
	require.NoError(t, db.Create(lib).Error)
	return db, lib
}

func newArtist(t *testing.T, db *gorm.DB, lib *database.Library, name string) *database.Artist {
	t.Helper()
	repo := NewArtistRepo(db)
	artist := &database.Artist{LibraryID: lib.ID}
	artist.SetName(database.NewNameInfo(name))
	require.NoError(t, repo.Create(context.Background(), artist))
	return artist
}

func TestLibraryRepoSingletonTypes(t *testing.T) {
	db, _ := repoFixture(t)
	repo := NewLibraryRepo(db)
	ctx := context.Background()

	err := repo.Create(ctx, &database.Library{Path: "/other", Type: database.LibraryTypeStorage})
	assert.ErrorIs(t, err, database.ErrConstraintViolation)

	err = repo.Create(ctx, &database.Library{Path: "/in", Type: "bogus"})
	assert.ErrorIs(t, err, database.ErrConstraintViolation)

	require.NoError(t, repo.Create(ctx, &database.Library{Path: "/in", Type: database.LibraryTypeInbound}))

	lib, err := repo.GetByType(ctx, database.LibraryTypeInbound)
	require.NoError(t, err)
	assert.Equal(t, "/in", lib.Path)
}

func TestArtistRepoNaturalKey(t *testing.T) {
	db, lib := repoFixture(t)
	repo := NewArtistRepo(db)
	ctx := context.Background()

	created := newArtist(t, db, lib, "Sigur Rós")

	found, err := repo.FindByNaturalKey(ctx, lib.ID, database.Normalize("Sigur Ros"))
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.FindByNaturalKey(ctx, lib.ID, "absent")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestDuplicateAlbumUnderArtist(t *testing.T) {
	db, lib := repoFixture(t)
	repo := NewAlbumRepo(db)
	ctx := context.Background()
	artist := newArtist(t, db, lib, "Foo")

	album := &database.Album{ArtistID: artist.ID, ReleaseDate: time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)}
	album.SetName(database.NewNameInfo("Bar"))
	require.NoError(t, repo.Create(ctx, album))

	dup := &database.Album{ArtistID: artist.ID, ReleaseDate: time.Date(2002, 1, 1, 0, 0, 0, 0, time.UTC)}
	dup.SetName(database.NewNameInfo("Bar"))
	assert.ErrorIs(t, repo.Create(ctx, dup), database.ErrConstraintViolation)
}

func TestAlbumReleaseDateInvariant(t *testing.T) {
	db, lib := repoFixture(t)
	repo := NewAlbumRepo(db)
	artist := newArtist(t, db, lib, "Foo")

	release := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	later := release.AddDate(1, 0, 0)

	album := &database.Album{ArtistID: artist.ID, ReleaseDate: release, OriginalReleaseDate: &later}
	album.SetName(database.NewNameInfo("Backwards Dates"))
	assert.ErrorIs(t, repo.Create(context.Background(), album), database.ErrConstraintViolation)

	// Equal dates are allowed.
	album.OriginalReleaseDate = &release
	assert.NoError(t, repo.Create(context.Background(), album))
}

func TestAlbumCreateMissingArtist(t *testing.T) {
	db, _ := repoFixture(t)
	repo := NewAlbumRepo(db)

	album := &database.Album{ArtistID: 9999, ReleaseDate: time.Now().UTC()}
	album.SetName(database.NewNameInfo("Orphan"))
	assert.ErrorIs(t, repo.Create(context.Background(), album), database.ErrForeignKeyViolation)
}

func TestLockedEntityRejectsMutation(t *testing.T) {
	db, lib := repoFixture(t)
	repo := NewArtistRepo(db)
	ctx := context.Background()

	artist := newArtist(t, db, lib, "Locked Artist")
	require.NoError(t, db.Model(artist).Update("is_locked", true).Error)

	artist.Notes = "edited"
	assert.ErrorIs(t, repo.Update(ctx, artist), database.ErrLocked)
	assert.ErrorIs(t, repo.Delete(ctx, artist.ID), database.ErrLocked)

	// The administrative path bypasses the lock.
	artist.IsLocked = true
	require.NoError(t, repo.Elevated().Update(ctx, artist))
	require.NoError(t, repo.Elevated().Delete(ctx, artist.ID))
}

func TestDeleteIsIdempotentAgainstRaces(t *testing.T) {
	db, lib := repoFixture(t)
	repo := NewArtistRepo(db)
	ctx := context.Background()

	artist := newArtist(t, db, lib, "Ephemeral")
	require.NoError(t, repo.Delete(ctx, artist.ID))
	assert.ErrorIs(t, repo.Delete(ctx, artist.ID), database.ErrNotFound)
}

func TestUpdatePreservesAPIKeyAndSetsTimestamp(t *testing.T) {
	db, lib := repoFixture(t)
	repo := NewArtistRepo(db)
	ctx := context.Background()

	artist := newArtist(t, db, lib, "Mutable")
	originalKey := artist.APIKey

	artist.APIKey = "attempted-overwrite"
	artist.Notes = "updated"
	require.NoError(t, repo.Update(ctx, artist))

	reloaded, err := repo.GetByID(ctx, artist.ID)
	require.NoError(t, err)
	assert.Equal(t, originalKey, reloaded.APIKey)
	assert.Equal(t, "updated", reloaded.Notes)
	assert.NotNil(t, reloaded.LastUpdatedAt)
}

func TestRecomputeCounts(t *testing.T) {
	db, lib := repoFixture(t)
	ctx := context.Background()
	asm := NewAssembler(db, nil)

	for n := 1; n <= 3; n++ {
		meta := sampleFile()
		meta.SongNumber = n
		meta.FileHash = meta.FileHash + string(rune('a'+n))
		_, err := asm.UpsertFile(ctx, lib.ID, meta)
		require.NoError(t, err)
	}

	require.NoError(t, NewLibraryRepo(db).RecomputeCounts(ctx, lib.ID))

	reloadedLib, err := NewLibraryRepo(db).GetByID(ctx, lib.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloadedLib.ArtistCount)
	assert.Equal(t, 1, reloadedLib.AlbumCount)
	assert.Equal(t, 3, reloadedLib.SongCount)

	var artist database.Artist
	require.NoError(t, db.First(&artist).Error)
	require.NoError(t, NewArtistRepo(db).RecomputeCounts(ctx, artist.ID))
	reloadedArtist, err := NewArtistRepo(db).GetByID(ctx, artist.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloadedArtist.AlbumCount)
	assert.Equal(t, 3, reloadedArtist.SongCount)

	var album database.Album
	require.NoError(t, db.First(&album).Error)
	require.NoError(t, NewAlbumRepo(db).RecomputeCounts(ctx, album.ID))
	reloadedAlbum, err := NewAlbumRepo(db).GetByID(ctx, album.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloadedAlbum.SongCount)
	assert.Equal(t, 1, reloadedAlbum.DiscCount)
	assert.InDelta(t, 3*208.4, reloadedAlbum.Duration, 0.01)
}

func TestScanHistoryAppend(t *testing.T) {
	db, lib := repoFixture(t)
	repo := NewScanHistoryRepo(db)
	ctx := context.Background()

	entry := &database.LibraryScanHistory{
		LibraryID:        lib.ID,
		FoundArtistCount: 5,
		FoundAlbumCount:  12,
		FoundSongCount:   140,
		DurationInMs:     5321,
	}
	require.NoError(t, repo.Append(ctx, entry))

	entries, err := repo.ListForLibrary(ctx, lib.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 140, entries[0].FoundSongCount)

	// Appending stamps the library's lastScanAt.
	reloaded, err := NewLibraryRepo(db).GetByID(ctx, lib.ID)
	require.NoError(t, err)
	assert.NotNil(t, reloaded.LastScanAt)
}

func TestRadioStationRepo(t *testing.T) {
	db, _ := repoFixture(t)
	repo := NewRadioStationRepo(db)
	ctx := context.Background()

	station := &database.RadioStation{Name: "FIP", StreamURL: "https://stream.fip.fr"}
	require.NoError(t, repo.Create(ctx, station))

	dup := &database.RadioStation{Name: "FIP copy", StreamURL: "https://stream.fip.fr"}
	assert.ErrorIs(t, repo.Create(ctx, dup), database.ErrConstraintViolation)

	stations, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stations, 1)

	require.NoError(t, repo.Delete(ctx, station.ID))
	assert.ErrorIs(t, repo.Delete(ctx, station.ID), database.ErrNotFound)
}

func TestSearchNormalizesQuery(t *testing.T) {
	db, lib := repoFixture(t)
	ctx := context.Background()

	newArtist(t, db, lib, "Björk")
	newArtist(t, db, lib, "The Books")

	results, err := NewArtistRepo(db).Search(ctx, "BJORK", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Björk", results[0].Name)

	// Article-stripped match.
	results, err = NewArtistRepo(db).Search(ctx, "books", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
