package librarymodule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sphildreth/melodee/internal/database"
	"github.com/sphildreth/melodee/internal/events"
	"github.com/sphildreth/melodee/internal/logger"
	"github.com/sphildreth/melodee/internal/utils"
)

// FileMetadata is the flattened tag data of one discovered audio file,
// everything the assembler needs to place it in the catalog hierarchy.
type FileMetadata struct {
	ArtistName     string
	ArtistSortName string

	AlbumName           string
	AlbumSortName       string
	ReleaseDate         time.Time
	OriginalReleaseDate *time.Time
	IsCompilation       bool

	DiscNumber int
	DiscTitle  string

	SongNumber int
	Title      string
	TitleSort  string

	FileName    string
	FileSize    int64
	FileHash    string
	ContentType string

	Duration     float64
	BitRate      int
	SamplingRate int
	ChannelCount int
	Genres       []string
	Lyrics       string
}

// Validate checks the fields the hierarchy cannot be built without.
func (m *FileMetadata) Validate() error {
	switch {
	case m.ArtistName == "":
		return fmt.Errorf("%w: file %s has no artist name", database.ErrConstraintViolation, m.FileName)
	case m.AlbumName == "":
		return fmt.Errorf("%w: file %s has no album name", database.ErrConstraintViolation, m.FileName)
	case m.Title == "":
		return fmt.Errorf("%w: file %s has no title", database.ErrConstraintViolation, m.FileName)
	case m.SongNumber <= 0:
		return fmt.Errorf("%w: file %s has no track number", database.ErrConstraintViolation, m.FileName)
	case m.FileHash == "":
		return fmt.Errorf("%w: file %s has no content hash", database.ErrConstraintViolation, m.FileName)
	}
	return nil
}

// UpsertOutcome says what the assembler did with a file.
type UpsertOutcome string

const (
	OutcomeCreated   UpsertOutcome = "created"
	OutcomeUnchanged UpsertOutcome = "unchanged"
	OutcomeReplaced  UpsertOutcome = "replaced"
)

// UpsertResult reports the song a file resolved to and how.
type UpsertResult struct {
	Song    *database.Song
	Outcome UpsertOutcome

	CreatedArtist bool
	CreatedAlbum  bool
	CreatedDisc   bool
}

// BatchResult aggregates a scan batch. Failures are per file; a failed
// file never rolls back its committed siblings.
type BatchResult struct {
	Created   int
	Unchanged int
	Replaced  int
	Failed    int
	Errors    []error
}

// Assembler implements the upsert-on-scan write path: resolve or create
// Artist, Album, AlbumDisc and Song for a discovered file, shallow-first,
// inside one transaction per file. Every step is idempotent against the
// natural keys, so a crashed scan can be resumed by re-running it.
type Assembler struct {
	db       *gorm.DB
	eventBus events.EventBus
}

// NewAssembler creates an assembler over db.
func NewAssembler(db *gorm.DB, eventBus events.EventBus) *Assembler {
	return &Assembler{db: db, eventBus: eventBus}
}

// UpsertFile places one file's metadata into the catalog under the given
// library. An existing song slot with the same fileHash is a no-op; a
// different hash replaces the row in place, preserving id and apiKey.
func (a *Assembler) UpsertFile(ctx context.Context, libraryID uint, meta FileMetadata) (*UpsertResult, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	discNumber := meta.DiscNumber
	if discNumber <= 0 {
		discNumber = 1
	}

	result := &UpsertResult{}
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		artist, created, err := a.resolveArtist(tx, libraryID, meta)
		if err != nil {
			return err
		}
		result.CreatedArtist = created

		album, created, err := a.resolveAlbum(tx, artist.ID, meta)
		if err != nil {
			return err
		}
		result.CreatedAlbum = created

		disc, created, err := a.resolveDisc(tx, album.ID, discNumber, meta.DiscTitle)
		if err != nil {
			return err
		}
		result.CreatedDisc = created

		song, outcome, err := a.resolveSong(tx, disc.ID, meta)
		if err != nil {
			return err
		}
		result.Song = song
		result.Outcome = outcome
		return nil
	})
	if err != nil {
		return nil, database.TranslateError(err)
	}

	a.publish(libraryID, result)
	return result, nil
}

// UpsertBatch processes files independently: one file's failure aborts
// only that file.
func (a *Assembler) UpsertBatch(ctx context.Context, libraryID uint, files []FileMetadata) *BatchResult {
	batch := &BatchResult{}
	for _, meta := range files {
		result, err := a.UpsertFile(ctx, libraryID, meta)
		if err != nil {
			batch.Failed++
			batch.Errors = append(batch.Errors, fmt.Errorf("file %s: %w", meta.FileName, err))
			logger.Warn("Skipping file after upsert failure", "file", meta.FileName, "error", err)
			continue
		}
		switch result.Outcome {
		case OutcomeCreated:
			batch.Created++
		case OutcomeUnchanged:
			batch.Unchanged++
		case OutcomeReplaced:
			batch.Replaced++
		}
	}
	return batch
}

func (a *Assembler) resolveArtist(tx *gorm.DB, libraryID uint, meta FileMetadata) (*database.Artist, bool, error) {
	info := database.NewNameInfo(meta.ArtistName).WithSortName(meta.ArtistSortName)

	var artist database.Artist
	err := tx.Where("library_id = ? AND name_normalized = ?", libraryID, info.NameNormalized).
		First(&artist).Error
	if err == nil {
		return &artist, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	artist = database.Artist{LibraryID: libraryID, MetaDataStatus: database.MetaDataStatusUnknown}
	artist.SetName(info)
	if err := tx.Create(&artist).Error; err != nil {
		// A concurrent scanner may have won the insert race.
		if errors.Is(database.TranslateError(err), database.ErrConstraintViolation) {
			var existing database.Artist
			if ferr := tx.Where("library_id = ? AND name_normalized = ?", libraryID, info.NameNormalized).
				First(&existing).Error; ferr == nil {
				return &existing, false, nil
			}
		}
		return nil, false, err
	}
	return &artist, true, nil
}

func (a *Assembler) resolveAlbum(tx *gorm.DB, artistID uint, meta FileMetadata) (*database.Album, bool, error) {
	info := database.NewNameInfo(meta.AlbumName).WithSortName(meta.AlbumSortName)

	var album database.Album
	err := tx.Where("artist_id = ? AND name_normalized = ?", artistID, info.NameNormalized).
		First(&album).Error
	if err == nil {
		return &album, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	album = database.Album{
		ArtistID:            artistID,
		ReleaseDate:         meta.ReleaseDate,
		OriginalReleaseDate: meta.OriginalReleaseDate,
		IsCompilation:       meta.IsCompilation,
		MetaDataStatus:      database.MetaDataStatusNeedsRefresh,
		Genres:              database.StringList(meta.Genres),
	}
	album.SetName(info)
	if err := tx.Create(&album).Error; err != nil {
		if errors.Is(database.TranslateError(err), database.ErrConstraintViolation) {
			var existing database.Album
			if ferr := tx.Where("artist_id = ? AND name_normalized = ?", artistID, info.NameNormalized).
				First(&existing).Error; ferr == nil {
				return &existing, false, nil
			}
		}
		return nil, false, err
	}
	return &album, true, nil
}

func (a *Assembler) resolveDisc(tx *gorm.DB, albumID uint, discNumber int, title string) (*database.AlbumDisc, bool, error) {
	var disc database.AlbumDisc
	err := tx.Where("album_id = ? AND disc_number = ?", albumID, discNumber).First(&disc).Error
	if err == nil {
		return &disc, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	disc = database.AlbumDisc{AlbumID: albumID, DiscNumber: discNumber, Title: title}
	if err := tx.Create(&disc).Error; err != nil {
		if errors.Is(database.TranslateError(err), database.ErrConstraintViolation) {
			var existing database.AlbumDisc
			if ferr := tx.Where("album_id = ? AND disc_number = ?", albumID, discNumber).
				First(&existing).Error; ferr == nil {
				return &existing, false, nil
			}
		}
		return nil, false, err
	}
	return &disc, true, nil
}

func (a *Assembler) resolveSong(tx *gorm.DB, discID uint, meta FileMetadata) (*database.Song, UpsertOutcome, error) {
	var existing database.Song
	err := tx.Where("album_disc_id = ? AND song_number = ?", discID, meta.SongNumber).
		First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		song := a.songFromMetadata(discID, meta)
		if cerr := tx.Create(song).Error; cerr != nil {
			return nil, "", cerr
		}
		return song, OutcomeCreated, nil
	case err != nil:
		return nil, "", err
	}

	if existing.FileHash == meta.FileHash {
		return &existing, OutcomeUnchanged, nil
	}

	if existing.IsLocked {
		return nil, "", fmt.Errorf("%w: song %s is locked, refusing to replace its content", database.ErrLocked, existing.APIKey)
	}

	// Same slot, different content: replace in place. The row keeps its
	// id and apiKey so external references stay valid.
	replacement := a.songFromMetadata(discID, meta)
	replacement.ID = existing.ID
	replacement.APIKey = existing.APIKey
	replacement.CreatedAt = existing.CreatedAt
	replacement.Touch()
	if err := tx.Save(replacement).Error; err != nil {
		return nil, "", err
	}
	logger.Debug("Replaced song content",
		"song", existing.APIKey,
		"old_hash", utils.TruncateHash(existing.FileHash, 12),
		"new_hash", utils.TruncateHash(meta.FileHash, 12))
	return replacement, OutcomeReplaced, nil
}

func (a *Assembler) songFromMetadata(discID uint, meta FileMetadata) *database.Song {
	song := &database.Song{
		AlbumDiscID:  discID,
		SongNumber:   meta.SongNumber,
		FileName:     meta.FileName,
		FileSize:     meta.FileSize,
		FileHash:     meta.FileHash,
		ContentType:  meta.ContentType,
		Duration:     meta.Duration,
		BitRate:      meta.BitRate,
		SamplingRate: meta.SamplingRate,
		ChannelCount: meta.ChannelCount,
		Genres:       database.StringList(meta.Genres),
		Lyrics:       meta.Lyrics,
	}
	song.SetTitle(database.NewNameInfo(meta.Title).WithSortName(meta.TitleSort))
	return song
}

func (a *Assembler) publish(libraryID uint, result *UpsertResult) {
	if a.eventBus == nil || result.Song == nil {
		return
	}
	data := map[string]interface{}{
		"library_id":   libraryID,
		"song_api_key": result.Song.APIKey,
	}
	if result.CreatedArtist {
		a.eventBus.Publish(events.Event{Type: events.EventArtistCreated, Source: ModuleID, Data: data})
	}
	if result.CreatedAlbum {
		a.eventBus.Publish(events.Event{Type: events.EventAlbumCreated, Source: ModuleID, Data: data})
	}
	switch result.Outcome {
	case OutcomeCreated:
		a.eventBus.Publish(events.Event{Type: events.EventSongCreated, Source: ModuleID, Data: data})
	case OutcomeReplaced:
		a.eventBus.Publish(events.Event{Type: events.EventSongReplaced, Source: ModuleID, Data: data})
	}
}
