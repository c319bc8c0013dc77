package librarymodule

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sphildreth/melodee/internal/database"
)

// LibraryRepo persists Library rows and their cached statistics.
type LibraryRepo struct {
	db         *gorm.DB
	bypassLock bool
}

// NewLibraryRepo creates a library repository over db.
func NewLibraryRepo(db *gorm.DB) *LibraryRepo {
	return &LibraryRepo{db: db}
}

// Elevated returns a copy of the repository that bypasses isLocked,
// for administrative paths.
func (r *LibraryRepo) Elevated() *LibraryRepo {
	return &LibraryRepo{db: r.db, bypassLock: true}
}

// Create inserts a new library. At most one library of each type may
// exist; a second insert of the same type fails with ErrConstraintViolation.
func (r *LibraryRepo) Create(ctx context.Context, lib *database.Library) error {
	if !lib.Type.IsValid() {
		return fmt.Errorf("%w: unknown library type %q", database.ErrConstraintViolation, lib.Type)
	}
	return database.TranslateError(r.db.WithContext(ctx).Create(lib).Error)
}

// GetByID fetches a library by internal id.
func (r *LibraryRepo) GetByID(ctx context.Context, id uint) (*database.Library, error) {
	var lib database.Library
	if err := r.db.WithContext(ctx).First(&lib, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &lib, nil
}

// GetByAPIKey fetches a library by external key.
func (r *LibraryRepo) GetByAPIKey(ctx context.Context, apiKey string) (*database.Library, error) {
	var lib database.Library
	if err := r.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&lib).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &lib, nil
}

// GetByType fetches the single library of a given type.
func (r *LibraryRepo) GetByType(ctx context.Context, typ database.LibraryType) (*database.Library, error) {
	var lib database.Library
	if err := r.db.WithContext(ctx).Where("type = ?", typ).First(&lib).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &lib, nil
}

// List returns all libraries ordered by sort order then type.
func (r *LibraryRepo) List(ctx context.Context) ([]database.Library, error) {
	var libs []database.Library
	if err := r.db.WithContext(ctx).Order("sort_order, type").Find(&libs).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return libs, nil
}

// Update persists changes to an existing library, honoring isLocked.
func (r *LibraryRepo) Update(ctx context.Context, lib *database.Library) error {
	existing, err := r.GetByID(ctx, lib.ID)
	if err != nil {
		return err
	}
	if existing.IsLocked && !r.bypassLock {
		return database.ErrLocked
	}
	lib.APIKey = existing.APIKey
	lib.CreatedAt = existing.CreatedAt
	lib.Touch()
	return database.TranslateError(r.db.WithContext(ctx).Save(lib).Error)
}

// Delete removes a library and cascades to its whole catalog subtree.
// A second delete racing on the same id returns ErrNotFound.
func (r *LibraryRepo) Delete(ctx context.Context, id uint) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsLocked && !r.bypassLock {
		return database.ErrLocked
	}
	result := r.db.WithContext(ctx).Delete(&database.Library{}, id)
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// RecomputeCounts refreshes the cached artist/album/song counters from
// the actual catalog rows. Counters are hints between recomputes.
func (r *LibraryRepo) RecomputeCounts(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var artists, albums, songs int64
		if err := tx.Model(&database.Artist{}).Where("library_id = ?", id).Count(&artists).Error; err != nil {
			return err
		}
		if err := tx.Model(&database.Album{}).
			Joins("JOIN artists ON artists.id = albums.artist_id").
			Where("artists.library_id = ?", id).
			Count(&albums).Error; err != nil {
			return err
		}
		if err := tx.Model(&database.Song{}).
			Joins("JOIN album_discs ON album_discs.id = songs.album_disc_id").
			Joins("JOIN albums ON albums.id = album_discs.album_id").
			Joins("JOIN artists ON artists.id = albums.artist_id").
			Where("artists.library_id = ?", id).
			Count(&songs).Error; err != nil {
			return err
		}
		return tx.Model(&database.Library{}).Where("id = ?", id).Updates(map[string]interface{}{
			"artist_count": artists,
			"album_count":  albums,
			"song_count":   songs,
		}).Error
	})
}

// StampScan updates lastScanAt after a completed scan.
func (r *LibraryRepo) StampScan(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&database.Library{}).
		Where("id = ?", id).
		Update("last_scan_at", at)
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}
