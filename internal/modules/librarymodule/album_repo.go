package librarymodule

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/sphildreth/melodee/internal/database"
)

// AlbumRepo persists Album and AlbumDisc rows.
type AlbumRepo struct {
	db         *gorm.DB
	bypassLock bool
}

// NewAlbumRepo creates an album repository over db.
func NewAlbumRepo(db *gorm.DB) *AlbumRepo {
	return &AlbumRepo{db: db}
}

// Elevated returns a copy of the repository that bypasses isLocked.
func (r *AlbumRepo) Elevated() *AlbumRepo {
	return &AlbumRepo{db: r.db, bypassLock: true}
}

// validateDates enforces originalReleaseDate <= releaseDate. The schema
// does not carry this rule, the repository does.
func validateDates(album *database.Album) error {
	if album.OriginalReleaseDate != nil && album.OriginalReleaseDate.After(album.ReleaseDate) {
		return fmt.Errorf("%w: original release date %s is after release date %s",
			database.ErrConstraintViolation,
			album.OriginalReleaseDate.Format("2006-01-02"),
			album.ReleaseDate.Format("2006-01-02"))
	}
	return nil
}

// Create inserts a new album under its artist.
func (r *AlbumRepo) Create(ctx context.Context, album *database.Album) error {
	if err := validateDates(album); err != nil {
		return err
	}
	return database.TranslateError(r.db.WithContext(ctx).Create(album).Error)
}

// GetByID fetches an album by internal id.
func (r *AlbumRepo) GetByID(ctx context.Context, id uint) (*database.Album, error) {
	var album database.Album
	if err := r.db.WithContext(ctx).First(&album, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &album, nil
}

// GetByAPIKey fetches an album by external key.
func (r *AlbumRepo) GetByAPIKey(ctx context.Context, apiKey string) (*database.Album, error) {
	var album database.Album
	if err := r.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&album).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &album, nil
}

// FindByNaturalKey resolves an album by its rescan dedup key,
// (artistId, nameNormalized).
func (r *AlbumRepo) FindByNaturalKey(ctx context.Context, artistID uint, nameNormalized string) (*database.Album, error) {
	var album database.Album
	err := r.db.WithContext(ctx).
		Where("artist_id = ? AND name_normalized = ?", artistID, nameNormalized).
		First(&album).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &album, nil
}

// ListForArtist returns an artist's albums ordered by release date.
func (r *AlbumRepo) ListForArtist(ctx context.Context, artistID uint) ([]database.Album, error) {
	var albums []database.Album
	err := r.db.WithContext(ctx).
		Where("artist_id = ?", artistID).
		Order("release_date, sort_name").
		Find(&albums).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return albums, nil
}

// Search returns albums whose normalized name contains the normalized
// form of q.
func (r *AlbumRepo) Search(ctx context.Context, q string, limit int) ([]database.Album, error) {
	if limit <= 0 {
		limit = 50
	}
	var albums []database.Album
	err := r.db.WithContext(ctx).
		Where("name_normalized LIKE ?", "%"+database.Normalize(q)+"%").
		Order("sort_name").
		Limit(limit).
		Find(&albums).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return albums, nil
}

// Update persists changes to an existing album, honoring isLocked.
func (r *AlbumRepo) Update(ctx context.Context, album *database.Album) error {
	if err := validateDates(album); err != nil {
		return err
	}
	existing, err := r.GetByID(ctx, album.ID)
	if err != nil {
		return err
	}
	if existing.IsLocked && !r.bypassLock {
		return database.ErrLocked
	}
	album.APIKey = existing.APIKey
	album.CreatedAt = existing.CreatedAt
	album.Touch()
	return database.TranslateError(r.db.WithContext(ctx).Save(album).Error)
}

// Delete removes an album and cascades to discs, songs and contributors.
func (r *AlbumRepo) Delete(ctx context.Context, id uint) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsLocked && !r.bypassLock {
		return database.ErrLocked
	}
	result := r.db.WithContext(ctx).Delete(&database.Album{}, id)
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// CreateDisc inserts a disc under an album. Duplicate disc numbers fail
// with ErrConstraintViolation.
func (r *AlbumRepo) CreateDisc(ctx context.Context, disc *database.AlbumDisc) error {
	return database.TranslateError(r.db.WithContext(ctx).Create(disc).Error)
}

// FindDisc resolves a disc by (albumId, discNumber).
func (r *AlbumRepo) FindDisc(ctx context.Context, albumID uint, discNumber int) (*database.AlbumDisc, error) {
	var disc database.AlbumDisc
	err := r.db.WithContext(ctx).
		Where("album_id = ? AND disc_number = ?", albumID, discNumber).
		First(&disc).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &disc, nil
}

// RecomputeCounts refreshes the cached song/disc counters and duration.
func (r *AlbumRepo) RecomputeCounts(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var discs int64
		if err := tx.Model(&database.AlbumDisc{}).Where("album_id = ?", id).Count(&discs).Error; err != nil {
			return err
		}

		type agg struct {
			Songs    int64
			Duration float64
		}
		var a agg
		if err := tx.Model(&database.Song{}).
			Select("COUNT(*) AS songs, COALESCE(SUM(duration), 0) AS duration").
			Joins("JOIN album_discs ON album_discs.id = songs.album_disc_id").
			Where("album_discs.album_id = ?", id).
			Scan(&a).Error; err != nil {
			return err
		}

		if err := tx.Model(&database.Album{}).Where("id = ?", id).Updates(map[string]interface{}{
			"disc_count": discs,
			"song_count": a.Songs,
			"duration":   a.Duration,
		}).Error; err != nil {
			return err
		}

		// Per-disc song counts ride along.
		return tx.Exec(`UPDATE album_discs
			SET song_count = (SELECT COUNT(*) FROM songs WHERE songs.album_disc_id = album_discs.id)
			WHERE album_id = ?`, id).Error
	})
}
