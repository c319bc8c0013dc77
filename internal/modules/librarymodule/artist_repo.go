package librarymodule

import (
	"context"

	"gorm.io/gorm"

	"github.com/sphildreth/melodee/internal/database"
)

// ArtistRepo persists Artist rows and their relation edges.
type ArtistRepo struct {
	db         *gorm.DB
	bypassLock bool
}

// NewArtistRepo creates an artist repository over db.
func NewArtistRepo(db *gorm.DB) *ArtistRepo {
	return &ArtistRepo{db: db}
}

// Elevated returns a copy of the repository that bypasses isLocked.
func (r *ArtistRepo) Elevated() *ArtistRepo {
	return &ArtistRepo{db: r.db, bypassLock: true}
}

// Create inserts a new artist. Duplicate names within the library fail
// with ErrConstraintViolation, a missing library with ErrForeignKeyViolation.
func (r *ArtistRepo) Create(ctx context.Context, artist *database.Artist) error {
	return database.TranslateError(r.db.WithContext(ctx).Create(artist).Error)
}

// GetByID fetches an artist by internal id.
func (r *ArtistRepo) GetByID(ctx context.Context, id uint) (*database.Artist, error) {
	var artist database.Artist
	if err := r.db.WithContext(ctx).First(&artist, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &artist, nil
}

// GetByAPIKey fetches an artist by external key.
func (r *ArtistRepo) GetByAPIKey(ctx context.Context, apiKey string) (*database.Artist, error) {
	var artist database.Artist
	if err := r.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&artist).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &artist, nil
}

// FindByNaturalKey resolves an artist by its rescan dedup key,
// (libraryId, nameNormalized).
func (r *ArtistRepo) FindByNaturalKey(ctx context.Context, libraryID uint, nameNormalized string) (*database.Artist, error) {
	var artist database.Artist
	err := r.db.WithContext(ctx).
		Where("library_id = ? AND name_normalized = ?", libraryID, nameNormalized).
		First(&artist).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &artist, nil
}

// Search returns artists whose normalized name contains the normalized
// form of q, ordered by sort name.
func (r *ArtistRepo) Search(ctx context.Context, q string, limit int) ([]database.Artist, error) {
	if limit <= 0 {
		limit = 50
	}
	var artists []database.Artist
	err := r.db.WithContext(ctx).
		Where("name_normalized LIKE ?", "%"+database.Normalize(q)+"%").
		Order("sort_name").
		Limit(limit).
		Find(&artists).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return artists, nil
}

// Update persists changes to an existing artist, honoring isLocked.
func (r *ArtistRepo) Update(ctx context.Context, artist *database.Artist) error {
	existing, err := r.GetByID(ctx, artist.ID)
	if err != nil {
		return err
	}
	if existing.IsLocked && !r.bypassLock {
		return database.ErrLocked
	}
	artist.APIKey = existing.APIKey
	artist.CreatedAt = existing.CreatedAt
	artist.Touch()
	return database.TranslateError(r.db.WithContext(ctx).Save(artist).Error)
}

// Delete removes an artist and cascades to albums, discs, songs and
// relation edges.
func (r *ArtistRepo) Delete(ctx context.Context, id uint) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsLocked && !r.bypassLock {
		return database.ErrLocked
	}
	result := r.db.WithContext(ctx).Delete(&database.Artist{}, id)
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// AddRelation inserts a directed artist-to-artist edge. The pair is
// unique; a duplicate fails with ErrConstraintViolation.
func (r *ArtistRepo) AddRelation(ctx context.Context, rel *database.ArtistRelation) error {
	return database.TranslateError(r.db.WithContext(ctx).Create(rel).Error)
}

// RelationsFor returns all outgoing relation edges of an artist.
func (r *ArtistRepo) RelationsFor(ctx context.Context, artistID uint) ([]database.ArtistRelation, error) {
	var rels []database.ArtistRelation
	err := r.db.WithContext(ctx).
		Where("artist_id = ?", artistID).
		Order("related_artist_id").
		Find(&rels).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return rels, nil
}

// RecomputeCounts refreshes the cached album/song counters.
func (r *ArtistRepo) RecomputeCounts(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var albums, songs int64
		if err := tx.Model(&database.Album{}).Where("artist_id = ?", id).Count(&albums).Error; err != nil {
			return err
		}
		if err := tx.Model(&database.Song{}).
			Joins("JOIN album_discs ON album_discs.id = songs.album_disc_id").
			Joins("JOIN albums ON albums.id = album_discs.album_id").
			Where("albums.artist_id = ?", id).
			Count(&songs).Error; err != nil {
			return err
		}
		return tx.Model(&database.Artist{}).Where("id = ?", id).Updates(map[string]interface{}{
			"album_count": albums,
			"song_count":  songs,
		}).Error
	})
}
