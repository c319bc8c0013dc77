package librarymodule

import (
	"context"

	"gorm.io/gorm"

	"github.com/sphildreth/melodee/internal/database"
)

// SongRepo persists Song and Contributor rows.
type SongRepo struct {
	db         *gorm.DB
	bypassLock bool
}

// NewSongRepo creates a song repository over db.
func NewSongRepo(db *gorm.DB) *SongRepo {
	return &SongRepo{db: db}
}

// Elevated returns a copy of the repository that bypasses isLocked.
func (r *SongRepo) Elevated() *SongRepo {
	return &SongRepo{db: r.db, bypassLock: true}
}

// Create inserts a new song into its disc slot.
func (r *SongRepo) Create(ctx context.Context, song *database.Song) error {
	return database.TranslateError(r.db.WithContext(ctx).Create(song).Error)
}

// GetByID fetches a song by internal id.
func (r *SongRepo) GetByID(ctx context.Context, id uint) (*database.Song, error) {
	var song database.Song
	if err := r.db.WithContext(ctx).First(&song, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &song, nil
}

// GetByAPIKey fetches a song by external key.
func (r *SongRepo) GetByAPIKey(ctx context.Context, apiKey string) (*database.Song, error) {
	var song database.Song
	if err := r.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&song).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &song, nil
}

// FindBySlot resolves a song by its disc position, (albumDiscId, songNumber).
func (r *SongRepo) FindBySlot(ctx context.Context, albumDiscID uint, songNumber int) (*database.Song, error) {
	var song database.Song
	err := r.db.WithContext(ctx).
		Where("album_disc_id = ? AND song_number = ?", albumDiscID, songNumber).
		First(&song).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &song, nil
}

// FindByFileHash returns all songs carrying the given content hash.
// The hash is the primary duplicate detector across rescans.
func (r *SongRepo) FindByFileHash(ctx context.Context, fileHash string) ([]database.Song, error) {
	var songs []database.Song
	err := r.db.WithContext(ctx).Where("file_hash = ?", fileHash).Find(&songs).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return songs, nil
}

// ListForDisc returns a disc's songs in track order.
func (r *SongRepo) ListForDisc(ctx context.Context, albumDiscID uint) ([]database.Song, error) {
	var songs []database.Song
	err := r.db.WithContext(ctx).
		Where("album_disc_id = ?", albumDiscID).
		Order("song_number").
		Find(&songs).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return songs, nil
}

// Search returns songs whose normalized title contains the normalized
// form of q.
func (r *SongRepo) Search(ctx context.Context, q string, limit int) ([]database.Song, error) {
	if limit <= 0 {
		limit = 50
	}
	var songs []database.Song
	err := r.db.WithContext(ctx).
		Where("title_normalized LIKE ?", "%"+database.Normalize(q)+"%").
		Order("title_sort").
		Limit(limit).
		Find(&songs).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return songs, nil
}

// Update persists changes to an existing song, honoring isLocked.
// The id and apiKey of the row never change.
func (r *SongRepo) Update(ctx context.Context, song *database.Song) error {
	existing, err := r.GetByID(ctx, song.ID)
	if err != nil {
		return err
	}
	if existing.IsLocked && !r.bypassLock {
		return database.ErrLocked
	}
	song.APIKey = existing.APIKey
	song.CreatedAt = existing.CreatedAt
	song.Touch()
	return database.TranslateError(r.db.WithContext(ctx).Save(song).Error)
}

// Delete removes a song and its song-scoped contributors.
func (r *SongRepo) Delete(ctx context.Context, id uint) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsLocked && !r.bypassLock {
		return database.ErrLocked
	}
	result := r.db.WithContext(ctx).Delete(&database.Song{}, id)
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// AddContributor inserts a credited role on an album or song.
func (r *SongRepo) AddContributor(ctx context.Context, c *database.Contributor) error {
	return database.TranslateError(r.db.WithContext(ctx).Create(c).Error)
}

// ContributorsForAlbum returns all credits on an album, song-scoped
// credits included.
func (r *SongRepo) ContributorsForAlbum(ctx context.Context, albumID uint) ([]database.Contributor, error) {
	var contributors []database.Contributor
	err := r.db.WithContext(ctx).
		Where("album_id = ?", albumID).
		Order("id").
		Find(&contributors).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return contributors, nil
}
