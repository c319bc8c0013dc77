package librarymodule

import (
	"context"

	"gorm.io/gorm"

	"github.com/sphildreth/melodee/internal/database"
)

// RadioStationRepo persists the internet radio station registry.
type RadioStationRepo struct {
	db         *gorm.DB
	bypassLock bool
}

// NewRadioStationRepo creates a radio station repository over db.
func NewRadioStationRepo(db *gorm.DB) *RadioStationRepo {
	return &RadioStationRepo{db: db}
}

// Elevated returns a copy of the repository that bypasses isLocked.
func (r *RadioStationRepo) Elevated() *RadioStationRepo {
	return &RadioStationRepo{db: r.db, bypassLock: true}
}

// Create inserts a station. Duplicate stream URLs fail with
// ErrConstraintViolation.
func (r *RadioStationRepo) Create(ctx context.Context, station *database.RadioStation) error {
	return database.TranslateError(r.db.WithContext(ctx).Create(station).Error)
}

// GetByAPIKey fetches a station by external key.
func (r *RadioStationRepo) GetByAPIKey(ctx context.Context, apiKey string) (*database.RadioStation, error) {
	var station database.RadioStation
	if err := r.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&station).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &station, nil
}

// List returns all stations ordered by sort order then name.
func (r *RadioStationRepo) List(ctx context.Context) ([]database.RadioStation, error) {
	var stations []database.RadioStation
	if err := r.db.WithContext(ctx).Order("sort_order, name").Find(&stations).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return stations, nil
}

// Update persists changes to a station, honoring isLocked.
func (r *RadioStationRepo) Update(ctx context.Context, station *database.RadioStation) error {
	var existing database.RadioStation
	if err := r.db.WithContext(ctx).First(&existing, station.ID).Error; err != nil {
		return database.TranslateError(err)
	}
	if existing.IsLocked && !r.bypassLock {
		return database.ErrLocked
	}
	station.APIKey = existing.APIKey
	station.CreatedAt = existing.CreatedAt
	station.Touch()
	return database.TranslateError(r.db.WithContext(ctx).Save(station).Error)
}

// Delete removes a station.
func (r *RadioStationRepo) Delete(ctx context.Context, id uint) error {
	var existing database.RadioStation
	if err := r.db.WithContext(ctx).First(&existing, id).Error; err != nil {
		return database.TranslateError(err)
	}
	if existing.IsLocked && !r.bypassLock {
		return database.ErrLocked
	}
	result := r.db.WithContext(ctx).Delete(&database.RadioStation{}, id)
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}
