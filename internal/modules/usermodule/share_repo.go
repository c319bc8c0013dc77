package usermodule

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sphildreth/melodee/internal/database"
)

// ShareRepo persists time-limited external song links.
type ShareRepo struct {
	db *gorm.DB
}

// NewShareRepo creates a share repository over db.
func NewShareRepo(db *gorm.DB) *ShareRepo {
	return &ShareRepo{db: db}
}

// Create inserts a share.
func (r *ShareRepo) Create(ctx context.Context, share *database.Share) error {
	return database.TranslateError(r.db.WithContext(ctx).Create(share).Error)
}

// GetByAPIKey fetches a share by its external key, the token embedded
// in shared URLs.
func (r *ShareRepo) GetByAPIKey(ctx context.Context, apiKey string) (*database.Share, error) {
	var share database.Share
	if err := r.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&share).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &share, nil
}

// ListForUser returns a user's shares, newest first.
func (r *ShareRepo) ListForUser(ctx context.Context, userID uint) ([]database.Share, error) {
	var shares []database.Share
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&shares).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return shares, nil
}

// RecordVisit bumps the visit counter and stamps the visit time.
func (r *ShareRepo) RecordVisit(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&database.Share{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"visit_count":     gorm.Expr("visit_count + 1"),
			"last_visited_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Delete removes a share.
func (r *ShareRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&database.Share{}, id)
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// PlayerRepo persists per-device session descriptors.
type PlayerRepo struct {
	db *gorm.DB
}

// NewPlayerRepo creates a player repository over db.
func NewPlayerRepo(db *gorm.DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

// GetOrCreate resolves a player session by (user, client, userAgent),
// creating it on first sight, and stamps lastSeenAt either way.
func (r *PlayerRepo) GetOrCreate(ctx context.Context, userID uint, client, userAgent string) (*database.Player, error) {
	var player database.Player
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND client = ? AND user_agent = ?", userID, client, userAgent).
		First(&player).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, database.TranslateError(err)
		}
		player = database.Player{UserID: userID, Client: client, UserAgent: userAgent}
	}

	now := time.Now().UTC()
	player.LastSeenAt = &now
	if err := r.db.WithContext(ctx).Save(&player).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &player, nil
}

// ListForUser returns a user's player sessions, most recently seen first.
func (r *PlayerRepo) ListForUser(ctx context.Context, userID uint) ([]database.Player, error) {
	var players []database.Player
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_seen_at DESC").
		Find(&players).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return players, nil
}

// Delete removes a player session.
func (r *PlayerRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&database.Player{}, id)
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}
