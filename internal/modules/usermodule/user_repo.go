package usermodule

import (
	"context"

	"gorm.io/gorm"

	"github.com/sphildreth/melodee/internal/database"
	"github.com/sphildreth/melodee/internal/events"
)

// UserRepo persists User rows. The user name and email are each
// globally unique in both display and normalized forms.
type UserRepo struct {
	db         *gorm.DB
	eventBus   events.EventBus
	bypassLock bool
}

// NewUserRepo creates a user repository over db.
func NewUserRepo(db *gorm.DB, eventBus events.EventBus) *UserRepo {
	return &UserRepo{db: db, eventBus: eventBus}
}

// Elevated returns a copy of the repository that bypasses isLocked.
func (r *UserRepo) Elevated() *UserRepo {
	return &UserRepo{db: r.db, eventBus: r.eventBus, bypassLock: true}
}

// Create inserts a new user.
func (r *UserRepo) Create(ctx context.Context, user *database.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return database.TranslateError(err)
	}
	if r.eventBus != nil {
		r.eventBus.Publish(events.Event{
			Type:   events.EventUserCreated,
			Source: ModuleID,
			Data:   map[string]interface{}{"user_api_key": user.APIKey},
		})
	}
	return nil
}

// GetByID fetches a user by internal id.
func (r *UserRepo) GetByID(ctx context.Context, id uint) (*database.User, error) {
	var user database.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &user, nil
}

// GetByAPIKey fetches a user by external key.
func (r *UserRepo) GetByAPIKey(ctx context.Context, apiKey string) (*database.User, error) {
	var user database.User
	if err := r.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&user).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &user, nil
}

// GetByUserName resolves a user by normalized user name.
func (r *UserRepo) GetByUserName(ctx context.Context, userName string) (*database.User, error) {
	var user database.User
	err := r.db.WithContext(ctx).
		Where("user_name_normalized = ?", database.Normalize(userName)).
		First(&user).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &user, nil
}

// GetByEmail resolves a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*database.User, error) {
	var user database.User
	err := r.db.WithContext(ctx).
		Where("email_normalized = ?", database.Normalize(email)).
		First(&user).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &user, nil
}

// List returns all users ordered by user name.
func (r *UserRepo) List(ctx context.Context) ([]database.User, error) {
	var users []database.User
	if err := r.db.WithContext(ctx).Order("user_name").Find(&users).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return users, nil
}

// Update persists changes to an existing user, honoring isLocked.
func (r *UserRepo) Update(ctx context.Context, user *database.User) error {
	existing, err := r.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}
	if existing.IsLocked && !r.bypassLock {
		return database.ErrLocked
	}
	user.APIKey = existing.APIKey
	user.CreatedAt = existing.CreatedAt
	user.Touch()
	return database.TranslateError(r.db.WithContext(ctx).Save(user).Error)
}

// Delete removes a user and cascades to all owned activity rows.
func (r *UserRepo) Delete(ctx context.Context, id uint) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsLocked && !r.bypassLock {
		return database.ErrLocked
	}
	result := r.db.WithContext(ctx).Delete(&database.User{}, id)
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}
