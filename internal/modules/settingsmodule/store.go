package settingsmodule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/sphildreth/melodee/internal/database"
	"github.com/sphildreth/melodee/internal/events"
)

// Store provides typed access to the settings table. Values are stored
// as text; the typed accessors parse on the way out and report malformed
// values as database.ErrParse, distinct from a missing key.
type Store struct {
	db         *gorm.DB
	eventBus   events.EventBus
	bypassLock bool
}

// NewStore creates a settings store over db.
func NewStore(db *gorm.DB, eventBus events.EventBus) *Store {
	return &Store{db: db, eventBus: eventBus}
}

// Elevated returns a copy of the store that bypasses isLocked.
func (s *Store) Elevated() *Store {
	return &Store{db: s.db, eventBus: s.eventBus, bypassLock: true}
}

// Get returns the raw setting row for a key.
func (s *Store) Get(ctx context.Context, key string) (*database.Setting, error) {
	var setting database.Setting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &setting, nil
}

// Set upserts a setting value. New keys get a fresh apiKey and take the
// category and comment of their declaration when one exists; locked rows
// reject the write.
func (s *Store) Set(ctx context.Context, key, value string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var setting database.Setting
		err := tx.Where("key = ?", key).First(&setting).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			setting = database.Setting{Key: key, Value: value}
			if def, ok := KeyDefFor(key); ok {
				setting.Category = def.Category
				setting.Comment = def.Comment
			}
			return tx.Create(&setting).Error
		case err != nil:
			return err
		}

		if setting.IsLocked && !s.bypassLock {
			return database.ErrLocked
		}
		setting.Value = value
		setting.Touch()
		return tx.Save(&setting).Error
	})
	if err != nil {
		return database.TranslateError(err)
	}

	if s.eventBus != nil {
		s.eventBus.Publish(events.Event{
			Type:   events.EventSettingChanged,
			Source: ModuleID,
			Data:   map[string]interface{}{"key": key},
		})
	}
	return nil
}

// Delete removes a setting row, honoring isLocked. Deleting an absent
// key is ErrNotFound.
func (s *Store) Delete(ctx context.Context, key string) error {
	setting, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if setting.IsLocked && !s.bypassLock {
		return database.ErrLocked
	}
	result := s.db.WithContext(ctx).Where("key = ?", key).Delete(&database.Setting{})
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// ListByCategory returns all settings in a category ordered by sort
// order then key.
func (s *Store) ListByCategory(ctx context.Context, category int) ([]database.Setting, error) {
	var settings []database.Setting
	err := s.db.WithContext(ctx).
		Where("category = ?", category).
		Order("sort_order, key").
		Find(&settings).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return settings, nil
}

// All returns every setting ordered by category then sort order then key.
func (s *Store) All(ctx context.Context) ([]database.Setting, error) {
	var settings []database.Setting
	err := s.db.WithContext(ctx).Order("category, sort_order, key").Find(&settings).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return settings, nil
}

// GetString returns the value for a key as a string.
func (s *Store) GetString(ctx context.Context, key string) (string, error) {
	setting, err := s.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

// GetBool parses the value for a key as a boolean.
func (s *Store) GetBool(ctx context.Context, key string) (bool, error) {
	raw, err := s.GetString(ctx, key)
	if err != nil {
		return false, err
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: setting %s is not a bool: %q", database.ErrParse, key, raw)
	}
	return v, nil
}

// GetInt parses the value for a key as an integer.
func (s *Store) GetInt(ctx context.Context, key string) (int, error) {
	raw, err := s.GetString(ctx, key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: setting %s is not an int: %q", database.ErrParse, key, raw)
	}
	return v, nil
}

// GetFloat parses the value for a key as a float.
func (s *Store) GetFloat(ctx context.Context, key string) (float64, error) {
	raw, err := s.GetString(ctx, key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: setting %s is not a float: %q", database.ErrParse, key, raw)
	}
	return v, nil
}

// GetDuration parses the value for a key as a Go duration string.
func (s *Store) GetDuration(ctx context.Context, key string) (time.Duration, error) {
	raw, err := s.GetString(ctx, key)
	if err != nil {
		return 0, err
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: setting %s is not a duration: %q", database.ErrParse, key, raw)
	}
	return v, nil
}

// GetStringList parses the value for a key as a JSON string array.
func (s *Store) GetStringList(ctx context.Context, key string) ([]string, error) {
	raw, err := s.GetString(ctx, key)
	if err != nil {
		return nil, err
	}
	var v []string
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("%w: setting %s is not a string list: %q", database.ErrParse, key, raw)
	}
	return v, nil
}

// GetJSON unmarshals the value for a key into dst.
func (s *Store) GetJSON(ctx context.Context, key string, dst interface{}) error {
	raw, err := s.GetString(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%w: setting %s is not valid JSON: %q", database.ErrParse, key, raw)
	}
	return nil
}

// SeedDefaults inserts every declared key that is not yet present.
// Existing rows are never overwritten.
func (s *Store) SeedDefaults(ctx context.Context) error {
	for _, def := range Keys {
		var count int64
		if err := s.db.WithContext(ctx).
			Model(&database.Setting{}).
			Where("key = ?", def.Key).
			Count(&count).Error; err != nil {
			return database.TranslateError(err)
		}
		if count > 0 {
			continue
		}
		setting := database.Setting{
			Key:      def.Key,
			Value:    def.Default,
			Category: def.Category,
			Comment:  def.Comment,
		}
		if err := s.db.WithContext(ctx).Create(&setting).Error; err != nil {
			return database.TranslateError(err)
		}
	}
	return nil
}
