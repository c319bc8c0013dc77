package usermodule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sphildreth/melodee/internal/database"
	"github.com/sphildreth/melodee/internal/events"
)

// TargetType selects which per-user activity table an operation hits.
type TargetType string

const (
	TargetArtist TargetType = "artist"
	TargetAlbum  TargetType = "album"
	TargetSong   TargetType = "song"
)

// ActivityTracker records per-user relationships to catalog entities
// without ever mutating the catalog entities themselves.
type ActivityTracker struct {
	db       *gorm.DB
	eventBus events.EventBus
}

// NewActivityTracker creates a tracker over db.
func NewActivityTracker(db *gorm.DB, eventBus events.EventBus) *ActivityTracker {
	return &ActivityTracker{db: db, eventBus: eventBus}
}

// Star marks a target starred for the user, upserting the activity row.
func (t *ActivityTracker) Star(ctx context.Context, userID, targetID uint, target TargetType) error {
	now := time.Now().UTC()
	err := t.upsertActivity(ctx, userID, targetID, target, map[string]interface{}{
		"is_starred": true,
		"starred_at": now,
	})
	if err != nil {
		return err
	}
	if t.eventBus != nil {
		t.eventBus.Publish(events.Event{
			Type:   events.EventStarred,
			Source: ModuleID,
			Data:   map[string]interface{}{"user_id": userID, "target_id": targetID, "target": string(target)},
		})
	}
	return nil
}

// Unstar clears the star on a target for the user.
func (t *ActivityTracker) Unstar(ctx context.Context, userID, targetID uint, target TargetType) error {
	return t.upsertActivity(ctx, userID, targetID, target, map[string]interface{}{
		"is_starred": false,
		"starred_at": nil,
	})
}

// SetRating stores a bounded 0..5 rating on a target for the user.
func (t *ActivityTracker) SetRating(ctx context.Context, userID, targetID uint, target TargetType, rating int) error {
	if rating < 0 || rating > 5 {
		return fmt.Errorf("%w: rating %d out of range 0..5", database.ErrConstraintViolation, rating)
	}
	return t.upsertActivity(ctx, userID, targetID, target, map[string]interface{}{
		"rating": rating,
	})
}

// upsertActivity applies updates to the UserArtist/UserAlbum/UserSong
// row for (user, target), creating it first if absent.
func (t *ActivityTracker) upsertActivity(ctx context.Context, userID, targetID uint, target TargetType, updates map[string]interface{}) error {
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch target {
		case TargetArtist:
			var row database.UserArtist
			err := tx.Where("user_id = ? AND artist_id = ?", userID, targetID).First(&row).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if err := tx.Create(&database.UserArtist{UserID: userID, ArtistID: targetID}).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
			return t.applyUpdates(tx, &database.UserArtist{}, "artist_id", userID, targetID, updates)
		case TargetAlbum:
			var row database.UserAlbum
			err := tx.Where("user_id = ? AND album_id = ?", userID, targetID).First(&row).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if err := tx.Create(&database.UserAlbum{UserID: userID, AlbumID: targetID}).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
			return t.applyUpdates(tx, &database.UserAlbum{}, "album_id", userID, targetID, updates)
		case TargetSong:
			var row database.UserSong
			err := tx.Where("user_id = ? AND song_id = ?", userID, targetID).First(&row).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if err := tx.Create(&database.UserSong{UserID: userID, SongID: targetID}).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
			return t.applyUpdates(tx, &database.UserSong{}, "song_id", userID, targetID, updates)
		default:
			return fmt.Errorf("%w: unknown target type %q", database.ErrConstraintViolation, target)
		}
	})
	return database.TranslateError(err)
}

func (t *ActivityTracker) applyUpdates(tx *gorm.DB, model interface{}, targetColumn string, userID, targetID uint, updates map[string]interface{}) error {
	updates["last_updated_at"] = time.Now().UTC()
	return tx.Model(model).
		Where("user_id = ? AND "+targetColumn+" = ?", userID, targetID).
		Updates(updates).Error
}

// RecordPlay bumps the play aggregates on the UserSong row, upserting
// it if absent. Scrobbling is a separate, independently failable write;
// a play is recorded locally even when the scrobble relay fails.
func (t *ActivityTracker) RecordPlay(ctx context.Context, userID, songID uint, playedAt time.Time) error {
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row database.UserSong
		err := tx.Where("user_id = ? AND song_id = ?", userID, songID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := tx.Create(&database.UserSong{UserID: userID, SongID: songID}).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := tx.Model(&database.UserSong{}).
			Where("user_id = ? AND song_id = ?", userID, songID).
			Updates(map[string]interface{}{
				"played_count":    gorm.Expr("played_count + 1"),
				"last_played_at":  playedAt,
				"last_updated_at": now,
			}).Error; err != nil {
			return err
		}

		// The song's album also carries play aggregates.
		var song database.Song
		if err := tx.First(&song, songID).Error; err != nil {
			return err
		}
		var disc database.AlbumDisc
		if err := tx.First(&disc, song.AlbumDiscID).Error; err != nil {
			return err
		}
		var albumRow database.UserAlbum
		err = tx.Where("user_id = ? AND album_id = ?", userID, disc.AlbumID).First(&albumRow).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := tx.Create(&database.UserAlbum{UserID: userID, AlbumID: disc.AlbumID}).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		return tx.Model(&database.UserAlbum{}).
			Where("user_id = ? AND album_id = ?", userID, disc.AlbumID).
			Updates(map[string]interface{}{
				"played_count":    gorm.Expr("played_count + 1"),
				"last_played_at":  playedAt,
				"last_updated_at": now,
			}).Error
	})
	if err != nil {
		return database.TranslateError(err)
	}
	if t.eventBus != nil {
		t.eventBus.Publish(events.Event{
			Type:   events.EventPlayRecorded,
			Source: ModuleID,
			Data:   map[string]interface{}{"user_id": userID, "song_id": songID},
		})
	}
	return nil
}

// RecordScrobble appends a play event for relay to an external service.
// A scrobble requires an underlying recorded play; the reverse is not
// enforced. Duplicate (user, service, song, time) tuples are rejected.
func (t *ActivityTracker) RecordScrobble(ctx context.Context, userID, songID uint, serviceURL string, playedAt time.Time) error {
	var plays int64
	err := t.db.WithContext(ctx).Model(&database.UserSong{}).
		Where("user_id = ? AND song_id = ? AND played_count > 0", userID, songID).
		Count(&plays).Error
	if err != nil {
		return database.TranslateError(err)
	}
	if plays == 0 {
		return fmt.Errorf("%w: scrobble without a recorded play for song %d", database.ErrConstraintViolation, songID)
	}

	scrobble := database.Scrobble{
		UserID:       userID,
		ServiceURL:   serviceURL,
		SongID:       songID,
		PlayTimeInMs: playedAt.UnixMilli(),
	}
	if err := t.db.WithContext(ctx).Create(&scrobble).Error; err != nil {
		return database.TranslateError(err)
	}
	if t.eventBus != nil {
		t.eventBus.Publish(events.Event{
			Type:   events.EventScrobbled,
			Source: ModuleID,
			Data:   map[string]interface{}{"user_id": userID, "song_id": songID, "service_url": serviceURL},
		})
	}
	return nil
}

// Enqueue appends a song to the user's play queue.
func (t *ActivityTracker) Enqueue(ctx context.Context, userID, songID uint, changedBy string) error {
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var song database.Song
		if err := tx.First(&song, songID).Error; err != nil {
			return err
		}

		var maxPos float64
		if err := tx.Model(&database.PlayQueue{}).
			Where("user_id = ?", userID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&maxPos).Error; err != nil {
			return err
		}

		entry := database.PlayQueue{
			UserID:     userID,
			SongID:     songID,
			SongAPIKey: song.APIKey,
			Position:   maxPos + 1,
			ChangedBy:  changedBy,
		}
		return tx.Create(&entry).Error
	})
	return database.TranslateError(err)
}

// SetQueuePosition moves a queued song. Positions are floats so a row
// can land between two neighbors without renumbering the queue.
func (t *ActivityTracker) SetQueuePosition(ctx context.Context, userID, songID uint, position float64) error {
	result := t.db.WithContext(ctx).Model(&database.PlayQueue{}).
		Where("user_id = ? AND song_id = ?", userID, songID).
		Updates(map[string]interface{}{
			"position":        position,
			"last_updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// SetCurrentSong flips the queue cursor to the given song: the old flag
// clears and the new one sets in one transaction, so the user never
// observes zero or two current songs.
func (t *ActivityTracker) SetCurrentSong(ctx context.Context, userID, songID uint, changedBy string) error {
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry database.PlayQueue
		if err := tx.Where("user_id = ? AND song_id = ?", userID, songID).First(&entry).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := tx.Model(&database.PlayQueue{}).
			Where("user_id = ? AND is_current_song = ?", userID, true).
			Updates(map[string]interface{}{
				"is_current_song": false,
				"last_updated_at": now,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&database.PlayQueue{}).
			Where("user_id = ? AND song_id = ?", userID, songID).
			Updates(map[string]interface{}{
				"is_current_song": true,
				"changed_by":      changedBy,
				"last_updated_at": now,
			}).Error
	})
	return database.TranslateError(err)
}

// Dequeue removes a song from the user's play queue.
func (t *ActivityTracker) Dequeue(ctx context.Context, userID, songID uint) error {
	result := t.db.WithContext(ctx).
		Where("user_id = ? AND song_id = ?", userID, songID).
		Delete(&database.PlayQueue{})
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Queue returns the user's play queue in position order.
func (t *ActivityTracker) Queue(ctx context.Context, userID uint) ([]database.PlayQueue, error) {
	var entries []database.PlayQueue
	err := t.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position").
		Find(&entries).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return entries, nil
}

// CurrentSong returns the queue row flagged as current, or ErrNotFound.
func (t *ActivityTracker) CurrentSong(ctx context.Context, userID uint) (*database.PlayQueue, error) {
	var entry database.PlayQueue
	err := t.db.WithContext(ctx).
		Where("user_id = ? AND is_current_song = ?", userID, true).
		First(&entry).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &entry, nil
}

// SaveBookmark upserts the resume position for (user, song).
func (t *ActivityTracker) SaveBookmark(ctx context.Context, userID, songID uint, position float64, comment string) error {
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bookmark database.Bookmark
		err := tx.Where("user_id = ? AND song_id = ?", userID, songID).First(&bookmark).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&database.Bookmark{
				UserID:   userID,
				SongID:   songID,
				Position: position,
				Comment:  comment,
			}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&bookmark).Updates(map[string]interface{}{
			"position":        position,
			"comment":         comment,
			"last_updated_at": time.Now().UTC(),
		}).Error
	})
	return database.TranslateError(err)
}

// DeleteBookmark removes the bookmark for (user, song).
func (t *ActivityTracker) DeleteBookmark(ctx context.Context, userID, songID uint) error {
	result := t.db.WithContext(ctx).
		Where("user_id = ? AND song_id = ?", userID, songID).
		Delete(&database.Bookmark{})
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}
