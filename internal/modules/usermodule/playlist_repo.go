package usermodule

import (
	"context"

	"gorm.io/gorm"

	"github.com/sphildreth/melodee/internal/database"
)

// PlaylistRepo persists playlists and their ordered song membership.
type PlaylistRepo struct {
	db         *gorm.DB
	bypassLock bool
}

// NewPlaylistRepo creates a playlist repository over db.
func NewPlaylistRepo(db *gorm.DB) *PlaylistRepo {
	return &PlaylistRepo{db: db}
}

// Elevated returns a copy of the repository that bypasses isLocked.
func (r *PlaylistRepo) Elevated() *PlaylistRepo {
	return &PlaylistRepo{db: r.db, bypassLock: true}
}

// Create inserts a playlist. Names are unique per owner.
func (r *PlaylistRepo) Create(ctx context.Context, playlist *database.Playlist) error {
	return database.TranslateError(r.db.WithContext(ctx).Create(playlist).Error)
}

// GetByID fetches a playlist by internal id.
func (r *PlaylistRepo) GetByID(ctx context.Context, id uint) (*database.Playlist, error) {
	var playlist database.Playlist
	if err := r.db.WithContext(ctx).First(&playlist, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &playlist, nil
}

// GetByAPIKey fetches a playlist by external key.
func (r *PlaylistRepo) GetByAPIKey(ctx context.Context, apiKey string) (*database.Playlist, error) {
	var playlist database.Playlist
	if err := r.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&playlist).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &playlist, nil
}

// ListForUser returns a user's playlists ordered by sort order then name.
func (r *PlaylistRepo) ListForUser(ctx context.Context, userID uint) ([]database.Playlist, error) {
	var playlists []database.Playlist
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sort_order, name").
		Find(&playlists).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return playlists, nil
}

// Update persists changes to a playlist, honoring isLocked.
func (r *PlaylistRepo) Update(ctx context.Context, playlist *database.Playlist) error {
	existing, err := r.GetByID(ctx, playlist.ID)
	if err != nil {
		return err
	}
	if existing.IsLocked && !r.bypassLock {
		return database.ErrLocked
	}
	playlist.APIKey = existing.APIKey
	playlist.CreatedAt = existing.CreatedAt
	playlist.Touch()
	return database.TranslateError(r.db.WithContext(ctx).Save(playlist).Error)
}

// Delete removes a playlist and its membership rows.
func (r *PlaylistRepo) Delete(ctx context.Context, id uint) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsLocked && !r.bypassLock {
		return database.ErrLocked
	}
	result := r.db.WithContext(ctx).Delete(&database.Playlist{}, id)
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// AddSong appends a song at the end of the playlist. A song may appear
// at most once per playlist.
func (r *PlaylistRepo) AddSong(ctx context.Context, playlistID, songID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var song database.Song
		if err := tx.First(&song, songID).Error; err != nil {
			return err
		}

		var maxOrder int
		if err := tx.Model(&database.PlaylistSong{}).
			Where("playlist_id = ?", playlistID).
			Select("COALESCE(MAX(playlist_order), 0)").
			Scan(&maxOrder).Error; err != nil {
			return err
		}

		entry := database.PlaylistSong{
			PlaylistID:    playlistID,
			SongID:        songID,
			PlaylistOrder: maxOrder + 1,
			SongAPIKey:    song.APIKey,
		}
		return tx.Create(&entry).Error
	})
	return database.TranslateError(err)
}

// RemoveSong removes a song from a playlist.
func (r *PlaylistRepo) RemoveSong(ctx context.Context, playlistID, songID uint) error {
	result := r.db.WithContext(ctx).
		Where("playlist_id = ? AND song_id = ?", playlistID, songID).
		Delete(&database.PlaylistSong{})
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Songs returns a playlist's membership rows in playlist order.
func (r *PlaylistRepo) Songs(ctx context.Context, playlistID uint) ([]database.PlaylistSong, error) {
	var entries []database.PlaylistSong
	err := r.db.WithContext(ctx).
		Where("playlist_id = ?", playlistID).
		Order("playlist_order").
		Find(&entries).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return entries, nil
}

// RecomputeAggregates refreshes the cached song count and duration from
// the membership rows.
func (r *PlaylistRepo) RecomputeAggregates(ctx context.Context, playlistID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		type agg struct {
			Songs    int64
			Duration float64
		}
		var a agg
		if err := tx.Model(&database.PlaylistSong{}).
			Select("COUNT(*) AS songs, COALESCE(SUM(songs.duration), 0) AS duration").
			Joins("JOIN songs ON songs.id = playlist_songs.song_id").
			Where("playlist_songs.playlist_id = ?", playlistID).
			Scan(&a).Error; err != nil {
			return err
		}
		return tx.Model(&database.Playlist{}).Where("id = ?", playlistID).Updates(map[string]interface{}{
			"song_count": a.Songs,
			"duration":   a.Duration,
		}).Error
	})
	return database.TranslateError(err)
}
