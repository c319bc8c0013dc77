package database

import (
	"time"
)

// =============================================================================
// PLAYLIST AND PLAY QUEUE TABLES
// =============================================================================

// Playlist is a named, ordered set of songs owned by one user. Names
// are unique per owner. A private playlist may still be readable by the
// users listed in AllowedUserIDs.
type Playlist struct {
	ApiModel
	UserID uint  `gorm:"not null;index;uniqueIndex:idx_playlists_user_name,priority:1" json:"user_id"`
	User   *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Name           string     `gorm:"not null;uniqueIndex:idx_playlists_user_name,priority:2" json:"name"`
	IsPublic       bool       `gorm:"not null;default:false" json:"is_public"`
	AllowedUserIDs StringList `gorm:"type:text" json:"allowed_user_ids,omitempty"`

	SongCount      int     `gorm:"not null;default:0" json:"song_count"`
	Duration       float64 `gorm:"not null;default:0" json:"duration"`
	HasCustomImage bool    `gorm:"not null;default:false" json:"has_custom_image"`

	Songs []PlaylistSong `gorm:"constraint:OnDelete:CASCADE" json:"songs,omitempty"`
}

// PlaylistSong links a song into a playlist at a position. A song
// appears at most once per playlist. SongAPIKey is denormalized so the
// serving layer can emit playlist contents without joining songs.
type PlaylistSong struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PlaylistID uint      `gorm:"not null;index;uniqueIndex:idx_playlist_songs_pair,priority:1" json:"playlist_id"`
	Playlist   *Playlist `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	SongID     uint      `gorm:"not null;index;uniqueIndex:idx_playlist_songs_pair,priority:2" json:"song_id"`
	Song       *Song     `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	PlaylistOrder int    `gorm:"not null;default:0" json:"playlist_order"`
	SongAPIKey    string `gorm:"not null" json:"song_api_key"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// PlayQueue is a user's pending listening queue, one row per queued
// song. At most one row per user carries IsCurrentSong; moving the
// cursor clears the old row and sets the new one in the same
// transaction. Position is a float so rows can be inserted between
// neighbors without renumbering the queue.
type PlayQueue struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID uint  `gorm:"not null;index;uniqueIndex:idx_play_queues_user_song,priority:1" json:"user_id"`
	User   *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	SongID uint  `gorm:"not null;index;uniqueIndex:idx_play_queues_user_song,priority:2" json:"song_id"`
	Song   *Song `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	SongAPIKey    string  `gorm:"not null" json:"song_api_key"`
	IsCurrentSong bool    `gorm:"not null;default:false" json:"is_current_song"`
	Position      float64 `gorm:"not null;default:0" json:"position"`
	ChangedBy     string  `json:"changed_by,omitempty"`

	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	LastUpdatedAt *time.Time `json:"last_updated_at,omitempty"`
}
