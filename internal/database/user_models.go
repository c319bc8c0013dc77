package database

import (
	"time"
)

// =============================================================================
// USER AND ACTIVITY TABLES
// =============================================================================

// User owns all listener-activity rows; deleting a user cascades to its
// players, shares, playlists, play queue, activity rows, bookmarks and
// scrobbles. Password is stored encrypted; encryption is a caller
// concern, this model only persists the opaque value.
type User struct {
	ApiModel
	UserName           string `gorm:"not null;uniqueIndex" json:"user_name"`
	UserNameNormalized string `gorm:"not null;uniqueIndex" json:"user_name_normalized"`
	Email              string `gorm:"not null;uniqueIndex" json:"email"`
	EmailNormalized    string `gorm:"not null;uniqueIndex" json:"email_normalized"`
	PublicKey          string `gorm:"type:text" json:"-"`
	PasswordEncrypted  string `gorm:"not null" json:"-"`

	IsAdmin             bool `gorm:"not null;default:false" json:"is_admin"`
	HasDownloadRole     bool `gorm:"not null;default:true" json:"has_download_role"`
	HasUploadRole       bool `gorm:"not null;default:false" json:"has_upload_role"`
	HasPlaylistRole     bool `gorm:"not null;default:true" json:"has_playlist_role"`
	HasCoverArtRole     bool `gorm:"not null;default:false" json:"has_cover_art_role"`
	HasCommentRole      bool `gorm:"not null;default:true" json:"has_comment_role"`
	HasPodcastRole      bool `gorm:"not null;default:false" json:"has_podcast_role"`
	HasStreamRole       bool `gorm:"not null;default:true" json:"has_stream_role"`
	HasJukeboxRole      bool `gorm:"not null;default:false" json:"has_jukebox_role"`
	HasShareRole        bool `gorm:"not null;default:false" json:"has_share_role"`
	IsScrobblingEnabled bool `gorm:"not null;default:false" json:"is_scrobbling_enabled"`

	Players   []Player    `gorm:"constraint:OnDelete:CASCADE" json:"players,omitempty"`
	Shares    []Share     `gorm:"constraint:OnDelete:CASCADE" json:"shares,omitempty"`
	Playlists []Playlist  `gorm:"constraint:OnDelete:CASCADE" json:"playlists,omitempty"`
	PlayQueue []PlayQueue `gorm:"constraint:OnDelete:CASCADE" json:"play_queue,omitempty"`
	Bookmarks []Bookmark  `gorm:"constraint:OnDelete:CASCADE" json:"bookmarks,omitempty"`
	Scrobbles []Scrobble  `gorm:"constraint:OnDelete:CASCADE" json:"scrobbles,omitempty"`
}

// SetUserName populates the user name and its normalized form.
func (u *User) SetUserName(name string) {
	u.UserName = name
	u.UserNameNormalized = Normalize(name)
}

// SetEmail populates the email and its normalized form.
func (u *User) SetEmail(email string) {
	u.Email = email
	u.EmailNormalized = Normalize(email)
}

// UserArtist records a user's relationship to an artist, unique per
// (user, artist) pair.
type UserArtist struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"not null;index;uniqueIndex:idx_user_artists_pair,priority:1" json:"user_id"`
	User          *User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ArtistID      uint       `gorm:"not null;index;uniqueIndex:idx_user_artists_pair,priority:2" json:"artist_id"`
	Artist        *Artist    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	IsStarred     bool       `gorm:"not null;default:false" json:"is_starred"`
	StarredAt     *time.Time `json:"starred_at,omitempty"`
	Rating        int        `gorm:"not null;default:0" json:"rating"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	LastUpdatedAt *time.Time `json:"last_updated_at,omitempty"`
}

// UserAlbum records a user's relationship to an album, unique per
// (user, album) pair, including play aggregates.
type UserAlbum struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"not null;index;uniqueIndex:idx_user_albums_pair,priority:1" json:"user_id"`
	User          *User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AlbumID       uint       `gorm:"not null;index;uniqueIndex:idx_user_albums_pair,priority:2" json:"album_id"`
	Album         *Album     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	IsStarred     bool       `gorm:"not null;default:false" json:"is_starred"`
	StarredAt     *time.Time `json:"starred_at,omitempty"`
	Rating        int        `gorm:"not null;default:0" json:"rating"`
	PlayedCount   int        `gorm:"not null;default:0" json:"played_count"`
	LastPlayedAt  *time.Time `json:"last_played_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	LastUpdatedAt *time.Time `json:"last_updated_at,omitempty"`
}

// UserSong records a user's relationship to a song, unique per
// (user, song) pair, including play aggregates.
type UserSong struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"not null;index;uniqueIndex:idx_user_songs_pair,priority:1" json:"user_id"`
	User          *User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	SongID        uint       `gorm:"not null;index;uniqueIndex:idx_user_songs_pair,priority:2" json:"song_id"`
	Song          *Song      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	IsStarred     bool       `gorm:"not null;default:false" json:"is_starred"`
	StarredAt     *time.Time `json:"starred_at,omitempty"`
	Rating        int        `gorm:"not null;default:0" json:"rating"`
	PlayedCount   int        `gorm:"not null;default:0" json:"played_count"`
	LastPlayedAt  *time.Time `json:"last_played_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	LastUpdatedAt *time.Time `json:"last_updated_at,omitempty"`
}

// Scrobble is the append-only play-event log. The same song may be
// scrobbled many times, but never twice with an identical timestamp to
// the same external service.
type Scrobble struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index;uniqueIndex:idx_scrobbles_tuple,priority:1" json:"user_id"`
	User         *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ServiceURL   string    `gorm:"not null;uniqueIndex:idx_scrobbles_tuple,priority:2" json:"service_url"`
	SongID       uint      `gorm:"not null;index;uniqueIndex:idx_scrobbles_tuple,priority:3" json:"song_id"`
	Song         *Song     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PlayTimeInMs int64     `gorm:"not null;uniqueIndex:idx_scrobbles_tuple,priority:4" json:"play_time_in_ms"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

// Bookmark stores a resume position within a song, unique per
// (user, song) pair.
type Bookmark struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        uint        `gorm:"not null;index;uniqueIndex:idx_bookmarks_pair,priority:1" json:"user_id"`
	User          *User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	SongID        uint        `gorm:"not null;index;uniqueIndex:idx_bookmarks_pair,priority:2" json:"song_id"`
	Song          *Song       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Position      float64     `gorm:"not null;default:0" json:"position"`
	Comment       string      `json:"comment,omitempty"`
	ExternalIDs   ExternalIDs `gorm:"type:text" json:"external_ids,omitempty"`
	CreatedAt     time.Time   `gorm:"not null" json:"created_at"`
	LastUpdatedAt *time.Time  `json:"last_updated_at,omitempty"`
}

// Share is a time-limited external link to a set of songs. After
// ExpiresAt the share is inert; enforcement happens in the serving
// layer, this model only stores the deadline.
type Share struct {
	ApiModel
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	User           *User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	SongIDs        StringList `gorm:"type:text" json:"song_ids"`
	ExpiresAt      time.Time  `gorm:"not null" json:"expires_at"`
	VisitCount     int        `gorm:"not null;default:0" json:"visit_count"`
	LastVisitedAt  *time.Time `json:"last_visited_at,omitempty"`
	IsDownloadable bool       `gorm:"not null;default:false" json:"is_downloadable"`
}

// IsExpired reports whether the share is past its deadline.
func (s *Share) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Player is a per-device session descriptor. Not unique: the same user
// may hold several sessions from the same client.
type Player struct {
	ApiModel
	UserID        uint       `gorm:"not null;index:idx_players_user_client,priority:1" json:"user_id"`
	User          *User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Client        string     `gorm:"index:idx_players_user_client,priority:2" json:"client"`
	UserAgent     string     `gorm:"index:idx_players_user_client,priority:3" json:"user_agent"`
	IPAddress     string     `json:"ip_address,omitempty"`
	LastSeenAt    *time.Time `json:"last_seen_at,omitempty"`
	MaxBitRate    int        `gorm:"not null;default:0" json:"max_bit_rate"`
	TranscodingID string     `json:"transcoding_id,omitempty"`
}
