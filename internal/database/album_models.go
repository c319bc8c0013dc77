package database

import (
	"time"
)

// =============================================================================
// ALBUM TABLES
// =============================================================================

// Album belongs to exactly one Artist and is unique per artist on name,
// normalized name and sort name. ReleaseDate is required;
// OriginalReleaseDate is optional and, when present, must not be after
// ReleaseDate; the album repository enforces this, not the schema.
type Album struct {
	ApiModel
	ArtistID uint    `gorm:"not null;index;uniqueIndex:idx_albums_artist_name,priority:1;uniqueIndex:idx_albums_artist_name_normalized,priority:1;uniqueIndex:idx_albums_artist_sort_name,priority:1" json:"artist_id"`
	Artist   *Artist `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Name           string `gorm:"not null;uniqueIndex:idx_albums_artist_name,priority:2" json:"name"`
	NameNormalized string `gorm:"not null;index;uniqueIndex:idx_albums_artist_name_normalized,priority:2" json:"name_normalized"`
	SortName       string `gorm:"not null;uniqueIndex:idx_albums_artist_sort_name,priority:2" json:"sort_name"`

	AlbumStatus         AlbumStatus    `gorm:"type:text;not null;default:'ok'" json:"album_status"`
	MetaDataStatus      MetaDataStatus `gorm:"type:text;not null;default:'unknown'" json:"meta_data_status"`
	AlbumType           AlbumType      `gorm:"type:text;not null;default:'studio'" json:"album_type"`
	OriginalReleaseDate *time.Time     `json:"original_release_date,omitempty"`
	ReleaseDate         time.Time      `gorm:"not null" json:"release_date"`
	IsCompilation       bool           `gorm:"not null;default:false" json:"is_compilation"`

	SongCount  int     `gorm:"not null;default:0" json:"song_count"`
	DiscCount  int     `gorm:"not null;default:0" json:"disc_count"`
	ImageCount int     `gorm:"not null;default:0" json:"image_count"`
	Duration   float64 `gorm:"not null;default:0" json:"duration"`

	Genres           StringList  `gorm:"type:text" json:"genres,omitempty"`
	Moods            StringList  `gorm:"type:text" json:"moods,omitempty"`
	ReplayGain       float64     `gorm:"not null;default:0" json:"replay_gain"`
	ReplayPeak       float64     `gorm:"not null;default:0" json:"replay_peak"`
	Directory        string      `json:"directory"`
	ExternalIDs      ExternalIDs `gorm:"type:text" json:"external_ids,omitempty"`
	CalculatedRating float64     `gorm:"not null;default:0" json:"calculated_rating"`

	Discs []AlbumDisc `gorm:"constraint:OnDelete:CASCADE" json:"discs,omitempty"`
}

// SetName populates the three parallel name columns from a NameInfo.
func (a *Album) SetName(info NameInfo) {
	a.Name = info.Name
	a.NameNormalized = info.NameNormalized
	a.SortName = info.SortName
}

// AlbumDisc belongs to exactly one Album, unique per disc number.
type AlbumDisc struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AlbumID    uint      `gorm:"not null;index;uniqueIndex:idx_album_discs_album_number,priority:1" json:"album_id"`
	DiscNumber int       `gorm:"not null;uniqueIndex:idx_album_discs_album_number,priority:2" json:"disc_number"`
	Title      string    `json:"title,omitempty"`
	SongCount  int       `gorm:"not null;default:0" json:"song_count"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`

	Songs []Song `gorm:"foreignKey:AlbumDiscID;constraint:OnDelete:CASCADE" json:"songs,omitempty"`
}
