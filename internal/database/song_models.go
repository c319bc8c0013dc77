package database

import (
	"time"
)

// =============================================================================
// SONG TABLES
// =============================================================================

// Song belongs to exactly one AlbumDisc, unique per song number within
// the disc. FileHash is the content hash used to detect duplicate or
// unchanged files across rescans; the normalized title is indexed for
// search but not unique, since many songs legitimately share a title.
type Song struct {
	ApiModel
	AlbumDiscID uint       `gorm:"not null;index;uniqueIndex:idx_songs_disc_number,priority:1" json:"album_disc_id"`
	AlbumDisc   *AlbumDisc `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	SongNumber  int        `gorm:"not null;uniqueIndex:idx_songs_disc_number,priority:2" json:"song_number"`

	// File identity
	FileName    string `gorm:"not null" json:"file_name"`
	FileSize    int64  `gorm:"not null;default:0" json:"file_size"`
	FileHash    string `gorm:"not null;index" json:"file_hash"`
	ContentType string `json:"content_type"`

	// Audio properties
	Duration     float64 `gorm:"not null;default:0" json:"duration"`
	SamplingRate int     `gorm:"not null;default:0" json:"sampling_rate"`
	BitRate      int     `gorm:"not null;default:0" json:"bit_rate"`
	BitDepth     int     `gorm:"not null;default:0" json:"bit_depth"`
	BPM          int     `gorm:"not null;default:0" json:"bpm"`
	ChannelCount int     `gorm:"not null;default:0" json:"channel_count"`
	IsVbr        bool    `gorm:"not null;default:false" json:"is_vbr"`

	// Text fields
	Title           string `gorm:"not null" json:"title"`
	TitleSort       string `json:"title_sort"`
	TitleNormalized string `gorm:"index" json:"title_normalized"`
	Lyrics          string `gorm:"type:text" json:"lyrics,omitempty"`
	PartTitles      string `json:"part_titles,omitempty"`

	Genres           StringList  `gorm:"type:text" json:"genres,omitempty"`
	Moods            StringList  `gorm:"type:text" json:"moods,omitempty"`
	ExternalIDs      ExternalIDs `gorm:"type:text" json:"external_ids,omitempty"`
	CalculatedRating float64     `gorm:"not null;default:0" json:"calculated_rating"`
}

// SetTitle populates the three parallel title columns from a NameInfo.
func (s *Song) SetTitle(info NameInfo) {
	s.Title = info.Name
	s.TitleNormalized = info.NameNormalized
	s.TitleSort = info.SortName
}

// Contributor is a weak join modelling a credited role that may or may
// not resolve to a catalog Artist: the Album reference is required, the
// Song and Artist references are optional, and ContributorName is the
// free-text fallback when no Artist record exists yet.
type Contributor struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	AlbumID uint   `gorm:"not null;index" json:"album_id"`
	Album   *Album `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	SongID *uint `gorm:"index" json:"song_id,omitempty"`
	Song   *Song `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	ArtistID *uint   `gorm:"index" json:"artist_id,omitempty"`
	Artist   *Artist `gorm:"constraint:OnDelete:SET NULL" json:"-"`

	ContributorName   string          `json:"contributor_name,omitempty"`
	Role              string          `json:"role,omitempty"`
	SubRole           string          `json:"sub_role,omitempty"`
	ContributorType   ContributorType `gorm:"type:text;not null;default:'performer'" json:"contributor_type"`
	MetaTagIdentifier string          `json:"meta_tag_identifier,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
