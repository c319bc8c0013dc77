package database

import (
	"time"
)

// =============================================================================
// LIBRARY TABLES
// =============================================================================

// Library is the root container of the catalog hierarchy: a filesystem
// root with a role in the processing pipeline. The artist/album/song
// counts are eventually-consistent projections recomputed by the scanner
// and must be treated as hints, never as authoritative totals.
type Library struct {
	ApiModel
	Path        string      `gorm:"not null" json:"path"`
	Type        LibraryType `gorm:"type:text;not null;uniqueIndex" json:"type"`
	ArtistCount int         `gorm:"not null;default:0" json:"artist_count"`
	AlbumCount  int         `gorm:"not null;default:0" json:"album_count"`
	SongCount   int         `gorm:"not null;default:0" json:"song_count"`
	LastScanAt  *time.Time  `json:"last_scan_at,omitempty"`

	Artists []Artist `gorm:"constraint:OnDelete:CASCADE" json:"artists,omitempty"`
}

// LibraryScanHistory is the append-only audit log of scan operations.
// Rows are never updated after insert. A scan may target the whole
// library or a single artist or album within it.
type LibraryScanHistory struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	LibraryID   uint     `gorm:"not null;index" json:"library_id"`
	Library     *Library `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ForArtistID *uint    `gorm:"index" json:"for_artist_id,omitempty"`
	ForAlbumID  *uint    `gorm:"index" json:"for_album_id,omitempty"`

	FoundArtistCount int   `gorm:"not null;default:0" json:"found_artist_count"`
	FoundAlbumCount  int   `gorm:"not null;default:0" json:"found_album_count"`
	FoundSongCount   int   `gorm:"not null;default:0" json:"found_song_count"`
	DurationInMs     int64 `gorm:"not null;default:0" json:"duration_in_ms"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
