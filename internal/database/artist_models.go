package database

import (
	"time"
)

// =============================================================================
// ARTIST TABLES
// =============================================================================

// Artist belongs to exactly one Library. Name, normalized name and sort
// name are each unique within their library; the normalized form is the
// natural key the scanner uses to detect "this artist already exists"
// during rescans.
type Artist struct {
	ApiModel
	LibraryID uint     `gorm:"not null;index;uniqueIndex:idx_artists_library_name,priority:1;uniqueIndex:idx_artists_library_name_normalized,priority:1;uniqueIndex:idx_artists_library_sort_name,priority:1" json:"library_id"`
	Library   *Library `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Name           string `gorm:"not null;uniqueIndex:idx_artists_library_name,priority:2" json:"name"`
	NameNormalized string `gorm:"not null;index;uniqueIndex:idx_artists_library_name_normalized,priority:2" json:"name_normalized"`
	SortName       string `gorm:"not null;uniqueIndex:idx_artists_library_sort_name,priority:2" json:"sort_name"`

	ExternalIDs      ExternalIDs    `gorm:"type:text" json:"external_ids,omitempty"`
	MetaDataStatus   MetaDataStatus `gorm:"type:text;not null;default:'unknown'" json:"meta_data_status"`
	AlbumCount       int            `gorm:"not null;default:0" json:"album_count"`
	SongCount        int            `gorm:"not null;default:0" json:"song_count"`
	ImageCount       int            `gorm:"not null;default:0" json:"image_count"`
	CalculatedRating float64        `gorm:"not null;default:0" json:"calculated_rating"`

	Albums    []Album          `gorm:"constraint:OnDelete:CASCADE" json:"albums,omitempty"`
	Relations []ArtistRelation `gorm:"foreignKey:ArtistID;constraint:OnDelete:CASCADE" json:"relations,omitempty"`
}

// SetName populates the three parallel name columns from a NameInfo so
// the normalized and sort forms cannot drift from the display form.
func (a *Artist) SetName(info NameInfo) {
	a.Name = info.Name
	a.NameNormalized = info.NameNormalized
	a.SortName = info.SortName
}

// ArtistRelation is a directed edge between two artists, optionally
// bounded by a [RelationStart, RelationEnd) validity interval (e.g. a
// band membership). The (artist, related artist) pair is unique and both
// endpoints cascade-delete with their artist.
type ArtistRelation struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	ArtistID        uint               `gorm:"not null;index;uniqueIndex:idx_artist_relations_pair,priority:1" json:"artist_id"`
	RelatedArtistID uint               `gorm:"not null;index;uniqueIndex:idx_artist_relations_pair,priority:2" json:"related_artist_id"`
	RelatedArtist   *Artist            `gorm:"foreignKey:RelatedArtistID;constraint:OnDelete:CASCADE" json:"-"`
	RelationType    ArtistRelationType `gorm:"type:text;not null" json:"relation_type"`
	RelationStart   *time.Time         `json:"relation_start,omitempty"`
	RelationEnd     *time.Time         `json:"relation_end,omitempty"`
	CreatedAt       time.Time          `gorm:"not null" json:"created_at"`
}
