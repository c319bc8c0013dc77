package database

import (
	"database/sql/driver"
	"fmt"
)

// scanEnum is the shared Scan implementation for the string enums below.
func scanEnum(dst *string, value interface{}, name string) error {
	if value == nil {
		*dst = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*dst = v
	case []byte:
		*dst = string(v)
	default:
		return fmt.Errorf("cannot scan %T into %s", value, name)
	}
	return nil
}

// LibraryType identifies the role a library plays in the processing
// pipeline. Exactly one library of each type may exist; the schema
// enforces this with a unique index on the column.
type LibraryType string

const (
	LibraryTypeInbound    LibraryType = "inbound"
	LibraryTypeStaging    LibraryType = "staging"
	LibraryTypeStorage    LibraryType = "storage"
	LibraryTypeUserImages LibraryType = "user_images"
)

func (t LibraryType) Value() (driver.Value, error) { return string(t), nil }

func (t *LibraryType) Scan(value interface{}) error {
	return scanEnum((*string)(t), value, "LibraryType")
}

// IsValid reports whether the value is one of the known library types.
func (t LibraryType) IsValid() bool {
	switch t {
	case LibraryTypeInbound, LibraryTypeStaging, LibraryTypeStorage, LibraryTypeUserImages:
		return true
	}
	return false
}

// MetaDataStatus tracks how complete an entity's external metadata is
type MetaDataStatus string

const (
	MetaDataStatusUnknown      MetaDataStatus = "unknown"
	MetaDataStatusNeedsRefresh MetaDataStatus = "needs_refresh"
	MetaDataStatusComplete     MetaDataStatus = "complete"
)

func (s MetaDataStatus) Value() (driver.Value, error) { return string(s), nil }

func (s *MetaDataStatus) Scan(value interface{}) error {
	return scanEnum((*string)(s), value, "MetaDataStatus")
}

// AlbumStatus flags catalog problems found during scanning
type AlbumStatus string

const (
	AlbumStatusOk        AlbumStatus = "ok"
	AlbumStatusMissing   AlbumStatus = "missing"
	AlbumStatusDuplicate AlbumStatus = "duplicate"
)

func (s AlbumStatus) Value() (driver.Value, error) { return string(s), nil }

func (s *AlbumStatus) Scan(value interface{}) error {
	return scanEnum((*string)(s), value, "AlbumStatus")
}

// AlbumType categorizes a release
type AlbumType string

const (
	AlbumTypeStudio      AlbumType = "studio"
	AlbumTypeLive        AlbumType = "live"
	AlbumTypeCompilation AlbumType = "compilation"
	AlbumTypeSoundtrack  AlbumType = "soundtrack"
	AlbumTypeEP          AlbumType = "ep"
	AlbumTypeSingle      AlbumType = "single"
)

func (t AlbumType) Value() (driver.Value, error) { return string(t), nil }

func (t *AlbumType) Scan(value interface{}) error {
	return scanEnum((*string)(t), value, "AlbumType")
}

// ArtistRelationType labels a directed artist-to-artist edge
type ArtistRelationType string

const (
	ArtistRelationMemberOf  ArtistRelationType = "member_of"
	ArtistRelationRelatedTo ArtistRelationType = "related_to"
	ArtistRelationAliasOf   ArtistRelationType = "alias_of"
)

func (t ArtistRelationType) Value() (driver.Value, error) { return string(t), nil }

func (t *ArtistRelationType) Scan(value interface{}) error {
	return scanEnum((*string)(t), value, "ArtistRelationType")
}

// ContributorType categorizes a credited role on an album or song
type ContributorType string

const (
	ContributorTypePerformer ContributorType = "performer"
	ContributorTypeProducer  ContributorType = "producer"
	ContributorTypeEngineer  ContributorType = "engineer"
	ContributorTypeComposer  ContributorType = "composer"
	ContributorTypeFeatured  ContributorType = "featured"
)

func (t ContributorType) Value() (driver.Value, error) { return string(t), nil }

func (t *ContributorType) Scan(value interface{}) error {
	return scanEnum((*string)(t), value, "ContributorType")
}
