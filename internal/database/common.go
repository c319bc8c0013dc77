package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sphildreth/melodee/internal/utils"
)

// ApiModel is the identity and audit trait embedded in every entity.
// ID is the internal sequential identifier and never leaves the storage
// boundary; APIKey is the opaque external identifier assigned once at
// creation. LastUpdatedAt is set explicitly on every mutation by the
// repositories rather than by a gorm hook, so reads never mutate it.
type ApiModel struct {
	ID            uint       `gorm:"primaryKey" json:"-"`
	APIKey        string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"api_key"`
	IsLocked      bool       `gorm:"not null;default:false" json:"is_locked"`
	SortOrder     int        `gorm:"not null;default:0" json:"sort_order"`
	Tags          string     `json:"tags,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Description   string     `json:"description,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	LastUpdatedAt *time.Time `json:"last_updated_at,omitempty"`
}

// BeforeCreate assigns the external identifier if the caller did not.
func (m *ApiModel) BeforeCreate(tx *gorm.DB) error {
	if m.APIKey == "" {
		m.APIKey = utils.GenerateAPIKey()
	}
	return nil
}

// Touch stamps LastUpdatedAt with the current time.
func (m *ApiModel) Touch() {
	now := time.Now().UTC()
	m.LastUpdatedAt = &now
}

// Provider identifies an external metadata source
type Provider string

const (
	ProviderITunes      Provider = "itunes"
	ProviderAMG         Provider = "amg"
	ProviderDiscogs     Provider = "discogs"
	ProviderMusicBrainz Provider = "musicbrainz"
	ProviderLastFM      Provider = "lastfm"
	ProviderSpotify     Provider = "spotify"
	ProviderWikiData    Provider = "wikidata"
)

// ExternalIDs maps metadata providers to their identifier for an entity,
// at most one id per provider. Stored as a JSON text column.
type ExternalIDs map[Provider]string

func (e ExternalIDs) Value() (driver.Value, error) {
	if len(e) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (e *ExternalIDs) Scan(value interface{}) error {
	if value == nil {
		*e = nil
		return nil
	}
	switch v := value.(type) {
	case string:
		return json.Unmarshal([]byte(v), e)
	case []byte:
		return json.Unmarshal(v, e)
	default:
		return fmt.Errorf("cannot scan %T into ExternalIDs", value)
	}
}

// StringList is an ordered set of strings (genres, moods, share song
// keys, playlist allow-lists) stored as a JSON text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case string:
		return json.Unmarshal([]byte(v), l)
	case []byte:
		return json.Unmarshal(v, l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
}

// Contains reports whether the list holds the given value.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}
