package database

// =============================================================================
// SETTINGS TABLE
// =============================================================================

// Setting categories group related keys for admin UI listing.
const (
	SettingCategoryGeneral     = 0
	SettingCategoryProcessing  = 1
	SettingCategoryImaging     = 2
	SettingCategoryTranscoding = 3
	SettingCategoryScrobbling  = 4
	SettingCategorySearch      = 5
)

// Setting is one key/value row of instance configuration. Keys are
// globally unique; values are stored as text and parsed by the settings
// store accessors, never here. The embedded trait gives settings the
// same apiKey identity and isLocked protection as every other entity.
type Setting struct {
	ApiModel
	Key      string `gorm:"not null;uniqueIndex" json:"key"`
	Value    string `gorm:"type:text" json:"value"`
	Category int    `gorm:"not null;default:0;index" json:"category"`
	Comment  string `json:"comment,omitempty"`
}
