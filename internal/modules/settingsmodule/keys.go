package settingsmodule

import (
	"github.com/sphildreth/melodee/internal/database"
)

// ValueType declares how a setting's text value is meant to be parsed.
type ValueType string

const (
	TypeString     ValueType = "string"
	TypeBool       ValueType = "bool"
	TypeInt        ValueType = "int"
	TypeFloat      ValueType = "float"
	TypeDuration   ValueType = "duration"
	TypeStringList ValueType = "string_list"
	TypeJSON       ValueType = "json"
)

// KeyDef describes one declared setting: its parse type, the value
// seeded on first run and the category it lists under.
type KeyDef struct {
	Key      string
	Type     ValueType
	Default  string
	Category int
	Comment  string
}

// Declared setting keys. Unknown keys may still be stored (the table is
// open), but these are seeded on first run and drive the admin listing.
var Keys = []KeyDef{
	// Processing
	{Key: "processing.inbound_auto_move", Type: TypeBool, Default: "true", Category: database.SettingCategoryProcessing,
		Comment: "Move completed inbound albums to staging automatically"},
	{Key: "processing.staging_requires_review", Type: TypeBool, Default: "true", Category: database.SettingCategoryProcessing,
		Comment: "Hold staged albums until an editor approves them"},
	{Key: "processing.duplicate_threshold", Type: TypeFloat, Default: "0.95", Category: database.SettingCategoryProcessing,
		Comment: "Normalized-name similarity above which an album is flagged duplicate"},
	{Key: "processing.max_songs_per_album", Type: TypeInt, Default: "500", Category: database.SettingCategoryProcessing},
	{Key: "processing.scan_interval", Type: TypeDuration, Default: "6h", Category: database.SettingCategoryProcessing,
		Comment: "How often the storage library is rescanned"},
	{Key: "processing.ignored_file_patterns", Type: TypeStringList, Default: `[".DS_Store","Thumbs.db","*.tmp"]`, Category: database.SettingCategoryProcessing},

	// Imaging
	{Key: "imaging.small_size", Type: TypeInt, Default: "300", Category: database.SettingCategoryImaging},
	{Key: "imaging.medium_size", Type: TypeInt, Default: "600", Category: database.SettingCategoryImaging},
	{Key: "imaging.large_size", Type: TypeInt, Default: "1200", Category: database.SettingCategoryImaging},
	{Key: "imaging.convert_to_jpeg", Type: TypeBool, Default: "true", Category: database.SettingCategoryImaging},

	// Transcoding
	{Key: "transcoding.enabled", Type: TypeBool, Default: "false", Category: database.SettingCategoryTranscoding},
	{Key: "transcoding.default_bitrate", Type: TypeInt, Default: "192", Category: database.SettingCategoryTranscoding,
		Comment: "Kilobits per second"},
	{Key: "transcoding.formats", Type: TypeStringList, Default: `["mp3","opus"]`, Category: database.SettingCategoryTranscoding},

	// Scrobbling
	{Key: "scrobbling.enabled", Type: TypeBool, Default: "false", Category: database.SettingCategoryScrobbling},
	{Key: "scrobbling.minimum_play_duration", Type: TypeDuration, Default: "30s", Category: database.SettingCategoryScrobbling,
		Comment: "Plays shorter than this are not scrobbled"},

	// Search
	{Key: "search.default_page_size", Type: TypeInt, Default: "50", Category: database.SettingCategorySearch},
	{Key: "search.max_page_size", Type: TypeInt, Default: "500", Category: database.SettingCategorySearch},
}

// KeyDefFor looks up the declaration for a key.
func KeyDefFor(key string) (KeyDef, bool) {
	for _, def := range Keys {
		if def.Key == key {
			return def, true
		}
	}
	return KeyDef{}, false
}
