package database

// =============================================================================
// RADIO STATION TABLE
// =============================================================================

// RadioStation is a flat record of an internet radio stream. It hangs
// off no hierarchy; the stream URL is unique across the instance.
type RadioStation struct {
	ApiModel
	Name        string `gorm:"not null" json:"name"`
	StreamURL   string `gorm:"not null;uniqueIndex" json:"stream_url"`
	HomepageURL string `json:"homepage_url,omitempty"`
}
