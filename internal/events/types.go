// Package events provides a lightweight in-process event bus for Melodee.
// Modules publish entity lifecycle and scan events; external collaborators
// (API layer, scanner, scrobble relays) subscribe to them.
package events

import (
	"time"
)

// EventType represents the type of event
type EventType string

// System-wide event types
const (
	// Catalog events
	EventArtistCreated EventType = "catalog.artist.created"
	EventAlbumCreated  EventType = "catalog.album.created"
	EventSongCreated   EventType = "catalog.song.created"
	EventSongReplaced  EventType = "catalog.song.replaced"

	// Scan events
	EventScanCompleted EventType = "scan.completed"

	// User activity events
	EventUserCreated  EventType = "user.created"
	EventPlayRecorded EventType = "activity.play.recorded"
	EventScrobbled    EventType = "activity.scrobbled"
	EventStarred      EventType = "activity.starred"

	// Settings events
	EventSettingChanged EventType = "settings.changed"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventHandler represents a function that handles events
type EventHandler func(event Event)

// EventBus is the publish/subscribe interface modules depend on
type EventBus interface {
	// Publish delivers the event to all subscribers of its type.
	// Delivery is asynchronous; publishers never block on slow handlers.
	Publish(event Event)

	// Subscribe registers a handler for the given event types.
	// An empty type list subscribes to every event.
	Subscribe(handler EventHandler, types ...EventType)

	// Shutdown stops delivery and waits for in-flight handlers.
	Shutdown()
}
