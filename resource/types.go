package resource

import (
	"github.com/wippyai/refcell"
)

// ID is an opaque reference to an entry in a table.
// ID 0 is reserved and always invalid.
type ID uint32

// Event types for table notifications.
type EventType uint8

const (
	EventInserted EventType = iota
	EventRemoved
)

// Event represents a table event.
type Event struct {
	Value refcell.Releaser
	Kind  string
	ID    ID
	Type  EventType
}

// Observer receives notifications about table events.
type Observer interface {
	OnTableEvent(Event)
}

// Backend provides the underlying storage mechanism for entries.
type Backend interface {
	// Create stores a value and returns its ID.
	Create(kind string, value refcell.Releaser) (ID, error)

	// Get retrieves a value by ID.
	Get(id ID) (refcell.Releaser, bool)

	// Drop removes an entry and returns its value without releasing it.
	// Returns (nil, false) if the ID is invalid.
	Drop(id ID) (refcell.Releaser, bool)

	// Kind returns the kind label for an ID.
	Kind(id ID) (string, bool)

	// Len returns the number of live entries.
	Len() int

	// Each iterates over live entries in ID order.
	Each(fn func(ID, string, refcell.Releaser) bool)

	// Newest returns live IDs ordered from the most recently created.
	Newest() []ID

	// Close releases all remaining values and stops accepting new ones.
	Close() error
}
