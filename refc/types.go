package refc

import (
	"github.com/google/uuid"
)

// EventType identifies a cell lifecycle transition.
type EventType uint8

const (
	EventCreated EventType = iota
	EventCloned
	EventReleased
	EventTornDown
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventCloned:
		return "cloned"
	case EventReleased:
		return "released"
	case EventTornDown:
		return "torn-down"
	default:
		return "unknown"
	}
}

// Event describes one lifecycle transition of a cell. Count is the live count
// after the transition.
type Event struct {
	Name  string
	Count int
	ID    uuid.UUID
	Type  EventType
}

// Observer receives cell lifecycle events. Events are delivered synchronously on
// the goroutine performing the Clone or Release.
type Observer interface {
	OnHandleEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// OnHandleEvent calls f(e).
func (f ObserverFunc) OnHandleEvent(e Event) {
	f(e)
}
