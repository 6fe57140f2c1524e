package resource

import (
	"sync"

	"github.com/wippyai/refcell"
)

// Table owns a set of releasers addressed by ID, with kind labels and observer
// support.
type Table struct {
	backend   Backend
	observers []Observer
	obsMu     sync.RWMutex
	closed    bool
	closeMu   sync.RWMutex
}

// NewTable creates a new table with a LocalBackend.
func NewTable() *Table {
	return NewTableWithBackend(NewLocalBackend())
}

// NewTableWithBackend creates a table over b. The table takes ownership of b
// and closes it on Close.
func NewTableWithBackend(b Backend) *Table {
	return &Table{
		backend: b,
	}
}

// Insert takes ownership of value and returns its ID. It returns 0 once the
// table is closed; the caller then still owns value.
func (t *Table) Insert(kind string, value refcell.Releaser) ID {
	t.closeMu.RLock()
	if t.closed {
		t.closeMu.RUnlock()
		return 0
	}
	t.closeMu.RUnlock()

	id, err := t.backend.Create(kind, value)
	if err != nil {
		return 0
	}

	t.notify(Event{
		Type:  EventInserted,
		ID:    id,
		Kind:  kind,
		Value: value,
	})

	return id
}

// Get retrieves a value by ID.
func (t *Table) Get(id ID) (refcell.Releaser, bool) {
	return t.backend.Get(id)
}

// GetTyped retrieves a value only if it has the expected kind.
func (t *Table) GetTyped(id ID, kind string) (refcell.Releaser, bool) {
	actual, ok := t.backend.Kind(id)
	if !ok || actual != kind {
		return nil, false
	}
	return t.backend.Get(id)
}

// Kind returns the kind label of an entry.
func (t *Table) Kind(id ID) (string, bool) {
	return t.backend.Kind(id)
}

// Remove releases the entry's share of ownership and frees its ID.
func (t *Table) Remove(id ID) bool {
	kind, _ := t.backend.Kind(id)
	value, ok := t.backend.Drop(id)
	if !ok {
		return false
	}

	value.Release()

	t.notify(Event{
		Type:  EventRemoved,
		ID:    id,
		Kind:  kind,
		Value: value,
	})

	return true
}

// Subscribe adds an observer for table events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live entries.
func (t *Table) Len() int {
	return t.backend.Len()
}

// Each iterates over live entries in ID order.
func (t *Table) Each(fn func(ID, string, refcell.Releaser) bool) {
	t.backend.Each(fn)
}

// Clear removes every entry, newest first.
func (t *Table) Clear() {
	for _, id := range t.backend.Newest() {
		t.Remove(id)
	}
}

// Close removes every entry, newest first, and stops accepting inserts.
func (t *Table) Close() error {
	t.closeMu.Lock()
	if t.closed {
		t.closeMu.Unlock()
		return nil
	}
	t.closed = true
	t.closeMu.Unlock()

	t.Clear()
	return t.backend.Close()
}

// Backend returns the underlying backend.
func (t *Table) Backend() Backend {
	return t.backend
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnTableEvent(e)
	}
}
