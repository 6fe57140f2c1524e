package resource

import (
	"errors"
	"sort"
	"sync"

	"github.com/wippyai/refcell"
)

var ErrClosed = errors.New("resource backend closed")

var _ Backend = (*LocalBackend)(nil)

// LocalBackend is an in-memory backend with ID reuse.
type LocalBackend struct {
	entries  []entry
	freeList []ID
	nextSeq  uint64
	mu       sync.RWMutex
	closed   bool
}

type entry struct {
	value refcell.Releaser
	kind  string
	seq   uint64
	valid bool
}

// NewLocalBackend creates a new in-memory backend.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{
		entries:  make([]entry, 0, 64),
		freeList: make([]ID, 0, 16),
	}
}

// Create stores a value and returns its ID.
func (b *LocalBackend) Create(kind string, value refcell.Releaser) (ID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}

	b.nextSeq++
	e := entry{
		kind:  kind,
		value: value,
		seq:   b.nextSeq,
		valid: true,
	}

	if len(b.freeList) > 0 {
		id := b.freeList[len(b.freeList)-1]
		b.freeList = b.freeList[:len(b.freeList)-1]
		b.entries[id-1] = e
		return id, nil
	}

	b.entries = append(b.entries, e)
	return ID(len(b.entries)), nil
}

// Get retrieves a value by ID.
func (b *LocalBackend) Get(id ID) (refcell.Releaser, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.lookup(id)
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Kind returns the kind label for an ID.
func (b *LocalBackend) Kind(id ID) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.lookup(id)
	if !ok {
		return "", false
	}
	return e.kind, true
}

// Drop removes an entry and returns (value, true) if it should be released.
func (b *LocalBackend) Drop(id ID) (refcell.Releaser, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.lookup(id); !ok {
		return nil, false
	}

	e := &b.entries[id-1]
	value := e.value
	*e = entry{}
	b.freeList = append(b.freeList, id)

	return value, true
}

// Close releases all remaining values, newest first.
func (b *LocalBackend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	values := b.drainLocked()
	b.entries = nil
	b.freeList = nil
	b.mu.Unlock()

	for _, v := range values {
		v.Release()
	}
	return nil
}

// Len returns the number of live entries.
func (b *LocalBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, e := range b.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// Each iterates over live entries in ID order.
func (b *LocalBackend) Each(fn func(ID, string, refcell.Releaser) bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i, e := range b.entries {
		if e.valid {
			if !fn(ID(i+1), e.kind, e.value) {
				break
			}
		}
	}
}

// Newest returns live IDs ordered from the most recently created.
func (b *LocalBackend) Newest() []ID {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]ID, 0, len(b.entries))
	for i, e := range b.entries {
		if e.valid {
			ids = append(ids, ID(i+1))
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return b.entries[ids[i]-1].seq > b.entries[ids[j]-1].seq
	})
	return ids
}

func (b *LocalBackend) lookup(id ID) (entry, bool) {
	if id == 0 || int(id) > len(b.entries) {
		return entry{}, false
	}
	e := b.entries[id-1]
	if !e.valid {
		return entry{}, false
	}
	return e, true
}

// drainLocked invalidates every entry and returns the values newest first.
func (b *LocalBackend) drainLocked() []refcell.Releaser {
	live := make([]entry, 0, len(b.entries))
	for i := range b.entries {
		if b.entries[i].valid {
			live = append(live, b.entries[i])
		}
		b.entries[i] = entry{}
	}
	sort.Slice(live, func(i, j int) bool { return live[i].seq > live[j].seq })

	values := make([]refcell.Releaser, len(live))
	for i, e := range live {
		values[i] = e.value
	}
	return values
}
