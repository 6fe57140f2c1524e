package resource

import (
	"github.com/wippyai/refcell"
	"github.com/wippyai/refcell/refc"
)

// Put inserts h into t under kind. The table takes over h's share.
func Put[T comparable](t *Table, kind string, h *refc.Handle[T]) ID {
	return t.Insert(kind, h)
}

// Lookup returns the handle stored under id if it has type *refc.Handle[T].
// The table keeps ownership; call Clone to keep the handle beyond the entry.
func Lookup[T comparable](t *Table, id ID) (*refc.Handle[T], bool) {
	v, ok := t.Get(id)
	if !ok {
		return nil, false
	}
	h, ok := v.(*refc.Handle[T])
	return h, ok
}

// Share inserts a Clone of the handle stored under id, with the same kind, and
// returns the new entry's ID.
func Share[T comparable](t *Table, id ID) (ID, bool) {
	h, ok := Lookup[T](t, id)
	if !ok {
		return 0, false
	}
	kind, _ := t.Kind(id)
	alias := h.Clone()
	nid := t.Insert(kind, alias)
	if nid == 0 {
		alias.Release()
		return 0, false
	}
	return nid, true
}

// Typed provides type-safe access to the entries of one kind.
type Typed[T comparable] struct {
	table *Table
	kind  string
}

// NewTyped returns a view of t restricted to kind.
func NewTyped[T comparable](t *Table, kind string) *Typed[T] {
	return &Typed[T]{table: t, kind: kind}
}

// Insert takes ownership of h and returns its ID.
func (v *Typed[T]) Insert(h *refc.Handle[T]) ID {
	return v.table.Insert(v.kind, h)
}

// Get retrieves a handle of this view's kind.
func (v *Typed[T]) Get(id ID) (*refc.Handle[T], bool) {
	r, ok := v.table.GetTyped(id, v.kind)
	if !ok {
		return nil, false
	}
	h, ok := r.(*refc.Handle[T])
	return h, ok
}

// Remove releases an entry of this view's kind.
func (v *Typed[T]) Remove(id ID) bool {
	if _, ok := v.Get(id); !ok {
		return false
	}
	return v.table.Remove(id)
}

// Len returns the number of live entries of this view's kind.
func (v *Typed[T]) Len() int {
	n := 0
	v.Each(func(ID, *refc.Handle[T]) bool {
		n++
		return true
	})
	return n
}

// Each iterates over entries of this view's kind.
func (v *Typed[T]) Each(fn func(ID, *refc.Handle[T]) bool) {
	v.table.Each(func(id ID, kind string, r refcell.Releaser) bool {
		if kind != v.kind {
			return true
		}
		h, ok := r.(*refc.Handle[T])
		if !ok {
			return true
		}
		return fn(id, h)
	})
}
