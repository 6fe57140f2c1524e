package refc

import (
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/refcell/errors"
)

// Handle is one owner of a cell. Obtain the first Handle with Create and every
// further owner with Clone; give each one up with Release.
//
// Each Handle must be released exactly once. Copying the *Handle pointer does
// not create an owner; only Clone does. A Handle must not be copied by value;
// go vet's copylocks check reports such copies.
type Handle[T comparable] struct {
	_        noCopy
	c        *cell[T]
	cleanup  runtime.Cleanup
	name     string
	tracked  bool
	released bool
}

// Create wraps a freshly allocated resource and the function that frees it.
// The returned Handle is the only owner (count 1).
//
// resource is not validated; the zero value stands for a failed allocation and
// is passed to teardown like any other value. Create panics if teardown is nil.
func Create[T comparable](resource T, teardown func(T), opts ...Option) *Handle[T] {
	o := applyOptions(opts)
	if teardown == nil {
		panic(errors.NilTeardown(o.name))
	}

	c := newCell(resource, teardown, o)
	h := c.acquire()
	c.notify(EventCreated)
	c.logger.Debug("handle created",
		zap.String("name", c.name),
		zap.Stringer("id", c.id),
		zap.Bool("valid", resource != c.zero()),
	)
	return h
}

// Clone returns a new owner of the same cell and increments its count.
// It panics if h was already released.
func (h *Handle[T]) Clone() *Handle[T] {
	h.mustBeLive(errors.PhaseClone)
	n := h.c.acquire()
	h.c.notify(EventCloned)
	return n
}

// Release gives up h's ownership. If h was the last owner the teardown runs
// before Release returns. Releasing the same Handle twice panics.
func (h *Handle[T]) Release() {
	if h.released {
		panic(errors.DoubleRelease(h.name))
	}
	h.released = true
	if h.tracked {
		h.cleanup.Stop()
		h.tracked = false
	}

	c := h.c
	h.c = nil
	c.drop()
}

// Raw returns the resource without affecting the count, for passing to
// functions that derive new resources from it. The value must not be used after
// every Handle aliasing it has been released. Raw panics if h was released.
func (h *Handle[T]) Raw() T {
	h.mustBeLive(errors.PhaseAccess)
	return h.c.resource
}

// Valid reports whether the resource is not the zero value. A released Handle
// is never valid.
func (h *Handle[T]) Valid() bool {
	if h.released {
		return false
	}
	return h.c.resource != h.c.zero()
}

// Count returns the number of live owners of h's cell, or 0 once h is released.
func (h *Handle[T]) Count() int {
	if h.released {
		return 0
	}
	return int(h.c.count)
}

// Released reports whether Release was called on h.
func (h *Handle[T]) Released() bool {
	return h.released
}

// ID identifies h's cell. All aliases share one ID. A released Handle returns
// uuid.Nil.
func (h *Handle[T]) ID() uuid.UUID {
	if h.released {
		return uuid.Nil
	}
	return h.c.id
}

// Name returns the name given with WithName.
func (h *Handle[T]) Name() string {
	return h.name
}

// mustBeLive also rejects a handle whose cell was torn down by an uncounted
// owner, such as a value copy.
func (h *Handle[T]) mustBeLive(phase errors.Phase) {
	if h.released || h.c.count == 0 {
		panic(errors.UseAfterRelease(phase, h.name))
	}
}

// noCopy marks Handle as not copyable for go vet.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
