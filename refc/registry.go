package refc

import (
	"fmt"
	"reflect"

	"github.com/wippyai/refcell/errors"
)

// Registry tracks live cells by raw value so that a raw resource can be owned
// by at most one cell. Adopt is the creation entry point; further owners come
// from Lookup or Clone.
//
// A Registry has the same single-goroutine requirement as the handles it
// creates.
//
// Raw values are map keys. When T is an interface type, a dynamic value that is
// not comparable (a slice, map or func) cannot be tracked: Adopt rejects it with
// an invalid_input error and Lookup reports it as absent.
type Registry[T comparable] struct {
	live map[T]*cell[T]
}

// NewRegistry creates an empty registry.
func NewRegistry[T comparable]() *Registry[T] {
	return &Registry[T]{
		live: make(map[T]*cell[T]),
	}
}

// Adopt creates the first Handle for resource. It fails with a duplicate error
// if resource already has a live cell in r. The zero value is never tracked,
// since failed allocations do not alias each other.
//
// The entry is removed right before teardown runs, so the same raw value may be
// adopted again once it has been freed and reallocated.
func (r *Registry[T]) Adopt(resource T, teardown func(T), opts ...Option) (*Handle[T], error) {
	var zero T
	if resource == zero {
		return Create(resource, teardown, opts...), nil
	}
	if !hashable(resource) {
		return nil, errors.New(errors.PhaseAdopt, errors.KindInvalidInput).
			Value(fmt.Sprintf("%T", resource)).
			Detail("raw value of type %T is not comparable", resource).
			Build()
	}
	if c, ok := r.live[resource]; ok {
		return nil, errors.Duplicate(errors.PhaseAdopt, c.name, resource)
	}
	if teardown == nil {
		panic(errors.NilTeardown(applyOptions(opts).name))
	}

	h := Create(resource, func(v T) {
		delete(r.live, v)
		teardown(v)
	}, opts...)
	r.live[resource] = h.c
	return h, nil
}

// Lookup returns a new owner of the live cell for resource.
func (r *Registry[T]) Lookup(resource T) (*Handle[T], bool) {
	if !hashable(resource) {
		return nil, false
	}
	c, ok := r.live[resource]
	if !ok {
		return nil, false
	}
	h := c.acquire()
	c.notify(EventCloned)
	return h, true
}

// Len returns the number of live tracked cells.
func (r *Registry[T]) Len() int {
	return len(r.live)
}

// hashable reports whether v can be used as a map key without panicking.
func hashable[T comparable](v T) bool {
	return reflect.ValueOf(&v).Elem().Comparable()
}
