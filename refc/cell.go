package refc

import (
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/refcell/errors"
)

// cell is the single owner of one raw resource and its teardown. It is only
// reachable through the Handles that alias it.
type cell[T comparable] struct {
	resource  T
	teardown  func(T)
	logger    *zap.Logger
	observers []Observer
	name      string
	count     uint
	id        uuid.UUID
	leakCheck bool
}

func newCell[T comparable](resource T, teardown func(T), o options) *cell[T] {
	return &cell[T]{
		resource:  resource,
		teardown:  teardown,
		logger:    o.logger,
		observers: o.observers,
		name:      o.name,
		id:        uuid.New(),
		leakCheck: o.leakCheck,
	}
}

// acquire returns a new Handle aliasing c and counts it.
func (c *cell[T]) acquire() *Handle[T] {
	c.count++
	h := &Handle[T]{c: c, name: c.name}
	if c.leakCheck {
		h.cleanup = runtime.AddCleanup(h, reportLeak, leakInfo{
			logger: c.logger,
			name:   c.name,
			id:     c.id,
		})
		h.tracked = true
	}
	return h
}

// drop uncounts one Handle and tears c down when it was the last. A drop on a
// cell already at zero panics instead of wrapping the count.
func (c *cell[T]) drop() {
	if c.count == 0 {
		panic(errors.DoubleRelease(c.name))
	}
	c.count--
	c.notify(EventReleased)
	if c.count == 0 {
		c.release()
	}
}

// release runs the teardown against the original resource and clears c.
// Called exactly once, when count reaches zero.
func (c *cell[T]) release() {
	c.teardown(c.resource)
	c.logger.Debug("resource torn down",
		zap.String("name", c.name),
		zap.Stringer("id", c.id),
	)
	c.notify(EventTornDown)

	var zero T
	c.resource = zero
	c.teardown = nil
	c.observers = nil
}

func (c *cell[T]) notify(t EventType) {
	if len(c.observers) == 0 {
		return
	}
	e := Event{
		Type:  t,
		ID:    c.id,
		Name:  c.name,
		Count: int(c.count),
	}
	for _, o := range c.observers {
		o.OnHandleEvent(e)
	}
}

func (c *cell[T]) zero() T {
	var zero T
	return zero
}

type leakInfo struct {
	logger *zap.Logger
	name   string
	id     uuid.UUID
}

func reportLeak(info leakInfo) {
	info.logger.Warn("handle leaked",
		zap.String("name", info.name),
		zap.Stringer("id", info.id),
	)
}
