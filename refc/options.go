package refc

import (
	"go.uber.org/zap"
)

// Option configures a cell at creation.
type Option func(*options)

type options struct {
	logger    *zap.Logger
	name      string
	observers []Observer
	leakCheck bool
}

// WithName sets the diagnostic name reported in logs, events and errors.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithObserver adds an observer for the cell's lifecycle events.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// WithLogger sets the logger used by the cell instead of Logger().
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithLeakCheck reports handles of the cell that are garbage collected without
// Release.
func WithLeakCheck() Option {
	return func(o *options) {
		o.leakCheck = true
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = Logger()
	}
	return o
}
