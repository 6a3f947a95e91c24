package fsmtable

import "go.uber.org/zap"

// Option applies configuration to Machine via functional options pattern.
type Option func(*Machine)

// WithLogger sets the machine logger. Dispatch logs at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithObserver adds an observer. Observers run in the order they are added.
func WithObserver(o Observer) Option {
	return func(m *Machine) {
		if o != nil {
			m.observers = append(m.observers, o)
		}
	}
}

// WithEntryOnStart controls whether Start runs the initial state's entry
// hook (and Stop the current state's exit hook). Enabled by default.
func WithEntryOnStart(enabled bool) Option {
	return func(m *Machine) {
		m.entryOnStart = enabled
	}
}
