// Package lazymodel provides the init-once lifecycle used for expensive,
// process-wide models (summarizer clients, face detection cascades).
//
// A Model loads its value on the first Get. Concurrent callers block on the
// same load instead of loading twice. A failed load is not cached: the next
// Get tries again. Close releases the value; a later Get loads it afresh.
//
// Model only serializes loading. Whether the loaded value may be used by
// several goroutines at once is a property of the value, documented where
// each Model is constructed.
package lazymodel

import (
	"context"
	"sync"
)

// Model is a lazily loaded, shareable value
type Model[T any] struct {
	load    func(ctx context.Context) (T, error)
	release func(T) error

	mu     sync.Mutex
	value  T
	loaded bool
}

// New creates a Model. release may be nil when the value holds no resources.
func New[T any](load func(ctx context.Context) (T, error), release func(T) error) *Model[T] {
	return &Model[T]{load: load, release: release}
}

// Get returns the loaded value, loading it first if needed
func (m *Model[T]) Get(ctx context.Context) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return m.value, nil
	}

	v, err := m.load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	m.value = v
	m.loaded = true
	return v, nil
}

// Loaded reports whether a value is currently held
func (m *Model[T]) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Close releases the held value, if any
func (m *Model[T]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		return nil
	}
	v := m.value
	var zero T
	m.value = zero
	m.loaded = false

	if m.release != nil {
		return m.release(v)
	}
	return nil
}
