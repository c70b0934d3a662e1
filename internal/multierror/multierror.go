package multierror

import (
	"fmt"
	"strings"
	"sync"
)

// Error is a generic error type that allows to combine multiple errors into one.
// Errors are keyed, so that the caller can find out which item has failed.
type Error[T comparable] struct {
	mu     sync.Mutex
	keys   []T
	errors map[T]error
}

// New creates a new Error.
func New[T comparable]() *Error[T] {
	return &Error[T]{
		errors: make(map[T]error),
	}
}

// Error returns a string representation of the error. Keys are listed in the
// order they were first added.
func (m *Error[T]) Error() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	parts := make([]string, 0, len(m.keys))
	for _, k := range m.keys {
		parts = append(parts, fmt.Sprintf("%v:%s", k, m.errors[k]))
	}

	return strings.Join(parts, "; ")
}

// Unwrap returns a slice of errors.
func (m *Error[T]) Unwrap() []error {
	m.mu.Lock()
	defer m.mu.Unlock()

	errs := make([]error, 0, len(m.keys))
	for _, k := range m.keys {
		errs = append(errs, m.errors[k])
	}

	return errs
}

// Len returns the number of errors.
func (m *Error[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.keys)
}

// Add adds an error to the Error. Adding a second error under the same key
// replaces the first one.
func (m *Error[T]) Add(key T, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.errors == nil {
		m.errors = make(map[T]error)
	}

	if _, ok := m.errors[key]; !ok {
		m.keys = append(m.keys, key)
	}

	m.errors[key] = err
}

// Get returns an error by key.
func (m *Error[T]) Get(key T) (error, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v := m.errors[key]; v != nil {
		return v, true
	}

	return nil, false
}

// Keys returns the keys of all collected errors.
func (m *Error[T]) Keys() []T {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]T, len(m.keys))
	copy(keys, m.keys)

	return keys
}

// Combined returns the Error if it contains any errors, nil otherwise.
func (m *Error[T]) Combined() error {
	if m.Len() == 0 {
		return nil
	}

	return m
}
