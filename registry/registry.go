// Package registry implements the named-worker directory used to address
// agents, servings and jobs by logical name. Each worker kind gets its own
// Registry instance, so names are unique per kind but may repeat across
// kinds.
package registry

import (
	"sync"

	"github.com/jessedrelick/agens/logging"
)

// Registry is a concurrency-safe name-to-value directory. Lookups on unknown
// names report a typed miss via the boolean return; they never panic.
type Registry[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
	logger  logging.Logger
}

// New constructs an empty registry. A nil logger defaults to NoOpLogger.
func New[T any](logger logging.Logger) *Registry[T] {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Registry[T]{
		entries: make(map[string]T),
		logger:  logger,
	}
}

// Register associates name with value. Re-registering a live name is
// idempotent-safe: the existing value is returned unchanged with created
// false, and a warning is logged.
func (r *Registry[T]) Register(name string, value T) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[name]; ok {
		r.logger.Warn("registry.already_started", "name", name)
		return existing, false
	}

	r.entries[name] = value

	return value, true
}

// Lookup returns the value registered under name, or the zero value and
// false when no association exists.
func (r *Registry[T]) Lookup(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.entries[name]

	return v, ok
}

// Unregister removes the association for name, reporting whether one existed.
func (r *Registry[T]) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; !ok {
		return false
	}
	delete(r.entries, name)

	return true
}

// Replace swaps the value registered under name, installing it even when no
// prior association exists. Used by the supervisor's restart policy.
func (r *Registry[T]) Replace(name string, value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = value
}

// Names returns a snapshot of all registered names in unspecified order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}

	return names
}

// Len returns the number of registered names.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
