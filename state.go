package scrollspy

import (
	"sync"
	"sync/atomic"
)

// globalBindingID is a global counter for generating unique binding IDs.
var globalBindingID atomic.Uint64

// State wraps a value and notifies bindings when it changes.
// A session publishes its active region id through a State[string],
// where the empty string means no region is active.
//
// Thread Safety Rules:
//   - Get() is safe to call from any goroutine
//   - Set() must only be called from the host's event loop
//
// Example usage:
//
//	active := session.Active()
//	active.Bind(func(id string) {
//	    header.Highlight(id)
//	})
type State[T any] struct {
	mu       sync.RWMutex
	value    T
	bindings []*binding[T]
}

// binding represents a registered callback that fires when state changes.
type binding[T any] struct {
	id     uint64
	fn     func(T)
	active bool
}

// Unbind is a handle to remove a binding. Call it to prevent
// future callback invocations for the associated binding.
type Unbind func()

// NewState creates a new state with the given initial value.
func NewState[T any](initial T) *State[T] {
	return &State[T]{value: initial}
}

// Get returns the current value. Thread-safe for reading from any goroutine.
func (s *State[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the value and notifies all bindings in registration order.
// Set does not compare against the previous value; callers that need
// deduplication do it before calling Set.
func (s *State[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	// Drop inactive bindings so unbound callbacks do not accumulate.
	activeBindings := make([]*binding[T], 0, len(s.bindings))
	for _, b := range s.bindings {
		if b.active {
			activeBindings = append(activeBindings, b)
		}
	}
	s.bindings = activeBindings
	s.mu.Unlock()

	for _, b := range activeBindings {
		if s.isActive(b) {
			b.fn(v)
		}
	}
}

// Bind registers a function to be called when the value changes.
// Returns an Unbind handle to remove the binding.
//
// Example:
//
//	unbind := active.Bind(func(id string) {
//	    fmt.Println("active section is now", id)
//	})
//	// Later, to stop receiving updates:
//	unbind()
func (s *State[T]) Bind(fn func(T)) Unbind {
	id := globalBindingID.Add(1)

	s.mu.Lock()
	b := &binding[T]{id: id, fn: fn, active: true}
	s.bindings = append(s.bindings, b)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		b.active = false
		s.mu.Unlock()
	}
}

// isActive reports whether b is still bound. A binding removed by an
// earlier callback in the same Set does not fire.
func (s *State[T]) isActive(b *binding[T]) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return b.active
}

// View is a read-only handle on a State. Holders can read and bind but
// not publish.
type View[T any] struct {
	s *State[T]
}

// View returns a read-only handle on s.
func (s *State[T]) View() View[T] {
	return View[T]{s: s}
}

// Get returns the current value.
func (v View[T]) Get() T {
	return v.s.Get()
}

// Bind registers fn like State.Bind.
func (v View[T]) Bind(fn func(T)) Unbind {
	return v.s.Bind(fn)
}
