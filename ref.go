package scrollspy

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrEmptyRegionID is returned when a region is registered without an id.
	ErrEmptyRegionID = errors.New("empty region id")
	// ErrDuplicateRegion is returned when a region id is registered twice.
	ErrDuplicateRegion = errors.New("duplicate region id")
)

// Ref is a non-owning reference to a region's Element. The host sets it
// when the element mounts and clears it when the element goes away.
// Thread-safe.
type Ref struct {
	mu    sync.RWMutex
	value Element
}

// NewRef creates a new empty Ref.
func NewRef() *Ref {
	return &Ref{}
}

// Set stores the element in this ref. Passing nil clears it.
func (r *Ref) Set(v Element) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value = v
}

// El returns the referenced element, or nil if not yet set.
func (r *Ref) El() Element {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// IsSet returns true if the ref has been set to a non-nil element.
func (r *Ref) IsSet() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value != nil
}

// Regions maps region ids to refs. Registration order is kept and used
// to break ties between equally visible regions.
// Regions is not safe for concurrent registration; build it before
// handing it to Track.
type Regions struct {
	order []string
	refs  map[string]*Ref
}

// NewRegions creates an empty region map.
func NewRegions() *Regions {
	return &Regions{refs: make(map[string]*Ref)}
}

// Add registers ref under id.
func (r *Regions) Add(id string, ref *Ref) error {
	if id == "" {
		return ErrEmptyRegionID
	}
	if _, exists := r.refs[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateRegion, id)
	}
	if ref == nil {
		ref = NewRef()
	}
	r.order = append(r.order, id)
	r.refs[id] = ref
	return nil
}

// Ref returns the ref for id, or nil if id is not registered.
func (r *Regions) Ref(id string) *Ref {
	return r.refs[id]
}

// IDs returns region ids in registration order.
func (r *Regions) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered regions.
func (r *Regions) Len() int {
	return len(r.order)
}

// AllMounted reports whether every ref has been set. An empty map is
// trivially mounted.
func (r *Regions) AllMounted() bool {
	for _, id := range r.order {
		if !r.refs[id].IsSet() {
			return false
		}
	}
	return true
}

// snapshot returns the ids and their current elements in registration
// order. Unset refs yield nil elements.
func (r *Regions) snapshot() ([]string, []Element) {
	els := make([]Element, len(r.order))
	for i, id := range r.order {
		els[i] = r.refs[id].El()
	}
	return r.IDs(), els
}
