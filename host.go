package scrollspy

// Element is a mounted region with a measurable bounding rectangle.
type Element interface {
	// Rect returns the element's bounds relative to the viewport origin.
	Rect() Rect
	// Attached reports whether the element is still part of the document.
	Attached() bool
}

// Observation is one entry of a visibility batch.
type Observation struct {
	Target Element
	// Intersection is the visible part of Target inside RootBounds.
	Intersection Rect
	// RootBounds is the viewport adjusted by the observer's band.
	RootBounds   Rect
	Ratio        float64
	Intersecting bool
}

// ObserverConfig configures a visibility observer.
type ObserverConfig struct {
	Band       Band
	Thresholds []float64
}

// Observer watches the visibility of a set of elements.
type Observer interface {
	Observe(el Element)
	// Unobserve must tolerate elements that were never observed or have
	// already detached.
	Unobserve(el Element)
	Disconnect()
}

// FrameID identifies a pending frame callback.
type FrameID uint64

// MountWatcher notifies when elements are attached to the document.
type MountWatcher interface {
	// WatchMounts calls fn after every batch of document mutations until
	// cancel is called.
	WatchMounts(fn func()) (cancel func())
}

// Observers creates visibility observers.
type Observers interface {
	// NewObserver returns an observer that delivers batches of changed
	// entries to fn.
	NewObserver(cfg ObserverConfig, fn func([]Observation)) Observer
}

// Frames schedules callbacks for the next render frame.
type Frames interface {
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
}

// Viewport exposes the current viewport rectangle.
type Viewport interface {
	Viewport() Rect
}

// Host is the environment a session runs in. Every callback a Host
// makes (mount notifications, observer batches, frames) must be
// delivered serially on one loop.
type Host interface {
	MountWatcher
	Observers
	Frames
	Viewport
}
