package scrollspy

// fakeElement is a region handle with a settable rect.
type fakeElement struct {
	rect     Rect
	attached bool
}

func (e *fakeElement) Rect() Rect     { return e.rect }
func (e *fakeElement) Attached() bool { return e.attached }

// fakeHost records every capability call a session makes and lets tests
// fire callbacks by hand.
type fakeHost struct {
	viewport Rect

	mountFns     []func()
	mountCancels int
	frames       map[FrameID]func()
	frameOrder   []FrameID
	nextFrame    FrameID
	cancelled    []FrameID
	observers    []*fakeObserver
	observerCfgs []ObserverConfig
}

func newFakeHost(width, height int) *fakeHost {
	return &fakeHost{
		viewport: NewRect(0, 0, width, height),
		frames:   make(map[FrameID]func()),
	}
}

func (h *fakeHost) WatchMounts(fn func()) func() {
	h.mountFns = append(h.mountFns, fn)
	idx := len(h.mountFns) - 1
	return func() {
		h.mountCancels++
		h.mountFns[idx] = nil
	}
}

// mutate fires every live mount watcher.
func (h *fakeHost) mutate() {
	for _, fn := range h.mountFns {
		if fn != nil {
			fn()
		}
	}
}

func (h *fakeHost) NewObserver(cfg ObserverConfig, fn func([]Observation)) Observer {
	o := &fakeObserver{fn: fn, observed: make(map[Element]bool)}
	h.observers = append(h.observers, o)
	h.observerCfgs = append(h.observerCfgs, cfg)
	return o
}

func (h *fakeHost) RequestFrame(fn func()) FrameID {
	h.nextFrame++
	h.frames[h.nextFrame] = fn
	h.frameOrder = append(h.frameOrder, h.nextFrame)
	return h.nextFrame
}

func (h *fakeHost) CancelFrame(id FrameID) {
	h.cancelled = append(h.cancelled, id)
	delete(h.frames, id)
}

// frame runs the frame callbacks pending right now.
func (h *fakeHost) frame() {
	order := h.frameOrder
	h.frameOrder = nil
	for _, id := range order {
		if fn, ok := h.frames[id]; ok {
			delete(h.frames, id)
			fn()
		}
	}
}

func (h *fakeHost) pendingFrames() int {
	return len(h.frames)
}

func (h *fakeHost) Viewport() Rect { return h.viewport }

type fakeObserver struct {
	fn           func([]Observation)
	observed     map[Element]bool
	unobserved   int
	disconnected bool
}

func (o *fakeObserver) Observe(el Element)   { o.observed[el] = true }
func (o *fakeObserver) Unobserve(el Element) { o.unobserved++; delete(o.observed, el) }
func (o *fakeObserver) Disconnect()          { o.disconnected = true }

// send delivers a batch to the session.
func (o *fakeObserver) send(batch ...Observation) {
	o.fn(batch)
}

// seen builds an intersecting observation covering rows [y, y+h) of el.
func seen(el Element, y, h int) Observation {
	r := NewRect(0, y, 10, h)
	return Observation{Target: el, Intersection: r, Intersecting: !r.IsEmpty()}
}

// gone builds a non-intersecting observation.
func gone(el Element) Observation {
	return Observation{Target: el}
}

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
