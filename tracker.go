package scrollspy

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Session tracks which of a fixed set of regions is most visible and
// publishes its id through Active(). Create one with Track; each call
// owns its own observer and active-id cell.
//
// Lifecycle:
//  1. Track checks whether every region ref is set. If not, it waits
//     for mount notifications from the host.
//  2. Once all regions are mounted, initialization runs exactly once.
//     The observer is created one frame later so elements are measured
//     after layout settles.
//  3. If the initial fallback is enabled, a geometry scan runs one frame
//     after the observer exists.
//  4. Stop tears everything down. Late host callbacks are ignored.
type Session struct {
	id      string
	host    Host
	regions *Regions
	opts    options
	active  *State[string]

	mu           sync.Mutex
	initialized  bool
	stopped      bool
	current      string
	observer     Observer
	cancelMount  func()
	frame        FrameID
	framePending bool

	// Fixed when the observer is created.
	ids   []string
	els   []Element
	areas []int
}

// Track starts a tracking session for regions on host. It returns an
// error only for invalid options; empty or never-mounting regions are
// valid and simply never activate.
func Track(host Host, regions *Regions, opts ...Option) (*Session, error) {
	if host == nil {
		return nil, fmt.Errorf("scrollspy: nil host")
	}
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, fmt.Errorf("scrollspy: %w", err)
		}
	}
	if regions == nil {
		regions = NewRegions()
	}

	s := &Session{
		id:      uuid.NewString(),
		host:    host,
		regions: regions,
		opts:    o,
		active:  NewState(""),
	}
	s.opts.logger.Info("tracking started",
		"session", s.id,
		"regions", regions.Len(),
		"band", o.band.String(),
		"fallback", o.fallback,
	)
	s.start()
	return s, nil
}

// ID returns the session's unique id, used in log lines.
func (s *Session) ID() string {
	return s.id
}

// Active returns a read-only view of the active region id. The empty
// string means no region has been activated yet; once set it never
// returns to empty. Only the session publishes to it.
func (s *Session) Active() View[string] {
	return s.active.View()
}

// ActiveID returns the current active region id, or "" if none.
func (s *Session) ActiveID() string {
	return s.active.Get()
}

// Initialized reports whether all regions mounted and initialization ran.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Stop releases the observer, cancels any pending mount wait or frame,
// and ignores all later callbacks. Stop is idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	cancelMount := s.cancelMount
	s.cancelMount = nil
	frame, pending := s.frame, s.framePending
	s.framePending = false
	obs := s.observer
	s.observer = nil
	els := s.els
	s.mu.Unlock()

	if cancelMount != nil {
		cancelMount()
	}
	if pending {
		s.host.CancelFrame(frame)
	}
	if obs != nil {
		for _, el := range els {
			if el != nil {
				obs.Unobserve(el)
			}
		}
		obs.Disconnect()
	}
	s.opts.logger.Info("tracking stopped", "session", s.id, "active", s.ActiveID())
}

func (s *Session) start() {
	if s.regions.AllMounted() {
		s.initialize()
		return
	}

	s.opts.logger.Debug("waiting for regions to mount", "session", s.id)
	cancel := s.host.WatchMounts(s.onMutation)

	s.mu.Lock()
	if s.stopped || s.initialized {
		// Resolved (or stopped) while WatchMounts was registering.
		s.mu.Unlock()
		cancel()
		return
	}
	s.cancelMount = cancel
	s.mu.Unlock()
}

func (s *Session) onMutation() {
	s.mu.Lock()
	done := s.stopped || s.initialized
	s.mu.Unlock()
	if done || !s.regions.AllMounted() {
		return
	}
	s.initialize()
}

// initialize is guarded by a one-shot latch; repeated calls are no-ops.
func (s *Session) initialize() {
	s.mu.Lock()
	if s.stopped || s.initialized {
		s.mu.Unlock()
		return
	}
	s.initialized = true
	cancelMount := s.cancelMount
	s.cancelMount = nil
	s.mu.Unlock()

	if cancelMount != nil {
		cancelMount()
	}
	s.opts.logger.Debug("regions mounted", "session", s.id)
	s.scheduleFrame(s.setupObserver)
}

// scheduleFrame runs fn on the next host frame unless the session stops
// first. Only one frame is pending at a time.
func (s *Session) scheduleFrame(fn func()) {
	var id FrameID
	id = s.host.RequestFrame(func() {
		s.mu.Lock()
		if s.framePending && s.frame == id {
			s.framePending = false
		}
		stopped := s.stopped
		s.mu.Unlock()
		if !stopped {
			fn()
		}
	})

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		s.host.CancelFrame(id)
		return
	}
	s.frame = id
	s.framePending = true
	s.mu.Unlock()
}

func (s *Session) setupObserver() {
	ids, els := s.regions.snapshot()
	cfg := ObserverConfig{Band: s.opts.band, Thresholds: s.opts.thresholds}
	obs := s.host.NewObserver(cfg, s.evaluate)

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		obs.Disconnect()
		return
	}
	s.observer = obs
	s.ids = ids
	s.els = els
	s.areas = make([]int, len(ids))
	s.mu.Unlock()

	observed := 0
	for _, el := range els {
		if el != nil && el.Attached() {
			obs.Observe(el)
			observed++
		}
	}
	s.opts.logger.Debug("observer ready", "session", s.id, "observed", observed)

	if s.opts.fallback {
		s.scheduleFrame(s.runFallback)
	}
}

// evaluate folds a batch of observations into the latest known area of
// every region and activates the most visible one.
func (s *Session) evaluate(batch []Observation) {
	s.mu.Lock()
	if s.stopped || s.observer == nil {
		s.mu.Unlock()
		return
	}
	for _, o := range batch {
		i := s.indexLocked(o.Target)
		if i < 0 {
			continue
		}
		if !o.Target.Attached() {
			s.areas[i] = 0
			continue
		}
		s.areas[i] = observedArea(o)
	}

	entries := make([]regionArea, 0, len(s.ids))
	for i, id := range s.ids {
		if s.els[i] == nil || !s.els[i].Attached() {
			continue
		}
		entries = append(entries, regionArea{id: id, area: s.areas[i]})
	}
	top, ok := mostVisible(entries)
	if !ok || top.id == s.current {
		s.mu.Unlock()
		return
	}
	s.current = top.id
	s.mu.Unlock()

	s.publish(top, "observer")
}

// runFallback activates the region covering the most of the actual
// viewport, for hosts that do not report elements already visible at
// mount time.
func (s *Session) runFallback() {
	viewport := s.host.Viewport()

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	entries := make([]regionArea, 0, len(s.ids))
	for i, id := range s.ids {
		el := s.els[i]
		if el == nil || !el.Attached() {
			continue
		}
		entries = append(entries, regionArea{id: id, area: viewportArea(el.Rect(), viewport)})
	}
	top, ok := mostVisible(entries)
	if !ok || top.id == s.current {
		s.mu.Unlock()
		return
	}
	s.current = top.id
	s.mu.Unlock()

	s.publish(top, "fallback")
}

func (s *Session) publish(top regionArea, source string) {
	s.opts.logger.Debug("active region changed",
		"session", s.id,
		"region", top.id,
		"area", top.area,
		"source", source,
	)
	s.active.Set(top.id)
}

func (s *Session) indexLocked(el Element) int {
	if el == nil {
		return -1
	}
	for i, e := range s.els {
		if e == el {
			return i
		}
	}
	return -1
}
