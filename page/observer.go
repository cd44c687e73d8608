package page

import (
	"slices"

	scrollspy "github.com/grindlemire/go-scrollspy"
)

// observer reports when its targets cross a visibility threshold inside
// the viewport narrowed by the configured band.
type observer struct {
	page         *Page
	cfg          scrollspy.ObserverConfig
	fn           func([]scrollspy.Observation)
	targets      []*target
	pending      []scrollspy.Observation
	queued       bool
	disconnected bool
}

type target struct {
	el           scrollspy.Element
	bucket       int
	intersecting bool
}

// NewObserver creates an intersection observer on this page.
func (p *Page) NewObserver(cfg scrollspy.ObserverConfig, fn func([]scrollspy.Observation)) scrollspy.Observer {
	thresholds := slices.Clone(cfg.Thresholds)
	if len(thresholds) == 0 {
		thresholds = []float64{0}
	}
	slices.Sort(thresholds)
	cfg.Thresholds = thresholds

	o := &observer{page: p, cfg: cfg, fn: fn}
	p.observers = append(p.observers, o)
	return o
}

// Observers reports the number of connected observers.
func (p *Page) Observers() int {
	return len(p.observers)
}

// Observe starts watching el. Unless the page was created with
// WithoutInitialNotify, an entry describing el's current state is
// delivered on the next Tick.
func (o *observer) Observe(el scrollspy.Element) {
	if o.disconnected || el == nil || o.find(el) >= 0 {
		return
	}
	entry := o.entry(el)
	t := &target{el: el, bucket: o.bucket(entry), intersecting: entry.Intersecting}
	o.targets = append(o.targets, t)
	if o.page.initialNotify {
		o.push(entry)
	}
}

func (o *observer) Unobserve(el scrollspy.Element) {
	i := o.find(el)
	if i < 0 {
		return
	}
	o.targets = append(o.targets[:i], o.targets[i+1:]...)
	o.pending = slices.DeleteFunc(o.pending, func(e scrollspy.Observation) bool {
		return e.Target == el
	})
}

func (o *observer) Disconnect() {
	if o.disconnected {
		return
	}
	o.disconnected = true
	o.targets = nil
	o.pending = nil
	p := o.page
	p.observers = slices.DeleteFunc(p.observers, func(other *observer) bool {
		return other == o
	})
}

// check queues entries for targets whose threshold bucket or
// intersecting state changed since the last report.
func (o *observer) check() {
	for _, t := range o.targets {
		entry := o.entry(t.el)
		b := o.bucket(entry)
		if b == t.bucket && entry.Intersecting == t.intersecting {
			continue
		}
		t.bucket, t.intersecting = b, entry.Intersecting
		o.push(entry)
	}
}

func (o *observer) push(entry scrollspy.Observation) {
	// Keep only the latest entry per target within a batch.
	o.pending = slices.DeleteFunc(o.pending, func(e scrollspy.Observation) bool {
		return e.Target == entry.Target
	})
	o.pending = append(o.pending, entry)
	if o.queued {
		return
	}
	o.queued = true
	o.page.queue(o.deliver)
}

func (o *observer) deliver() {
	o.queued = false
	if o.disconnected || len(o.pending) == 0 {
		return
	}
	batch := o.pending
	o.pending = nil
	o.fn(batch)
}

func (o *observer) entry(el scrollspy.Element) scrollspy.Observation {
	root := o.cfg.Band.Apply(o.page.Viewport())
	rect := el.Rect()
	entry := scrollspy.Observation{Target: el, RootBounds: root}
	if !el.Attached() || root.IsEmpty() || rect.IsEmpty() {
		return entry
	}
	inter := rect.Intersect(root)
	if inter.IsEmpty() {
		return entry
	}
	entry.Intersection = inter
	entry.Intersecting = true
	entry.Ratio = float64(inter.Area()) / float64(rect.Area())
	return entry
}

// bucket is the number of thresholds the entry has reached. A
// non-intersecting entry is always bucket 0.
func (o *observer) bucket(entry scrollspy.Observation) int {
	if !entry.Intersecting {
		return 0
	}
	n := 0
	for _, t := range o.cfg.Thresholds {
		if entry.Ratio >= t {
			n++
		}
	}
	return n
}

func (o *observer) find(el scrollspy.Element) int {
	for i, t := range o.targets {
		if t.el == el {
			return i
		}
	}
	return -1
}
