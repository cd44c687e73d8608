// Package page is a scroll-math document host for scrollspy sessions.
//
// A Page stacks sections vertically inside a scrollable viewport and
// provides every capability a scrollspy.Host needs: mount notifications,
// intersection observers with root margins and thresholds, and a frame
// scheduler. Work is queued and runs when the owner calls Tick, which
// plays the role of one turn of a browser event loop:
//
//	p := page.New(80, 24)
//	_, _ = p.AddSection("home", 0)
//	_, _ = p.AddSection("about", 0)
//	regions, _ := p.Regions()
//	s, _ := scrollspy.Track(p, regions)
//	p.MountAll()
//	p.Tick() // mount notification, observer setup, initial entries
//	p.Tick() // initial fallback
//	defer s.Stop()
//
// A Page is not safe for concurrent use; drive it from one goroutine.
package page

import (
	"fmt"

	scrollspy "github.com/grindlemire/go-scrollspy"
)

// Page is a scrollable document of stacked sections.
type Page struct {
	width, height int
	scrollY       int

	sections []*Section
	byID     map[string]*Section
	refs     map[string]*scrollspy.Ref

	tasks     []func()
	frames    []frame
	running   []frame
	nextFrame scrollspy.FrameID

	watchers       map[int]func()
	nextWatcher    int
	mutationQueued bool
	observers      []*observer

	initialNotify bool
}

type frame struct {
	id scrollspy.FrameID
	fn func()
}

// New creates an empty page with a width x height viewport.
func New(width, height int, opts ...Option) *Page {
	p := &Page{
		width:         max(0, width),
		height:        max(0, height),
		byID:          make(map[string]*Section),
		refs:          make(map[string]*scrollspy.Ref),
		watchers:      make(map[int]func()),
		initialNotify: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddSection appends a section below the existing ones. A height of zero
// or less makes the section exactly one viewport tall. Sections start
// unmounted.
func (p *Page) AddSection(id string, height int) (*Section, error) {
	if id == "" {
		return nil, fmt.Errorf("page: empty section id")
	}
	if _, exists := p.byID[id]; exists {
		return nil, fmt.Errorf("page: duplicate section %q", id)
	}
	s := &Section{page: p, id: id, height: height}
	p.sections = append(p.sections, s)
	p.byID[id] = s
	return s, nil
}

// Section returns the section with the given id, or nil.
func (p *Page) Section(id string) *Section {
	return p.byID[id]
}

// Sections returns all sections in document order.
func (p *Page) Sections() []*Section {
	out := make([]*Section, len(p.sections))
	copy(out, p.sections)
	return out
}

// Bind resolves ref to the section's element whenever the section is
// mounted, and clears it on unmount.
func (p *Page) Bind(id string, ref *scrollspy.Ref) error {
	s := p.byID[id]
	if s == nil {
		return fmt.Errorf("page: unknown section %q", id)
	}
	p.refs[id] = ref
	if s.attached {
		ref.Set(s)
	}
	return nil
}

// Regions builds a region map with one bound ref per section, in
// document order.
func (p *Page) Regions() (*scrollspy.Regions, error) {
	regions := scrollspy.NewRegions()
	for _, s := range p.sections {
		ref := scrollspy.NewRef()
		if err := regions.Add(s.id, ref); err != nil {
			return nil, err
		}
		if err := p.Bind(s.id, ref); err != nil {
			return nil, err
		}
	}
	return regions, nil
}

// Mount attaches a section to the document. Mount notifications are
// queued for the next Tick.
func (p *Page) Mount(id string) error {
	s := p.byID[id]
	if s == nil {
		return fmt.Errorf("page: unknown section %q", id)
	}
	if s.attached {
		return nil
	}
	s.attached = true
	if ref := p.refs[id]; ref != nil {
		ref.Set(s)
	}
	p.queueMutation()
	p.geometryChanged()
	return nil
}

// MountAll mounts every section in document order.
func (p *Page) MountAll() {
	for _, s := range p.sections {
		_ = p.Mount(s.id)
	}
}

// Unmount detaches a section. Its bound ref is cleared.
func (p *Page) Unmount(id string) error {
	s := p.byID[id]
	if s == nil {
		return fmt.Errorf("page: unknown section %q", id)
	}
	if !s.attached {
		return nil
	}
	s.attached = false
	if ref := p.refs[id]; ref != nil {
		ref.Set(nil)
	}
	p.queueMutation()
	p.geometryChanged()
	return nil
}

// --- Geometry ---

// Viewport returns the visible rectangle. Section rects share its origin.
func (p *Page) Viewport() scrollspy.Rect {
	return scrollspy.NewRect(0, 0, p.width, p.height)
}

// Resize changes the viewport size. Full-viewport sections follow it.
func (p *Page) Resize(width, height int) {
	width, height = max(0, width), max(0, height)
	if width == p.width && height == p.height {
		return
	}
	p.width, p.height = width, height
	p.scrollY = clamp(p.scrollY, 0, p.MaxScroll())
	p.geometryChanged()
}

// ContentHeight returns the total height of all sections.
func (p *Page) ContentHeight() int {
	total := 0
	for _, s := range p.sections {
		total += s.Height()
	}
	return total
}

// MaxScroll returns the largest valid scroll offset.
func (p *Page) MaxScroll() int {
	return max(0, p.ContentHeight()-p.height)
}

// ScrollY returns the current vertical scroll offset.
func (p *Page) ScrollY() int {
	return p.scrollY
}

// ScrollTo sets the scroll offset, clamped to valid range.
func (p *Page) ScrollTo(y int) {
	y = clamp(y, 0, p.MaxScroll())
	if y == p.scrollY {
		return
	}
	p.scrollY = y
	p.geometryChanged()
}

// ScrollBy adjusts the scroll offset by delta.
func (p *Page) ScrollBy(dy int) {
	p.ScrollTo(p.scrollY + dy)
}

// ScrollToSection scrolls so the section's top edge is at the top of
// the viewport, as far as the content allows.
func (p *Page) ScrollToSection(id string) error {
	s := p.byID[id]
	if s == nil {
		return fmt.Errorf("page: unknown section %q", id)
	}
	p.ScrollTo(s.Top())
	return nil
}

// RowAt returns the section covering viewport row y and the row's
// offset inside that section. It returns nil past the end of content.
func (p *Page) RowAt(y int) (*Section, int) {
	doc := p.scrollY + y
	top := 0
	for _, s := range p.sections {
		h := s.Height()
		if doc >= top && doc < top+h {
			return s, doc - top
		}
		top += h
	}
	return nil, 0
}

func (p *Page) offsetOf(target *Section) int {
	top := 0
	for _, s := range p.sections {
		if s == target {
			return top
		}
		top += s.Height()
	}
	return top
}

// geometryChanged lets every observer diff its targets.
func (p *Page) geometryChanged() {
	for _, o := range p.observers {
		o.check()
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
