package page

import scrollspy "github.com/grindlemire/go-scrollspy"

// Section is one stacked block of the document. It implements
// scrollspy.Element.
type Section struct {
	page     *Page
	id       string
	height   int
	attached bool
}

// ID returns the section id.
func (s *Section) ID() string {
	return s.id
}

// Height returns the section height in rows.
func (s *Section) Height() int {
	if s.height <= 0 {
		return s.page.height
	}
	return s.height
}

// Top returns the section's offset from the top of the document.
func (s *Section) Top() int {
	return s.page.offsetOf(s)
}

// Rect returns the section bounds relative to the viewport. Detached
// sections report an empty Rect.
func (s *Section) Rect() scrollspy.Rect {
	if !s.attached {
		return scrollspy.Rect{}
	}
	return scrollspy.NewRect(0, s.Top()-s.page.scrollY, s.page.width, s.Height())
}

// Attached reports whether the section is mounted.
func (s *Section) Attached() bool {
	return s.attached
}
