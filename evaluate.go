package scrollspy

import "slices"

// regionArea is the visible area of one region in one evaluation.
type regionArea struct {
	id   string
	area int
}

// mostVisible returns the entry with the largest nonzero area. Entries
// must be in registration order; equal areas keep that order, so the
// earlier region wins a tie.
func mostVisible(entries []regionArea) (regionArea, bool) {
	ranked := slices.Clone(entries)
	slices.SortStableFunc(ranked, func(a, b regionArea) int {
		return b.area - a.area
	})
	if len(ranked) == 0 || ranked[0].area <= 0 {
		return regionArea{}, false
	}
	return ranked[0], true
}

// observedArea is the visible area of an observation clipped to its
// root bounds. Non-intersecting entries count as zero.
func observedArea(o Observation) int {
	if !o.Intersecting {
		return 0
	}
	r := o.Intersection
	if !o.RootBounds.IsEmpty() {
		r = r.Intersect(o.RootBounds)
	}
	return r.Area()
}

// viewportArea is the part of rect inside the viewport, with each
// dimension clamped to [0, viewport dimension].
func viewportArea(rect, viewport Rect) int {
	w := visibleSpan(rect.X, rect.Right(), viewport.X, viewport.Right())
	h := visibleSpan(rect.Y, rect.Bottom(), viewport.Y, viewport.Bottom())
	return w * h
}
