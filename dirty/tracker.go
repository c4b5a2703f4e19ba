// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package dirty tracks the screen areas that must be repainted in the
// current frame.
package dirty

import (
	"github.com/gogpu/uiframe"
	"github.com/gogpu/uiframe/geom"
)

// DefaultMaxRegions is the region budget after which the tracker falls back
// to a full-frame repaint.
const DefaultMaxRegions = 16

// Tracker accumulates invalidated rectangles for one frame.
//
// Overlapping or adjacent rectangles are merged on insertion so the set
// stays minimal. Once more than the region budget of disjoint rectangles
// accumulate, the tracker switches to full-frame mode: repainting
// everything is never wrong, dropping a region would be.
//
// Tracker is not safe for concurrent use; it is owned by the frame
// scheduler.
type Tracker struct {
	viewport    geom.Rect
	hasViewport bool

	regions    []geom.Rect
	fullFrame  bool
	maxRegions int

	fallbacks int
}

// NewTracker creates a tracker with the given region budget.
// If maxRegions <= 0, DefaultMaxRegions is used.
func NewTracker(maxRegions int) *Tracker {
	if maxRegions <= 0 {
		maxRegions = DefaultMaxRegions
	}
	return &Tracker{
		regions:    make([]geom.Rect, 0, maxRegions+1),
		maxRegions: maxRegions,
	}
}

// SetViewport sets the clip bound for all future regions.
func (t *Tracker) SetViewport(r geom.Rect) {
	t.viewport = r
	t.hasViewport = true
}

// Viewport returns the current viewport and whether one was set.
func (t *Tracker) Viewport() (geom.Rect, bool) {
	return t.viewport, t.hasViewport
}

// MarkFullFrameDirty switches to full-frame mode and drops the partial
// region list.
func (t *Tracker) MarkFullFrameDirty() {
	t.fullFrame = true
	t.regions = t.regions[:0]
}

// AddDirtyRegion records r as needing a repaint.
//
// The rectangle is clipped to the viewport and dropped if empty. It is
// merged into the first existing region it intersects or touches, and the
// grown region then absorbs every other region it now touches. Otherwise
// it is appended. Exceeding the region budget switches to full-frame mode.
// In full-frame mode this is a no-op.
func (t *Tracker) AddDirtyRegion(r geom.Rect) {
	if t.fullFrame {
		return
	}
	if t.hasViewport {
		r = r.Intersect(t.viewport)
	}
	if r.IsEmpty() {
		return
	}

	merged := -1
	for i, existing := range t.regions {
		if existing.Touches(r) {
			t.regions[i] = existing.Union(r)
			merged = i
			break
		}
	}

	if merged < 0 {
		t.regions = append(t.regions, r)
	} else {
		t.cascade(merged)
	}

	if len(t.regions) > t.maxRegions {
		t.fallbacks++
		uiframe.Logger().Debug("dirty: region budget exceeded, repainting full frame",
			"regions", len(t.regions), "budget", t.maxRegions)
		t.MarkFullFrameDirty()
	}
}

// cascade folds every region touching regions[i] into it until no other
// region touches the grown rectangle.
func (t *Tracker) cascade(i int) {
	for {
		absorbed := false
		for j := 0; j < len(t.regions); j++ {
			if j == i || !t.regions[j].Touches(t.regions[i]) {
				continue
			}
			t.regions[i] = t.regions[i].Union(t.regions[j])
			t.regions = append(t.regions[:j], t.regions[j+1:]...)
			if j < i {
				i--
			}
			absorbed = true
			break
		}
		if !absorbed {
			return
		}
	}
}

// Clear resets the tracker to "nothing dirty". It is called once per
// completed draw pass.
func (t *Tracker) Clear() {
	t.regions = t.regions[:0]
	t.fullFrame = false
}

// IsFullFrameDirty reports whether the whole frame must be repainted.
func (t *Tracker) IsFullFrameDirty() bool {
	return t.fullFrame
}

// HasDirty reports whether anything at all must be repainted.
func (t *Tracker) HasDirty() bool {
	return t.fullFrame || len(t.regions) > 0
}

// Regions returns the accumulated regions. It is empty in full-frame mode.
// The returned slice must not be modified and is only valid until the next
// mutating call.
func (t *Tracker) Regions() []geom.Rect {
	return t.regions
}

// DirtyAreaCoverage returns the dirty area divided by the viewport area,
// clamped to [0, 1]. Full-frame mode reports 1; without a viewport the
// partial coverage is 0.
func (t *Tracker) DirtyAreaCoverage() float64 {
	if t.fullFrame {
		return 1
	}
	if !t.hasViewport || t.viewport.IsEmpty() {
		return 0
	}
	var area float64
	for _, r := range t.regions {
		area += r.Area()
	}
	coverage := area / t.viewport.Area()
	switch {
	case coverage < 0:
		return 0
	case coverage > 1:
		return 1
	}
	return coverage
}

// SetMaxRegions changes the region budget. If n <= 0, DefaultMaxRegions
// is used. A list already over the new budget falls back to full frame.
func (t *Tracker) SetMaxRegions(n int) {
	if n <= 0 {
		n = DefaultMaxRegions
	}
	t.maxRegions = n
	if len(t.regions) > n {
		t.fallbacks++
		t.MarkFullFrameDirty()
	}
}

// MaxRegions returns the region budget.
func (t *Tracker) MaxRegions() int {
	return t.maxRegions
}

// FullRedrawFallbackCount returns how many times the region budget was
// exceeded since the tracker was created.
func (t *Tracker) FullRedrawFallbackCount() int {
	return t.fallbacks
}
