// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package renderlist keeps a flattened, draw-ordered view of a visual tree
// so a frame does not have to re-walk the whole tree when only a few
// elements changed.
package renderlist

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"slices"

	"github.com/gogpu/gg"
	"github.com/gogpu/uiframe/geom"
	"github.com/gogpu/uiframe/rendercache"
	"github.com/gogpu/uiframe/visual"
)

// Entry is one element of the flattened tree. Entries are stored in draw
// order (pre-order, siblings stably sorted by z-index), so an element's
// descendants are exactly the entries in [index+1, End).
type Entry struct {
	Element *visual.Element
	Depth   int
	// End is one past the index of the last descendant.
	End int

	// SubtreeCount includes the element itself.
	SubtreeCount  int
	HighCostCount int

	Visible bool

	// Device is the transform from the element's layout coordinates to
	// device pixels.
	Device gg.Matrix
	// Bounds is the element's own slot in device pixels.
	Bounds geom.Rect
	// SubtreeBounds is the union of the visible device bounds of the
	// subtree, clipped where an element clips its children.
	SubtreeBounds geom.Rect
}

// List is the retained render list of one tree.
//
// Structure changes (children, visibility, z-order, layout) mark the list
// for a rebuild. Geometry changes (transform, scroll offset, clip) refresh
// only the changed subtree and its ancestors' bounds. Render-only changes
// are queued per element and re-evaluated in Sync. List is owned by the frame scheduler
// and is not safe for concurrent use.
type List struct {
	tree    *visual.Tree
	entries []Entry
	index   map[visual.ID]int

	structureDirty bool
	queue          []*visual.Element
	queued         map[visual.ID]struct{}
	moved          []*visual.Element
	movedSet       map[visual.ID]struct{}

	rebuilds  int
	refreshes int
}

// New creates a list for tree. The first Sync builds it.
func New(tree *visual.Tree) *List {
	return &List{
		tree:           tree,
		index:          make(map[visual.ID]int),
		queued:         make(map[visual.ID]struct{}),
		movedSet:       make(map[visual.ID]struct{}),
		structureDirty: true,
	}
}

// MarkStructureDirty schedules a full rebuild at the next Sync.
func (l *List) MarkStructureDirty() { l.structureDirty = true }

// StructureDirty reports whether a rebuild is pending.
func (l *List) StructureDirty() bool { return l.structureDirty }

// MarkGeometryDirty schedules a refresh of the device transforms and
// bounds of e's subtree, and of the subtree bounds of its ancestors, at
// the next Sync. A pending rebuild supersedes it.
func (l *List) MarkGeometryDirty(e *visual.Element) {
	if _, ok := l.movedSet[e.ID()]; ok {
		return
	}
	l.movedSet[e.ID()] = struct{}{}
	l.moved = append(l.moved, e)
}

// Enqueue adds e to the dirty queue. Queued elements contribute their
// previous and current subtree bounds to the dirty regions returned by
// Sync. Enqueueing the same element twice in a frame is a no-op.
func (l *List) Enqueue(e *visual.Element) {
	if _, ok := l.queued[e.ID()]; ok {
		return
	}
	l.queued[e.ID()] = struct{}{}
	l.queue = append(l.queue, e)
}

// QueueLen returns the number of queued elements.
func (l *List) QueueLen() int { return len(l.queue) }

// Sync rebuilds the list if its structure is dirty, drains the dirty queue
// and returns the device rectangles that must be repainted: for every
// queued element the union of its subtree bounds before and after.
func (l *List) Sync() []geom.Rect {
	var before []geom.Rect
	if len(l.queue) > 0 {
		before = make([]geom.Rect, len(l.queue))
		for i, e := range l.queue {
			if idx, ok := l.index[e.ID()]; ok {
				before[i] = l.entries[idx].SubtreeBounds
			}
		}
	}

	if l.structureDirty {
		l.Rebuild()
	} else {
		for _, e := range l.moved {
			l.Refresh(e)
		}
	}
	clear(l.movedSet)
	l.moved = l.moved[:0]

	var dirty []geom.Rect
	for i, e := range l.queue {
		r := before[i]
		if idx, ok := l.index[e.ID()]; ok && e.Tree() == l.tree {
			r = r.Union(l.entries[idx].SubtreeBounds)
		}
		if !r.IsEmpty() {
			dirty = append(dirty, r)
		}
	}
	clear(l.queued)
	l.queue = l.queue[:0]
	return dirty
}

// Rebuild flattens the tree from scratch.
func (l *List) Rebuild() {
	l.entries = l.entries[:0]
	clear(l.index)
	if root := l.tree.Root(); root != nil {
		l.flatten(root, 0, gg.Identity(), true)
	}
	l.structureDirty = false
	l.rebuilds++
}

// Refresh recomputes the device transforms and bounds of e's subtree in
// place and re-unions the subtree bounds of e's ancestors. It does nothing
// if e is not in the list.
func (l *List) Refresh(e *visual.Element) {
	idx, ok := l.index[e.ID()]
	if !ok || e.Tree() != l.tree {
		return
	}
	parent := gg.Identity()
	p := e.Parent()
	if p != nil {
		pi, ok := l.index[p.ID()]
		if !ok {
			return
		}
		parent = l.entries[pi].Device.Multiply(p.ContentMatrix())
	}
	l.refresh(idx, parent)

	for ; p != nil; p = p.Parent() {
		pi := l.index[p.ID()]
		var childBounds geom.Rect
		for c := pi + 1; c < l.entries[pi].End; c = l.entries[c].End {
			childBounds = childBounds.Union(l.entries[c].SubtreeBounds)
		}
		l.entries[pi].SubtreeBounds = l.subtreeBounds(pi, childBounds)
	}
	l.refreshes++
}

// refresh recomputes entries[i] and its descendants under the parent
// transform.
func (l *List) refresh(i int, parent gg.Matrix) {
	ent := &l.entries[i]
	e := ent.Element
	ent.Device = parent.Multiply(e.RenderMatrix())
	ent.Bounds = geom.Rect{}
	if slot, ok := e.LayoutSlot(); ok {
		ent.Bounds = slot.Transform(ent.Device)
	}

	child := ent.Device.Multiply(e.ContentMatrix())
	var childBounds geom.Rect
	for c := i + 1; c < ent.End; c = l.entries[c].End {
		l.refresh(c, child)
		childBounds = childBounds.Union(l.entries[c].SubtreeBounds)
	}
	ent.SubtreeBounds = l.subtreeBounds(i, childBounds)
}

// subtreeBounds combines the entry's own bounds with its children's,
// clipping the children where the element clips.
func (l *List) subtreeBounds(i int, childBounds geom.Rect) geom.Rect {
	ent := &l.entries[i]
	if ent.Element.ClipToBounds() {
		childBounds = childBounds.Intersect(ent.Bounds)
	}
	if !ent.Visible {
		return childBounds
	}
	return ent.Bounds.Union(childBounds)
}

// flatten appends e's subtree and returns the index of e's entry.
func (l *List) flatten(e *visual.Element, depth int, parent gg.Matrix, parentVisible bool) int {
	idx := len(l.entries)
	device := parent.Multiply(e.RenderMatrix())
	visible := parentVisible && e.Visible()

	var bounds geom.Rect
	if slot, ok := e.LayoutSlot(); ok {
		bounds = slot.Transform(device)
	}
	l.entries = append(l.entries, Entry{
		Element: e,
		Depth:   depth,
		Visible: visible,
		Device:  device,
		Bounds:  bounds,
	})
	l.index[e.ID()] = idx

	count := 1
	highCost := 0
	if e.HighCost() {
		highCost = 1
	}
	childMatrix := device.Multiply(e.ContentMatrix())
	var childBounds geom.Rect
	for _, c := range drawOrder(e.Children()) {
		ci := l.flatten(c, depth+1, childMatrix, visible)
		ce := &l.entries[ci]
		count += ce.SubtreeCount
		highCost += ce.HighCostCount
		childBounds = childBounds.Union(ce.SubtreeBounds)
	}
	ent := &l.entries[idx]
	ent.End = len(l.entries)
	ent.SubtreeCount = count
	ent.HighCostCount = highCost
	ent.SubtreeBounds = l.subtreeBounds(idx, childBounds)
	return idx
}

// drawOrder returns children stably sorted by z-index. The input slice is
// returned unchanged when all z-indexes are equal.
func drawOrder(children []*visual.Element) []*visual.Element {
	if len(children) < 2 {
		return children
	}
	z := children[0].ZIndex()
	uniform := true
	for _, c := range children[1:] {
		if c.ZIndex() != z {
			uniform = false
			break
		}
	}
	if uniform {
		return children
	}
	sorted := slices.Clone(children)
	slices.SortStableFunc(sorted, func(a, b *visual.Element) int {
		return a.ZIndex() - b.ZIndex()
	})
	return sorted
}

// Entries returns the flattened list. It must not be modified and is valid
// until the next Sync or Rebuild.
func (l *List) Entries() []Entry { return l.entries }

// Len returns the number of entries.
func (l *List) Len() int { return len(l.entries) }

// Lookup returns the entry of e, if e is in the list.
func (l *List) Lookup(e *visual.Element) (*Entry, bool) {
	idx, ok := l.index[e.ID()]
	if !ok {
		return nil, false
	}
	return &l.entries[idx], true
}

// RebuildCount returns how many times the list was flattened.
func (l *List) RebuildCount() int { return l.rebuilds }

// RefreshCount returns how many partial geometry refreshes ran.
func (l *List) RefreshCount() int { return l.refreshes }

// CacheContext returns the caching snapshot of the subtree rooted at
// entries[i]. The bounds are device bounds and the render-state signature
// also covers the device transform, since cached bitmaps are rendered in
// device space.
func (l *List) CacheContext(i int) rendercache.Context {
	ent := &l.entries[i]
	e := ent.Element
	_, hasLayout := e.LayoutSlot()
	return rendercache.Context{
		EffectivelyVisible:         ent.Visible,
		Bounds:                     ent.SubtreeBounds,
		HasBounds:                  hasLayout && !ent.SubtreeBounds.IsEmpty(),
		HasTransform:               e.HasRenderTransform(),
		HasClip:                    e.ClipToBounds(),
		SubtreeVisualCount:         ent.SubtreeCount,
		SubtreeHighCostVisualCount: ent.HighCostCount,
		SubtreeRenderVersion:       e.RenderStamp(),
		SubtreeLayoutVersion:       e.LayoutStamp(),
		RenderStateSignature:       mixMatrix(e.RenderStateSignature(), ent.Device),
	}
}

func mixMatrix(sig uint64, m gg.Matrix) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], sig)
	_, _ = h.Write(buf[:])
	for _, v := range [6]float64{m.A, m.B, m.C, m.D, m.E, m.F} {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}
