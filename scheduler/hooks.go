// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scheduler

import "github.com/gogpu/uiframe/visual"

// treeHooks receives the tree's change notifications. It is kept off the
// Scheduler's method set so the hooks are not part of its API.
type treeHooks struct {
	s *Scheduler
}

var _ visual.Invalidator = treeHooks{}

func (h treeHooks) InvalidateRender(e *visual.Element) {
	if !h.s.own() {
		return
	}
	h.s.list.Enqueue(e)
}

func (h treeHooks) InvalidateLayout(*visual.Element) {
	if !h.s.own() {
		return
	}
	h.s.layoutDirty = true
}

func (h treeHooks) InvalidateStructure(e *visual.Element) {
	if !h.s.own() {
		return
	}
	h.s.list.MarkStructureDirty()
	h.s.list.Enqueue(e)
}

func (h treeHooks) InvalidateGeometry(e *visual.Element) {
	if !h.s.own() {
		return
	}
	h.s.list.MarkGeometryDirty(e)
	h.s.list.Enqueue(e)
}

// Detached drops every piece of side state kept for e's subtree: cached
// bitmaps, hit-test column indexes and layout state. The area e covered
// is repainted.
func (h treeHooks) Detached(e *visual.Element) {
	s := h.s
	if !s.own() {
		return
	}
	s.list.MarkStructureDirty()
	s.list.Enqueue(e)

	visual.WalkSubtree(e, func(d *visual.Element, _ int) bool {
		s.store.Remove(d.ID())
		if d == s.hovered {
			s.hovered = nil
			s.reasons |= ReasonHoverChanged
		}
		return true
	})
	s.hit.Forget(e)
	if f, ok := s.layout.(layoutForgetter); ok {
		f.Forget(e)
	}
}
