// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package visual

// Invalidator receives change notifications from elements attached to a
// tree. The frame scheduler implements it to translate property changes
// into dirty regions, layout passes and cache evictions.
type Invalidator interface {
	// InvalidateRender is called when e needs repainting within its
	// current bounds.
	InvalidateRender(e *Element)

	// InvalidateLayout is called when e's measured size may have changed.
	InvalidateLayout(e *Element)

	// InvalidateStructure is called when e's children, visibility or
	// stacking order changed, so the render list is stale.
	InvalidateStructure(e *Element)

	// InvalidateGeometry is called when e's render transform, scroll
	// offset or clip changed. The subtree moved or was reclipped but its
	// shape in the render list is unchanged.
	InvalidateGeometry(e *Element)

	// Detached is called just before e (and its subtree) leaves the tree.
	Detached(e *Element)
}

// Tree is the handle on a retained visual tree. It owns the root element
// and routes change notifications to a single Invalidator.
type Tree struct {
	root *Element
	inv  Invalidator
}

// NewTree attaches root to a new tree. A root that already has a parent is
// removed from it first.
func NewTree(root *Element) *Tree {
	if root.parent != nil {
		root.parent.RemoveChild(root)
	}
	t := &Tree{root: root}
	root.setTree(t)
	return t
}

// Root returns the root element.
func (t *Tree) Root() *Element { return t.root }

// SetInvalidator installs the change receiver. Passing nil disconnects it.
func (t *Tree) SetInvalidator(inv Invalidator) { t.inv = inv }

// Walk visits the tree in pre-order. Returning false from fn skips the
// element's children.
func (t *Tree) Walk(fn func(e *Element, depth int) bool) {
	walk(t.root, 0, fn)
}

// WalkSubtree visits e and its descendants in pre-order.
func WalkSubtree(e *Element, fn func(e *Element, depth int) bool) {
	walk(e, 0, fn)
}

func walk(e *Element, depth int, fn func(*Element, int) bool) {
	if e == nil || !fn(e, depth) {
		return
	}
	for _, c := range e.children {
		walk(c, depth+1, fn)
	}
}

// Find returns the first element in pre-order with the given ID.
func (t *Tree) Find(id ID) *Element {
	var found *Element
	t.Walk(func(e *Element, _ int) bool {
		if found != nil {
			return false
		}
		if e.id == id {
			found = e
			return false
		}
		return true
	})
	return found
}

// Len returns the number of elements in the tree.
func (t *Tree) Len() int {
	n := 0
	t.Walk(func(*Element, int) bool {
		n++
		return true
	})
	return n
}
