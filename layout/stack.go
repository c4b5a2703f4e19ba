// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package layout provides a stack layout engine that assigns layout slots
// to visual elements.
//
// The frame scheduler treats layout as an external collaborator: it calls
// Measure and Arrange during the layout sub-phase and only reads the
// resulting slots. Stack is the engine used by the demos and tests; any
// type with the same two methods can replace it.
package layout

import (
	"math"

	"github.com/gogpu/uiframe/geom"
	"github.com/gogpu/uiframe/visual"
)

// Direction is the main axis of a stack.
type Direction int

const (
	// Vertical stacks children top to bottom.
	Vertical Direction = iota
	// Horizontal stacks children left to right.
	Horizontal
)

// String returns the direction name.
func (d Direction) String() string {
	if d == Horizontal {
		return "Horizontal"
	}
	return "Vertical"
}

// Stack lays out every element with children as a stack along its main
// axis. Children are stretched along the cross axis.
//
// An element's desired size is used as-is when non-zero on an axis;
// otherwise it is the size of its content. Scroll viewers arrange their
// children unbounded along the main axis, positioned in content space.
type Stack struct {
	// Gap is the spacing between consecutive children.
	Gap float64

	dir       Direction
	overrides *visual.SideTable[Direction]
	measured  *visual.SideTable[geom.Size]
}

// NewStack creates a stack engine with the given default direction.
func NewStack(dir Direction) *Stack {
	return &Stack{
		dir:       dir,
		overrides: visual.NewSideTable[Direction](),
		measured:  visual.NewSideTable[geom.Size](),
	}
}

// SetDirection overrides the stack direction of a single element.
func (s *Stack) SetDirection(e *visual.Element, dir Direction) {
	s.overrides.Set(e.ID(), dir)
	e.InvalidateMeasure()
}

// DirectionOf returns the direction used for e.
func (s *Stack) DirectionOf(e *visual.Element) Direction {
	if d, ok := s.overrides.Get(e.ID()); ok {
		return d
	}
	return s.dir
}

// Forget drops per-element state for e's subtree. The scheduler calls it
// when elements leave the tree.
func (s *Stack) Forget(e *visual.Element) {
	s.overrides.ForgetSubtree(e)
	s.measured.ForgetSubtree(e)
}

// Measured returns the size computed for e by the last Measure pass.
func (s *Stack) Measured(e *visual.Element) geom.Size {
	sz, _ := s.measured.Get(e.ID())
	return sz
}

// Measure computes the size every element in root's subtree wants, given
// the space available to root.
func (s *Stack) Measure(root *visual.Element, available geom.Size) geom.Size {
	return s.measure(root, available)
}

func (s *Stack) measure(e *visual.Element, available geom.Size) geom.Size {
	desired := e.DesiredSize()
	if !e.Visible() {
		s.measured.Set(e.ID(), geom.Size{})
		return geom.Size{}
	}

	children := e.Children()
	var content geom.Size
	if len(children) > 0 {
		vertical := s.DirectionOf(e) == Vertical
		childAvail := available
		if e.Kind() == visual.KindScrollViewer {
			if vertical {
				childAvail.Height = math.Inf(1)
			} else {
				childAvail.Width = math.Inf(1)
			}
		}
		visible := 0
		for _, c := range children {
			cs := s.measure(c, childAvail)
			if !c.Visible() {
				continue
			}
			visible++
			if vertical {
				content.Height += cs.Height
				content.Width = math.Max(content.Width, cs.Width)
			} else {
				content.Width += cs.Width
				content.Height = math.Max(content.Height, cs.Height)
			}
		}
		if visible > 1 {
			if vertical {
				content.Height += s.Gap * float64(visible-1)
			} else {
				content.Width += s.Gap * float64(visible-1)
			}
		}
	}

	size := content
	if desired.Width > 0 {
		size.Width = desired.Width
	}
	if desired.Height > 0 {
		size.Height = desired.Height
	}
	s.measured.Set(e.ID(), size)
	return size
}

// Arrange assigns root the final rectangle and positions its subtree using
// the sizes from the last Measure pass.
func (s *Stack) Arrange(root *visual.Element, final geom.Rect) {
	s.arrange(root, final)
}

func (s *Stack) arrange(e *visual.Element, slot geom.Rect) {
	if !e.Visible() {
		e.ClearLayoutSlot()
		for _, c := range e.Children() {
			s.arrange(c, geom.Rect{})
		}
		return
	}
	e.SetLayoutSlot(slot)

	vertical := s.DirectionOf(e) == Vertical
	cursor := slot.Y
	if !vertical {
		cursor = slot.X
	}
	for _, c := range e.Children() {
		if !c.Visible() {
			s.arrange(c, geom.Rect{})
			continue
		}
		m := s.Measured(c)
		var r geom.Rect
		if vertical {
			r = geom.R(slot.X, cursor, slot.Width, m.Height)
			cursor += m.Height + s.Gap
		} else {
			r = geom.R(cursor, slot.Y, m.Width, slot.Height)
			cursor += m.Width + s.Gap
		}
		s.arrange(c, r)
	}
}
