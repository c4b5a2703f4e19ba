// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package visual

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"sync/atomic"

	"github.com/gogpu/gg"
	"github.com/gogpu/uiframe/geom"
)

// ID is the stable identity of an element. Caches and side tables key on
// it so they never hold the element itself.
type ID uint64

var (
	nextID    atomic.Uint64
	stampSeed atomic.Uint64
)

// nextStamp returns a new version stamp. Stamps only ever grow, so two
// snapshots compare equal exactly when nothing changed in between.
func nextStamp() uint64 {
	return stampSeed.Add(1)
}

// Painter draws a single element (not its children) onto dc using layout
// coordinates. The device transform is already applied to dc.
type Painter interface {
	Paint(dc *gg.Context, e *Element)
}

// PainterFunc adapts a function to the Painter interface.
type PainterFunc func(dc *gg.Context, e *Element)

// Paint calls f(dc, e).
func (f PainterFunc) Paint(dc *gg.Context, e *Element) { f(dc, e) }

// StabilityReporter is implemented by visuals that know better than their
// geometry whether their rendered output is currently stable, such as
// editable text with a blinking caret.
type StabilityReporter interface {
	RenderStable() bool
}

// Element is a node of the retained visual tree.
//
// The parent owns its children in insertion order; each child keeps a
// plain back-pointer to its parent which is rewritten on attach and detach.
//
// Element is not safe for concurrent use. All mutation happens on the UI
// goroutine that drives the frame scheduler.
type Element struct {
	id   ID
	kind Kind
	name string

	tree     *Tree
	parent   *Element
	children []*Element

	desired   geom.Size
	slot      geom.Rect
	hasLayout bool

	visible        bool
	enabled        bool
	hitTestVisible bool
	clipToBounds   bool
	highCost       bool
	zIndex         int
	opacity        float64
	transform      gg.Matrix
	scroll         geom.Point

	painter   Painter
	stability StabilityReporter

	renderStamp uint64
	layoutStamp uint64
}

// New creates a detached, visible, enabled and hit-testable element.
func New(kind Kind) *Element {
	return &Element{
		id:             ID(nextID.Add(1)),
		kind:           kind,
		visible:        true,
		enabled:        true,
		hitTestVisible: true,
		opacity:        1,
		transform:      gg.Identity(),
		renderStamp:    nextStamp(),
		layoutStamp:    nextStamp(),
	}
}

// ID returns the element's stable identity.
func (e *Element) ID() ID { return e.id }

// Kind returns the element's kind.
func (e *Element) Kind() Kind { return e.kind }

// Name returns the debug name.
func (e *Element) Name() string { return e.name }

// SetName sets a debug name used in logs and String.
func (e *Element) SetName(name string) *Element {
	e.name = name
	return e
}

func (e *Element) String() string {
	if e.name != "" {
		return fmt.Sprintf("%s(%s#%d)", e.name, e.kind, e.id)
	}
	return fmt.Sprintf("%s#%d", e.kind, e.id)
}

// Tree returns the tree the element is attached to, or nil.
func (e *Element) Tree() *Tree { return e.tree }

// Parent returns the parent element, or nil for a root or detached element.
func (e *Element) Parent() *Element { return e.parent }

// Children returns the children in insertion (draw) order.
// The returned slice must not be modified.
func (e *Element) Children() []*Element { return e.children }

// ChildCount returns the number of direct children.
func (e *Element) ChildCount() int { return len(e.children) }

// AddChild appends children. A child that already has a parent is removed
// from it first.
func (e *Element) AddChild(children ...*Element) *Element {
	for _, c := range children {
		e.InsertChild(len(e.children), c)
	}
	return e
}

// InsertChild inserts c at index i, clamped to the valid range.
func (e *Element) InsertChild(i int, c *Element) {
	if c == nil || c == e {
		return
	}
	if c.parent != nil {
		c.parent.RemoveChild(c)
	}
	if i < 0 {
		i = 0
	}
	if i > len(e.children) {
		i = len(e.children)
	}
	e.children = append(e.children, nil)
	copy(e.children[i+1:], e.children[i:])
	e.children[i] = c
	c.parent = e
	c.setTree(e.tree)

	e.bumpLayout()
	e.bumpRender()
	e.notifyStructure()
	e.notifyLayout()
}

// RemoveChild detaches c from e. It reports whether c was a child.
func (e *Element) RemoveChild(c *Element) bool {
	for i, child := range e.children {
		if child != c {
			continue
		}
		if inv := e.invalidator(); inv != nil {
			inv.Detached(c)
		}
		copy(e.children[i:], e.children[i+1:])
		e.children[len(e.children)-1] = nil
		e.children = e.children[:len(e.children)-1]
		c.parent = nil
		c.setTree(nil)

		e.bumpLayout()
		e.bumpRender()
		e.notifyStructure()
		e.notifyLayout()
		return true
	}
	return false
}

// ClearChildren detaches every child.
func (e *Element) ClearChildren() {
	for len(e.children) > 0 {
		e.RemoveChild(e.children[len(e.children)-1])
	}
}

func (e *Element) setTree(t *Tree) {
	e.tree = t
	for _, c := range e.children {
		c.setTree(t)
	}
}

// Layout

// DesiredSize returns the size the element asks for during measure.
func (e *Element) DesiredSize() geom.Size { return e.desired }

// SetDesiredSize sets the requested size and invalidates layout.
func (e *Element) SetDesiredSize(w, h float64) *Element {
	s := geom.Sz(math.Max(w, 0), math.Max(h, 0))
	if s == e.desired {
		return e
	}
	e.desired = s
	e.InvalidateMeasure()
	return e
}

// LayoutSlot returns the final bounds assigned by the last arrange pass,
// in the content space of the nearest scroll viewer, and whether the
// element has layout bounds at all.
func (e *Element) LayoutSlot() (geom.Rect, bool) {
	return e.slot, e.hasLayout
}

// SetLayoutSlot records the arranged bounds. It is called by the layout
// engine during the layout sub-phase.
func (e *Element) SetLayoutSlot(r geom.Rect) {
	if e.hasLayout && e.slot == r {
		return
	}
	e.slot = r
	e.hasLayout = true
	e.bumpLayout()
}

// ClearLayoutSlot removes the element's layout bounds. Elements without
// layout bounds are never hit and force linear hit testing of their
// siblings.
func (e *Element) ClearLayoutSlot() {
	if !e.hasLayout {
		return
	}
	e.hasLayout = false
	e.slot = geom.Rect{}
	e.bumpLayout()
}

// InvalidateMeasure marks the element's layout as stale.
func (e *Element) InvalidateMeasure() {
	e.bumpLayout()
	e.notifyLayout()
}

// Render state

// Visible reports the element's own visibility flag.
func (e *Element) Visible() bool { return e.visible }

// SetVisible shows or hides the element and its subtree.
func (e *Element) SetVisible(v bool) *Element {
	if e.visible == v {
		return e
	}
	e.visible = v
	e.bumpRender()
	e.notifyStructure()
	return e
}

// EffectivelyVisible reports whether the element and all its ancestors
// are visible.
func (e *Element) EffectivelyVisible() bool {
	for n := e; n != nil; n = n.parent {
		if !n.visible {
			return false
		}
	}
	return true
}

// Enabled reports whether the element accepts input.
func (e *Element) Enabled() bool { return e.enabled }

// SetEnabled enables or disables input for the element's subtree.
func (e *Element) SetEnabled(v bool) *Element {
	if e.enabled == v {
		return e
	}
	e.enabled = v
	e.Invalidate()
	return e
}

// HitTestVisible reports whether the element can be hit by the pointer.
func (e *Element) HitTestVisible() bool { return e.hitTestVisible }

// SetHitTestVisible includes or excludes the element from hit testing.
func (e *Element) SetHitTestVisible(v bool) *Element {
	e.hitTestVisible = v
	return e
}

// ZIndex returns the stacking order among siblings. Higher draws later.
func (e *Element) ZIndex() int { return e.zIndex }

// SetZIndex changes the stacking order among siblings. It bumps both
// stamps because the parent's arrangement changes.
func (e *Element) SetZIndex(z int) *Element {
	if e.zIndex == z {
		return e
	}
	e.zIndex = z
	e.bumpLayout()
	e.bumpRender()
	e.notifyStructure()
	return e
}

// ClipToBounds reports whether children are clipped to the element's slot.
func (e *Element) ClipToBounds() bool { return e.clipToBounds }

// SetClipToBounds enables or disables clipping of children.
func (e *Element) SetClipToBounds(v bool) *Element {
	if e.clipToBounds == v {
		return e
	}
	e.clipToBounds = v
	e.bumpRender()
	e.notifyGeometry()
	return e
}

// Opacity returns the subtree opacity in [0, 1].
func (e *Element) Opacity() float64 { return e.opacity }

// SetOpacity sets the subtree opacity, clamped to [0, 1].
func (e *Element) SetOpacity(v float64) *Element {
	v = math.Min(math.Max(v, 0), 1)
	if e.opacity == v {
		return e
	}
	e.opacity = v
	e.Invalidate()
	return e
}

// RenderTransform returns the element's render transform, applied about
// the top-left corner of its slot.
func (e *Element) RenderTransform() gg.Matrix { return e.transform }

// HasRenderTransform reports whether the render transform is not identity.
func (e *Element) HasRenderTransform() bool { return !e.transform.IsIdentity() }

// SetRenderTransform sets the render transform. The transform changes the
// element's hit geometry, so it bumps the layout stamp as well.
func (e *Element) SetRenderTransform(m gg.Matrix) *Element {
	if e.transform == m {
		return e
	}
	e.transform = m
	e.bumpLayout()
	e.bumpRender()
	e.notifyGeometry()
	return e
}

// ScrollOffset returns the content offset of a scroll viewer.
func (e *Element) ScrollOffset() geom.Point { return e.scroll }

// SetScrollOffset scrolls the viewer's content. Children are hit tested
// and painted shifted by -offset.
func (e *Element) SetScrollOffset(p geom.Point) *Element {
	if e.scroll == p {
		return e
	}
	e.scroll = p
	e.bumpRender()
	e.notifyGeometry()
	return e
}

// HighCost reports whether the element is expensive to render.
func (e *Element) HighCost() bool { return e.highCost }

// SetHighCost flags the element as expensive to render, such as a complex
// vector drawing.
func (e *Element) SetHighCost(v bool) *Element {
	if e.highCost == v {
		return e
	}
	e.highCost = v
	e.Invalidate()
	return e
}

// Painter returns the element's painter, or nil.
func (e *Element) Painter() Painter { return e.painter }

// SetPainter sets how the element draws itself.
func (e *Element) SetPainter(p Painter) *Element {
	e.painter = p
	e.Invalidate()
	return e
}

// SetStabilityReporter installs the stability capability used by the
// render cache policy for editable text.
func (e *Element) SetStabilityReporter(r StabilityReporter) *Element {
	e.stability = r
	return e
}

// RenderStability reports the element's self-declared render stability.
// ok is false when the element does not report stability.
func (e *Element) RenderStability() (stable, ok bool) {
	if e.stability == nil {
		return false, false
	}
	return e.stability.RenderStable(), true
}

// Invalidate records a render-affecting change to the element, such as a
// property that changes how it paints.
func (e *Element) Invalidate() {
	e.bumpRender()
	if inv := e.invalidator(); inv != nil {
		inv.InvalidateRender(e)
	}
}

// RenderStamp returns the subtree render version stamp. It changes
// whenever a render-affecting property changes anywhere in the subtree.
func (e *Element) RenderStamp() uint64 { return e.renderStamp }

// LayoutStamp returns the subtree layout version stamp. It changes
// whenever a layout-affecting property changes anywhere in the subtree.
func (e *Element) LayoutStamp() uint64 { return e.layoutStamp }

// RenderStateSignature folds opacity, clipping and render transform into a
// single comparable value.
func (e *Element) RenderStateSignature() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	write := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = h.Write(buf[:])
	}
	write(e.opacity)
	if e.clipToBounds {
		write(1)
	} else {
		write(0)
	}
	m := e.transform
	for _, v := range [6]float64{m.A, m.B, m.C, m.D, m.E, m.F} {
		write(v)
	}
	return h.Sum64()
}

// Geometry

// RenderMatrix returns the element's render transform expressed in layout
// coordinates, rotating or scaling about the slot origin.
func (e *Element) RenderMatrix() gg.Matrix {
	if e.transform.IsIdentity() {
		return e.transform
	}
	return gg.Translate(e.slot.X, e.slot.Y).
		Multiply(e.transform).
		Multiply(gg.Translate(-e.slot.X, -e.slot.Y))
}

// ContentMatrix returns the transform applied to the element's children on
// top of RenderMatrix. It is non-identity only for scrolled viewers.
func (e *Element) ContentMatrix() gg.Matrix {
	if e.kind != KindScrollViewer || (e.scroll.X == 0 && e.scroll.Y == 0) {
		return gg.Identity()
	}
	return gg.Translate(-e.scroll.X, -e.scroll.Y)
}

// DeviceMatrix returns the accumulated transform mapping the element's
// layout coordinates to device pixels.
func (e *Element) DeviceMatrix() gg.Matrix {
	m := e.RenderMatrix()
	for p := e.parent; p != nil; p = p.parent {
		m = p.RenderMatrix().Multiply(p.ContentMatrix()).Multiply(m)
	}
	return m
}

// DeviceBounds returns the element's slot in device pixels, or an empty
// rectangle if the element has no layout.
func (e *Element) DeviceBounds() geom.Rect {
	if !e.hasLayout {
		return geom.Rect{}
	}
	return e.slot.Transform(e.DeviceMatrix())
}

// Internal invalidation plumbing

func (e *Element) bumpRender() {
	v := nextStamp()
	for n := e; n != nil; n = n.parent {
		n.renderStamp = v
	}
}

func (e *Element) bumpLayout() {
	v := nextStamp()
	for n := e; n != nil; n = n.parent {
		n.layoutStamp = v
	}
}

func (e *Element) invalidator() Invalidator {
	if e.tree == nil {
		return nil
	}
	return e.tree.inv
}

func (e *Element) notifyStructure() {
	if inv := e.invalidator(); inv != nil {
		inv.InvalidateStructure(e)
	}
}

func (e *Element) notifyGeometry() {
	if inv := e.invalidator(); inv != nil {
		inv.InvalidateGeometry(e)
	}
}

func (e *Element) notifyLayout() {
	if inv := e.invalidator(); inv != nil {
		inv.InvalidateLayout(e)
	}
}
