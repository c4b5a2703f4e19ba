// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package hittest resolves a pointer position to the topmost interactive
// element of a visual tree.
//
// Large vertically ordered containers, such as virtualized lists, are
// searched through a cached column index instead of a linear scan of
// their children. The index only narrows the set of candidates; the
// result always equals that of the linear scan exposed as
// [Tester.HitTestLinear].
package hittest

import (
	"slices"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/uiframe/geom"
	"github.com/gogpu/uiframe/visual"
)

// DefaultFastPathMinChildren is the child count at which a container is
// considered for the column index.
const DefaultFastPathMinChildren = 16

// Metrics describes one hit test. It is diagnostic only.
type Metrics struct {
	// NodesVisited counts elements whose hit predicate was evaluated.
	NodesVisited int
	// MaxDepth is the deepest level reached, the root being 0.
	MaxDepth int
	// FastPathHits counts containers searched through the column index.
	FastPathHits int
	// FastPathFallbacks counts large containers that had to be scanned
	// linearly because their children were not in column order.
	FastPathFallbacks int
	// VisitsByKind breaks NodesVisited down by element kind.
	VisitsByKind [visual.NumKinds]int
	// Duration is the wall time of the call when timing is enabled.
	Duration time.Duration
}

func (m *Metrics) add(o Metrics) {
	m.NodesVisited += o.NodesVisited
	m.MaxDepth = max(m.MaxDepth, o.MaxDepth)
	m.FastPathHits += o.FastPathHits
	m.FastPathFallbacks += o.FastPathFallbacks
	for i, v := range o.VisitsByKind {
		m.VisitsByKind[i] += v
	}
	m.Duration += o.Duration
}

// Option configures a Tester.
type Option func(*Tester)

// WithFastPathMinChildren sets the child count at which the column index
// is used. Values below 2 disable the fast path.
func WithFastPathMinChildren(n int) Option {
	return func(t *Tester) {
		t.minChildren = n
	}
}

// WithTiming records the wall time of every hit test in Metrics.Duration.
func WithTiming(enabled bool) Option {
	return func(t *Tester) {
		t.timing = enabled
	}
}

// Tester performs hit tests and owns the per-container column indexes.
// It is not safe for concurrent use.
type Tester struct {
	minChildren int
	timing      bool

	columns *visual.SideTable[*column]

	last   Metrics
	totals Metrics
	calls  int

	cur    Metrics
	linear bool
}

// New creates a Tester.
func New(opts ...Option) *Tester {
	t := &Tester{
		minChildren: DefaultFastPathMinChildren,
		columns:     visual.NewSideTable[*column](),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// HitTest returns the topmost element of root's subtree whose bounds
// contain p, or nil. p is in root's parent coordinate space, which for a
// tree root is device space.
//
// The topmost element is the last drawn: among siblings the highest
// z-index wins, and among equal z-indexes the later child wins. Invisible,
// disabled and non-hit-testable elements are skipped together with their
// subtrees, as are elements without layout bounds. A nil root hits
// nothing.
func (t *Tester) HitTest(root *visual.Element, p geom.Point) *visual.Element {
	return t.run(root, p, false)
}

// HitTestLinear is HitTest without the column index. It is the reference
// the fast path is checked against.
func (t *Tester) HitTestLinear(root *visual.Element, p geom.Point) *visual.Element {
	return t.run(root, p, true)
}

func (t *Tester) run(root *visual.Element, p geom.Point, linear bool) *visual.Element {
	var start time.Time
	if t.timing {
		start = time.Now()
	}
	t.cur = Metrics{}
	t.linear = linear

	var hit *visual.Element
	if root != nil {
		hit = t.hit(root, p, 0)
	}

	if t.timing {
		t.cur.Duration = time.Since(start)
	}
	t.last = t.cur
	t.totals.add(t.cur)
	t.calls++
	return hit
}

// LastMetrics returns the metrics of the most recent hit test.
func (t *Tester) LastMetrics() Metrics { return t.last }

// Totals returns metrics summed over all hit tests and the call count.
func (t *Tester) Totals() (Metrics, int) { return t.totals, t.calls }

// ResetMetrics clears the accumulated metrics.
func (t *Tester) ResetMetrics() {
	t.last, t.totals, t.calls = Metrics{}, Metrics{}, 0
}

// Forget drops the column indexes of e's subtree. It is called when
// elements leave the tree.
func (t *Tester) Forget(e *visual.Element) {
	t.columns.ForgetSubtree(e)
}

// IndexedContainers returns the number of cached column indexes.
func (t *Tester) IndexedContainers() int { return t.columns.Len() }

func (t *Tester) hit(e *visual.Element, p geom.Point, depth int) *visual.Element {
	t.cur.NodesVisited++
	t.cur.VisitsByKind[e.Kind()]++
	t.cur.MaxDepth = max(t.cur.MaxDepth, depth)

	if !e.Visible() || !e.Enabled() || !e.HitTestVisible() {
		return nil
	}
	slot, ok := e.LayoutSlot()
	if !ok {
		return nil
	}

	local := p
	if e.HasRenderTransform() {
		q := e.RenderMatrix().Invert().TransformPoint(gg.Pt(p.X, p.Y))
		local = geom.Pt(q.X, q.Y)
	}
	if !slot.Contains(local) {
		return nil
	}

	children := e.Children()
	if len(children) == 0 {
		return e
	}

	inner := local
	if e.Kind() == visual.KindScrollViewer {
		inner = local.Add(e.ScrollOffset())
	}

	if !t.linear && t.minChildren >= 2 && len(children) >= t.minChildren {
		if col := t.column(e); col.ordered {
			t.cur.FastPathHits++
			if h := t.hitColumn(col, children, inner, depth); h != nil {
				return h
			}
			return e
		}
		t.cur.FastPathFallbacks++
	}

	if h := t.hitChildren(children, inner, depth); h != nil {
		return h
	}
	return e
}

// hitChildren tests children topmost first.
func (t *Tester) hitChildren(children []*visual.Element, p geom.Point, depth int) *visual.Element {
	if uniformZ(children) {
		for i := len(children) - 1; i >= 0; i-- {
			if h := t.hit(children[i], p, depth+1); h != nil {
				return h
			}
		}
		return nil
	}

	order := slices.Clone(children)
	slices.Reverse(order)
	slices.SortStableFunc(order, func(a, b *visual.Element) int {
		return b.ZIndex() - a.ZIndex()
	})
	for _, c := range order {
		if h := t.hit(c, p, depth+1); h != nil {
			return h
		}
	}
	return nil
}

func uniformZ(children []*visual.Element) bool {
	for _, c := range children[1:] {
		if c.ZIndex() != children[0].ZIndex() {
			return false
		}
	}
	return true
}
