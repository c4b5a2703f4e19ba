// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package hittest

import (
	"github.com/gogpu/uiframe/geom"
	"github.com/gogpu/uiframe/visual"
)

// column is the vertical index of a container's children.
//
// It is valid while the container's layout stamp and child count are
// unchanged. ordered is false when the children cannot be indexed: a child
// without layout bounds or with a render transform, differing z-indexes,
// or tops that decrease somewhere.
type column struct {
	stamp   uint64
	count   int
	ordered bool

	avg     float64
	tops    []float64
	bottoms []float64
	// maxBottom[i] is the largest bottom among children 0..i.
	maxBottom []float64
}

// column returns the up-to-date index of e's children.
func (t *Tester) column(e *visual.Element) *column {
	children := e.Children()
	col, ok := t.columns.Get(e.ID())
	if ok && col.stamp == e.LayoutStamp() && col.count == len(children) {
		return col
	}
	if !ok {
		col = &column{}
		t.columns.Set(e.ID(), col)
	}
	col.build(e.LayoutStamp(), children)
	return col
}

func (c *column) build(stamp uint64, children []*visual.Element) {
	n := len(children)
	c.stamp = stamp
	c.count = n
	c.ordered = false
	c.tops = c.tops[:0]
	c.bottoms = c.bottoms[:0]
	c.maxBottom = c.maxBottom[:0]

	z := children[0].ZIndex()
	prevTop := 0.0
	maxBottom := 0.0
	for i, child := range children {
		slot, ok := child.LayoutSlot()
		if !ok || child.HasRenderTransform() || child.ZIndex() != z {
			return
		}
		if i > 0 && slot.Y < prevTop {
			return
		}
		prevTop = slot.Y
		if i == 0 || slot.Bottom() > maxBottom {
			maxBottom = slot.Bottom()
		}
		c.tops = append(c.tops, slot.Y)
		c.bottoms = append(c.bottoms, slot.Bottom())
		c.maxBottom = append(c.maxBottom, maxBottom)
	}
	c.avg = (c.maxBottom[n-1] - c.tops[0]) / float64(n)
	c.ordered = true
}

// lastTopAtOrAbove returns the largest index whose top is <= y, or -1.
//
// The search starts from the index an average-height row would have,
// gallops outwards to bracket the answer and finishes with a binary
// search inside the bracket. For evenly sized rows the estimate is exact
// and the search ends after a couple of probes.
func (c *column) lastTopAtOrAbove(y float64) int {
	n := len(c.tops)
	if y < c.tops[0] {
		return -1
	}
	if y >= c.tops[n-1] {
		return n - 1
	}

	g := 0
	if c.avg > 0 {
		g = int((y - c.tops[0]) / c.avg)
	}
	g = min(max(g, 0), n-1)

	// Invariant: tops[lo] <= y < tops[hi].
	var lo, hi int
	if c.tops[g] <= y {
		lo, hi = g, g+1
		for step := 1; c.tops[hi] <= y; step *= 2 {
			lo = hi
			hi = min(hi+step, n-1)
		}
	} else {
		lo, hi = g-1, g
		for step := 1; c.tops[lo] > y; step *= 2 {
			hi = lo
			lo = max(lo-step, 0)
		}
	}
	for hi-lo > 1 {
		mid := int(uint(lo+hi) >> 1)
		if c.tops[mid] <= y {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// hitColumn tests the children whose vertical extent contains p.Y, bottom
// row first. Rows further up are skipped as soon as no earlier row reaches
// down to p.Y.
func (t *Tester) hitColumn(c *column, children []*visual.Element, p geom.Point, depth int) *visual.Element {
	for i := c.lastTopAtOrAbove(p.Y); i >= 0; i-- {
		if c.maxBottom[i] <= p.Y {
			break
		}
		if c.bottoms[i] <= p.Y {
			continue
		}
		if h := t.hit(children[i], p, depth+1); h != nil {
			return h
		}
	}
	return nil
}
