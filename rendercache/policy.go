// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package rendercache decides which visual subtrees are worth rendering
// into an offscreen bitmap and keeps those bitmaps in a bounded LRU store.
package rendercache

import (
	"github.com/gogpu/uiframe/geom"
	"github.com/gogpu/uiframe/visual"
)

// Caching eligibility thresholds. Areas are in square pixels.
//
// The values were tuned against typical desktop layouts. They are kept as
// named defaults so callers can override them through Thresholds.
const (
	// DefaultMinTransformedSubtreeArea is the minimum area of a transformed
	// subtree worth caching.
	DefaultMinTransformedSubtreeArea = 4096

	// DefaultMinHighCostArea is the minimum area of a high-cost subtree or
	// vector shape worth caching.
	DefaultMinHighCostArea = 1024

	// DefaultMinStaticContainerArea is the minimum area of a childless
	// container worth caching.
	DefaultMinStaticContainerArea = 16384

	// DefaultHighCostVisualCount is the number of high-cost descendants at
	// which a subtree counts as high cost.
	DefaultHighCostVisualCount = 8
)

// Thresholds holds the caching eligibility thresholds.
type Thresholds struct {
	MinTransformedSubtreeArea float64
	MinHighCostArea           float64
	MinStaticContainerArea    float64
	HighCostVisualCount       int
}

// DefaultThresholds returns the default thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinTransformedSubtreeArea: DefaultMinTransformedSubtreeArea,
		MinHighCostArea:           DefaultMinHighCostArea,
		MinStaticContainerArea:    DefaultMinStaticContainerArea,
		HighCostVisualCount:       DefaultHighCostVisualCount,
	}
}

// Context is a per-evaluation snapshot of a subtree's caching-relevant
// state. It is computed fresh for each decision and never stored.
type Context struct {
	EffectivelyVisible bool
	Bounds             geom.Rect
	HasBounds          bool
	HasTransform       bool
	HasClip            bool

	// SubtreeVisualCount includes the root of the subtree.
	SubtreeVisualCount         int
	SubtreeHighCostVisualCount int

	SubtreeRenderVersion uint64
	SubtreeLayoutVersion uint64
	RenderStateSignature uint64
}

// Snapshot returns the cache snapshot the context would produce.
func (c Context) Snapshot() Snapshot {
	return Snapshot{
		Bounds:        c.Bounds,
		RenderVersion: c.SubtreeRenderVersion,
		LayoutVersion: c.SubtreeLayoutVersion,
		Signature:     c.RenderStateSignature,
	}
}

// TryGetCacheBounds returns the context's bounds snapshot if it has one.
func TryGetCacheBounds(c Context) (geom.Rect, bool) {
	if !c.HasBounds {
		return geom.Rect{}, false
	}
	return c.Bounds, true
}

// Policy holds the pure caching decisions. The zero value is not useful;
// use NewPolicy or DefaultPolicy.
type Policy struct {
	Thresholds Thresholds
	// Epsilon is the tolerance for bounds comparison.
	Epsilon float64
}

// NewPolicy creates a policy with the given thresholds and bounds epsilon.
func NewPolicy(t Thresholds, epsilon float64) Policy {
	if epsilon < 0 {
		epsilon = geom.DefaultEpsilon
	}
	return Policy{Thresholds: t, Epsilon: epsilon}
}

// DefaultPolicy returns a policy with the default thresholds and epsilon.
func DefaultPolicy() Policy {
	return NewPolicy(DefaultThresholds(), geom.DefaultEpsilon)
}

// CanCache reports whether e's subtree is eligible for a cached bitmap.
//
// Rules apply in order, the first that decides wins:
//   - invisible, boundless or zero-area subtrees are never cached
//   - editable text defers to its reported stability
//   - read-only text is always cached
//   - a transformed subtree needs at least two visuals and the
//     transformed-subtree area
//   - a high-cost subtree needs the high-cost area
//   - a childless container needs the static container area
//   - a vector shape needs the high-cost area
//
// Anything else is not cached.
func (p Policy) CanCache(e *visual.Element, c Context) bool {
	if !c.EffectivelyVisible || !c.HasBounds {
		return false
	}
	area := c.Bounds.Area()
	if area <= 0 {
		return false
	}

	switch e.Kind() {
	case visual.KindEditableText:
		stable, _ := e.RenderStability()
		return stable
	case visual.KindText:
		return true
	}

	if c.HasTransform {
		return c.SubtreeVisualCount >= 2 && area >= p.Thresholds.MinTransformedSubtreeArea
	}
	if p.Thresholds.HighCostVisualCount > 0 && c.SubtreeHighCostVisualCount >= p.Thresholds.HighCostVisualCount {
		return area >= p.Thresholds.MinHighCostArea
	}
	if e.Kind().IsContainer() && e.ChildCount() == 0 {
		return area >= p.Thresholds.MinStaticContainerArea
	}
	if e.Kind() == visual.KindShape {
		return area >= p.Thresholds.MinHighCostArea
	}
	return false
}

// ShouldRebuildCache reports whether the cached bitmap described by snap
// no longer matches c. A nil snapshot always needs a build.
func (p Policy) ShouldRebuildCache(c Context, snap *Snapshot) bool {
	if snap == nil {
		return true
	}
	if !snap.Bounds.ApproxEqual(c.Bounds, p.Epsilon) {
		return true
	}
	if snap.Signature != c.RenderStateSignature {
		return true
	}
	return snap.RenderVersion != c.SubtreeRenderVersion ||
		snap.LayoutVersion != c.SubtreeLayoutVersion
}
