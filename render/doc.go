// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render paints a retained render list into an offscreen target
// using gg as the rasterization backend.
//
// # Targets
//
// Target is a CPU-backed offscreen image sized to the viewport. Its
// contents persist across frames, which is what makes region repaints
// possible: only the dirty rectangles are cleared and repainted, the rest
// of the previous frame stays in place. Present composites the target onto
// the real frame surface.
//
// # Draw pass
//
// Renderer walks the render list in draw order. For every subtree the
// cache policy accepts, it reuses (or rebuilds) a device-space bitmap kept
// in a rendercache.Store and blits it; all other elements are painted with
// their visual.Painter onto a gg.Context whose transform, clip and layer
// stack mirror the tree.
//
//	target := render.NewTarget(800, 600)
//	r := render.NewRenderer(store, rendercache.DefaultPolicy(), render.NewBitmapPool(0))
//	r.RenderFull(target, list)
//	target.Present(frame)
//
// # Bitmaps
//
// Cache bitmaps are gg.Pixmaps drawn from a BitmapPool. When the store
// evicts an entry the bitmap goes back to the pool for the next rebuild of
// the same size.
package render
