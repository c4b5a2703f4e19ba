// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"

	"github.com/gogpu/gg"
	"github.com/gogpu/uiframe/geom"
	"github.com/gogpu/uiframe/rendercache"
	"github.com/gogpu/uiframe/renderlist"
	"golang.org/x/image/draw"
)

// Stats counts the work done by draw passes since the last ResetStats.
type Stats struct {
	// Passes is the number of RenderFull and RenderRegion calls.
	Passes int
	// Painted is the number of Painter.Paint calls.
	Painted int
	// CacheHits counts subtrees drawn from a valid cached bitmap.
	CacheHits int
	// CacheRebuilds counts subtrees rendered into a new cached bitmap.
	CacheRebuilds int
}

// Renderer paints a render list into a Target.
//
// Renderer is not thread-safe. It shares the cache store with the frame
// scheduler and must be used from the same goroutine.
type Renderer struct {
	store   *rendercache.Store
	policy  rendercache.Policy
	pool    *BitmapPool
	caching bool

	stats Stats
}

// NewRenderer creates a renderer that caches eligible subtrees in store.
// A nil store disables caching; a nil pool allocates a private one.
func NewRenderer(store *rendercache.Store, policy rendercache.Policy, pool *BitmapPool) *Renderer {
	if pool == nil {
		pool = NewBitmapPool(0)
	}
	return &Renderer{
		store:   store,
		policy:  policy,
		pool:    pool,
		caching: store != nil,
	}
}

// SetCaching enables or disables subtree caching. Disabling it leaves the
// store untouched.
func (r *Renderer) SetCaching(enabled bool) {
	r.caching = enabled && r.store != nil
}

// SetPolicy replaces the caching policy. Existing entries are rebuilt when
// the new policy judges them stale.
func (r *Renderer) SetPolicy(p rendercache.Policy) {
	r.policy = p
}

// Caching reports whether subtree caching is enabled.
func (r *Renderer) Caching() bool {
	return r.caching
}

// Pool returns the bitmap pool used for cache bitmaps.
func (r *Renderer) Pool() *BitmapPool {
	return r.pool
}

// Stats returns the counters accumulated since the last ResetStats.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// ResetStats zeroes the counters.
func (r *Renderer) ResetStats() {
	r.stats = Stats{}
}

// RenderFull paints the whole list into t. The caller clears t first.
func (r *Renderer) RenderFull(t *Target, l *renderlist.List) {
	r.RenderRegion(t, l, t.Bounds())
}

// RenderRegion paints the part of the list that intersects region into t.
// Pixels outside region are left untouched. The caller clears region
// first.
func (r *Renderer) RenderRegion(t *Target, l *renderlist.List, region image.Rectangle) {
	region = region.Intersect(t.Bounds())
	r.stats.Passes++
	if region.Empty() || l.Len() == 0 {
		return
	}

	dc := t.Context()
	dc.ResetClip()
	dc.Identity()
	dc.Push()
	dc.ClipRect(float64(region.Min.X), float64(region.Min.Y), float64(region.Dx()), float64(region.Dy()))

	p := &pass{
		r:         r,
		list:      l,
		entries:   l.Entries(),
		dc:        dc,
		base:      gg.Identity(),
		viewport:  geom.FromPixels(t.Bounds()),
		cacheRoot: -1,
	}
	p.subtree(0, geom.FromPixels(region))

	dc.Pop()
}

// pass is one traversal of the render list onto one canvas.
type pass struct {
	r       *Renderer
	list    *renderlist.List
	entries []renderlist.Entry
	dc      *gg.Context

	// base maps device pixels to canvas pixels.
	base     gg.Matrix
	viewport geom.Rect
	// cacheRoot is the entry being rendered into a cache bitmap, or -1.
	cacheRoot int
}

// subtree draws entries[i] and its descendants. clip is the device-space
// area that may be touched.
func (p *pass) subtree(i int, clip geom.Rect) {
	ent := &p.entries[i]
	if !ent.Visible || !ent.SubtreeBounds.Intersects(clip) {
		return
	}

	if p.cacheRoot < 0 && p.r.caching {
		c := p.list.CacheContext(i)
		if p.r.policy.CanCache(ent.Element, c) {
			p.cached(i, c, clip)
			return
		}
		p.r.store.Remove(ent.Element.ID())
	}
	p.paint(i, clip)
}

// paint draws entries[i] with its painter and recurses into its children.
func (p *pass) paint(i int, clip geom.Rect) {
	ent := &p.entries[i]
	e := ent.Element

	opacity := e.Opacity()
	if opacity <= 0 {
		return
	}
	layered := opacity < 1
	if layered {
		p.dc.PushLayer(gg.BlendNormal, opacity)
	}
	p.dc.Push()
	p.dc.SetTransform(p.base.Multiply(ent.Device))

	if painter := e.Painter(); painter != nil {
		painter.Paint(p.dc, e)
		p.r.stats.Painted++
	}

	childClip := clip
	if e.ClipToBounds() {
		if slot, ok := e.LayoutSlot(); ok {
			p.dc.SetTransform(p.base.Multiply(ent.Device))
			p.dc.ClipRect(slot.X, slot.Y, slot.Width, slot.Height)
			childClip = clip.Intersect(ent.Bounds)
		}
	}
	for j := i + 1; j < ent.End; j = p.entries[j].End {
		p.subtree(j, childClip)
	}

	p.dc.Pop()
	if layered {
		p.dc.PopLayer()
	}
}

// cached draws entries[i] from its cache bitmap, rebuilding the bitmap
// first when the policy says it is stale.
func (p *pass) cached(i int, c rendercache.Context, clip geom.Rect) {
	e := p.entries[i].Element
	px := c.Bounds.Intersect(p.viewport).Pixels()
	if px.Empty() {
		return
	}

	var bm *Bitmap
	entry, ok := p.r.store.TryGet(e.ID())
	if ok {
		bm, _ = entry.Bitmap.(*Bitmap)
	}
	if bm == nil || bm.Width() != px.Dx() || bm.Height() != px.Dy() ||
		p.r.policy.ShouldRebuildCache(c, &entry.Snapshot) {
		// Descendants are painted into this bitmap from now on.
		for j := i + 1; j < p.entries[i].End; j++ {
			p.r.store.Remove(p.entries[j].Element.ID())
		}
		bm = p.r.pool.Get(px.Dx(), px.Dy())
		p.renderInto(bm, i, px)
		p.r.store.Upsert(e.ID(), bm, c.Snapshot())
		p.r.stats.CacheRebuilds++
	} else {
		p.r.stats.CacheHits++
	}

	dst := px.Intersect(clip.Pixels())
	if dst.Empty() {
		return
	}
	draw.Draw(pixmapImage(p.dc.ResizeTarget()), dst, bm.Image(), dst.Sub(px.Min).Min, draw.Over)
}

// renderInto paints the subtree at entries[i] into bm, whose top-left
// corner sits at device pixel px.Min.
func (p *pass) renderInto(bm *Bitmap, i int, px image.Rectangle) {
	dc := gg.NewContext(px.Dx(), px.Dy(), gg.WithPixmap(bm.Pixmap()))
	defer func() {
		_ = dc.Close()
	}()

	sub := &pass{
		r:         p.r,
		list:      p.list,
		entries:   p.entries,
		dc:        dc,
		base:      gg.Translate(-float64(px.Min.X), -float64(px.Min.Y)),
		viewport:  p.viewport,
		cacheRoot: i,
	}
	sub.paint(i, geom.FromPixels(px))
}
