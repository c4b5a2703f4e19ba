// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"

	"github.com/gogpu/gg"
	"github.com/gogpu/uiframe/rendercache"
)

// DefaultPoolPerSize is the default number of idle pixmaps kept per size.
const DefaultPoolPerSize = 4

// Bitmap is a cache bitmap backed by a pooled gg.Pixmap.
// It implements rendercache.Bitmap.
type Bitmap struct {
	pm       *gg.Pixmap
	pool     *BitmapPool
	released bool
}

var _ rendercache.Bitmap = (*Bitmap)(nil)

// Width returns the bitmap width in pixels.
func (b *Bitmap) Width() int { return b.pm.Width() }

// Height returns the bitmap height in pixels.
func (b *Bitmap) Height() int { return b.pm.Height() }

// Pixmap returns the backing pixmap.
func (b *Bitmap) Pixmap() *gg.Pixmap { return b.pm }

// Image returns an *image.RGBA view of the bitmap.
func (b *Bitmap) Image() *image.RGBA { return pixmapImage(b.pm) }

// Release returns the pixmap to its pool. Calling Release more than once
// is a no-op.
func (b *Bitmap) Release() {
	if b.released {
		return
	}
	b.released = true
	if b.pool != nil {
		b.pool.put(b.pm)
	}
}

// BitmapPool recycles pixmaps by exact size.
//
// UI subtrees tend to be rebuilt at the size they had before, so exact
// sizes hit often; a pixmap of a size nobody asks for again is simply
// dropped once the per-size limit is reached.
//
// BitmapPool is not safe for concurrent use.
type BitmapPool struct {
	perSize int
	idle    map[image.Point][]*gg.Pixmap

	gets   int
	reuses int
}

// NewBitmapPool creates a pool keeping at most perSize idle pixmaps of each
// size. If perSize <= 0, DefaultPoolPerSize is used.
func NewBitmapPool(perSize int) *BitmapPool {
	if perSize <= 0 {
		perSize = DefaultPoolPerSize
	}
	return &BitmapPool{
		perSize: perSize,
		idle:    make(map[image.Point][]*gg.Pixmap),
	}
}

// Get returns a bitmap of the given size cleared to transparent.
func (p *BitmapPool) Get(width, height int) *Bitmap {
	p.gets++
	key := image.Pt(width, height)
	if list := p.idle[key]; len(list) > 0 {
		pm := list[len(list)-1]
		list[len(list)-1] = nil
		p.idle[key] = list[:len(list)-1]
		pm.Clear(gg.Transparent)
		p.reuses++
		return &Bitmap{pm: pm, pool: p}
	}
	return &Bitmap{pm: gg.NewPixmap(width, height), pool: p}
}

func (p *BitmapPool) put(pm *gg.Pixmap) {
	key := image.Pt(pm.Width(), pm.Height())
	if len(p.idle[key]) >= p.perSize {
		return
	}
	p.idle[key] = append(p.idle[key], pm)
}

// Idle returns the number of pooled pixmaps.
func (p *BitmapPool) Idle() int {
	n := 0
	for _, list := range p.idle {
		n += len(list)
	}
	return n
}

// Reuses returns how many Get calls were served from the pool, and the
// total number of Get calls.
func (p *BitmapPool) Reuses() (reuses, gets int) {
	return p.reuses, p.gets
}

// Drain drops every idle pixmap.
func (p *BitmapPool) Drain() {
	clear(p.idle)
}
