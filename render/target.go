// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"image/color"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
)

// Target is a CPU-backed offscreen render target.
//
// Its pixel buffer is a gg.Pixmap shared with a gg.Context, so painters
// draw straight into it. Contents are preserved between frames.
//
// Example:
//
//	target := render.NewTarget(800, 600)
//	target.Clear(gg.White)
//	target.Present(frame)
type Target struct {
	pm *gg.Pixmap
	dc *gg.Context
}

// NewTarget creates a target of the given size, cleared to transparent.
func NewTarget(width, height int) *Target {
	pm := gg.NewPixmap(width, height)
	return &Target{
		pm: pm,
		dc: gg.NewContext(width, height, gg.WithPixmap(pm)),
	}
}

// Width returns the target width in pixels.
func (t *Target) Width() int {
	return t.pm.Width()
}

// Height returns the target height in pixels.
func (t *Target) Height() int {
	return t.pm.Height()
}

// Bounds returns the target rectangle in pixels.
func (t *Target) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.pm.Width(), t.pm.Height())
}

// Pixmap returns the backing pixmap.
func (t *Target) Pixmap() *gg.Pixmap {
	return t.pm
}

// Context returns the drawing context bound to the target.
func (t *Target) Context() *gg.Context {
	return t.dc
}

// Image returns an *image.RGBA view sharing memory with the target.
func (t *Target) Image() *image.RGBA {
	return pixmapImage(t.pm)
}

// Clear fills the whole target with c.
func (t *Target) Clear(c gg.RGBA) {
	t.pm.Clear(c)
}

// ClearRect fills r (clipped to the target) with c, replacing the pixels.
func (t *Target) ClearRect(r image.Rectangle, c gg.RGBA) {
	r = r.Intersect(t.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(t.Image(), r, image.NewUniform(rgba8(c)), image.Point{}, draw.Src)
}

// Resize reallocates the target. The contents are not preserved.
// Resizing to the current size is a no-op.
func (t *Target) Resize(width, height int) {
	if width == t.pm.Width() && height == t.pm.Height() {
		return
	}
	_ = t.dc.Close()
	t.pm = gg.NewPixmap(width, height)
	t.dc = gg.NewContext(width, height, gg.WithPixmap(t.pm))
}

// Present copies the target onto dst, aligned at dst's origin.
func (t *Target) Present(dst draw.Image) {
	if dst == nil {
		return
	}
	b := dst.Bounds()
	r := image.Rectangle{Min: b.Min, Max: b.Min.Add(t.Bounds().Size())}.Intersect(b)
	draw.Draw(dst, r, t.Image(), image.Point{}, draw.Src)
}

// PresentRegions copies only the given target rectangles onto dst.
func (t *Target) PresentRegions(dst draw.Image, regions []image.Rectangle) {
	if dst == nil {
		return
	}
	src := t.Image()
	origin := dst.Bounds().Min
	for _, r := range regions {
		r = r.Intersect(t.Bounds())
		if r.Empty() {
			continue
		}
		draw.Draw(dst, r.Add(origin).Intersect(dst.Bounds()), src, r.Min, draw.Src)
	}
}

// Close releases the drawing context.
func (t *Target) Close() error {
	return t.dc.Close()
}

// pixmapImage wraps a pixmap's buffer as an *image.RGBA without copying.
func pixmapImage(pm *gg.Pixmap) *image.RGBA {
	return &image.RGBA{
		Pix:    pm.Data(),
		Stride: pm.Width() * 4,
		Rect:   image.Rect(0, 0, pm.Width(), pm.Height()),
	}
}

// rgba8 converts a gg color to 8-bit channels the way Pixmap.Clear does,
// so ClearRect and Clear produce identical pixels.
func rgba8(c gg.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
