// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package geom provides the float rectangle and point types used for layout
// slots, dirty regions and cache bounds.
package geom

import (
	"image"
	"math"

	"github.com/gogpu/gg"
)

// DefaultEpsilon is the tolerance used by ApproxEqual when comparing layout
// coordinates.
const DefaultEpsilon = 0.01

// Point represents a 2D point with float64 coordinates.
type Point struct {
	X, Y float64
}

// Pt creates a Point from x, y coordinates.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size is a width/height pair in pixels.
type Size struct {
	Width, Height float64
}

// Sz creates a Size.
func Sz(w, h float64) Size {
	return Size{Width: w, Height: h}
}

// Rect is an axis-aligned rectangle in floating-point pixels.
// Width and Height are never negative when built with R.
type Rect struct {
	X, Y          float64 // Top-left corner
	Width, Height float64
}

// R creates a Rect from position and size. Negative sizes are clamped to 0.
func R(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, Width: math.Max(w, 0), Height: math.Max(h, 0)}
}

// FromEdges creates a Rect from its left, top, right and bottom edges.
func FromEdges(left, top, right, bottom float64) Rect {
	return R(left, top, right-left, bottom-top)
}

// Right returns the right edge x-coordinate.
func (r Rect) Right() float64 {
	return r.X + r.Width
}

// Bottom returns the bottom edge y-coordinate.
func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// Size returns the rectangle's size.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Area returns Width * Height, or 0 for an empty rectangle.
func (r Rect) Area() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.Width * r.Height
}

// IsEmpty reports whether the rectangle has zero area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether p lies inside the half-open rectangle
// [X, Right) x [Y, Bottom).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// ContainsRect reports whether o lies completely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Intersects reports whether the two rectangles share a region of
// positive area.
func (r Rect) Intersects(o Rect) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}
	return o.X < r.Right() && r.X < o.Right() && o.Y < r.Bottom() && r.Y < o.Bottom()
}

// Touches reports whether the rectangles intersect or share an edge.
// Rectangles that only meet at a corner also touch.
func (r Rect) Touches(o Rect) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}
	return o.X <= r.Right() && r.X <= o.Right() && o.Y <= r.Bottom() && r.Y <= o.Bottom()
}

// Intersect returns the intersection of two rectangles, or the zero Rect
// if they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.Right(), o.Right())
	y1 := math.Min(r.Bottom(), o.Bottom())

	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Union returns the smallest rectangle containing both rectangles.
// An empty operand is ignored.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	x0 := math.Min(r.X, o.X)
	y0 := math.Min(r.Y, o.Y)
	x1 := math.Max(r.Right(), o.Right())
	y1 := math.Max(r.Bottom(), o.Bottom())
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Offset returns the rectangle translated by (dx, dy).
func (r Rect) Offset(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// ApproxEqual reports whether every component differs by at most eps.
func (r Rect) ApproxEqual(o Rect, eps float64) bool {
	return math.Abs(r.X-o.X) <= eps &&
		math.Abs(r.Y-o.Y) <= eps &&
		math.Abs(r.Width-o.Width) <= eps &&
		math.Abs(r.Height-o.Height) <= eps
}

// Pixels returns the smallest integer rectangle covering r.
func (r Rect) Pixels() image.Rectangle {
	if r.IsEmpty() {
		return image.Rectangle{}
	}
	return image.Rect(
		int(math.Floor(r.X)),
		int(math.Floor(r.Y)),
		int(math.Ceil(r.Right())),
		int(math.Ceil(r.Bottom())),
	)
}

// FromPixels converts an integer rectangle to a Rect.
func FromPixels(p image.Rectangle) Rect {
	return R(float64(p.Min.X), float64(p.Min.Y), float64(p.Dx()), float64(p.Dy()))
}

// Transform returns the axis-aligned bounding box of r mapped through m.
func (r Rect) Transform(m gg.Matrix) Rect {
	if r.IsEmpty() {
		return Rect{}
	}
	if m.IsIdentity() {
		return r
	}
	corners := [4]gg.Point{
		m.TransformPoint(gg.Pt(r.X, r.Y)),
		m.TransformPoint(gg.Pt(r.Right(), r.Y)),
		m.TransformPoint(gg.Pt(r.X, r.Bottom())),
		m.TransformPoint(gg.Pt(r.Right(), r.Bottom())),
	}
	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, c := range corners[1:] {
		minX = math.Min(minX, c.X)
		minY = math.Min(minY, c.Y)
		maxX = math.Max(maxX, c.X)
		maxY = math.Max(maxY, c.Y)
	}
	return FromEdges(minX, minY, maxX, maxY)
}
