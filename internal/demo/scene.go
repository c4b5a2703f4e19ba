// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package demo builds the sample tree shared by the uiframe commands: a
// header with a spinning badge, a long scrollable list and a status bar.
package demo

import (
	"math"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/uiframe/geom"
	"github.com/gogpu/uiframe/layout"
	"github.com/gogpu/uiframe/visual"
)

// Fixed chrome heights in pixels.
const (
	HeaderHeight = 48
	StatusHeight = 24
	RowHeight    = 24
)

// Scene is the demo tree and handles on the elements the commands drive.
type Scene struct {
	Tree   *visual.Tree
	Layout *layout.Stack

	Header  *visual.Element
	Badge   *visual.Element
	List    *visual.Element
	Rows    []*visual.Element
	Status  *visual.Element
	Spinner *Spinner

	hovered *visual.Element
}

// Build creates a scene with n list rows.
func Build(n int) *Scene {
	sc := &Scene{Layout: layout.NewStack(layout.Vertical)}
	root := visual.New(visual.KindContainer).SetName("root")
	root.SetPainter(fillPainter(gg.Hex("#f4f4f4")))

	sc.Header = visual.New(visual.KindContainer).SetName("header").SetDesiredSize(0, HeaderHeight)
	sc.Header.SetPainter(fillPainter(gg.Hex("#2d3e50")))
	sc.Layout.SetDirection(sc.Header, layout.Horizontal)
	for i := 0; i < 3; i++ {
		chip := visual.New(visual.KindShape).SetDesiredSize(120, 0)
		chip.SetPainter(roundedPainter(gg.HSL(float64(i)*90+20, 0.6, 0.55), 10))
		sc.Header.AddChild(chip)
	}
	sc.Badge = visual.New(visual.KindShape).SetName("badge").SetDesiredSize(HeaderHeight, 0)
	sc.Badge.SetPainter(badgePainter{})
	sc.Header.AddChild(sc.Badge)
	sc.Spinner = &Spinner{Target: sc.Badge, Period: 2 * time.Second, Running: true}

	sc.List = visual.New(visual.KindScrollViewer).SetName("list").SetClipToBounds(true)
	sc.Rows = make([]*visual.Element, n)
	for i := range sc.Rows {
		row := visual.New(visual.KindText).SetDesiredSize(0, RowHeight)
		row.SetPainter(&rowPainter{scene: sc, index: i})
		sc.Rows[i] = row
	}
	sc.List.AddChild(sc.Rows...)

	sc.Status = visual.New(visual.KindText).SetName("status").SetDesiredSize(0, StatusHeight)
	sc.Status.SetPainter(fillPainter(gg.Hex("#c8ccd0")))

	root.AddChild(sc.Header, sc.List, sc.Status)
	sc.Tree = visual.NewTree(root)
	return sc
}

// Fit sizes the list to the space left between header and status bar.
func (sc *Scene) Fit(viewport geom.Rect) {
	h := math.Max(0, viewport.Height-HeaderHeight-StatusHeight)
	if sc.List.DesiredSize().Height != h {
		sc.List.SetDesiredSize(0, h)
	}
}

// ContentHeight returns the total height of the list rows.
func (sc *Scene) ContentHeight() float64 {
	return float64(len(sc.Rows) * RowHeight)
}

// ScrollBy scrolls the list, clamped to its content.
func (sc *Scene) ScrollBy(dy float64) {
	slot, _ := sc.List.LayoutSlot()
	limit := math.Max(0, sc.ContentHeight()-slot.Height)
	y := math.Min(limit, math.Max(0, sc.List.ScrollOffset().Y+dy))
	sc.List.SetScrollOffset(geom.Pt(0, y))
}

// SetHovered moves the highlight. Rows are cached, so both the old and the
// new row are invalidated explicitly.
func (sc *Scene) SetHovered(e *visual.Element) {
	if e == sc.hovered {
		return
	}
	if sc.hovered != nil {
		sc.hovered.Invalidate()
	}
	sc.hovered = e
	if e != nil {
		e.Invalidate()
	}
}

// Spinner rotates an element around its center. It satisfies the
// scheduler's Animator.
type Spinner struct {
	Target  *visual.Element
	Period  time.Duration
	Running bool
}

// Advance sets the rotation for time now.
func (s *Spinner) Advance(now time.Duration) {
	if !s.Running || s.Period <= 0 {
		return
	}
	slot, ok := s.Target.LayoutSlot()
	if !ok {
		return
	}
	angle := 2 * math.Pi * float64(now%s.Period) / float64(s.Period)
	cx, cy := slot.Width/2, slot.Height/2
	m := gg.Translate(cx, cy).Multiply(gg.Rotate(angle)).Multiply(gg.Translate(-cx, -cy))
	s.Target.SetRenderTransform(m)
}

// HasRunningAnimations reports whether the spinner is turning.
func (s *Spinner) HasRunningAnimations() bool { return s.Running }

func fillPainter(c gg.RGBA) visual.PainterFunc {
	return func(dc *gg.Context, e *visual.Element) {
		s, _ := e.LayoutSlot()
		setColor(dc, c)
		dc.DrawRectangle(s.X, s.Y, s.Width, s.Height)
		_ = dc.Fill()
	}
}

func roundedPainter(c gg.RGBA, radius float64) visual.PainterFunc {
	return func(dc *gg.Context, e *visual.Element) {
		s, _ := e.LayoutSlot()
		setColor(dc, c)
		dc.DrawRoundedRectangle(s.X+6, s.Y+6, s.Width-12, s.Height-12, radius)
		_ = dc.Fill()
	}
}

type badgePainter struct{}

func (badgePainter) Paint(dc *gg.Context, e *visual.Element) {
	s, _ := e.LayoutSlot()
	cx, cy := s.X+s.Width/2, s.Y+s.Height/2
	r := math.Min(s.Width, s.Height)/2 - 6
	setColor(dc, gg.Hex("#f1c40f"))
	dc.DrawCircle(cx, cy, r)
	_ = dc.Fill()
	setColor(dc, gg.Hex("#2d3e50"))
	dc.DrawRectangle(cx-2, cy-r, 4, r)
	_ = dc.Fill()
}

type rowPainter struct {
	scene *Scene
	index int
}

func (p *rowPainter) Paint(dc *gg.Context, e *visual.Element) {
	s, _ := e.LayoutSlot()
	switch {
	case e == p.scene.hovered:
		setColor(dc, gg.Hex("#a9cce3"))
	case p.index%2 == 0:
		setColor(dc, gg.Hex("#ffffff"))
	default:
		setColor(dc, gg.Hex("#ebedef"))
	}
	dc.DrawRectangle(s.X, s.Y, s.Width, s.Height)
	_ = dc.Fill()

	// A bar whose length varies by row stands in for a text label.
	w := 40 + float64((p.index*37)%200)
	setColor(dc, gg.Hex("#5d6d7e"))
	dc.DrawRectangle(s.X+8, s.Y+8, w, s.Height-16)
	_ = dc.Fill()
}

func setColor(dc *gg.Context, c gg.RGBA) {
	dc.SetRGBA(c.R, c.G, c.B, c.A)
}
