// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package demo

import (
	"testing"
	"time"

	"github.com/gogpu/uiframe/geom"
	"github.com/gogpu/uiframe/scheduler"
)

func TestSceneFrameLoop(t *testing.T) {
	sc := Build(1000)
	s := scheduler.New(sc.Tree,
		scheduler.WithLayout(sc.Layout),
		scheduler.WithAnimator(sc.Spinner),
	)
	defer func() { _ = s.Close() }()

	viewport := geom.R(0, 0, 400, 300)
	step := func(now time.Duration) {
		t.Helper()
		sc.Fit(viewport)
		if err := s.Update(now, viewport); err != nil {
			t.Fatal(err)
		}
		if err := s.Draw(nil); err != nil {
			t.Fatal(err)
		}
	}
	step(0)
	step(16 * time.Millisecond)

	if slot, _ := sc.List.LayoutSlot(); slot != geom.R(0, HeaderHeight, 400, 300-HeaderHeight-StatusHeight) {
		t.Fatalf("list slot = %+v", slot)
	}

	p := geom.Pt(10, HeaderHeight+3*RowHeight+5)
	if got := s.HitTest(p); got != sc.Rows[3] {
		t.Errorf("HitTest() = %v, want row 3", got)
	}

	sc.ScrollBy(10 * RowHeight)
	step(32 * time.Millisecond)
	if got := s.HitTest(p); got != sc.Rows[13] {
		t.Errorf("HitTest() after scroll = %v, want row 13", got)
	}
	if s.Metrics().HitTest.FastPathHits != 1 {
		t.Errorf("FastPathHits = %d, want 1 for a 1000 row list", s.Metrics().HitTest.FastPathHits)
	}

	sc.ScrollBy(1e9)
	slot, _ := sc.List.LayoutSlot()
	if got, want := sc.List.ScrollOffset().Y, sc.ContentHeight()-slot.Height; got != want {
		t.Errorf("scroll offset = %v, want clamped %v", got, want)
	}
}

func TestSpinnerFramesKeepRenderList(t *testing.T) {
	sc := Build(1000)
	s := scheduler.New(sc.Tree,
		scheduler.WithLayout(sc.Layout),
		scheduler.WithAnimator(sc.Spinner),
	)
	defer func() { _ = s.Close() }()

	viewport := geom.R(0, 0, 400, 300)
	frame := func(now time.Duration) {
		t.Helper()
		sc.Fit(viewport)
		if err := s.Update(now, viewport); err != nil {
			t.Fatal(err)
		}
		if err := s.Draw(nil); err != nil {
			t.Fatal(err)
		}
	}
	frame(0)
	before := s.Metrics()

	for i := 1; i <= 10; i++ {
		frame(time.Duration(i) * 16 * time.Millisecond)
	}
	m := s.Metrics()
	if m.RenderListRebuilds != before.RenderListRebuilds {
		t.Errorf("RenderListRebuilds = %d after spinner-only frames, want %d",
			m.RenderListRebuilds, before.RenderListRebuilds)
	}
	if got := m.RenderListRefreshes - before.RenderListRefreshes; got != 10 {
		t.Errorf("RenderListRefreshes grew by %d, want 10", got)
	}
	if m.LastDrawScope != scheduler.ScopeRegion {
		t.Errorf("LastDrawScope = %v, want Region", m.LastDrawScope)
	}
}

func TestSetHoveredInvalidatesRows(t *testing.T) {
	sc := Build(4)
	a, b := sc.Rows[0], sc.Rows[1]
	stampA, stampB := a.RenderStamp(), b.RenderStamp()

	sc.SetHovered(a)
	if a.RenderStamp() == stampA {
		t.Error("hovering did not invalidate the row")
	}
	stampA = a.RenderStamp()
	sc.SetHovered(b)
	if a.RenderStamp() == stampA || b.RenderStamp() == stampB {
		t.Error("moving hover did not invalidate both rows")
	}
}

func TestSpinnerRotatesBadge(t *testing.T) {
	sc := Build(1)
	sc.Badge.SetLayoutSlot(geom.R(0, 0, 48, 48))

	sc.Spinner.Advance(0)
	if sc.Badge.HasRenderTransform() {
		t.Error("angle 0 should leave the identity transform")
	}
	sc.Spinner.Advance(sc.Spinner.Period / 4)
	if !sc.Badge.HasRenderTransform() {
		t.Error("quarter turn left no transform")
	}
}
