// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scheduler

import (
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/uiframe/config"
	"github.com/gogpu/uiframe/geom"
	"github.com/gogpu/uiframe/layout"
	"github.com/gogpu/uiframe/visual"
)

var (
	red  = gg.RGBA{R: 1, A: 1}
	blue = gg.RGBA{B: 1, A: 1}

	viewport = geom.R(0, 0, 200, 100)
)

type fill struct {
	c     gg.RGBA
	calls int
}

func (f *fill) Paint(dc *gg.Context, e *visual.Element) {
	f.calls++
	s, _ := e.LayoutSlot()
	dc.SetRGBA(f.c.R, f.c.G, f.c.B, f.c.A)
	dc.DrawRectangle(s.X, s.Y, s.Width, s.Height)
	_ = dc.Fill()
}

type fixture struct {
	s     *Scheduler
	root  *visual.Element
	rows  []*visual.Element
	fills []*fill
}

// newFixture stacks five red 20px rows in a 200x100 frame. Rows are
// generic visuals below every caching threshold.
func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{root: visual.New(visual.KindContainer)}
	for i := 0; i < 5; i++ {
		row := visual.New(visual.KindGeneric).SetDesiredSize(0, 20)
		fl := &fill{c: red}
		row.SetPainter(fl)
		f.root.AddChild(row)
		f.rows = append(f.rows, row)
		f.fills = append(f.fills, fl)
	}
	opts = append([]Option{WithLayout(layout.NewStack(layout.Vertical))}, opts...)
	f.s = New(visual.NewTree(f.root), opts...)
	t.Cleanup(func() { _ = f.s.Close() })
	return f
}

func (f *fixture) frame(t *testing.T) {
	t.Helper()
	if err := f.s.Update(0, viewport); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := f.s.Draw(nil); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
}

func near(a, b uint8) bool {
	d := int(a) - int(b)
	return d >= -2 && d <= 2
}

func isColor(img *image.RGBA, x, y int, c gg.RGBA) bool {
	got := img.RGBAAt(x, y)
	return near(got.R, uint8(c.R*255)) && near(got.G, uint8(c.G*255)) &&
		near(got.B, uint8(c.B*255)) && near(got.A, uint8(c.A*255))
}

func TestFirstFrameIsFull(t *testing.T) {
	f := newFixture(t)
	f.frame(t)

	m := f.s.Metrics()
	if m.DrawExecutedFrameCount != 1 || m.LastDrawScope != ScopeFull {
		t.Fatalf("executed=%d scope=%v, want 1 full frame", m.DrawExecutedFrameCount, m.LastDrawScope)
	}
	if m.LayoutPassCount != 1 {
		t.Errorf("LayoutPassCount = %d, want 1", m.LayoutPassCount)
	}
	if !m.LastShouldDrawReasons.Has(ReasonLayoutInvalidated) {
		t.Errorf("LastShouldDrawReasons = %v, want LayoutInvalidated", m.LastShouldDrawReasons)
	}
	if slot, ok := f.rows[2].LayoutSlot(); !ok || slot != geom.R(0, 40, 200, 20) {
		t.Errorf("row 2 slot = %+v (%v), want (0,40,200,20)", slot, ok)
	}
	if img := f.s.Target().Image(); !isColor(img, 10, 50, red) {
		t.Errorf("pixel (10,50) = %v, want red", img.RGBAAt(10, 50))
	}
	if m.State != StateIdle {
		t.Errorf("State = %v, want Idle", m.State)
	}
}

func TestDrawSkipsCleanFrame(t *testing.T) {
	f := newFixture(t)
	f.frame(t)
	before := f.s.Metrics()

	f.frame(t)

	m := f.s.Metrics()
	if m.DrawExecutedFrameCount != before.DrawExecutedFrameCount {
		t.Errorf("DrawExecutedFrameCount = %d, want unchanged %d", m.DrawExecutedFrameCount, before.DrawExecutedFrameCount)
	}
	if m.DrawSkippedFrameCount != before.DrawSkippedFrameCount+1 {
		t.Errorf("DrawSkippedFrameCount = %d, want %d", m.DrawSkippedFrameCount, before.DrawSkippedFrameCount+1)
	}
	if m.LastDrawScope != ScopeNone || m.LastShouldDrawReasons != ReasonNone {
		t.Errorf("scope=%v reasons=%v, want None/None", m.LastDrawScope, m.LastShouldDrawReasons)
	}
	for i, fl := range f.fills {
		if fl.calls != 1 {
			t.Errorf("row %d painted %d times, want 1", i, fl.calls)
		}
	}
}

func TestRenderChangeRepaintsRegionOnly(t *testing.T) {
	f := newFixture(t)
	f.frame(t)

	blueFill := &fill{c: blue}
	f.rows[2].SetPainter(blueFill)
	if err := f.s.Update(0, viewport); err != nil {
		t.Fatal(err)
	}
	if f.s.State() != StateNeedsDraw {
		t.Errorf("State() = %v, want NeedsDraw", f.s.State())
	}
	if err := f.s.Draw(nil); err != nil {
		t.Fatal(err)
	}

	m := f.s.Metrics()
	if m.LastDrawScope != ScopeRegion || m.LastDirtyRectCount != 1 {
		t.Fatalf("scope=%v rects=%d, want one region", m.LastDrawScope, m.LastDirtyRectCount)
	}
	if m.LastDirtyAreaPercentage != 20 {
		t.Errorf("LastDirtyAreaPercentage = %v, want 20", m.LastDirtyAreaPercentage)
	}
	if !m.LastShouldDrawReasons.Has(ReasonRenderInvalidated) {
		t.Errorf("LastShouldDrawReasons = %v, want RenderInvalidated", m.LastShouldDrawReasons)
	}
	if blueFill.calls != 1 {
		t.Errorf("new painter calls = %d, want 1", blueFill.calls)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if f.fills[i].calls != 1 {
			t.Errorf("row %d painted %d times, want 1", i, f.fills[i].calls)
		}
	}

	img := f.s.Target().Image()
	if !isColor(img, 10, 50, blue) {
		t.Errorf("pixel (10,50) = %v, want blue", img.RGBAAt(10, 50))
	}
	if !isColor(img, 10, 10, red) || !isColor(img, 10, 70, red) {
		t.Error("rows outside the region lost their pixels")
	}
}

func TestMarkVisualDirtyForcesFullFrame(t *testing.T) {
	f := newFixture(t)
	f.frame(t)

	f.s.MarkVisualDirty(ReasonRenderInvalidated)
	f.frame(t)

	m := f.s.Metrics()
	if m.LastDrawScope != ScopeFull {
		t.Errorf("LastDrawScope = %v, want Full", m.LastDrawScope)
	}
	want := ReasonRenderInvalidated | ReasonExplicitFullInvalidation
	if !m.LastShouldDrawReasons.Has(want) {
		t.Errorf("LastShouldDrawReasons = %v, want %v", m.LastShouldDrawReasons, want)
	}
}

func TestMarkVisualDirtyBounds(t *testing.T) {
	f := newFixture(t)
	f.frame(t)

	f.s.MarkVisualDirtyBounds(geom.R(500, 500, 10, 10), ReasonCursorChanged)
	if f.s.PendingReasons() != ReasonNone {
		t.Errorf("offscreen bounds set reasons %v", f.s.PendingReasons())
	}

	f.s.MarkVisualDirtyBounds(geom.R(10, 10, 5, 5), ReasonCursorChanged)
	f.frame(t)
	m := f.s.Metrics()
	if m.LastDrawScope != ScopeRegion || m.LastDirtyRectCount != 1 {
		t.Errorf("scope=%v rects=%d, want one region", m.LastDrawScope, m.LastDirtyRectCount)
	}
	if f.fills[0].calls != 2 || f.fills[1].calls != 1 {
		t.Errorf("paint calls row0=%d row1=%d, want 2/1", f.fills[0].calls, f.fills[1].calls)
	}
}

func TestResizeRelayoutsAndRepaintsFull(t *testing.T) {
	f := newFixture(t)
	f.frame(t)

	if err := f.s.Update(0, geom.R(0, 0, 300, 100)); err != nil {
		t.Fatal(err)
	}
	if want := ReasonResize | ReasonLayoutInvalidated; !f.s.PendingReasons().Has(want) {
		t.Errorf("PendingReasons() = %v, want %v", f.s.PendingReasons(), want)
	}
	if err := f.s.Draw(nil); err != nil {
		t.Fatal(err)
	}

	m := f.s.Metrics()
	if m.LayoutPassCount != 2 || m.LastDrawScope != ScopeFull {
		t.Errorf("layouts=%d scope=%v, want 2/Full", m.LayoutPassCount, m.LastDrawScope)
	}
	if w := f.s.Target().Width(); w != 300 {
		t.Errorf("Target().Width() = %d, want 300", w)
	}
	if slot, _ := f.rows[0].LayoutSlot(); slot.Width != 300 {
		t.Errorf("row width = %v, want 300", slot.Width)
	}
}

func TestLayoutInvalidationRunsLayout(t *testing.T) {
	f := newFixture(t)
	f.frame(t)

	f.rows[0].SetDesiredSize(0, 40)
	f.frame(t)

	if got := f.s.Metrics().LayoutPassCount; got != 2 {
		t.Errorf("LayoutPassCount = %d, want 2", got)
	}
	if slot, _ := f.rows[1].LayoutSlot(); slot.Y != 40 {
		t.Errorf("row 1 Y = %v, want 40", slot.Y)
	}

	f.s.MarkLayoutDirty()
	f.frame(t)
	if got := f.s.Metrics().LayoutPassCount; got != 3 {
		t.Errorf("LayoutPassCount after MarkLayoutDirty = %d, want 3", got)
	}
}

func TestHoverRepaintsOldAndNew(t *testing.T) {
	pointer := geom.Pt(10, 5)
	in := InputFunc(func() InputState {
		return InputState{Pointer: pointer, HasPointer: true}
	})
	f := newFixture(t, WithInput(in))
	f.frame(t) // slots do not exist yet when input runs

	f.frame(t)
	if f.s.Hovered() != f.rows[0] {
		t.Fatalf("Hovered() = %v, want row 0", f.s.Hovered())
	}
	m := f.s.Metrics()
	if !m.LastShouldDrawReasons.Has(ReasonHoverChanged) || m.LastDirtyRectCount != 1 {
		t.Errorf("reasons=%v rects=%d, want HoverChanged with one region", m.LastShouldDrawReasons, m.LastDirtyRectCount)
	}

	pointer = geom.Pt(10, 65)
	f.frame(t)
	if f.s.Hovered() != f.rows[3] {
		t.Fatalf("Hovered() = %v, want row 3", f.s.Hovered())
	}
	if got := f.s.Metrics().LastDirtyRectCount; got != 2 {
		t.Errorf("LastDirtyRectCount = %d, want 2 (old and new hover)", got)
	}
	if f.s.Metrics().HitTest.NodesVisited == 0 {
		t.Error("HitTest metrics not recorded")
	}

	// Same target again: nothing to do.
	f.frame(t)
	if f.s.Metrics().LastDrawScope != ScopeNone {
		t.Errorf("LastDrawScope = %v, want None when hover is unchanged", f.s.Metrics().LastDrawScope)
	}
}

func TestInputFlagsBecomeReasons(t *testing.T) {
	in := InputFunc(func() InputState {
		return InputState{FocusChanged: true, CursorChanged: true}
	})
	f := newFixture(t, WithInput(in))
	if err := f.s.Update(0, viewport); err != nil {
		t.Fatal(err)
	}
	if want := ReasonFocusChanged | ReasonCursorChanged; !f.s.PendingReasons().Has(want) {
		t.Errorf("PendingReasons() = %v, want %v", f.s.PendingReasons(), want)
	}
}

type fakeAnimator struct {
	running bool
	now     time.Duration
}

func (a *fakeAnimator) Advance(now time.Duration) { a.now = now }
func (a *fakeAnimator) HasRunningAnimations() bool { return a.running }

func TestRunningAnimationDrawsEveryFrame(t *testing.T) {
	anim := &fakeAnimator{running: true}
	f := newFixture(t, WithAnimator(anim))
	f.frame(t)

	if err := f.s.Update(16*time.Millisecond, viewport); err != nil {
		t.Fatal(err)
	}
	if anim.now != 16*time.Millisecond {
		t.Errorf("animator time = %v, want 16ms", anim.now)
	}
	if err := f.s.Draw(nil); err != nil {
		t.Fatal(err)
	}
	m := f.s.Metrics()
	if !m.LastShouldDrawReasons.Has(ReasonAnimationActive) || m.LastDrawScope != ScopeFull {
		t.Errorf("reasons=%v scope=%v, want AnimationActive/Full", m.LastShouldDrawReasons, m.LastDrawScope)
	}

	anim.running = false
	f.frame(t)
	if got := f.s.Metrics().DrawSkippedFrameCount; got != 1 {
		t.Errorf("DrawSkippedFrameCount = %d after animations stop, want 1", got)
	}
}

type fakeCaret struct{ r geom.Rect }

func (c fakeCaret) BlinkActive() bool { return true }
func (c fakeCaret) Bounds() geom.Rect { return c.r }

func TestCaretBlinkRepaintsCaretRegion(t *testing.T) {
	f := newFixture(t, WithCaret(fakeCaret{r: geom.R(50, 50, 2, 10)}))
	f.frame(t)
	f.frame(t)

	m := f.s.Metrics()
	if !m.LastShouldDrawReasons.Has(ReasonCaretBlinkActive) {
		t.Errorf("LastShouldDrawReasons = %v, want CaretBlinkActive", m.LastShouldDrawReasons)
	}
	if m.LastDrawScope != ScopeRegion || m.LastDirtyRectCount != 1 {
		t.Errorf("scope=%v rects=%d, want one region", m.LastDrawScope, m.LastDirtyRectCount)
	}
}

func TestWrongGoroutineIsRejected(t *testing.T) {
	f := newFixture(t)
	f.frame(t)

	var (
		updateErr, drawErr, closeErr error
		recovered                    any
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		updateErr = f.s.Update(0, viewport)
		drawErr = f.s.Draw(nil)
		closeErr = f.s.Close()
		func() {
			defer func() { recovered = recover() }()
			f.s.MarkVisualDirty(ReasonRenderInvalidated)
		}()
	}()
	<-done

	for name, err := range map[string]error{"Update": updateErr, "Draw": drawErr, "Close": closeErr} {
		if !errors.Is(err, ErrWrongGoroutine) {
			t.Errorf("%s() error = %v, want ErrWrongGoroutine", name, err)
		}
	}
	err, ok := recovered.(error)
	if !ok || !errors.Is(err, ErrWrongGoroutine) {
		t.Errorf("MarkVisualDirty panic = %v, want ErrWrongGoroutine", recovered)
	}
	if f.s.PendingReasons() != ReasonNone {
		t.Errorf("rejected call changed state: reasons %v", f.s.PendingReasons())
	}
}

func TestOwnerGoroutineHooksRun(t *testing.T) {
	f := newFixture(t)
	f.frame(t)

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		f.rows[0].Invalidate()
		f.rows[1].SetRenderTransform(gg.Translate(2, 0))
		f.rows[2].SetVisible(false)
		f.rows[3].SetDesiredSize(0, 30)
		f.s.MarkVisualDirtyBounds(geom.R(0, 0, 10, 10), ReasonRenderInvalidated)
		f.s.MarkLayoutDirty()
		_ = f.s.HitTest(geom.Pt(5, 5))
	}()
	if recovered != nil {
		t.Fatalf("owner-goroutine hook panicked: %v", recovered)
	}
	f.frame(t)
	if got := f.s.Metrics().DrawExecutedFrameCount; got != 2 {
		t.Errorf("DrawExecutedFrameCount = %d, want 2", got)
	}
}

func TestOwnerIsCreatingGoroutine(t *testing.T) {
	root := visual.New(visual.KindContainer)
	row := visual.New(visual.KindGeneric).SetDesiredSize(0, 20)
	root.AddChild(row)

	var (
		s        *Scheduler
		ownerErr error
	)
	created := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		s = New(visual.NewTree(root), WithLayout(layout.NewStack(layout.Vertical)))
		ownerErr = s.Update(0, viewport)
		close(created)
		<-release
		ownerErr = errors.Join(ownerErr, s.Close())
	}()
	<-created

	if err := s.Update(0, viewport); !errors.Is(err, ErrWrongGoroutine) {
		t.Errorf("Update() from the test goroutine error = %v, want ErrWrongGoroutine", err)
	}
	close(release)
	<-done
	if ownerErr != nil {
		t.Errorf("owner calls error = %v", ownerErr)
	}
}

func TestDeferredDrainLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Scheduler.DeferredDrainLimit = 3
	f := newFixture(t, WithConfig(cfg))

	var ran []int
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 7; i++ {
			if err := f.s.Post(func() { ran = append(ran, i) }); err != nil {
				t.Errorf("Post() error = %v", err)
			}
		}
	}()
	wg.Wait()

	for _, want := range []struct{ ran, backlog int }{{3, 4}, {6, 1}, {7, 0}} {
		if err := f.s.Update(0, viewport); err != nil {
			t.Fatal(err)
		}
		if len(ran) != want.ran {
			t.Errorf("ran %d operations, want %d", len(ran), want.ran)
		}
		if got := f.s.Metrics().DeferredBacklog; got != want.backlog {
			t.Errorf("DeferredBacklog = %d, want %d", got, want.backlog)
		}
	}
	for i, v := range ran {
		if v != i {
			t.Fatalf("operations ran out of order: %v", ran)
		}
	}
}

func TestDeferredWorkPostedDuringDrainWaits(t *testing.T) {
	f := newFixture(t)
	var second bool
	_ = f.s.Post(func() {
		_ = f.s.Post(func() { second = true })
	})

	if err := f.s.Update(0, viewport); err != nil {
		t.Fatal(err)
	}
	if second {
		t.Error("operation posted during a drain ran in the same frame")
	}
	if err := f.s.Update(0, viewport); err != nil {
		t.Fatal(err)
	}
	if !second {
		t.Error("operation posted during a drain never ran")
	}
}

func TestDetachDropsSideState(t *testing.T) {
	root := visual.New(visual.KindContainer)
	shape := visual.New(visual.KindShape).SetDesiredSize(0, 40)
	shape.SetPainter(&fill{c: blue})
	root.AddChild(shape)

	in := InputFunc(func() InputState {
		return InputState{Pointer: geom.Pt(10, 10), HasPointer: true}
	})
	s := New(visual.NewTree(root), WithLayout(layout.NewStack(layout.Vertical)), WithInput(in))
	defer func() { _ = s.Close() }()

	for i := 0; i < 2; i++ {
		if err := s.Update(0, viewport); err != nil {
			t.Fatal(err)
		}
		if err := s.Draw(nil); err != nil {
			t.Fatal(err)
		}
	}
	if got := s.Metrics().CacheEntryCount; got != 1 {
		t.Fatalf("CacheEntryCount = %d, want 1 for a cacheable shape", got)
	}
	if s.Hovered() != shape {
		t.Fatalf("Hovered() = %v, want the shape", s.Hovered())
	}

	root.RemoveChild(shape)

	if got := s.Metrics().CacheEntryCount; got != 0 {
		t.Errorf("CacheEntryCount = %d after detach, want 0", got)
	}
	if s.Hovered() != nil {
		t.Errorf("Hovered() = %v after detach, want nil", s.Hovered())
	}
	if !s.PendingReasons().Has(ReasonHoverChanged) {
		t.Errorf("PendingReasons() = %v, want HoverChanged", s.PendingReasons())
	}
}

func TestCacheReusedAcrossFrames(t *testing.T) {
	root := visual.New(visual.KindContainer)
	shape := visual.New(visual.KindShape).SetDesiredSize(0, 40)
	other := visual.New(visual.KindGeneric).SetDesiredSize(0, 20)
	shape.SetPainter(&fill{c: blue})
	other.SetPainter(&fill{c: red})
	root.AddChild(shape, other)

	s := New(visual.NewTree(root), WithLayout(layout.NewStack(layout.Vertical)))
	defer func() { _ = s.Close() }()

	step := func() {
		t.Helper()
		if err := s.Update(0, viewport); err != nil {
			t.Fatal(err)
		}
		if err := s.Draw(nil); err != nil {
			t.Fatal(err)
		}
	}
	step()
	if m := s.Metrics(); m.CacheRebuilds != 1 || m.CacheBytes != 200*40*4 {
		t.Fatalf("rebuilds=%d bytes=%d, want 1/%d", m.CacheRebuilds, m.CacheBytes, 200*40*4)
	}

	s.MarkVisualDirty(ReasonNone)
	step()
	if m := s.Metrics(); m.CacheHits != 1 || m.CacheRebuilds != 0 {
		t.Errorf("hits=%d rebuilds=%d, want 1/0 for an unchanged shape", m.CacheHits, m.CacheRebuilds)
	}
}

func TestCachingCanBeDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Enabled = false
	root := visual.New(visual.KindContainer)
	shape := visual.New(visual.KindShape).SetDesiredSize(0, 40)
	root.AddChild(shape)

	s := New(visual.NewTree(root), WithConfig(cfg), WithLayout(layout.NewStack(layout.Vertical)))
	defer func() { _ = s.Close() }()
	if err := s.Update(0, viewport); err != nil {
		t.Fatal(err)
	}
	if err := s.Draw(nil); err != nil {
		t.Fatal(err)
	}
	if got := s.Metrics().CacheEntryCount; got != 0 {
		t.Errorf("CacheEntryCount = %d with caching disabled, want 0", got)
	}
}

func TestApplyConfig(t *testing.T) {
	f := newFixture(t)
	f.frame(t)

	c := config.Default()
	c.Dirty.MaxRegions = 3
	c.Cache.Enabled = false
	c.Scheduler.DeferredDrainLimit = 1
	if err := f.s.ApplyConfig(c); err != nil {
		t.Fatalf("ApplyConfig() error = %v", err)
	}
	if got := f.s.tracker.MaxRegions(); got != 3 {
		t.Errorf("MaxRegions() = %d, want 3", got)
	}
	if f.s.renderer.Caching() {
		t.Error("Caching() = true after disabling it")
	}

	ran := 0
	for i := 0; i < 2; i++ {
		_ = f.s.Post(func() { ran++ })
	}
	f.frame(t)
	if ran != 1 {
		t.Errorf("ran %d deferred operations, want 1", ran)
	}
	m := f.s.Metrics()
	if m.LastDrawScope != ScopeFull || !m.LastShouldDrawReasons.Has(ReasonExplicitFullInvalidation) {
		t.Errorf("scope=%v reasons=%v, want full explicit redraw", m.LastDrawScope, m.LastShouldDrawReasons)
	}
}

func TestApplyConfigRejectsInvalid(t *testing.T) {
	f := newFixture(t)

	c := config.Default()
	c.Dirty.MaxRegions = 0
	if err := f.s.ApplyConfig(c); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("ApplyConfig() error = %v, want ErrInvalid", err)
	}
	if got := f.s.tracker.MaxRegions(); got != config.Default().Dirty.MaxRegions {
		t.Errorf("MaxRegions() = %d, want unchanged default", got)
	}
}

func TestTransformAnimationRefreshesWithoutRebuild(t *testing.T) {
	f := newFixture(t)
	f.frame(t)
	rebuilds := f.s.list.RebuildCount()

	for i := 1; i <= 10; i++ {
		f.rows[1].SetRenderTransform(gg.Translate(float64(i), 0))
		f.frame(t)

		m := f.s.Metrics()
		if m.LastDrawScope != ScopeRegion {
			t.Fatalf("frame %d scope = %v, want Region", i, m.LastDrawScope)
		}
	}
	if got := f.s.list.RebuildCount(); got != rebuilds {
		t.Errorf("RebuildCount() = %d after transform-only frames, want %d", got, rebuilds)
	}
	if got := f.s.list.RefreshCount(); got != 10 {
		t.Errorf("RefreshCount() = %d, want 10", got)
	}
	ent, ok := f.s.list.Lookup(f.rows[1])
	if want := geom.R(10, 20, 200, 20); !ok || !ent.Bounds.ApproxEqual(want, 1e-9) {
		t.Errorf("row 1 device bounds = %+v, want %+v", ent, want)
	}
	if img := f.s.Target().Image(); !isColor(img, 5, 30, gg.RGBA{R: 1, G: 1, B: 1, A: 1}) {
		t.Errorf("pixel (5,30) = %v, want background uncovered by the moved row", img.RGBAAt(5, 30))
	}
}

func TestDrawPresentsToSurface(t *testing.T) {
	f := newFixture(t, WithRetainedSurface(true))
	dst := image.NewRGBA(image.Rect(0, 0, 200, 100))
	if err := f.s.Update(0, viewport); err != nil {
		t.Fatal(err)
	}
	if err := f.s.Draw(dst); err != nil {
		t.Fatal(err)
	}
	if !isColor(dst, 10, 10, red) {
		t.Errorf("surface pixel = %v, want red", dst.RGBAAt(10, 10))
	}

	f.rows[4].SetPainter(&fill{c: blue})
	if err := f.s.Update(0, viewport); err != nil {
		t.Fatal(err)
	}
	if err := f.s.Draw(dst); err != nil {
		t.Fatal(err)
	}
	if !isColor(dst, 10, 90, blue) || !isColor(dst, 10, 10, red) {
		t.Errorf("surface pixels = %v / %v, want blue / red", dst.RGBAAt(10, 90), dst.RGBAAt(10, 10))
	}
}

func TestWithoutLayoutEngine(t *testing.T) {
	root := visual.New(visual.KindContainer)
	root.SetLayoutSlot(viewport)
	child := visual.New(visual.KindGeneric)
	child.SetLayoutSlot(geom.R(0, 0, 10, 10))
	fl := &fill{c: red}
	child.SetPainter(fl)
	root.AddChild(child)

	s := New(visual.NewTree(root))
	defer func() { _ = s.Close() }()
	if err := s.Update(0, viewport); err != nil {
		t.Fatal(err)
	}
	if err := s.Draw(nil); err != nil {
		t.Fatal(err)
	}
	if fl.calls != 1 {
		t.Errorf("paint calls = %d, want 1", fl.calls)
	}
	if got := s.HitTest(geom.Pt(5, 5)); got != child {
		t.Errorf("HitTest() = %v, want child", got)
	}
}

func TestClose(t *testing.T) {
	f := newFixture(t)
	f.frame(t)
	_ = f.s.Post(func() {})

	if err := f.s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := f.s.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
	if err := f.s.Update(0, viewport); !errors.Is(err, ErrClosed) {
		t.Errorf("Update() after Close error = %v, want ErrClosed", err)
	}
	if err := f.s.Draw(nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Draw() after Close error = %v, want ErrClosed", err)
	}
	if err := f.s.Post(func() {}); !errors.Is(err, ErrClosed) {
		t.Errorf("Post() after Close error = %v, want ErrClosed", err)
	}
	if f.s.Target() != nil {
		t.Error("Target() != nil after Close")
	}
	// The tree is disconnected: changes no longer reach the scheduler.
	f.rows[0].Invalidate()
}

func TestReasonString(t *testing.T) {
	tests := []struct {
		r    Reason
		want string
	}{
		{ReasonNone, "None"},
		{ReasonResize, "Resize"},
		{ReasonLayoutInvalidated | ReasonHoverChanged, "LayoutInvalidated|HoverChanged"},
		{ReasonExplicitFullInvalidation | 1<<12, "ExplicitFullInvalidation|Unknown"},
	}
	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("Reason(%d).String() = %q, want %q", tt.r, got, tt.want)
		}
	}
}

func TestStateString(t *testing.T) {
	if got := StateDrawingRegion.String(); got != "DrawingRegion" {
		t.Errorf("String() = %q", got)
	}
	if got := ScopeFull.String(); got != "Full" {
		t.Errorf("String() = %q", got)
	}
}
