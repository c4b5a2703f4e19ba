// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package scheduler drives a visual tree through the frame loop.
//
// The host calls Update and then Draw once per tick. Update dispatches
// input, runs deferred work, lays the tree out when needed, advances
// animations and collects the reasons the frame has to be redrawn. Draw
// then decides between skipping the frame, repainting only the dirty
// regions and repainting everything, and copies the result to the host
// surface.
//
//	s := scheduler.New(tree, scheduler.WithLayout(layout.NewStack(layout.Vertical)))
//	defer s.Close()
//	for running {
//	    if err := s.Update(now, viewport); err != nil {
//	        return err
//	    }
//	    if err := s.Draw(frame); err != nil {
//	        return err
//	    }
//	}
package scheduler

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/uiframe"
	"github.com/gogpu/uiframe/config"
	"github.com/gogpu/uiframe/dirty"
	"github.com/gogpu/uiframe/geom"
	"github.com/gogpu/uiframe/hittest"
	"github.com/gogpu/uiframe/render"
	"github.com/gogpu/uiframe/rendercache"
	"github.com/gogpu/uiframe/renderlist"
	"github.com/gogpu/uiframe/visual"
	"github.com/petermattis/goid"
)

var (
	// ErrWrongGoroutine is returned (or panicked with, from hooks that have
	// no error result) when a scheduler is used off its owner goroutine.
	ErrWrongGoroutine = errors.New("scheduler: called from a goroutine other than the owner")

	// ErrClosed is returned by calls on a closed scheduler.
	ErrClosed = errors.New("scheduler: closed")
)

// Scheduler owns the per-frame state of one visual tree: the dirty region
// tracker, the render list, the cache store, the hit tester and the
// offscreen target.
//
// A Scheduler is bound to the goroutine that created it. Update, Draw,
// Close and the mark-dirty methods must be called from that goroutine;
// Post may be called from anywhere.
type Scheduler struct {
	owner int64
	log   *slog.Logger

	cfg        config.Config
	background gg.RGBA
	retained   bool

	tree   *visual.Tree
	layout LayoutEngine
	anim   Animator
	input  InputSource
	caret  Caret

	tracker  *dirty.Tracker
	list     *renderlist.List
	hit      *hittest.Tester
	store    *rendercache.Store
	renderer *render.Renderer
	target   *render.Target

	// frame is the viewport moved to the origin.
	frame    geom.Rect
	hasFrame bool
	resized  bool

	laidOut        bool
	layoutDirty    bool
	layoutFrame    geom.Rect
	warnedNoLayout bool

	presented bool
	reasons   Reason
	state     State
	hovered   *visual.Element

	deferred deferredQueue

	metrics Metrics
	closed  bool
}

// New creates a scheduler for tree and registers it as the tree's
// invalidator. The calling goroutine becomes the owner.
func New(tree *visual.Tree, opts ...Option) *Scheduler {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = uiframe.Logger()
	}
	cfg := o.cfg
	if cfg.Scheduler.DeferredDrainLimit <= 0 {
		cfg.Scheduler.DeferredDrainLimit = config.DefaultDeferredDrainLimit
	}

	store := rendercache.NewStore(cfg.Cache.MaxEntries, cfg.Cache.MaxBytes)
	renderer := render.NewRenderer(store, cfg.Policy(), render.NewBitmapPool(cfg.Cache.PoolPerSize))
	renderer.SetCaching(cfg.Cache.Enabled)

	s := &Scheduler{
		owner:      goid.Get(),
		log:        log,
		cfg:        cfg,
		background: cfg.BackgroundColor(),
		retained:   o.retained,
		tree:       tree,
		layout:     o.layout,
		anim:       o.anim,
		input:      o.input,
		caret:      o.caret,
		tracker:    dirty.NewTracker(cfg.Dirty.MaxRegions),
		list:       renderlist.New(tree),
		hit: hittest.New(
			hittest.WithFastPathMinChildren(cfg.HitTest.FastPathMinChildren),
			hittest.WithTiming(cfg.HitTest.Timing),
		),
		store:    store,
		renderer: renderer,
		state:    StateNeedsLayout,
	}
	tree.SetInvalidator(treeHooks{s})

	log.Info("scheduler: created", "owner", s.owner, "caching", cfg.Cache.Enabled)
	return s
}

// Update runs the update phase of one frame.
//
// now is the frame time passed to the animator. Only the size of viewport
// is used: the frame always starts at the origin. A size change triggers a
// layout pass and forces the next Draw to repaint everything.
func (s *Scheduler) Update(now time.Duration, viewport geom.Rect) error {
	if err := s.check(); err != nil {
		return err
	}
	start := time.Now()

	s.setViewport(viewport)
	s.dispatchInput()
	s.drainDeferred()

	if s.needsLayout() {
		s.state = StateNeedsLayout
		s.runLayout()
	}

	if s.anim != nil {
		s.anim.Advance(now)
		if s.anim.HasRunningAnimations() {
			s.reasons |= ReasonAnimationActive
		}
	}
	if s.caret != nil && s.caret.BlinkActive() {
		s.addRegion(s.caret.Bounds())
		s.reasons |= ReasonCaretBlinkActive
	}

	s.syncRenderList()

	if s.shouldDraw() {
		s.state = StateNeedsDraw
	} else {
		s.state = StateIdle
	}
	s.metrics.LastUpdateDuration = time.Since(start)
	return nil
}

// Draw runs the draw phase of one frame and copies the result to dst.
// dst may be nil, in which case the frame is only rendered into the
// offscreen target.
//
// If nothing is dirty and no redraw reason is pending the frame is skipped.
// Otherwise the dirty regions are cleared and repainted, or the whole frame
// when the tracker is in full-frame mode, has no regions, or the target was
// just created or resized.
func (s *Scheduler) Draw(dst draw.Image) error {
	if err := s.check(); err != nil {
		return err
	}
	start := time.Now()

	// Changes made between Update and Draw are still honored.
	s.syncRenderList()
	s.metrics.LastShouldDrawReasons = s.reasons

	w, h := s.frameSize()
	if !s.shouldDraw() || w == 0 || h == 0 {
		s.metrics.DrawSkippedFrameCount++
		s.metrics.LastDrawScope = ScopeNone
		if !s.shouldDraw() {
			s.state = StateIdle
		}
		return nil
	}

	switch {
	case s.target == nil:
		s.target = render.NewTarget(w, h)
		s.tracker.MarkFullFrameDirty()
	case s.resized:
		s.target.Resize(w, h)
		s.tracker.MarkFullFrameDirty()
		s.presented = false
	}
	s.resized = false

	s.renderer.ResetStats()
	regions := s.tracker.Regions()

	var painted []image.Rectangle
	if !s.tracker.IsFullFrameDirty() && len(regions) > 0 {
		s.state = StateDrawingRegion
		s.metrics.LastDrawScope = ScopeRegion
		s.metrics.LastDirtyRectCount = len(regions)
		s.metrics.LastDirtyAreaPercentage = s.tracker.DirtyAreaCoverage() * 100

		bounds := s.target.Bounds()
		painted = make([]image.Rectangle, 0, len(regions))
		for _, r := range regions {
			px := r.Pixels().Intersect(bounds)
			if px.Empty() {
				continue
			}
			s.target.ClearRect(px, s.background)
			s.renderer.RenderRegion(s.target, s.list, px)
			painted = append(painted, px)
		}
	} else {
		s.state = StateDrawingFull
		s.metrics.LastDrawScope = ScopeFull
		s.metrics.LastDirtyRectCount = 0
		s.metrics.LastDirtyAreaPercentage = 100

		s.target.Clear(s.background)
		s.renderer.RenderFull(s.target, s.list)
	}

	if dst != nil {
		if s.retained && s.presented && painted != nil {
			s.target.PresentRegions(dst, painted)
		} else {
			s.target.Present(dst)
		}
		s.presented = true
	}

	rs := s.renderer.Stats()
	s.metrics.CacheHits = rs.CacheHits
	s.metrics.CacheRebuilds = rs.CacheRebuilds
	s.metrics.CacheEntryCount = s.store.Count()
	s.metrics.CacheBytes = s.store.TotalBytes()
	s.metrics.FullRedrawFallbackCount = s.tracker.FullRedrawFallbackCount()
	s.metrics.DrawExecutedFrameCount++

	s.tracker.Clear()
	s.reasons = ReasonNone
	s.state = StateIdle
	s.metrics.LastDrawDuration = time.Since(start)
	return nil
}

// Post queues fn to run on the owner goroutine early in a later Update.
// At most the configured drain limit of operations run per frame; the rest
// roll over. Post is safe for concurrent use.
func (s *Scheduler) Post(fn func()) error {
	if fn == nil {
		return nil
	}
	return s.deferred.push(fn)
}

// MarkVisualDirty invalidates the whole frame. It is the entry point for
// changes that cannot be localized.
func (s *Scheduler) MarkVisualDirty(reason Reason) {
	if !s.own() {
		return
	}
	s.tracker.MarkFullFrameDirty()
	s.reasons |= reason | ReasonExplicitFullInvalidation
}

// MarkVisualDirtyBounds invalidates r, in frame pixels. A rectangle that
// lies entirely outside the frame is ignored.
func (s *Scheduler) MarkVisualDirtyBounds(r geom.Rect, reason Reason) {
	if !s.own() {
		return
	}
	if s.addRegion(r) {
		s.reasons |= reason
	}
}

// MarkLayoutDirty schedules a layout pass in the next Update.
func (s *Scheduler) MarkLayoutDirty() {
	if !s.own() {
		return
	}
	s.layoutDirty = true
	s.state = StateNeedsLayout
}

// ApplyConfig switches the scheduler to c. Region and cache budgets,
// caching thresholds, hit-test tuning, background color and the deferred
// drain limit take effect immediately and the next frame is repainted in
// full. Disabling caching drops every cached bitmap. The pool size is
// fixed at creation.
func (s *Scheduler) ApplyConfig(c config.Config) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	s.cfg = c
	s.background = c.BackgroundColor()
	s.tracker.SetMaxRegions(c.Dirty.MaxRegions)
	s.store.SetBudgets(c.Cache.MaxEntries, c.Cache.MaxBytes)
	s.renderer.SetPolicy(c.Policy())
	s.renderer.SetCaching(c.Cache.Enabled)
	if !c.Cache.Enabled {
		s.store.Clear()
	}
	s.hit = hittest.New(
		hittest.WithFastPathMinChildren(c.HitTest.FastPathMinChildren),
		hittest.WithTiming(c.HitTest.Timing),
	)

	s.tracker.MarkFullFrameDirty()
	s.reasons |= ReasonExplicitFullInvalidation
	s.log.Info("scheduler: configuration applied",
		"caching", c.Cache.Enabled, "max_regions", c.Dirty.MaxRegions)
	return nil
}

// HitTest returns the topmost element under p, in frame pixels.
func (s *Scheduler) HitTest(p geom.Point) *visual.Element {
	if !s.own() {
		return nil
	}
	e := s.hit.HitTest(s.tree.Root(), p)
	s.metrics.HitTest = s.hit.LastMetrics()
	return e
}

// Hovered returns the element under the pointer as of the last Update.
func (s *Scheduler) Hovered() *visual.Element { return s.hovered }

// Tree returns the scheduled tree.
func (s *Scheduler) Tree() *visual.Tree { return s.tree }

// Target returns the offscreen target, or nil before the first executed
// draw.
func (s *Scheduler) Target() *render.Target { return s.target }

// State returns the current frame cycle state.
func (s *Scheduler) State() State { return s.state }

// PendingReasons returns the reasons accumulated since the last draw.
func (s *Scheduler) PendingReasons() Reason { return s.reasons }

// Metrics returns a snapshot of the counters. Call it from the owner
// goroutine.
func (s *Scheduler) Metrics() Metrics {
	m := s.metrics
	m.State = s.state
	m.DeferredBacklog = s.deferred.len()
	m.RenderListRebuilds = s.list.RebuildCount()
	m.RenderListRefreshes = s.list.RefreshCount()
	m.CacheEntryCount = s.store.Count()
	m.CacheBytes = s.store.TotalBytes()
	return m
}

// Close releases the cache store, the bitmap pool and the offscreen
// target, disconnects the tree and drops queued deferred work. Closing
// twice is a no-op.
func (s *Scheduler) Close() error {
	if id := goid.Get(); id != s.owner {
		return fmt.Errorf("%w: owner %d, caller %d", ErrWrongGoroutine, s.owner, id)
	}
	if s.closed {
		return nil
	}
	s.closed = true
	s.tree.SetInvalidator(nil)
	dropped := s.deferred.close()
	s.store.Dispose()
	s.renderer.Pool().Drain()

	var err error
	if s.target != nil {
		err = s.target.Close()
		s.target = nil
	}
	s.log.Info("scheduler: closed", "dropped_deferred", dropped,
		"frames", s.metrics.DrawExecutedFrameCount, "skipped", s.metrics.DrawSkippedFrameCount)
	return err
}

// check validates the calling goroutine and the scheduler lifecycle.
func (s *Scheduler) check() error {
	if id := goid.Get(); id != s.owner {
		return fmt.Errorf("%w: owner %d, caller %d", ErrWrongGoroutine, s.owner, id)
	}
	if s.closed {
		return ErrClosed
	}
	return nil
}

// own is check for entry points without an error result. It panics off
// the owner goroutine and reports false once the scheduler is closed.
func (s *Scheduler) own() bool {
	if id := goid.Get(); id != s.owner {
		panic(fmt.Errorf("%w: owner %d, caller %d", ErrWrongGoroutine, s.owner, id))
	}
	return !s.closed
}

func (s *Scheduler) setViewport(viewport geom.Rect) {
	frame := geom.R(0, 0, viewport.Width, viewport.Height)
	if s.hasFrame && frame == s.frame {
		return
	}
	if s.hasFrame {
		s.reasons |= ReasonResize
		s.log.Info("scheduler: viewport resized",
			"width", frame.Width, "height", frame.Height)
	}
	s.frame = frame
	s.hasFrame = true
	s.resized = true
	s.tracker.SetViewport(frame)
}

func (s *Scheduler) frameSize() (w, h int) {
	if !s.hasFrame {
		return 0, 0
	}
	px := s.frame.Pixels()
	return px.Dx(), px.Dy()
}

func (s *Scheduler) needsLayout() bool {
	return !s.laidOut || s.layoutDirty || s.layoutFrame != s.frame
}

// runLayout measures and arranges the tree. Any pass can move anything,
// so the whole frame is repainted and the render list rebuilt.
func (s *Scheduler) runLayout() {
	root := s.tree.Root()
	switch {
	case root == nil:
	case s.layout == nil:
		if !s.warnedNoLayout {
			s.log.Warn("scheduler: no layout engine, layout slots are left to the caller")
			s.warnedNoLayout = true
		}
	default:
		s.layout.Measure(root, s.frame.Size())
		s.layout.Arrange(root, s.frame)
	}

	s.laidOut = true
	s.layoutDirty = false
	s.layoutFrame = s.frame
	s.metrics.LayoutPassCount++

	s.tracker.MarkFullFrameDirty()
	s.list.MarkStructureDirty()
	s.reasons |= ReasonLayoutInvalidated
}

func (s *Scheduler) dispatchInput() {
	if s.input == nil {
		return
	}
	in := s.input.Poll()
	if in.FocusChanged {
		s.reasons |= ReasonFocusChanged
	}
	if in.CursorChanged {
		s.reasons |= ReasonCursorChanged
	}
	if in.HoverChanged {
		s.reasons |= ReasonHoverChanged
	}
	if !in.HasPointer || s.tree.Root() == nil {
		return
	}
	hit := s.hit.HitTest(s.tree.Root(), in.Pointer)
	s.metrics.HitTest = s.hit.LastMetrics()
	s.setHovered(hit)
}

// setHovered moves hover to e and repaints the old and new hovered bounds.
func (s *Scheduler) setHovered(e *visual.Element) {
	if e == s.hovered {
		return
	}
	if s.hovered != nil && s.hovered.Tree() == s.tree {
		s.addRegion(s.hovered.DeviceBounds())
	}
	if e != nil {
		s.addRegion(e.DeviceBounds())
	}
	s.hovered = e
	s.reasons |= ReasonHoverChanged
}

func (s *Scheduler) drainDeferred() {
	batch, remaining := s.deferred.take(s.cfg.Scheduler.DeferredDrainLimit)
	for _, fn := range batch {
		fn()
	}
	if remaining > 0 {
		s.log.Debug("scheduler: deferred work rolled over",
			"ran", len(batch), "remaining", remaining)
	}
}

// syncRenderList folds the render list's dirty rectangles into the
// tracker.
func (s *Scheduler) syncRenderList() {
	var added bool
	for _, r := range s.list.Sync() {
		if s.addRegion(r) {
			added = true
		}
	}
	if added {
		s.reasons |= ReasonRenderInvalidated
	}
}

// addRegion records r if it intersects the frame. Before the first
// viewport is known nothing is recorded: the first draw is full anyway.
func (s *Scheduler) addRegion(r geom.Rect) bool {
	if !s.hasFrame || r.Intersect(s.frame).IsEmpty() {
		return false
	}
	s.tracker.AddDirtyRegion(r)
	return true
}

func (s *Scheduler) shouldDraw() bool {
	return s.tracker.HasDirty() || s.reasons != ReasonNone
}
