// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scheduler

import (
	"time"

	"github.com/gogpu/uiframe/hittest"
)

// Metrics is a snapshot of the scheduler counters. Everything in it is
// diagnostic; nothing feeds back into scheduling decisions.
type Metrics struct {
	// DrawExecutedFrameCount counts Draw calls that painted.
	DrawExecutedFrameCount int
	// DrawSkippedFrameCount counts Draw calls that had nothing to do.
	DrawSkippedFrameCount int

	// LastDirtyRectCount is the number of regions repainted by the last
	// executed draw. It is 0 for a full-frame draw.
	LastDirtyRectCount int
	// LastDirtyAreaPercentage is the repainted share of the frame, 0-100.
	LastDirtyAreaPercentage float64
	// LastShouldDrawReasons are the reasons seen by the last Draw.
	LastShouldDrawReasons Reason
	// LastDrawScope is the extent of the last Draw.
	LastDrawScope Scope

	CacheEntryCount int
	CacheBytes      int64
	// CacheHits and CacheRebuilds cover the last executed draw.
	CacheHits     int
	CacheRebuilds int

	LayoutPassCount int
	// RenderListRebuilds counts full flattenings of the render list and
	// RenderListRefreshes the in-place geometry refreshes.
	RenderListRebuilds  int
	RenderListRefreshes int
	// FullRedrawFallbackCount counts dirty region budget overflows.
	FullRedrawFallbackCount int
	// DeferredBacklog is the number of posted operations still queued.
	DeferredBacklog int

	LastUpdateDuration time.Duration
	LastDrawDuration   time.Duration

	// HitTest describes the last pointer hit test.
	HitTest hittest.Metrics

	State State
}
