// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package uiframe is the per-frame scheduling, invalidation and render
// caching engine of a retained-mode UI tree driven by a game-style frame
// loop (a fixed Update call followed by a Draw call).
//
// Every frame the engine decides whether layout must run, whether anything
// must be redrawn and over what area, which subtrees can be served from a
// cached offscreen bitmap, and which element sits under the pointer.
//
// # Packages
//
//   - geom: axis-aligned float rectangles and set operations
//   - visual: the retained visual tree and its invalidation hooks
//   - dirty: dirty region tracking with a full-frame fallback
//   - rendercache: caching policy and the LRU bitmap store
//   - renderlist: flattened, order-stable traversal with a dirty queue
//   - hittest: topmost-element resolution with a virtualization fast path
//   - render: offscreen target, pooled bitmaps and the draw pass
//   - scheduler: the frame scheduler tying everything together
//   - config: tunables loaded from TOML or YAML, with file watching
//
// # Quick Start
//
//	tree := visual.NewTree(visual.New(visual.KindContainer))
//	s := scheduler.New(tree,
//	    scheduler.WithLayout(layout.NewStack(layout.Vertical)),
//	)
//	defer s.Close()
//
//	for running {
//	    if err := s.Update(now, geom.R(0, 0, 800, 600)); err != nil {
//	        return err
//	    }
//	    if err := s.Draw(frame); err != nil {
//	        return err
//	    }
//	}
//
// # Threading
//
// The engine is single-threaded and cooperative. A Scheduler is bound to
// the goroutine that created it; mutating calls from any other goroutine
// are rejected. Work produced elsewhere is handed over with
// [scheduler.Scheduler.Post] and runs early in the next Update.
package uiframe
