// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command uiframeview shows the demo scene in a window. Move the pointer
// over the list to hover rows and use the scroll wheel to scroll it.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/uiframe"
	"github.com/gogpu/uiframe/config"
	"github.com/gogpu/uiframe/internal/demo"
	"github.com/gogpu/uiframe/internal/platform"
	"github.com/gogpu/uiframe/scheduler"
)

func main() {
	var (
		width   = flag.Int("width", 800, "window width")
		height  = flag.Int("height", 600, "window height")
		rows    = flag.Int("rows", 1000, "number of list rows")
		cfgPath = flag.String("config", "", "TOML or YAML config file, reloaded on change")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	uiframe.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatal(err)
		}
	}

	win, err := platform.Open(platform.Config{
		Title:  "uiframe",
		Width:  *width,
		Height: *height,
		VSync:  true,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer win.Close()

	sc := demo.Build(*rows)
	s := scheduler.New(sc.Tree,
		scheduler.WithConfig(cfg),
		scheduler.WithLayout(sc.Layout),
		scheduler.WithAnimator(sc.Spinner),
		scheduler.WithInput(win),
		scheduler.WithRetainedSurface(true),
	)
	defer func() { _ = s.Close() }()

	if *cfgPath != "" {
		w, err := config.Watch(*cfgPath, func(c config.Config, err error) {
			if err != nil {
				return
			}
			_ = s.Post(func() {
				if err := s.ApplyConfig(c); err != nil {
					slog.Warn("config rejected", "err", err)
				}
			})
		})
		if err != nil {
			log.Fatal(err)
		}
		defer w.Close()
	}

	start := time.Now()
	lastTitle := start
	for !win.ShouldClose() {
		win.PollEvents()
		if dy := win.TakeScroll(); dy != 0 {
			sc.ScrollBy(-dy * 3 * demo.RowHeight)
		}

		viewport := win.Viewport()
		sc.Fit(viewport)
		if err := s.Update(time.Since(start), viewport); err != nil {
			log.Fatal(err)
		}
		sc.SetHovered(s.Hovered())
		if err := s.Draw(win.Surface()); err != nil {
			log.Fatal(err)
		}
		if s.Metrics().LastDrawScope != scheduler.ScopeNone {
			win.Present()
		} else {
			win.WaitEvents(time.Second / 60)
		}

		if time.Since(lastTitle) > 500*time.Millisecond {
			m := s.Metrics()
			win.SetTitle(fmt.Sprintf("uiframe - drawn %d, skipped %d, cache %d entries",
				m.DrawExecutedFrameCount, m.DrawSkippedFrameCount, m.CacheEntryCount))
			lastTitle = time.Now()
		}
	}
}
