// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command uiframedemo runs the demo scene headless for a number of frames,
// simulating pointer movement and scrolling, then prints the scheduler
// metrics and saves the last frame as PNG.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/uiframe"
	"github.com/gogpu/uiframe/config"
	"github.com/gogpu/uiframe/geom"
	"github.com/gogpu/uiframe/internal/demo"
	"github.com/gogpu/uiframe/scheduler"
)

func main() {
	var (
		width      = flag.Int("width", 800, "frame width")
		height     = flag.Int("height", 600, "frame height")
		rows       = flag.Int("rows", 1000, "number of list rows")
		frames     = flag.Int("frames", 240, "number of frames to run")
		output     = flag.String("output", "uiframe.png", "PNG file for the last frame")
		cfgPath    = flag.String("config", "", "TOML or YAML config file")
		dumpConfig = flag.Bool("dump-config", false, "print the effective config as TOML and exit")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelWarn
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
	if *dumpConfig {
		if err := cfg.Encode(os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	sc := demo.Build(*rows)
	viewport := geom.R(0, 0, float64(*width), float64(*height))

	var pointer geom.Point
	input := scheduler.InputFunc(func() scheduler.InputState {
		return scheduler.InputState{Pointer: pointer, HasPointer: true}
	})
	s := scheduler.New(sc.Tree,
		scheduler.WithConfig(cfg),
		scheduler.WithLayout(sc.Layout),
		scheduler.WithAnimator(sc.Spinner),
		scheduler.WithInput(input),
	)
	defer func() { _ = s.Close() }()

	const frameTime = time.Second / 60
	listTop := float64(demo.HeaderHeight)
	listHeight := viewport.Height - demo.HeaderHeight - demo.StatusHeight

	var cacheHits, cacheRebuilds, regionFrames, fullFrames int
	start := time.Now()
	for i := 0; i < *frames; i++ {
		// Sweep the pointer down the list, scroll every 40 frames and stop
		// the spinner for the last quarter so idle frames show up.
		pointer = geom.Pt(40, listTop+float64(i%60)/60*listHeight)
		if i > 0 && i%40 == 0 {
			sc.ScrollBy(5 * demo.RowHeight)
		}
		if i >= *frames*3/4 {
			sc.Spinner.Running = false
			pointer = geom.Pt(40, listTop+listHeight/2)
		}

		sc.Fit(viewport)
		if err := s.Update(time.Duration(i)*frameTime, viewport); err != nil {
			log.Fatal(err)
		}
		sc.SetHovered(s.Hovered())
		if err := s.Draw(nil); err != nil {
			log.Fatal(err)
		}

		m := s.Metrics()
		cacheHits += m.CacheHits
		cacheRebuilds += m.CacheRebuilds
		switch m.LastDrawScope {
		case scheduler.ScopeRegion:
			regionFrames++
		case scheduler.ScopeFull:
			fullFrames++
		}
	}
	elapsed := time.Since(start)

	m := s.Metrics()
	p := message.NewPrinter(language.English)
	p.Printf("frames:        %d run in %v\n", *frames, elapsed.Round(time.Millisecond))
	p.Printf("draws:         %d executed (%d full, %d region), %d skipped\n",
		m.DrawExecutedFrameCount, fullFrames, regionFrames, m.DrawSkippedFrameCount)
	p.Printf("layout passes: %d\n", m.LayoutPassCount)
	p.Printf("cache:         %d entries, %d bytes, %d hits, %d rebuilds\n",
		m.CacheEntryCount, m.CacheBytes, cacheHits, cacheRebuilds)
	p.Printf("dirty:         %d region budget overflows\n", m.FullRedrawFallbackCount)
	p.Printf("hit test:      %d nodes visited, %d fast path hits (last probe)\n",
		m.HitTest.NodesVisited, m.HitTest.FastPathHits)

	if t := s.Target(); t != nil && *output != "" {
		if err := t.Pixmap().SavePNG(*output); err != nil {
			log.Fatalf("Failed to save: %v", err)
		}
		log.Printf("Last frame saved to %s (%dx%d)\n", *output, t.Width(), t.Height())
	}
}
