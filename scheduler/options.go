// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scheduler

import (
	"log/slog"
	"time"

	"github.com/gogpu/uiframe/config"
	"github.com/gogpu/uiframe/geom"
	"github.com/gogpu/uiframe/visual"
)

// LayoutEngine measures and arranges a tree. Arrange must leave a layout
// slot on every element it positions.
type LayoutEngine interface {
	Measure(root *visual.Element, available geom.Size) geom.Size
	Arrange(root *visual.Element, final geom.Rect)
}

// layoutForgetter is implemented by layout engines that keep per-element
// side state.
type layoutForgetter interface {
	Forget(e *visual.Element)
}

// Animator advances time-based state once per Update.
type Animator interface {
	Advance(now time.Duration)
	HasRunningAnimations() bool
}

// InputState is what the input layer observed since the previous Update.
type InputState struct {
	// Pointer is the pointer position in frame pixels. It is ignored
	// unless HasPointer is set.
	Pointer    geom.Point
	HasPointer bool

	// HoverChanged is reported by input layers that track hover
	// themselves; the scheduler also detects hover changes on its own.
	HoverChanged  bool
	FocusChanged  bool
	CursorChanged bool
}

// InputSource is polled at the start of every Update.
type InputSource interface {
	Poll() InputState
}

// InputFunc adapts a function to InputSource.
type InputFunc func() InputState

// Poll calls f.
func (f InputFunc) Poll() InputState { return f() }

// Caret reports a blinking text caret.
type Caret interface {
	// BlinkActive reports whether the caret is blinking this frame.
	BlinkActive() bool
	// Bounds returns the caret rectangle in frame pixels.
	Bounds() geom.Rect
}

// Option configures a Scheduler during creation.
type Option func(*options)

type options struct {
	cfg    config.Config
	layout LayoutEngine
	anim   Animator
	input  InputSource
	caret  Caret
	logger *slog.Logger

	retained bool
}

func defaultOptions() options {
	return options{cfg: config.Default()}
}

// WithConfig replaces the default configuration. The configuration is not
// validated again; use config.Load or Config.Validate first.
func WithConfig(c config.Config) Option {
	return func(o *options) {
		o.cfg = c
	}
}

// WithLayout sets the layout engine. Without one, layout slots must be
// assigned by the caller.
func WithLayout(l LayoutEngine) Option {
	return func(o *options) {
		o.layout = l
	}
}

// WithAnimator sets the animation engine.
func WithAnimator(a Animator) Option {
	return func(o *options) {
		o.anim = a
	}
}

// WithInput sets the input source.
func WithInput(in InputSource) Option {
	return func(o *options) {
		o.input = in
	}
}

// WithCaret sets the caret reporter.
func WithCaret(c Caret) Option {
	return func(o *options) {
		o.caret = c
	}
}

// WithLogger sets a per-scheduler logger. By default the logger installed
// with uiframe.SetLogger is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRetainedSurface declares that the surface passed to Draw keeps its
// pixels between frames, so region draws only copy the dirty rectangles
// onto it. By default the whole frame is copied on every executed draw.
func WithRetainedSurface(retained bool) Option {
	return func(o *options) {
		o.retained = retained
	}
}
