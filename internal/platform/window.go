// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package platform opens a GLFW window and shows software-rendered frames
// on it through an OpenGL texture.
package platform

import (
	"fmt"
	"image"
	"runtime"
	"time"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/uiframe"
	"github.com/gogpu/uiframe/geom"
	"github.com/gogpu/uiframe/scheduler"
)

// Config describes the window to open.
type Config struct {
	Title  string
	Width  int
	Height int
	VSync  bool
}

// Window is a GLFW window with a frame surface the scheduler draws into.
// It also serves as the scheduler's input source.
//
// Window must be created and used on the main goroutine.
type Window struct {
	w       *glfw.Window
	blitter *blitter
	surface *image.RGBA

	pointer    geom.Point
	hasPointer bool
	focus      bool
	scrollY    float64
	closing    bool
}

// Open initializes GLFW and OpenGL and creates the window.
func Open(cfg Config) (*Window, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("platform: glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("platform: create window: %w", err)
	}
	win.MakeContextCurrent()
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("platform: gl init: %w", err)
	}
	uiframe.Logger().Info("platform: window opened",
		"gl", gl.GoStr(gl.GetString(gl.VERSION)), "width", cfg.Width, "height", cfg.Height)

	b, err := newBlitter()
	if err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, err
	}

	w := &Window{w: win, blitter: b, focus: true}
	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.pointer = w.toFramebuffer(x, y)
		w.hasPointer = true
	})
	win.SetCursorEnterCallback(func(_ *glfw.Window, entered bool) {
		w.hasPointer = entered
	})
	win.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		w.focus = focused
	})
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		w.scrollY += yoff
	})
	win.SetCloseCallback(func(*glfw.Window) {
		w.closing = true
	})
	return w, nil
}

// toFramebuffer converts window coordinates to framebuffer pixels, which
// differ on high-DPI displays.
func (w *Window) toFramebuffer(x, y float64) geom.Point {
	ww, wh := w.w.GetSize()
	fw, fh := w.w.GetFramebufferSize()
	if ww == 0 || wh == 0 {
		return geom.Pt(x, y)
	}
	return geom.Pt(x*float64(fw)/float64(ww), y*float64(fh)/float64(wh))
}

// PollEvents processes pending window events.
func (w *Window) PollEvents() { glfw.PollEvents() }

// WaitEvents blocks until an event arrives or timeout passes.
func (w *Window) WaitEvents(timeout time.Duration) {
	glfw.WaitEventsTimeout(timeout.Seconds())
}

// ShouldClose reports whether the user asked to close the window.
func (w *Window) ShouldClose() bool { return w.closing || w.w.ShouldClose() }

// Viewport returns the framebuffer rectangle.
func (w *Window) Viewport() geom.Rect {
	fw, fh := w.w.GetFramebufferSize()
	return geom.R(0, 0, float64(fw), float64(fh))
}

// TakeScroll returns the vertical scroll accumulated since the last call.
func (w *Window) TakeScroll() float64 {
	dy := w.scrollY
	w.scrollY = 0
	return dy
}

// Poll implements scheduler.InputSource.
func (w *Window) Poll() scheduler.InputState {
	return scheduler.InputState{Pointer: w.pointer, HasPointer: w.hasPointer && w.focus}
}

// Surface returns the frame surface sized to the framebuffer. Its pixels
// are kept between frames, so it can be used as a retained surface.
func (w *Window) Surface() *image.RGBA {
	fw, fh := w.w.GetFramebufferSize()
	if w.surface == nil || w.surface.Rect.Dx() != fw || w.surface.Rect.Dy() != fh {
		w.surface = image.NewRGBA(image.Rect(0, 0, fw, fh))
	}
	return w.surface
}

// Present uploads the surface and swaps buffers.
func (w *Window) Present() {
	if w.surface == nil {
		return
	}
	fw, fh := w.w.GetFramebufferSize()
	gl.Viewport(0, 0, int32(fw), int32(fh))
	w.blitter.draw(w.surface)
	w.w.SwapBuffers()
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) { w.w.SetTitle(title) }

// Close releases GL objects and terminates GLFW.
func (w *Window) Close() {
	w.blitter.release()
	w.w.Destroy()
	glfw.Terminate()
}
