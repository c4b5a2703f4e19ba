// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scheduler

import "strings"

// Reason is a set of redraw reasons. Reasons accumulate during Update and
// are consumed by the next Draw.
type Reason uint16

const (
	// ReasonLayoutInvalidated: a layout pass ran and moved elements.
	ReasonLayoutInvalidated Reason = 1 << iota
	// ReasonRenderInvalidated: an element changed its appearance.
	ReasonRenderInvalidated
	// ReasonAnimationActive: at least one animation is running.
	ReasonAnimationActive
	// ReasonCaretBlinkActive: a text caret is blinking.
	ReasonCaretBlinkActive
	// ReasonResize: the viewport size changed.
	ReasonResize
	// ReasonHoverChanged: the element under the pointer changed.
	ReasonHoverChanged
	// ReasonFocusChanged: keyboard focus moved.
	ReasonFocusChanged
	// ReasonCursorChanged: the pointer cursor shape changed.
	ReasonCursorChanged
	// ReasonExplicitFullInvalidation: the whole frame was invalidated.
	ReasonExplicitFullInvalidation

	// ReasonNone is the empty set.
	ReasonNone Reason = 0
)

var reasonNames = [...]string{
	"LayoutInvalidated",
	"RenderInvalidated",
	"AnimationActive",
	"CaretBlinkActive",
	"Resize",
	"HoverChanged",
	"FocusChanged",
	"CursorChanged",
	"ExplicitFullInvalidation",
}

// Has reports whether every reason in o is set in r.
func (r Reason) Has(o Reason) bool { return r&o == o }

// String lists the set reasons separated by '|', or "None".
func (r Reason) String() string {
	if r == ReasonNone {
		return "None"
	}
	var b strings.Builder
	for i, name := range reasonNames {
		if r&(1<<i) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString(name)
	}
	if rest := r &^ (1<<len(reasonNames) - 1); rest != 0 {
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString("Unknown")
	}
	return b.String()
}

// State is the scheduler's position in the frame cycle.
type State uint8

const (
	// StateIdle: nothing to do until something is invalidated.
	StateIdle State = iota
	// StateNeedsLayout: the next Update runs a layout pass.
	StateNeedsLayout
	// StateNeedsDraw: the next Draw paints.
	StateNeedsDraw
	// StateDrawingRegion: Draw is painting dirty regions only.
	StateDrawingRegion
	// StateDrawingFull: Draw is painting the whole frame.
	StateDrawingFull
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateNeedsLayout:
		return "NeedsLayout"
	case StateNeedsDraw:
		return "NeedsDraw"
	case StateDrawingRegion:
		return "DrawingRegion"
	case StateDrawingFull:
		return "DrawingFull"
	default:
		return "Unknown"
	}
}

// Scope is the extent of a draw pass.
type Scope uint8

const (
	// ScopeNone: the frame was skipped.
	ScopeNone Scope = iota
	// ScopeRegion: only dirty regions were repainted.
	ScopeRegion
	// ScopeFull: the whole frame was repainted.
	ScopeFull
)

// String returns the scope name.
func (s Scope) String() string {
	switch s {
	case ScopeNone:
		return "None"
	case ScopeRegion:
		return "Region"
	case ScopeFull:
		return "Full"
	default:
		return "Unknown"
	}
}
