// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package visual

// Kind tags the category of a visual. Caching rules and the hit tester's
// container handling dispatch on the kind instead of on concrete types.
type Kind uint8

const (
	// KindGeneric is a visual with no special handling.
	KindGeneric Kind = iota

	// KindContainer is an ordinary panel whose children are laid out
	// inside its slot.
	KindContainer

	// KindScrollViewer is a viewport whose children are positioned in
	// content space and shifted by its scroll offset.
	KindScrollViewer

	// KindText displays read-only text.
	KindText

	// KindEditableText manages a caret and selection; only it knows
	// whether its output is stable.
	KindEditableText

	// KindShape is a vector shape.
	KindShape

	// NumKinds is the number of kinds, for per-kind tables.
	NumKinds = int(KindShape) + 1
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "Generic"
	case KindContainer:
		return "Container"
	case KindScrollViewer:
		return "ScrollViewer"
	case KindText:
		return "Text"
	case KindEditableText:
		return "EditableText"
	case KindShape:
		return "Shape"
	default:
		return "Unknown"
	}
}

// IsContainer reports whether visuals of this kind host children in the
// ordinary way. Scroll viewers host children too but shift them.
func (k Kind) IsContainer() bool {
	return k == KindContainer || k == KindGeneric
}
