// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package visual

// SideTable associates per-element data with element IDs without storing
// it on the element. Entries must be removed with Forget when the element
// is detached; the frame scheduler does this for its own tables.
type SideTable[T any] struct {
	m map[ID]T
}

// NewSideTable creates an empty side table.
func NewSideTable[T any]() *SideTable[T] {
	return &SideTable[T]{m: make(map[ID]T)}
}

// Get returns the value for id and whether it was present.
func (s *SideTable[T]) Get(id ID) (T, bool) {
	v, ok := s.m[id]
	return v, ok
}

// Set stores v for id.
func (s *SideTable[T]) Set(id ID, v T) {
	s.m[id] = v
}

// Forget drops the entry for id.
func (s *SideTable[T]) Forget(id ID) {
	delete(s.m, id)
}

// ForgetSubtree drops the entries of e and all its descendants.
func (s *SideTable[T]) ForgetSubtree(e *Element) {
	WalkSubtree(e, func(n *Element, _ int) bool {
		delete(s.m, n.id)
		return true
	})
}

// Len returns the number of entries.
func (s *SideTable[T]) Len() int { return len(s.m) }

// Clear drops every entry.
func (s *SideTable[T]) Clear() { clear(s.m) }
