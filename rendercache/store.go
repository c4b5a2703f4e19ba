// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package rendercache

import (
	"container/list"
	"reflect"
	"sync/atomic"

	"github.com/gogpu/uiframe"
	"github.com/gogpu/uiframe/geom"
	"github.com/gogpu/uiframe/visual"
)

// Default store budgets.
const (
	// DefaultMaxEntries is the default maximum number of cached subtrees.
	DefaultMaxEntries = 256
	// DefaultMaxBytes is the default bitmap memory budget (64 MB).
	DefaultMaxBytes = 64 * bytesPerMB

	bytesPerMB = 1024 * 1024
	// bytesPerPixel is the number of bytes per RGBA pixel.
	bytesPerPixel = 4
)

// Bitmap is an offscreen image owned by the store once upserted.
// Release is called exactly once, when the store drops the entry.
// Implementations are normally pointer types; the store recognizes a
// re-upserted bitmap only when its dynamic type is comparable.
type Bitmap interface {
	Width() int
	Height() int
	Release()
}

// Snapshot is the state a cached bitmap was produced from.
type Snapshot struct {
	Bounds        geom.Rect
	RenderVersion uint64
	LayoutVersion uint64
	Signature     uint64
}

// Entry is a cached subtree bitmap together with its snapshot.
type Entry struct {
	ID       visual.ID
	Bitmap   Bitmap
	Snapshot Snapshot
	ByteSize int64

	element *list.Element
}

// Stats contains store statistics for monitoring.
type Stats struct {
	// Entries is the number of cached entries.
	Entries int
	// Bytes is the current bitmap memory in bytes.
	Bytes int64
	// MaxEntries and MaxBytes are the budgets.
	MaxEntries int
	MaxBytes   int64
	// Hits and Misses count TryGet outcomes.
	Hits   uint64
	Misses uint64
	// Evictions counts entries dropped by budget pressure.
	Evictions uint64
}

// HitRate returns hits / (hits + misses), or 0 with no lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Store is a count- and byte-bounded LRU of subtree bitmaps keyed by
// element identity.
//
// Store owns every bitmap it holds and releases it when the entry is
// replaced, removed, evicted, cleared or when the store is disposed.
// It does not own the elements.
//
// Store is not safe for concurrent use; it belongs to the frame scheduler.
// The hit, miss and eviction counters are atomic.
type Store struct {
	entries map[visual.ID]*Entry
	lru     *list.List // front = most recently used
	bytes   int64

	maxEntries int
	maxBytes   int64

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewStore creates a store with the given budgets. Non-positive budgets
// select the defaults.
func NewStore(maxEntries int, maxBytes int64) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Store{
		entries:    make(map[visual.ID]*Entry),
		lru:        list.New(),
		maxEntries: maxEntries,
		maxBytes:   maxBytes,
	}
}

// TryGet returns the entry for id and marks it most recently used.
func (s *Store) TryGet(id visual.ID) (*Entry, bool) {
	e, ok := s.entries[id]
	if !ok {
		s.misses.Add(1)
		return nil, false
	}
	s.lru.MoveToFront(e.element)
	s.hits.Add(1)
	return e, true
}

// Peek returns the entry for id without touching recency or statistics.
func (s *Store) Peek(id visual.ID) (*Entry, bool) {
	e, ok := s.entries[id]
	return e, ok
}

// Upsert stores bm for id, replacing any existing entry. The previous
// bitmap is released unless it is the same bitmap. The entry becomes the
// most recently used, then least recently used entries are evicted until
// both budgets hold. An entry that alone exceeds the byte budget is kept
// until the next insertion pushes it out.
func (s *Store) Upsert(id visual.ID, bm Bitmap, snap Snapshot) *Entry {
	if old, ok := s.entries[id]; ok {
		s.lru.Remove(old.element)
		s.bytes -= old.ByteSize
		delete(s.entries, id)
		if old.Bitmap != nil && !sameBitmap(old.Bitmap, bm) {
			old.Bitmap.Release()
		}
	}

	e := &Entry{
		ID:       id,
		Bitmap:   bm,
		Snapshot: snap,
		ByteSize: bitmapSize(bm),
	}
	e.element = s.lru.PushFront(e)
	s.entries[id] = e
	s.bytes += e.ByteSize

	if e.ByteSize > s.maxBytes {
		uiframe.Logger().Warn("rendercache: entry exceeds byte budget",
			"id", id, "bytes", e.ByteSize, "budget", s.maxBytes)
	}
	s.trim()
	return e
}

// trim evicts from the back of the recency list until both budgets hold.
// The most recent entry is never evicted by its own insertion.
func (s *Store) trim() {
	for (s.lru.Len() > s.maxEntries || s.bytes > s.maxBytes) && s.lru.Len() > 1 {
		elem := s.lru.Back()
		e := elem.Value.(*Entry)
		s.drop(e)
		s.evictions.Add(1)
		uiframe.Logger().Debug("rendercache: evicted", "id", e.ID, "bytes", e.ByteSize)
	}
}

// sameBitmap reports whether a and b are the same bitmap. Values of
// non-comparable dynamic types are never the same.
func sameBitmap(a, b Bitmap) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

func (s *Store) drop(e *Entry) {
	s.lru.Remove(e.element)
	s.bytes -= e.ByteSize
	delete(s.entries, e.ID)
	if e.Bitmap != nil {
		e.Bitmap.Release()
	}
}

// Remove drops the entry for id. It reports whether one existed.
func (s *Store) Remove(id visual.ID) bool {
	e, ok := s.entries[id]
	if !ok {
		return false
	}
	s.drop(e)
	return true
}

// Clear releases every entry. The store remains usable.
func (s *Store) Clear() {
	for elem := s.lru.Front(); elem != nil; elem = elem.Next() {
		if bm := elem.Value.(*Entry).Bitmap; bm != nil {
			bm.Release()
		}
	}
	clear(s.entries)
	s.lru.Init()
	s.bytes = 0
}

// Dispose releases every entry. It is equivalent to Clear and exists to
// mark the end of the store's lifetime.
func (s *Store) Dispose() {
	s.Clear()
}

// SetBudgets changes the budgets and evicts as needed.
func (s *Store) SetBudgets(maxEntries int, maxBytes int64) {
	if maxEntries > 0 {
		s.maxEntries = maxEntries
	}
	if maxBytes > 0 {
		s.maxBytes = maxBytes
	}
	s.trim()
}

// TotalBytes returns the summed byte size of all entries.
func (s *Store) TotalBytes() int64 { return s.bytes }

// Count returns the number of entries.
func (s *Store) Count() int { return len(s.entries) }

// Stats returns current store statistics.
func (s *Store) Stats() Stats {
	return Stats{
		Entries:    len(s.entries),
		Bytes:      s.bytes,
		MaxEntries: s.maxEntries,
		MaxBytes:   s.maxBytes,
		Hits:       s.hits.Load(),
		Misses:     s.misses.Load(),
		Evictions:  s.evictions.Load(),
	}
}

// ResetStats resets the hit, miss and eviction counters to zero.
func (s *Store) ResetStats() {
	s.hits.Store(0)
	s.misses.Store(0)
	s.evictions.Store(0)
}

// bitmapSize is width * height * 4.
func bitmapSize(bm Bitmap) int64 {
	if bm == nil {
		return 0
	}
	return int64(bm.Width()) * int64(bm.Height()) * bytesPerPixel
}
