// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scheduler

import (
	"slices"
	"sync"
)

// deferredQueue holds work posted from any goroutine until the owner
// drains it.
type deferredQueue struct {
	mu     sync.Mutex
	ops    []func()
	closed bool
}

func (q *deferredQueue) push(fn func()) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.ops = append(q.ops, fn)
	return nil
}

// take removes at most limit operations from the front of the queue and
// reports how many remain.
func (q *deferredQueue) take(limit int) (batch []func(), remaining int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := min(limit, len(q.ops))
	if n == 0 {
		return nil, len(q.ops)
	}
	batch = slices.Clone(q.ops[:n])
	q.ops = slices.Delete(q.ops, 0, n)
	return batch, len(q.ops)
}

func (q *deferredQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}

// close rejects further posts and returns the number of dropped
// operations.
func (q *deferredQueue) close() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	n := len(q.ops)
	q.ops = nil
	return n
}
