// File: tsqueue/tsqueue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Thread-safe double-ended queue guarded by a single mutex.

package tsqueue

import (
	"context"
	"sync"

	"github.com/gammazero/deque"
)

// Queue is a concurrent deque. The zero value is not usable; call New.
//
// Every method takes the same lock. A check-then-act pair such as
// Empty followed by PopFront is not atomic across the two calls; the
// Pop methods therefore report whether they removed anything.
type Queue[E any] struct {
	mu     sync.Mutex
	items  *deque.Deque[E]
	notify chan struct{}
}

// New creates an empty queue.
func New[E any]() *Queue[E] {
	return &Queue[E]{
		items:  deque.New[E](),
		notify: make(chan struct{}, 1),
	}
}

// PushFront inserts e at the front.
func (q *Queue[E]) PushFront(e E) {
	q.mu.Lock()
	q.items.PushFront(e)
	q.mu.Unlock()
	q.signal()
}

// PushBack inserts e at the back.
func (q *Queue[E]) PushBack(e E) {
	q.mu.Lock()
	q.items.PushBack(e)
	q.mu.Unlock()
	q.signal()
}

// PopFront removes and returns the front element; ok is false on an empty queue.
func (q *Queue[E]) PopFront() (e E, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.Len() == 0 {
		return e, false
	}
	return q.items.PopFront(), true
}

// PopBack removes and returns the back element; ok is false on an empty queue.
func (q *Queue[E]) PopBack() (e E, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.Len() == 0 {
		return e, false
	}
	return q.items.PopBack(), true
}

// Front peeks at the front element.
func (q *Queue[E]) Front() (e E, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.Len() == 0 {
		return e, false
	}
	return q.items.Front(), true
}

// Back peeks at the back element.
func (q *Queue[E]) Back() (e E, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.Len() == 0 {
		return e, false
	}
	return q.items.Back(), true
}

// Empty reports whether the queue holds no elements.
func (q *Queue[E]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len() == 0
}

// Count returns the number of elements.
func (q *Queue[E]) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// Clear drops every element.
func (q *Queue[E]) Clear() {
	q.mu.Lock()
	q.items.Clear()
	q.mu.Unlock()
}

// Wait blocks until the queue is non-empty or ctx is done.
// Intended for a single drainer; a push wakes at most one waiter.
func (q *Queue[E]) Wait(ctx context.Context) error {
	for {
		if !q.Empty() {
			return nil
		}
		select {
		case <-q.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *Queue[E]) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
