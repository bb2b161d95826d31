// File: internal/concurrency/eventloop.go
// Package concurrency implements the single-threaded execution context that
// runs every I/O completion for one client or server.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-net/api"
)

var _ api.Executor = (*EventLoop)(nil)

// EventLoop runs posted tasks strictly one after another on the goroutine
// that called Run. Any number of goroutines may Post.
type EventLoop struct {
	mu       sync.Mutex
	tasks    *queue.Queue // of func()
	wake     chan struct{}
	stopping bool
	running  atomic.Bool
	done     chan struct{}
	executed atomic.Int64
}

// NewEventLoop creates an idle loop.
func NewEventLoop() *EventLoop {
	return &EventLoop{
		tasks: queue.New(),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Post enqueues task. It returns false once Stop has been requested.
func (el *EventLoop) Post(task func()) bool {
	el.mu.Lock()
	if el.stopping {
		el.mu.Unlock()
		return false
	}
	el.tasks.Add(task)
	el.mu.Unlock()

	select {
	case el.wake <- struct{}{}:
	default:
	}
	return true
}

// Run executes tasks on the calling goroutine until Stop. Tasks queued before
// Stop still run; tasks posted afterwards are refused. Only the first call to
// Run or Start has an effect.
func (el *EventLoop) Run() {
	if !el.running.CompareAndSwap(false, true) {
		return
	}
	el.loop()
}

// Start runs the loop on a new goroutine.
func (el *EventLoop) Start() {
	if !el.running.CompareAndSwap(false, true) {
		return
	}
	go el.loop()
}

func (el *EventLoop) loop() {
	defer close(el.done)
	for {
		el.mu.Lock()
		if el.tasks.Length() > 0 {
			task := el.tasks.Remove().(func())
			el.mu.Unlock()
			task()
			el.executed.Add(1)
			continue
		}
		if el.stopping {
			el.mu.Unlock()
			return
		}
		el.mu.Unlock()
		<-el.wake
	}
}

// Stop refuses further posts and lets Run drain what is already queued.
// It does not wait; use Wait for that.
func (el *EventLoop) Stop() {
	el.mu.Lock()
	el.stopping = true
	el.mu.Unlock()
	select {
	case el.wake <- struct{}{}:
	default:
	}
}

// Wait blocks until the loop has returned. It returns immediately if the loop never started.
func (el *EventLoop) Wait() {
	if !el.running.Load() {
		return
	}
	<-el.done
}

// Stopped reports whether Stop has been requested.
func (el *EventLoop) Stopped() bool {
	el.mu.Lock()
	defer el.mu.Unlock()
	return el.stopping
}

// Pending returns the number of queued tasks.
func (el *EventLoop) Pending() int {
	el.mu.Lock()
	defer el.mu.Unlock()
	return el.tasks.Length()
}

// Executed returns the number of tasks run so far.
func (el *EventLoop) Executed() int64 {
	return el.executed.Load()
}
