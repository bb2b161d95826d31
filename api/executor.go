// Package api
// Author: momentics
//
// Executor contract for the single-threaded execution context that runs
// every I/O completion of a client or server.

package api

// Executor serializes posted tasks onto one goroutine.
type Executor interface {
	// Post schedules task for execution after every task posted before it.
	// It returns false if the executor no longer accepts work; the task is dropped.
	Post(task func()) bool
}
