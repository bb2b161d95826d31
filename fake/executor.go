// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fake

import "sync"

// Executor queues posted tasks until Drain is called on the test goroutine.
type Executor struct {
	mu      sync.Mutex
	tasks   []func()
	refuse  bool
	refused int
}

// Post implements api.Executor.
func (e *Executor) Post(task func()) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.refuse {
		e.refused++
		return false
	}
	e.tasks = append(e.tasks, task)
	return true
}

// Drain runs queued tasks, including ones posted while draining, and returns how many ran.
func (e *Executor) Drain() int {
	ran := 0
	for {
		e.mu.Lock()
		if len(e.tasks) == 0 {
			e.mu.Unlock()
			return ran
		}
		task := e.tasks[0]
		e.tasks = e.tasks[1:]
		e.mu.Unlock()
		task()
		ran++
	}
}

// Pending returns the number of queued tasks.
func (e *Executor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tasks)
}

// Refuse makes Post reject work, as a stopped event loop does.
func (e *Executor) Refuse(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refuse = v
}

// Refused returns how many posts were rejected.
func (e *Executor) Refused() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.refused
}
