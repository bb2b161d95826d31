// File: server/registry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"slices"
	"sync"

	"github.com/momentics/hioload-net/connection"
	"github.com/momentics/hioload-net/message"
)

// Registry is the ordered table of live server connections.
type Registry[T message.Tag] struct {
	mu    sync.Mutex
	conns []*connection.Connection[T]
}

// Add appends c.
func (r *Registry[T]) Add(c *connection.Connection[T]) {
	r.mu.Lock()
	r.conns = append(r.conns, c)
	r.mu.Unlock()
}

// Remove deletes c and reports whether it was present.
func (r *Registry[T]) Remove(c *connection.Connection[T]) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.Index(r.conns, c)
	if i < 0 {
		return false
	}
	r.conns = slices.Delete(r.conns, i, i+1)
	return true
}

// Contains reports whether c is registered.
func (r *Registry[T]) Contains(c *connection.Connection[T]) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.conns, c)
}

// Len returns the number of entries.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Snapshot returns a copy of the entries in insertion order.
func (r *Registry[T]) Snapshot() []*connection.Connection[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.conns)
}

// sweep calls send for every connected entry except exclude, then removes the
// disconnected entries in one pass and returns them.
func (r *Registry[T]) sweep(exclude *connection.Connection[T], send func(*connection.Connection[T])) []*connection.Connection[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	var dead []*connection.Connection[T]
	for _, c := range r.conns {
		if !c.IsConnected() {
			dead = append(dead, c)
			continue
		}
		if c != exclude {
			send(c)
		}
	}
	if len(dead) > 0 {
		r.conns = slices.DeleteFunc(r.conns, func(c *connection.Connection[T]) bool {
			return slices.Contains(dead, c)
		})
	}
	return dead
}
