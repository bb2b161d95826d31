// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for sockets and executors.

package fake

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// ErrInjected is returned by Conn when a fault has been configured.
var ErrInjected = errors.New("fake: injected failure")

// Conn wraps a net.Conn, records every Write, and tracks how many Writes
// overlap in time.
type Conn struct {
	net.Conn

	mu         sync.Mutex
	writes     [][]byte
	writeError error
	readError  error
	writeDelay time.Duration

	inflight    atomic.Int32
	maxInflight atomic.Int32
	closed      atomic.Bool
}

// NewConn wraps inner.
func NewConn(inner net.Conn) *Conn {
	return &Conn{Conn: inner}
}

// Pipe returns a fake Conn and the raw peer end of an in-memory pipe.
func Pipe() (*Conn, net.Conn) {
	a, b := net.Pipe()
	return NewConn(a), b
}

// Read implements net.Conn.
func (c *Conn) Read(p []byte) (int, error) {
	c.mu.Lock()
	err := c.readError
	c.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

// Write implements net.Conn.
func (c *Conn) Write(p []byte) (int, error) {
	n := c.inflight.Add(1)
	defer c.inflight.Add(-1)
	for {
		max := c.maxInflight.Load()
		if n <= max || c.maxInflight.CompareAndSwap(max, n) {
			break
		}
	}

	c.mu.Lock()
	err, delay := c.writeError, c.writeDelay
	c.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return 0, err
	}

	written, err := c.Conn.Write(p)
	rec := make([]byte, written)
	copy(rec, p[:written])
	c.mu.Lock()
	c.writes = append(c.writes, rec)
	c.mu.Unlock()
	return written, err
}

// Close implements net.Conn.
func (c *Conn) Close() error {
	c.closed.Store(true)
	return c.Conn.Close()
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool {
	return c.closed.Load()
}

// SetWriteError makes subsequent Writes fail with err.
func (c *Conn) SetWriteError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeError = err
}

// SetReadError makes subsequent Reads fail with err.
func (c *Conn) SetReadError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readError = err
}

// SetWriteDelay stalls every Write, widening any overlap window.
func (c *Conn) SetWriteDelay(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeDelay = d
}

// Writes returns a copy of every buffer written so far, one entry per Write.
func (c *Conn) Writes() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.writes))
	copy(out, c.writes)
	return out
}

// MaxInflight returns the largest number of concurrently executing Writes seen.
func (c *Conn) MaxInflight() int {
	return int(c.maxInflight.Load())
}
