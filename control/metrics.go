// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime traffic counters for clients and servers.

package control

import (
	"sync"
	"sync/atomic"
	"time"
)

// Counter names recorded by connections, clients and servers.
const (
	MessagesIn          = "messages_in"
	MessagesOut         = "messages_out"
	BytesIn             = "bytes_in"
	BytesOut            = "bytes_out"
	IOErrors            = "io_errors"
	ConnectionsAccepted = "connections_accepted"
	ConnectionsDenied   = "connections_denied"
	ConnectionsDropped  = "connections_dropped"
)

// MetricsRegistry holds named monotonically updated counters.
type MetricsRegistry struct {
	mu       sync.RWMutex
	counters map[string]*atomic.Int64
	updated  atomic.Int64 // unix nanos of the last Add
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters: make(map[string]*atomic.Int64),
	}
}

// Add increments counter key by delta, creating it on first use.
func (mr *MetricsRegistry) Add(key string, delta int64) {
	mr.counter(key).Add(delta)
	mr.updated.Store(time.Now().UnixNano())
}

// Get returns the current value of key.
func (mr *MetricsRegistry) Get(key string) int64 {
	mr.mu.RLock()
	c, ok := mr.counters[key]
	mr.mu.RUnlock()
	if !ok {
		return 0
	}
	return c.Load()
}

// GetSnapshot returns the latest counter values.
func (mr *MetricsRegistry) GetSnapshot() map[string]int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]int64, len(mr.counters))
	for k, c := range mr.counters {
		out[k] = c.Load()
	}
	return out
}

// Updated returns the time of the last Add, or the zero time.
func (mr *MetricsRegistry) Updated() time.Time {
	ns := mr.updated.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func (mr *MetricsRegistry) counter(key string) *atomic.Int64 {
	mr.mu.RLock()
	c, ok := mr.counters[key]
	mr.mu.RUnlock()
	if ok {
		return c
	}
	mr.mu.Lock()
	defer mr.mu.Unlock()
	if c, ok = mr.counters[key]; ok {
		return c
	}
	c = new(atomic.Int64)
	mr.counters[key] = c
	return c
}
