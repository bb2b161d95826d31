// control/control.go
// Author: momentics <momentics@gmail.com>
//
// Control joins counters and probes behind api.Control.

package control

import "github.com/momentics/hioload-net/api"

var (
	_ api.Control  = (*Control)(nil)
	_ api.Counters = (*Control)(nil)
)

// Control is the metrics and debug surface of one client or server.
type Control struct {
	metrics *MetricsRegistry
	debug   *DebugProbes
}

// New creates a Control with empty counters and the platform probes.
func New() *Control {
	c := &Control{
		metrics: NewMetricsRegistry(),
		debug:   NewDebugProbes(),
	}
	RegisterPlatformProbes(c.debug)
	return c
}

// Add implements api.Counters.
func (c *Control) Add(key string, delta int64) {
	c.metrics.Add(key, delta)
}

// Metrics exposes the counter registry.
func (c *Control) Metrics() *MetricsRegistry {
	return c.metrics
}

// RegisterDebugProbe implements api.Control.
func (c *Control) RegisterDebugProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}

// Stats merges counters with probe output; probe keys are prefixed with "debug.".
func (c *Control) Stats() map[string]any {
	combined := make(map[string]any)
	for k, v := range c.metrics.GetSnapshot() {
		combined[k] = v
	}
	for k, v := range c.debug.DumpState() {
		combined["debug."+k] = v
	}
	return combined
}
