package control_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momentics/hioload-net/control"
)

func TestMetricsConcurrentAdd(t *testing.T) {
	mr := control.NewMetricsRegistry()
	assert.True(t, mr.Updated().IsZero())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				mr.Add(control.MessagesIn, 1)
				mr.Add(control.BytesIn, 8)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1000), mr.Get(control.MessagesIn))
	assert.Equal(t, int64(8000), mr.Get(control.BytesIn))
	assert.Zero(t, mr.Get(control.IOErrors))
	assert.False(t, mr.Updated().IsZero())
}

func TestControlStats(t *testing.T) {
	c := control.New()
	c.Add(control.ConnectionsAccepted, 2)
	c.RegisterDebugProbe("registry_size", func() any { return 2 })

	stats := c.Stats()
	assert.Equal(t, int64(2), stats[control.ConnectionsAccepted])
	assert.Equal(t, 2, stats["debug.registry_size"])
}

func TestPlatformProbesRegistered(t *testing.T) {
	stats := control.New().Stats()
	assert.Contains(t, stats, "debug.platform.cpus")
	assert.Contains(t, stats, "debug.platform.goroutines")
}
