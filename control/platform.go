// control/platform.go
// Author: momentics <momentics@gmail.com>
//
// Runtime probes registered on every Control.

package control

import "runtime"

// RegisterPlatformProbes adds process-level probes.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("platform.goroutines", func() any {
		return runtime.NumGoroutine()
	})
}
