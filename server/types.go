// File: server/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

// Config holds all server-side configuration parameters.
type Config struct {
	Host           string // bind host; empty binds all IPv4 interfaces
	Port           int    // TCP port, 0 picks an ephemeral one
	IDBase         uint32 // first id handed to an approved connection
	MaxConnections int    // simultaneous sockets, 0 = unlimited
	ReuseAddr      bool   // SO_REUSEADDR on the listener
	NoDelay        bool   // TCP_NODELAY on accepted sockets
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:      60000,
		IDBase:    10000,
		ReuseAddr: true,
		NoDelay:   true,
	}
}
