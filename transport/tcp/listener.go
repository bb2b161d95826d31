// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package tcp

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"syscall"

	"golang.org/x/net/netutil"
)

// ListenerConfig holds configuration for the TCP listener.
type ListenerConfig struct {
	Host           string // bind host; empty means all IPv4 interfaces
	Port           int    // 0 picks an ephemeral port
	ReuseAddr      bool   // SO_REUSEADDR
	ReusePort      bool   // SO_REUSEPORT (linux only)
	MaxConnections int    // simultaneous accepted connections, 0 = unlimited
}

// Address returns the host:port string to bind.
func (c ListenerConfig) Address() string {
	host := c.Host
	if host == "" {
		host = "0.0.0.0"
	}
	return net.JoinHostPort(host, strconv.Itoa(c.Port))
}

// Listen opens the listening socket.
func Listen(ctx context.Context, cfg ListenerConfig) (net.Listener, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, rc syscall.RawConn) error {
			var serr error
			err := rc.Control(func(fd uintptr) {
				serr = applyListenOptions(fd, cfg)
			})
			if err != nil {
				return err
			}
			return serr
		},
	}
	ln, err := lc.Listen(ctx, "tcp4", cfg.Address())
	if err != nil {
		return nil, fmt.Errorf("tcp listen %s: %w", cfg.Address(), err)
	}
	if cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.MaxConnections)
	}
	return ln, nil
}
