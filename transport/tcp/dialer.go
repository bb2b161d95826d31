// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package tcp

import (
	"context"
	"net"
	"time"
)

// Dialer opens outbound connections.
type Dialer struct {
	NoDelay bool
	Timeout time.Duration // 0 means no timeout
}

// DialContext connects to address and applies Tune.
func (d Dialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	nd := net.Dialer{Timeout: d.Timeout}
	conn, err := nd.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	if err := Tune(conn, d.NoDelay); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Tune sets TCP_NODELAY on conn. Non-TCP connections are left alone.
func Tune(conn net.Conn, noDelay bool) error {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	return setNoDelay(tc, noDelay)
}
