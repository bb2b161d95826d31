// File: client/client.go
// Package client connects to a hioload-net server and exchanges framed messages.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// A Client owns one connection and the I/O goroutine that drives it. Messages
// read from the server accumulate in Incoming() until the application pops them.

package client

import (
	"context"
	"net"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/connection"
	"github.com/momentics/hioload-net/control"
	"github.com/momentics/hioload-net/internal/concurrency"
	"github.com/momentics/hioload-net/message"
	"github.com/momentics/hioload-net/transport/tcp"
	"github.com/momentics/hioload-net/tsqueue"
)

// Client is a single server connection.
type Client[T message.Tag] struct {
	cfg  *Config
	log  *zap.Logger
	ctrl *control.Control
	in   *tsqueue.Queue[connection.OwnedMessage[T]]

	mu   sync.Mutex
	loop *concurrency.EventLoop
	conn *connection.Connection[T]
}

// New creates an unconnected client.
func New[T message.Tag](opts ...Option) *Client[T] {
	s := settings{cfg: DefaultConfig(), log: zap.L()}
	for _, o := range opts {
		o(&s)
	}
	if s.ctrl == nil {
		s.ctrl = control.New()
	}
	c := &Client[T]{
		cfg:  s.cfg,
		log:  s.log.Named("client"),
		ctrl: s.ctrl,
		in:   tsqueue.New[connection.OwnedMessage[T]](),
	}
	c.ctrl.RegisterDebugProbe("client.inbound", func() any { return c.in.Count() })
	return c
}

// Connect resolves host and connects to the first reachable address.
func (c *Client[T]) Connect(host string, port int) error {
	return c.ConnectContext(context.Background(), host, port)
}

// ConnectContext is Connect with a context bounding resolution and dialing.
// On failure nothing is left running.
func (c *Client[T]) ConnectContext(ctx context.Context, host string, port int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		if c.conn.IsConnected() {
			return api.ErrAlreadyRunning
		}
		c.teardown()
	}

	addrs, err := net.DefaultResolver.LookupHost(ctx, host)
	if err != nil {
		c.log.Error("resolve failed", zap.String("host", host), zap.Error(err))
		return api.NewError(api.ErrCodeResolve, "resolve "+host, err)
	}
	endpoints := make([]string, 0, len(addrs))
	for _, a := range addrs {
		endpoints = append(endpoints, net.JoinHostPort(a, strconv.Itoa(port)))
	}

	d := tcp.Dialer{NoDelay: c.cfg.NoDelay, Timeout: c.cfg.DialTimeout}
	dial := func(_ context.Context, network, address string) (net.Conn, error) {
		return d.DialContext(ctx, network, address)
	}

	loop := concurrency.NewEventLoop()
	conn := connection.New(connection.OwnerClient, loop, nil, c.in,
		connection.WithLogger(c.log),
		connection.WithCounters(c.ctrl))
	loop.Start()

	done := make(chan error, 1)
	conn.ConnectToServer(dial, endpoints, func(err error) { done <- err })
	if err := <-done; err != nil {
		loop.Stop()
		loop.Wait()
		c.log.Error("connect failed", zap.String("host", host), zap.Int("port", port), zap.Error(err))
		return api.NewError(api.ErrCodeConnect, "connect "+host, err).
			WithContext("port", port)
	}

	c.loop, c.conn = loop, conn
	c.log.Info("connected", zap.Stringer("remote", conn.RemoteAddr()))
	return nil
}

// Disconnect closes the connection and stops the I/O goroutine. It is safe to
// call repeatedly and on a client that never connected.
func (c *Client[T]) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}
	c.teardown()
	c.log.Info("disconnected")
}

// teardown requires c.mu.
func (c *Client[T]) teardown() {
	c.conn.Disconnect()
	c.loop.Stop()
	c.loop.Wait()
	c.conn, c.loop = nil, nil
}

// IsConnected reports whether the connection is open.
func (c *Client[T]) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && c.conn.IsConnected()
}

// Send queues msg for the server. It does nothing when not connected.
func (c *Client[T]) Send(msg message.Message[T]) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn != nil && conn.IsConnected() {
		conn.Send(msg)
	}
}

// Incoming exposes the inbound queue. The client never drains it.
func (c *Client[T]) Incoming() *tsqueue.Queue[connection.OwnedMessage[T]] {
	return c.in
}

// Stats returns a snapshot of counters and probes.
func (c *Client[T]) Stats() map[string]any {
	return c.ctrl.Stats()
}
