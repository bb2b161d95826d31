// File: server/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"context"
	"errors"
	"math"
	"net"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/connection"
	"github.com/momentics/hioload-net/control"
	"github.com/momentics/hioload-net/internal/concurrency"
	"github.com/momentics/hioload-net/message"
	"github.com/momentics/hioload-net/transport/tcp"
	"github.com/momentics/hioload-net/tsqueue"
)

// Server accepts connections, keeps them in a Registry and hands inbound
// messages to its Handler from Update.
type Server[T message.Tag] struct {
	cfg     *Config
	handler Handler[T]
	log     *zap.Logger
	ctrl    *control.Control
	loop    *concurrency.EventLoop
	in      *tsqueue.Queue[connection.OwnedMessage[T]]
	reg     Registry[T]

	nextID  uint32 // I/O goroutine only
	started atomic.Bool
	stopped atomic.Bool

	lnMu sync.Mutex
	ln   net.Listener
}

// NewServer builds a Server. A nil handler rejects every client.
func NewServer[T message.Tag](handler Handler[T], opts ...Option) *Server[T] {
	s := settings{cfg: DefaultConfig(), log: zap.L()}
	for _, o := range opts {
		o(&s)
	}
	if handler == nil {
		handler = HandlerFuncs[T]{}
	}
	if s.ctrl == nil {
		s.ctrl = control.New()
	}
	srv := &Server[T]{
		cfg:     s.cfg,
		handler: handler,
		log:     s.log.Named("server"),
		ctrl:    s.ctrl,
		loop:    concurrency.NewEventLoop(),
		in:      tsqueue.New[connection.OwnedMessage[T]](),
		nextID:  s.cfg.IDBase,
	}
	srv.ctrl.RegisterDebugProbe("server.connections", func() any { return srv.reg.Len() })
	srv.ctrl.RegisterDebugProbe("server.inbound", func() any { return srv.in.Count() })
	srv.ctrl.RegisterDebugProbe("server.pending_tasks", func() any { return srv.loop.Pending() })
	return srv
}

// Start binds the listener, arms the first accept and starts the I/O goroutine.
// A Server can be started once.
func (s *Server[T]) Start() error {
	if s.stopped.Load() {
		return api.ErrClosed
	}
	if !s.started.CompareAndSwap(false, true) {
		return api.ErrAlreadyRunning
	}
	ln, err := tcp.Listen(context.Background(), tcp.ListenerConfig{
		Host:           s.cfg.Host,
		Port:           s.cfg.Port,
		ReuseAddr:      s.cfg.ReuseAddr,
		MaxConnections: s.cfg.MaxConnections,
	})
	if err != nil {
		s.started.Store(false)
		s.log.Error("start failed", zap.Int("port", s.cfg.Port), zap.Error(err))
		return api.NewError(api.ErrCodeListen, "server start", err).
			WithContext("port", s.cfg.Port)
	}
	s.lnMu.Lock()
	s.ln = ln
	s.lnMu.Unlock()

	s.loop.Start()
	s.acceptAsync(ln)
	s.log.Info("server started", zap.Stringer("addr", ln.Addr()))
	return nil
}

// Stop closes the listener, stops the I/O goroutine and waits for it to exit.
// Registered connections are not closed; their completions are no longer run.
func (s *Server[T]) Stop() {
	if !s.started.Load() || !s.stopped.CompareAndSwap(false, true) {
		return
	}
	s.lnMu.Lock()
	if s.ln != nil {
		s.ln.Close()
	}
	s.lnMu.Unlock()
	s.loop.Stop()
	s.loop.Wait()
	s.log.Info("server stopped")
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server[T]) Addr() net.Addr {
	s.lnMu.Lock()
	defer s.lnMu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Connections returns the registered connections in accept order.
func (s *Server[T]) Connections() []*connection.Connection[T] {
	return s.reg.Snapshot()
}

// Incoming exposes the shared inbound queue. Update is its usual consumer.
func (s *Server[T]) Incoming() *tsqueue.Queue[connection.OwnedMessage[T]] {
	return s.in
}

// Stats returns a snapshot of counters and probes.
func (s *Server[T]) Stats() map[string]any {
	return s.ctrl.Stats()
}

func (s *Server[T]) acceptAsync(ln net.Listener) {
	go func() {
		sock, err := ln.Accept()
		if !s.loop.Post(func() { s.onAccept(ln, sock, err) }) && sock != nil {
			sock.Close()
		}
	}()
}

func (s *Server[T]) onAccept(ln net.Listener, sock net.Conn, err error) {
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return
		}
		s.log.Warn("accept failed", zap.Error(err))
		s.acceptAsync(ln)
		return
	}
	s.log.Info("new connection", zap.Stringer("remote", sock.RemoteAddr()))
	if err := tcp.Tune(sock, s.cfg.NoDelay); err != nil {
		s.log.Debug("socket tuning failed", zap.Error(err))
	}

	c := connection.New(connection.OwnerServer, s.loop, sock, s.in,
		connection.WithLogger(s.log),
		connection.WithCounters(s.ctrl))
	if s.handler.OnClientConnect(c) {
		id := s.nextID
		if s.nextID < math.MaxUint32 {
			s.nextID++
		}
		s.ctrl.Add(control.ConnectionsAccepted, 1)
		s.reg.Add(c)
		c.ConnectToClient(id)
		s.log.Info("connection approved", zap.Uint32("conn_id", id))
	} else {
		s.ctrl.Add(control.ConnectionsDenied, 1)
		sock.Close()
		s.log.Info("connection denied", zap.Stringer("remote", sock.RemoteAddr()))
	}
	s.acceptAsync(ln)
}

// MessageClient sends msg to c. If c is gone, OnClientDisconnect fires and
// the entry is removed; the hook runs at most once per registered connection.
func (s *Server[T]) MessageClient(c *connection.Connection[T], msg message.Message[T]) {
	if c == nil {
		return
	}
	if c.IsConnected() {
		c.Send(msg)
		return
	}
	if s.reg.Remove(c) {
		s.dropped(c)
	}
}

// MessageAllClient sends msg to every connected client except exclude (nil
// excludes nobody). Entries found closed are purged after the sweep and
// OnClientDisconnect fires once for each.
func (s *Server[T]) MessageAllClient(msg message.Message[T], exclude *connection.Connection[T]) {
	dead := s.reg.sweep(exclude, func(c *connection.Connection[T]) {
		c.Send(msg)
	})
	for _, c := range dead {
		s.dropped(c)
	}
}

func (s *Server[T]) dropped(c *connection.Connection[T]) {
	s.ctrl.Add(control.ConnectionsDropped, 1)
	s.log.Info("client removed", zap.Uint32("conn_id", c.ID()))
	s.handler.OnClientDisconnect(c)
}

// Update pops up to maxMessages inbound messages, oldest first, and passes
// each to OnMessage on the calling goroutine. maxMessages < 0 drains
// everything queued. It returns the number handled.
func (s *Server[T]) Update(maxMessages int) int {
	n := 0
	for maxMessages < 0 || n < maxMessages {
		om, ok := s.in.PopFront()
		if !ok {
			break
		}
		s.handler.OnMessage(om.Remote, &om.Msg)
		n++
	}
	return n
}
