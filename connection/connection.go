// File: connection/connection.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package connection

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/control"
	"github.com/momentics/hioload-net/message"
	"github.com/momentics/hioload-net/tsqueue"
)

// DialFunc opens a stream socket to address.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Option customizes a Connection.
type Option func(*settings)

type settings struct {
	log      *zap.Logger
	counters api.Counters
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithCounters sets the traffic counter sink.
func WithCounters(c api.Counters) Option {
	return func(s *settings) {
		if c != nil {
			s.counters = c
		}
	}
}

type nopCounters struct{}

func (nopCounters) Add(string, int64) {}

// Connection is one framed message stream over one socket.
type Connection[T message.Tag] struct {
	owner    Owner
	exec     api.Executor
	in       *tsqueue.Queue[OwnedMessage[T]]
	log      *zap.Logger
	counters api.Counters

	sockMu sync.RWMutex
	sock   net.Conn

	id     atomic.Uint32
	status atomic.Int32
	rstate atomic.Int32
	wstate atomic.Int32

	// Touched only from completions on exec.
	out    *queue.Queue // of message.Message[T]
	hdrIn  []byte
	hdrOut []byte
	tmpIn  message.Message[T]
}

// New builds a connection. A server-role connection is handed an accepted
// socket and is Connected at once; a client-role connection is usually built
// with a nil socket and becomes Connected through ConnectToServer.
func New[T message.Tag](owner Owner, exec api.Executor, sock net.Conn, in *tsqueue.Queue[OwnedMessage[T]], opts ...Option) *Connection[T] {
	s := settings{log: zap.L(), counters: nopCounters{}}
	for _, o := range opts {
		o(&s)
	}
	c := &Connection[T]{
		owner:    owner,
		exec:     exec,
		in:       in,
		log:      s.log.With(zap.Stringer("owner", owner)),
		counters: s.counters,
		sock:     sock,
		out:      queue.New(),
		hdrIn:    make([]byte, message.HeaderSize[T]()),
		hdrOut:   make([]byte, message.HeaderSize[T]()),
	}
	if sock != nil {
		c.status.Store(int32(Connected))
	}
	return c
}

// ID returns the identifier assigned by the server; 0 for client-role connections.
func (c *Connection[T]) ID() uint32 {
	return c.id.Load()
}

// Owner returns the connection role.
func (c *Connection[T]) Owner() Owner {
	return c.owner
}

// IsConnected reports whether the socket is open.
func (c *Connection[T]) IsConnected() bool {
	return Status(c.status.Load()) == Connected
}

// State returns a snapshot of the lifecycle and both FSMs.
func (c *Connection[T]) State() State {
	return State{
		Status: Status(c.status.Load()),
		Read:   ReadState(c.rstate.Load()),
		Write:  WriteState(c.wstate.Load()),
	}
}

// RemoteAddr returns the peer address, or nil before a socket exists.
func (c *Connection[T]) RemoteAddr() net.Addr {
	sock := c.socket()
	if sock == nil {
		return nil
	}
	return sock.RemoteAddr()
}

// ConnectToClient assigns the server-side id and arms the read loop.
// It has no effect on client-role or closed connections.
func (c *Connection[T]) ConnectToClient(id uint32) {
	if c.owner != OwnerServer || !c.IsConnected() {
		return
	}
	c.id.Store(id)
	c.readHeader()
}

// ConnectToServer tries endpoints in order and, on the first success, arms the
// read loop. done runs on the executor with the outcome. On failure the
// connection stays Disconnected.
func (c *Connection[T]) ConnectToServer(dial DialFunc, endpoints []string, done func(error)) {
	if c.owner != OwnerClient || !c.status.CompareAndSwap(int32(Disconnected), int32(Connecting)) {
		err := errors.New("connection: connect requires an idle client-role connection")
		if !c.exec.Post(func() { done(err) }) {
			done(err)
		}
		return
	}
	go func() {
		var (
			sock net.Conn
			err  = errors.New("connection: no endpoints")
		)
		for _, ep := range endpoints {
			if sock, err = dial(context.Background(), "tcp", ep); err == nil {
				break
			}
		}
		posted := c.exec.Post(func() {
			if err != nil {
				c.status.Store(int32(Disconnected))
				done(err)
				return
			}
			c.sockMu.Lock()
			c.sock = sock
			c.sockMu.Unlock()
			c.status.Store(int32(Connected))
			c.readHeader()
			done(nil)
		})
		if !posted {
			if sock != nil {
				sock.Close()
			}
			c.status.Store(int32(Disconnected))
			done(api.ErrClosed)
		}
	}()
}

// Disconnect closes the socket on the executor, so the close is ordered with
// the completions of this connection. If the executor is stopped there are no
// completions left to race with and the socket is closed directly.
func (c *Connection[T]) Disconnect() {
	if !c.IsConnected() {
		return
	}
	if !c.exec.Post(func() { c.closeSocket() }) {
		c.closeSocket()
	}
}

func (c *Connection[T]) socket() net.Conn {
	c.sockMu.RLock()
	defer c.sockMu.RUnlock()
	return c.sock
}

// closeSocket reports whether this call performed the close.
func (c *Connection[T]) closeSocket() bool {
	if !c.status.CompareAndSwap(int32(Connected), int32(Disconnected)) {
		return false
	}
	if sock := c.socket(); sock != nil {
		sock.Close()
	}
	return true
}

// fail closes the socket after an I/O error. Errors raised by our own close
// are not reported again.
func (c *Connection[T]) fail(op string, err error) {
	if !c.closeSocket() {
		return
	}
	c.counters.Add(control.IOErrors, 1)
	c.logger().Warn("connection closed", zap.String("op", op), zap.Error(err))
}

func (c *Connection[T]) logger() *zap.Logger {
	if id := c.ID(); id != 0 {
		return c.log.With(zap.Uint32("conn_id", id))
	}
	return c.log
}
