// File: connection/write.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Outbound FSM. The outbound queue is only touched on the executor; a write is
// armed only when a Send finds it empty or a completed write finds it non-empty,
// so a connection never has two writes in flight.

package connection

import (
	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/momentics/hioload-net/control"
	"github.com/momentics/hioload-net/message"
)

// Send queues a copy of msg for writing. The decision to start the writer is
// made on the executor, never on the caller's goroutine. Header.Size on the
// wire always equals the body length.
func (c *Connection[T]) Send(msg message.Message[T]) {
	m := msg.Clone()
	c.exec.Post(func() {
		idle := c.out.Length() == 0
		c.out.Add(m)
		if idle {
			c.writeHeader()
		}
	})
}

// asyncWrite writes buf off the executor, then posts done.
func (c *Connection[T]) asyncWrite(buf []byte, done func(error)) {
	sock := c.socket()
	go func() {
		_, err := sock.Write(buf)
		c.exec.Post(func() { done(err) })
	}()
}

func (c *Connection[T]) front() message.Message[T] {
	return c.out.Peek().(message.Message[T])
}

func (c *Connection[T]) writeHeader() {
	if !c.IsConnected() {
		c.abandonWrites()
		return
	}
	c.front().Header.Encode(c.hdrOut)
	c.wstate.Store(int32(WritingHeader))
	c.asyncWrite(c.hdrOut, c.onHeaderWritten)
}

func (c *Connection[T]) onHeaderWritten(err error) {
	if err != nil {
		c.fail("write header", err)
		c.abandonWrites()
		return
	}
	if body := c.front().Body; len(body) > 0 {
		c.wstate.Store(int32(WritingBody))
		c.asyncWrite(body, c.onBodyWritten)
		return
	}
	c.finishWrite()
}

func (c *Connection[T]) onBodyWritten(err error) {
	if err != nil {
		c.fail("write body", err)
		c.abandonWrites()
		return
	}
	c.finishWrite()
}

func (c *Connection[T]) finishWrite() {
	m := c.out.Remove().(message.Message[T])
	c.counters.Add(control.MessagesOut, 1)
	c.counters.Add(control.BytesOut, int64(len(c.hdrOut)+m.Size()))
	if ce := c.logger().Check(zap.DebugLevel, "message out"); ce != nil {
		ce.Write(zap.Stringer("msg", m))
	}

	if c.out.Length() > 0 {
		c.writeHeader()
		return
	}
	c.wstate.Store(int32(WriterIdle))
}

// abandonWrites drops everything still queued; nothing is retried.
func (c *Connection[T]) abandonWrites() {
	if n := c.out.Length(); n > 0 {
		c.logger().Debug("discarding queued messages", zap.Int("count", n))
	}
	c.out = queue.New()
	c.wstate.Store(int32(WriterIdle))
}
