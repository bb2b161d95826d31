// File: connection/read.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Inbound FSM. Each step arms exactly one asynchronous read; its completion
// runs on the executor and arms the next step.

package connection

import (
	"io"

	"go.uber.org/zap"

	"github.com/momentics/hioload-net/control"
	"github.com/momentics/hioload-net/message"
)

// asyncRead fills buf completely off the executor, then posts done.
func (c *Connection[T]) asyncRead(buf []byte, done func(error)) {
	sock := c.socket()
	go func() {
		_, err := io.ReadFull(sock, buf)
		c.exec.Post(func() { done(err) })
	}()
}

func (c *Connection[T]) readHeader() {
	c.rstate.Store(int32(ReadingHeader))
	c.asyncRead(c.hdrIn, c.onHeader)
}

func (c *Connection[T]) onHeader(err error) {
	if err != nil {
		c.rstate.Store(int32(ReadIdle))
		c.fail("read header", err)
		return
	}
	if !c.IsConnected() {
		c.rstate.Store(int32(ReadIdle))
		return
	}
	c.tmpIn = message.Message[T]{Header: message.DecodeHeader[T](c.hdrIn)}
	if c.tmpIn.Header.Size == 0 {
		c.deliver()
		return
	}
	// The declared size is trusted as-is.
	c.tmpIn.Body = make([]byte, c.tmpIn.Header.Size)
	c.rstate.Store(int32(ReadingBody))
	c.asyncRead(c.tmpIn.Body, c.onBody)
}

func (c *Connection[T]) onBody(err error) {
	if err != nil {
		c.rstate.Store(int32(ReadIdle))
		c.fail("read body", err)
		return
	}
	if !c.IsConnected() {
		c.rstate.Store(int32(ReadIdle))
		return
	}
	c.deliver()
}

func (c *Connection[T]) deliver() {
	owned := OwnedMessage[T]{Msg: c.tmpIn}
	if c.owner == OwnerServer {
		owned.Remote = c
	}
	c.tmpIn = message.Message[T]{}

	c.counters.Add(control.MessagesIn, 1)
	c.counters.Add(control.BytesIn, int64(len(c.hdrIn)+owned.Msg.Size()))
	if ce := c.logger().Check(zap.DebugLevel, "message in"); ce != nil {
		ce.Write(zap.Stringer("msg", owned.Msg))
	}

	c.in.PushBack(owned)
	c.readHeader()
}
