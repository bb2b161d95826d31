// File: server/handler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"github.com/momentics/hioload-net/connection"
	"github.com/momentics/hioload-net/message"
)

// Handler is the application policy plugged into a Server.
//
// OnClientConnect runs on the I/O goroutine for every accepted socket, before
// the connection has an id. OnClientDisconnect runs on whichever goroutine
// discovered the closed connection (MessageClient or MessageAllClient), once
// per registry entry. OnMessage runs only inside Update.
type Handler[T message.Tag] interface {
	OnClientConnect(c *connection.Connection[T]) bool
	OnClientDisconnect(c *connection.Connection[T])
	OnMessage(c *connection.Connection[T], msg *message.Message[T])
}

// HandlerFuncs adapts plain functions to Handler. A nil Connect rejects every
// client; nil Disconnect and Message do nothing.
type HandlerFuncs[T message.Tag] struct {
	Connect    func(c *connection.Connection[T]) bool
	Disconnect func(c *connection.Connection[T])
	Message    func(c *connection.Connection[T], msg *message.Message[T])
}

var _ Handler[uint32] = HandlerFuncs[uint32]{}

func (h HandlerFuncs[T]) OnClientConnect(c *connection.Connection[T]) bool {
	if h.Connect == nil {
		return false
	}
	return h.Connect(c)
}

func (h HandlerFuncs[T]) OnClientDisconnect(c *connection.Connection[T]) {
	if h.Disconnect != nil {
		h.Disconnect(c)
	}
}

func (h HandlerFuncs[T]) OnMessage(c *connection.Connection[T], msg *message.Message[T]) {
	if h.Message != nil {
		h.Message(c, msg)
	}
}
