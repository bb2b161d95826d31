// File: connection/owned.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package connection

import "github.com/momentics/hioload-net/message"

// OwnedMessage is an inbound message tagged with the connection that read it.
// Remote is nil for messages read by a client-role connection.
type OwnedMessage[T message.Tag] struct {
	Remote *Connection[T]
	Msg    message.Message[T]
}

func (o OwnedMessage[T]) String() string {
	return o.Msg.String()
}
