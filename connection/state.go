// File: connection/state.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package connection

import "fmt"

// Owner tells which side created the connection.
type Owner int

const (
	OwnerServer Owner = iota // produced by an accept
	OwnerClient              // produced by a connect
)

func (o Owner) String() string {
	if o == OwnerClient {
		return "client"
	}
	return "server"
}

// Status is the connection lifecycle state.
type Status int32

const (
	Disconnected Status = iota
	Connecting
	Connected
)

func (s Status) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "disconnected"
}

// ReadState is the inbound FSM state.
type ReadState int32

const (
	ReadIdle ReadState = iota
	ReadingHeader
	ReadingBody
)

func (s ReadState) String() string {
	switch s {
	case ReadingHeader:
		return "reading-header"
	case ReadingBody:
		return "reading-body"
	}
	return "read-idle"
}

// WriteState is the outbound FSM state.
type WriteState int32

const (
	WriterIdle WriteState = iota
	WritingHeader
	WritingBody
)

func (s WriteState) String() string {
	switch s {
	case WritingHeader:
		return "writing-header"
	case WritingBody:
		return "writing-body"
	}
	return "writer-idle"
}

// State is a snapshot of both state machines.
type State struct {
	Status Status
	Read   ReadState
	Write  WriteState
}

func (s State) String() string {
	return fmt.Sprintf("%s/%s/%s", s.Status, s.Read, s.Write)
}
