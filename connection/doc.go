// Package connection
// Author: momentics <momentics@gmail.com>
//
// Per-socket asynchronous read/write state machine.
//
// A Connection owns one stream socket and a private outbound queue, and
// pushes every decoded message into an inbound queue shared with its owner.
// All completions run on one api.Executor, so the read FSM
// (ReadingHeader -> ReadingBody -> ReadingHeader) and the write FSM
// (WriterIdle -> WritingHeader -> WritingBody -> WriterIdle) need no locks of
// their own, and at most one write is outstanding per connection.
//
// Any I/O error closes the socket. Peer close and transport failure are not
// distinguished; both are observed later through IsConnected.
package connection
