// File: message/message.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Binary envelope: a fixed header followed by an opaque body.
// Body fields form a stack: the last value pushed is the first popped.

package message

import (
	"encoding/binary"
	"fmt"
	"unsafe"
)

// Tag is the set of fixed-width integer types usable as a message tag.
type Tag interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int8 | ~int16 | ~int32 | ~int64
}

// ByteOrder is the wire byte order. Both peers are assumed to share it.
var ByteOrder = binary.NativeEndian

// Header precedes every body on the wire.
type Header[T Tag] struct {
	ID   T
	Size uint32 // body length in bytes, maintained by Push/Pop
}

// HeaderSize returns the encoded header length for tag type T.
func HeaderSize[T Tag]() int {
	var t T
	return int(unsafe.Sizeof(t)) + 4
}

// Encode writes the header into b, which must hold HeaderSize bytes.
func (h Header[T]) Encode(b []byte) {
	n := int(unsafe.Sizeof(h.ID))
	switch n {
	case 1:
		b[0] = byte(h.ID)
	case 2:
		ByteOrder.PutUint16(b, uint16(h.ID))
	case 4:
		ByteOrder.PutUint32(b, uint32(h.ID))
	case 8:
		ByteOrder.PutUint64(b, uint64(h.ID))
	}
	ByteOrder.PutUint32(b[n:], h.Size)
}

// DecodeHeader reads a header previously produced by Encode.
func DecodeHeader[T Tag](b []byte) Header[T] {
	var h Header[T]
	n := int(unsafe.Sizeof(h.ID))
	switch n {
	case 1:
		h.ID = T(b[0])
	case 2:
		h.ID = T(ByteOrder.Uint16(b))
	case 4:
		h.ID = T(ByteOrder.Uint32(b))
	case 8:
		h.ID = T(ByteOrder.Uint64(b))
	}
	h.Size = ByteOrder.Uint32(b[n:])
	return h
}

// Message is one framed unit.
type Message[T Tag] struct {
	Header Header[T]
	Body   []byte
}

// New returns an empty message with the given tag.
func New[T Tag](id T) Message[T] {
	return Message[T]{Header: Header[T]{ID: id}}
}

// Size returns the body length.
func (m *Message[T]) Size() int {
	return len(m.Body)
}

// Push appends the raw bytes of each value to the body tail, in argument order.
// Every value must be fixed-size: booleans, sized numbers, arrays and structs of them.
// Anything holding indirection (int, string, slices of structs with pointers, maps)
// violates the contract and panics.
func (m *Message[T]) Push(values ...any) *Message[T] {
	for _, v := range values {
		n := binary.Size(v)
		if n < 0 {
			panic(&ContractError{Op: "push", Type: fmt.Sprintf("%T", v), Reason: "value is not fixed-size"})
		}
		body, err := binary.Append(m.Body, ByteOrder, v)
		if err != nil {
			panic(&ContractError{Op: "push", Type: fmt.Sprintf("%T", v), Reason: err.Error()})
		}
		m.Body = body
	}
	m.Header.Size = uint32(len(m.Body))
	return m
}

// Pop removes values from the body tail into the given pointers, in argument order.
// Pop(&c, &b, &a) reverses Push(a, b, c).
func (m *Message[T]) Pop(ptrs ...any) *Message[T] {
	for _, p := range ptrs {
		n := binary.Size(p)
		if n < 0 {
			panic(&ContractError{Op: "pop", Type: fmt.Sprintf("%T", p), Reason: "target is not a pointer to a fixed-size value"})
		}
		if n > len(m.Body) {
			panic(&ContractError{Op: "pop", Type: fmt.Sprintf("%T", p),
				Reason: fmt.Sprintf("underflow: need %d bytes, body holds %d", n, len(m.Body))})
		}
		i := len(m.Body) - n
		if _, err := binary.Decode(m.Body[i:], ByteOrder, p); err != nil {
			panic(&ContractError{Op: "pop", Type: fmt.Sprintf("%T", p), Reason: err.Error()})
		}
		m.Body = m.Body[:i]
	}
	m.Header.Size = uint32(len(m.Body))
	return m
}

// Clone returns a deep copy and resynchronizes Header.Size with the body.
func (m Message[T]) Clone() Message[T] {
	c := Message[T]{Header: m.Header}
	if len(m.Body) > 0 {
		c.Body = make([]byte, len(m.Body))
		copy(c.Body, m.Body)
	}
	c.Header.Size = uint32(len(c.Body))
	return c
}

// String renders the header for diagnostics.
func (m Message[T]) String() string {
	return fmt.Sprintf("ID: %d size: %d", int64(m.Header.ID), m.Header.Size)
}

// ContractError reports misuse of Push/Pop.
type ContractError struct {
	Op     string
	Type   string
	Reason string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("message %s %s: %s", e.Op, e.Type, e.Reason)
}
