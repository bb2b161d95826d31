package message_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-net/message"
)

type msgType uint32

const (
	fireBullet msgType = iota
	movePlayer
)

type point struct {
	X, Y float32
}

func TestPushPopIsLIFO(t *testing.T) {
	msg := message.New(fireBullet)

	a := int32(1)
	b := true
	c := float32(3.1415926)
	var d [5]point
	for i := range d {
		d[i] = point{X: float32(i), Y: float32(-i)}
	}

	msg.Push(a, b, c, d)
	require.Equal(t, 4+1+4+5*8, msg.Size())
	assert.Equal(t, uint32(msg.Size()), msg.Header.Size)

	var (
		ga int32
		gb bool
		gc float32
		gd [5]point
	)
	msg.Pop(&gd, &gc, &gb, &ga)

	assert.Equal(t, d, gd)
	assert.Equal(t, math.Float32bits(c), math.Float32bits(gc))
	assert.Equal(t, b, gb)
	assert.Equal(t, a, ga)
	assert.Zero(t, msg.Size())
	assert.Zero(t, msg.Header.Size)
}

func TestHeaderSizeTracksEveryStep(t *testing.T) {
	msg := message.New(movePlayer)
	values := []any{uint8(7), int16(-3), uint64(1 << 40), float64(2.5), [3]uint16{1, 2, 3}}
	for _, v := range values {
		msg.Push(v)
		assert.Equal(t, uint32(len(msg.Body)), msg.Header.Size)
	}

	var (
		u8  uint8
		i16 int16
		u64 uint64
		f64 float64
		arr [3]uint16
	)
	targets := []any{&arr, &f64, &u64, &i16, &u8}
	for _, p := range targets {
		msg.Pop(p)
		assert.Equal(t, uint32(len(msg.Body)), msg.Header.Size)
	}
	assert.Equal(t, uint8(7), u8)
	assert.Equal(t, int16(-3), i16)
	assert.Equal(t, uint64(1<<40), u64)
	assert.Equal(t, 2.5, f64)
	assert.Equal(t, [3]uint16{1, 2, 3}, arr)
}

func TestPopUnderflowPanics(t *testing.T) {
	msg := message.New(fireBullet)
	msg.Push(uint16(1))

	var v uint32
	defer func() {
		r := recover()
		require.NotNil(t, r)
		ce, ok := r.(*message.ContractError)
		require.True(t, ok, "unexpected panic value %v", r)
		assert.Equal(t, "pop", ce.Op)
		// a failed pop leaves the body untouched
		assert.Equal(t, 2, msg.Size())
	}()
	msg.Pop(&v)
}

func TestPushVariableSizePanics(t *testing.T) {
	msg := message.New(fireBullet)
	assert.PanicsWithError(t, "message push string: value is not fixed-size", func() {
		msg.Push("hello")
	})
	assert.Panics(t, func() { msg.Push(int(1)) })
	assert.Zero(t, msg.Size())
}

func TestHeaderEncodeDecode(t *testing.T) {
	h := message.Header[msgType]{ID: movePlayer, Size: 1234}
	buf := make([]byte, message.HeaderSize[msgType]())
	require.Len(t, buf, 8)
	h.Encode(buf)
	assert.Equal(t, h, message.DecodeHeader[msgType](buf))

	small := message.Header[uint8]{ID: 200, Size: 9}
	sbuf := make([]byte, message.HeaderSize[uint8]())
	require.Len(t, sbuf, 5)
	small.Encode(sbuf)
	assert.Equal(t, small, message.DecodeHeader[uint8](sbuf))

	wide := message.Header[int64]{ID: -42, Size: 0}
	wbuf := make([]byte, message.HeaderSize[int64]())
	wide.Encode(wbuf)
	assert.Equal(t, wide, message.DecodeHeader[int64](wbuf))
}

func TestCloneIsIndependent(t *testing.T) {
	msg := message.New(fireBullet)
	msg.Push(uint32(10))
	msg.Header.Size = 99 // out of sync on purpose

	c := msg.Clone()
	assert.Equal(t, uint32(4), c.Header.Size)
	c.Body[0] ^= 0xff
	assert.NotEqual(t, msg.Body[0], c.Body[0])
}

func TestString(t *testing.T) {
	msg := message.New(movePlayer)
	msg.Push(uint32(5))
	assert.Equal(t, "ID: 1 size: 4", msg.String())
}
