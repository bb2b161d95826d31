// File: server/server_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server_test

import (
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/client"
	"github.com/momentics/hioload-net/connection"
	"github.com/momentics/hioload-net/message"
	"github.com/momentics/hioload-net/server"
)

type tag uint32

const (
	tagAccept tag = iota + 1
	tagBroadcast
	tagRelay
)

const waitFor = 2 * time.Second

func startServer(t *testing.T, h server.Handler[tag]) (*server.Server[tag], int) {
	t.Helper()
	cfg := server.DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	srv := server.NewServer[tag](h, server.WithConfig(cfg))
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)
	return srv, srv.Addr().(*net.TCPAddr).Port
}

func dial(t *testing.T, port int) *client.Client[tag] {
	t.Helper()
	c := client.New[tag]()
	require.NoError(t, c.Connect("127.0.0.1", port))
	t.Cleanup(c.Disconnect)
	return c
}

func acceptAll() server.HandlerFuncs[tag] {
	return server.HandlerFuncs[tag]{
		Connect: func(*connection.Connection[tag]) bool { return true },
	}
}

func TestAcceptSendsGreeting(t *testing.T) {
	srv, port := startServer(t, server.HandlerFuncs[tag]{
		Connect: func(c *connection.Connection[tag]) bool {
			c.Send(message.New(tagAccept))
			return true
		},
	})
	c := dial(t, port)

	require.Eventually(t, func() bool { return c.Incoming().Count() == 1 }, waitFor, time.Millisecond)
	om, ok := c.Incoming().PopFront()
	require.True(t, ok)
	assert.Equal(t, tagAccept, om.Msg.Header.ID)
	assert.Zero(t, om.Msg.Size())

	conns := srv.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, uint32(10000), conns[0].ID())
}

func TestIDsAreSequential(t *testing.T) {
	srv, port := startServer(t, acceptAll())
	for i := 0; i < 3; i++ {
		dial(t, port)
		require.Eventually(t, func() bool { return len(srv.Connections()) == i+1 }, waitFor, time.Millisecond)
	}
	var ids []uint32
	for _, c := range srv.Connections() {
		ids = append(ids, c.ID())
	}
	assert.Equal(t, []uint32{10000, 10001, 10002}, ids)
	assert.EqualValues(t, 3, srv.Stats()["connections_accepted"])
}

func TestBroadcastSkipsSender(t *testing.T) {
	var senderID atomic.Uint32
	var srv *server.Server[tag]
	h := acceptAll()
	h.Message = func(c *connection.Connection[tag], msg *message.Message[tag]) {
		if msg.Header.ID != tagBroadcast {
			return
		}
		senderID.Store(c.ID())
		relay := message.New(tagRelay)
		relay.Push(c.ID())
		srv.MessageAllClient(relay, c)
	}
	srv, port := startServer(t, h)

	a := dial(t, port)
	require.Eventually(t, func() bool { return len(srv.Connections()) == 1 }, waitFor, time.Millisecond)
	b := dial(t, port)
	require.Eventually(t, func() bool { return len(srv.Connections()) == 2 }, waitFor, time.Millisecond)

	a.Send(message.New(tagBroadcast))
	require.Eventually(t, func() bool {
		srv.Update(-1)
		return b.Incoming().Count() == 1
	}, waitFor, time.Millisecond)

	om, ok := b.Incoming().PopFront()
	require.True(t, ok)
	assert.Equal(t, tagRelay, om.Msg.Header.ID)
	var from uint32
	om.Msg.Pop(&from)
	assert.Equal(t, senderID.Load(), from)
	assert.Equal(t, srv.Connections()[0].ID(), from)

	time.Sleep(50 * time.Millisecond)
	assert.True(t, a.Incoming().Empty())
}

func TestDeadClientRemovedOnce(t *testing.T) {
	var drops atomic.Int32
	h := acceptAll()
	h.Disconnect = func(*connection.Connection[tag]) { drops.Add(1) }
	srv, port := startServer(t, h)

	doomed := dial(t, port)
	require.Eventually(t, func() bool { return len(srv.Connections()) == 1 }, waitFor, time.Millisecond)
	survivor := dial(t, port)
	require.Eventually(t, func() bool { return len(srv.Connections()) == 2 }, waitFor, time.Millisecond)
	target := srv.Connections()[0]

	doomed.Disconnect()
	require.Eventually(t, func() bool { return !target.IsConnected() }, waitFor, time.Millisecond)

	srv.MessageAllClient(message.New(tagRelay), nil)
	assert.EqualValues(t, 1, drops.Load())
	require.Len(t, srv.Connections(), 1)
	assert.NotSame(t, target, srv.Connections()[0])

	srv.MessageAllClient(message.New(tagRelay), nil)
	srv.MessageClient(target, message.New(tagRelay))
	assert.EqualValues(t, 1, drops.Load())

	require.Eventually(t, func() bool { return survivor.Incoming().Count() == 2 }, waitFor, time.Millisecond)
}

func TestMessageClientDropsClosedTarget(t *testing.T) {
	var mu sync.Mutex
	var dropped []*connection.Connection[tag]
	h := acceptAll()
	h.Disconnect = func(c *connection.Connection[tag]) {
		mu.Lock()
		dropped = append(dropped, c)
		mu.Unlock()
	}
	srv, port := startServer(t, h)

	c := dial(t, port)
	require.Eventually(t, func() bool { return len(srv.Connections()) == 1 }, waitFor, time.Millisecond)
	target := srv.Connections()[0]

	srv.MessageClient(target, message.New(tagAccept))
	require.Eventually(t, func() bool { return c.Incoming().Count() == 1 }, waitFor, time.Millisecond)

	c.Disconnect()
	require.Eventually(t, func() bool { return !target.IsConnected() }, waitFor, time.Millisecond)
	srv.MessageClient(target, message.New(tagAccept))
	srv.MessageClient(target, message.New(tagAccept))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, dropped, 1)
	assert.Same(t, target, dropped[0])
	assert.Empty(t, srv.Connections())
}

func TestDefaultHandlerDenies(t *testing.T) {
	srv, port := startServer(t, nil)
	c := dial(t, port)

	require.Eventually(t, func() bool { return !c.IsConnected() }, waitFor, time.Millisecond)
	assert.Empty(t, srv.Connections())
	assert.EqualValues(t, 1, srv.Stats()["connections_denied"])
}

func TestUpdateRespectsLimitAndOrder(t *testing.T) {
	var seen []int32
	h := acceptAll()
	h.Message = func(_ *connection.Connection[tag], msg *message.Message[tag]) {
		var v int32
		msg.Pop(&v)
		seen = append(seen, v)
	}
	srv, port := startServer(t, h)
	c := dial(t, port)

	for i := int32(0); i < 5; i++ {
		m := message.New(tagBroadcast)
		m.Push(i)
		c.Send(m)
	}
	require.Eventually(t, func() bool { return srv.Incoming().Count() == 5 }, waitFor, time.Millisecond)

	assert.Equal(t, 2, srv.Update(2))
	assert.Equal(t, []int32{0, 1}, seen)
	assert.Equal(t, 3, srv.Update(-1))
	assert.Equal(t, []int32{0, 1, 2, 3, 4}, seen)
	assert.Zero(t, srv.Update(-1))
}

func TestStartTwiceAndBindFailure(t *testing.T) {
	srv, port := startServer(t, acceptAll())
	assert.ErrorIs(t, srv.Start(), api.ErrAlreadyRunning)

	cfg := server.DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = port
	other := server.NewServer[tag](acceptAll(), server.WithConfig(cfg))
	err := other.Start()
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrListen)
	assert.Nil(t, other.Addr())
	other.Stop()
}

func TestStopRefusesRestart(t *testing.T) {
	srv, _ := startServer(t, acceptAll())
	srv.Stop()
	srv.Stop()
	assert.ErrorIs(t, srv.Start(), api.ErrClosed)
}
