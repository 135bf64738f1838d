// internal/ws/hub_test.go
package ws

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records delivered messages and can be told to fail.
type fakeConn struct {
	mu   sync.Mutex
	got  []Message
	fail bool
}

func (c *fakeConn) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("peer went away")
	}
	c.got = append(c.got, msg)
	return nil
}

func (c *fakeConn) received() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.got)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestBroadcastReachesEveryMember(t *testing.T) {
	h := NewHub(quietLogger())
	x, y := &fakeConn{}, &fakeConn{}
	h.Connect(x, "ROOMAA")
	h.Connect(y, "ROOMAA")

	h.BroadcastToRoom("ROOMAA", Message{"type": "game_started"})
	assert.Equal(t, 1, x.received())
	assert.Equal(t, 1, y.received())
}

func TestBroadcastUnknownRoomIsNoop(t *testing.T) {
	h := NewHub(quietLogger())
	h.BroadcastToRoom("NOSUCH", Message{"type": "anything"})
}

func TestBroadcastDoesNotLeakAcrossRooms(t *testing.T) {
	h := NewHub(quietLogger())
	a, b := &fakeConn{}, &fakeConn{}
	h.Connect(a, "ROOMAA")
	h.Connect(b, "ROOMBB")

	h.BroadcastToRoom("ROOMAA", Message{"type": "hello"})
	assert.Equal(t, 1, a.received())
	assert.Equal(t, 0, b.received())
}

func TestBroadcastPrunesFailedConnection(t *testing.T) {
	h := NewHub(quietLogger())
	x := &fakeConn{fail: true}
	y := &fakeConn{}
	h.Connect(x, "ROOMAA")
	h.Connect(y, "ROOMAA")

	h.BroadcastToRoom("ROOMAA", Message{"type": "state"})
	assert.Equal(t, 1, y.received(), "healthy peer still gets the message")
	assert.Equal(t, 1, h.RoomSize("ROOMAA"), "failed peer is removed")

	// The pruned connection gets nothing on the next pass.
	x.mu.Lock()
	x.fail = false
	x.mu.Unlock()
	h.BroadcastToRoom("ROOMAA", Message{"type": "state"})
	assert.Equal(t, 0, x.received())
	assert.Equal(t, 2, y.received())
}

func TestDisconnectRemovesEmptyRoomEntry(t *testing.T) {
	h := NewHub(quietLogger())
	c := &fakeConn{}
	h.Connect(c, "ROOMAA")
	require.Equal(t, 1, h.RoomSize("ROOMAA"))

	h.Disconnect(c, "ROOMAA")
	assert.Equal(t, 0, h.RoomSize("ROOMAA"))

	// Disconnecting twice, or from a room never joined, is harmless.
	h.Disconnect(c, "ROOMAA")
	h.Disconnect(c, "OTHER")
}

func TestSendToOneSwallowsFailure(t *testing.T) {
	h := NewHub(quietLogger())
	dead := &fakeConn{fail: true}
	h.SendToOne(Message{"type": "error"}, dead)

	ok := &fakeConn{}
	h.SendToOne(Message{"type": "room_state"}, ok)
	assert.Equal(t, 1, ok.received())
}

func TestConcurrentConnectBroadcastDisconnect(t *testing.T) {
	h := NewHub(quietLogger())
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			room := fmt.Sprintf("ROOM%02d", i%4)
			c := &fakeConn{}
			h.Connect(c, room)
			h.BroadcastToRoom(room, Message{"n": i})
			h.Disconnect(c, room)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		assert.Equal(t, 0, h.RoomSize(fmt.Sprintf("ROOM%02d", i)))
	}
}
