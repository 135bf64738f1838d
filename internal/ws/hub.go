// internal/ws/hub.go
package ws

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Message is an opaque payload fanned out to room members. The hub
// never inspects it; its schema belongs to the transport layer.
type Message map[string]interface{}

// Conn is the minimal surface the hub needs from a connection. The
// transport's wrapper backs Send with a buffered out-channel and a
// non-blocking write, so one slow peer cannot stall a broadcast. A
// Send error means the peer is gone.
type Conn interface {
	Send(msg Message) error
}

// Hub tracks which live connections belong to which room and delivers
// messages to them. It holds connections by reference only; their
// lifecycle belongs to the transport layer, and room semantics belong
// to the registry. The two never talk to each other directly.
type Hub struct {
	mu     sync.Mutex
	rooms  map[string]map[Conn]struct{}
	logger *logrus.Logger
}

// NewHub returns an empty Hub. One instance per process.
func NewHub(logger *logrus.Logger) *Hub {
	if logger == nil {
		logger = logrus.New()
	}
	return &Hub{
		rooms:  make(map[string]map[Conn]struct{}),
		logger: logger,
	}
}

// Connect registers conn under roomCode, creating the room's set on
// first use.
func (h *Hub) Connect(conn Conn, roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.rooms[roomCode]
	if !ok {
		set = make(map[Conn]struct{})
		h.rooms[roomCode] = set
	}
	set[conn] = struct{}{}
	h.logger.Infof("client connected to room %s", roomCode)
}

// Disconnect removes conn from roomCode's set; the room entry itself
// is dropped once its last connection leaves.
func (h *Hub) Disconnect(conn Conn, roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.rooms[roomCode]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.rooms, roomCode)
		}
	}
	h.logger.Infof("client disconnected from room %s", roomCode)
}

// SendToOne delivers a message to a single connection, best effort.
// A failed send is logged and otherwise swallowed.
func (h *Hub) SendToOne(msg Message, conn Conn) {
	if err := conn.Send(msg); err != nil {
		h.logger.Errorf("error sending personal message: %v", err)
	}
}

// BroadcastToRoom delivers a message to every connection registered
// under roomCode. An unknown room is a silent no-op. A connection that
// fails mid-broadcast does not stop delivery to the rest; it is pruned
// from the room's set, treating the failure as a disconnect.
func (h *Hub) BroadcastToRoom(roomCode string, msg Message) {
	h.mu.Lock()
	conns := make([]Conn, 0, len(h.rooms[roomCode]))
	for conn := range h.rooms[roomCode] {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	var failed []Conn
	for _, conn := range conns {
		if err := conn.Send(msg); err != nil {
			h.logger.Errorf("error broadcasting to room %s: %v", roomCode, err)
			failed = append(failed, conn)
		}
	}
	if len(failed) == 0 {
		return
	}

	h.mu.Lock()
	if set, ok := h.rooms[roomCode]; ok {
		for _, conn := range failed {
			delete(set, conn)
		}
	}
	h.mu.Unlock()
}

// RoomSize reports how many connections are registered under roomCode.
func (h *Hub) RoomSize(roomCode string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomCode])
}
