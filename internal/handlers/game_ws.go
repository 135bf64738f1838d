// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Gabriel-Gonta/memory-game/internal/room"
	"github.com/Gabriel-Gonta/memory-game/internal/ws"
)

// playerConn wraps one client's live presence. It implements ws.Conn
// through a buffered out-channel with a non-blocking write, so the hub
// can fan out without ever blocking on a slow peer.
type playerConn struct {
	playerID string
	out      chan ws.Message
	ctx      context.Context
	cancel   context.CancelFunc

	mu       sync.Mutex
	roomCode string // room this connection is registered under, "" if none
}

func newPlayerConn(parent context.Context, playerID string) *playerConn {
	ctx, cancel := context.WithCancel(parent)
	return &playerConn{
		playerID: playerID,
		out:      make(chan ws.Message, 16),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Send queues a message for the write pump. A finished connection or a
// full buffer reports an error, which the hub treats as a disconnect.
func (pc *playerConn) Send(msg ws.Message) error {
	if pc.ctx.Err() != nil {
		return fmt.Errorf("connection for player %s is closed", pc.playerID)
	}
	select {
	case pc.out <- msg:
		return nil
	default:
		return fmt.Errorf("out channel full for player %s", pc.playerID)
	}
}

func (pc *playerConn) setRoom(code string) {
	pc.mu.Lock()
	pc.roomCode = code
	pc.mu.Unlock()
}

func (pc *playerConn) room() string {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.roomCode
}

// GameWSHandler upgrades the connection and runs the message loop. All
// room actions (create/join/leave/start/finish/state) arrive in-band
// as JSON packets with a "type" field.
func GameWSHandler(logger *logrus.Logger, s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Identity first: the cookie has to be set before the upgrade
		// hijacks the response.
		playerID, err := EnsurePlayer(w, r)
		if err != nil {
			logger.Warnf("player identity failed: %v", err)
			http.Error(w, "could not establish player identity", http.StatusInternalServerError)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"memory"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "memory" {
			c.Close(BadSubprotocolError, "client must speak the memory subprotocol")
			return
		}

		pc := newPlayerConn(r.Context(), playerID)
		defer pc.cancel()
		logger.Infof("player %s connected from %s", playerID, r.RemoteAddr)

		go writePump(pc.ctx, c, pc, logger)
		readPump(pc.ctx, c, s, pc, logger)

		// The socket is gone; pull the player out of whatever room
		// they were in and tell the rest.
		s.leaveCurrentRoom(pc)
		logger.Infof("player %s disconnected", playerID)
	}
}

// readPump decodes inbound packets and dispatches them until the
// connection closes.
func readPump(ctx context.Context, c *websocket.Conn, s *Server, pc *playerConn, logger *logrus.Logger) {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				logger.Infof("websocket closed normally for player %s", pc.playerID)
			} else if !strings.Contains(err.Error(), "context canceled") {
				logger.Warnf("read error for player %s: %v", pc.playerID, err)
			}
			return
		}
		if typ != websocket.MessageText {
			logger.Warnf("ignoring non-text message from player %s", pc.playerID)
			continue
		}

		var packet map[string]interface{}
		if err := json.Unmarshal(data, &packet); err != nil {
			logger.Warnf("invalid json from player %s: %v", pc.playerID, err)
			s.Hub.SendToOne(errorMessage("invalid JSON format"), pc)
			continue
		}
		s.handleAction(pc, packet)
	}
}

// handleAction maps one inbound packet onto exactly one registry
// operation, then broadcasts to the room when state changed. Registry
// misses become error payloads for the requesting connection only.
func (s *Server) handleAction(pc *playerConn, packet map[string]interface{}) {
	action, _ := packet["type"].(string)
	switch action {
	case "create_room":
		name, _ := packet["name"].(string)
		if name == "" {
			name = "Player"
		}
		var settings json.RawMessage
		if raw, ok := packet["settings"]; ok && raw != nil {
			settings, _ = json.Marshal(raw)
		}

		// A player can only be in one room; creating implies leaving.
		s.leaveCurrentRoom(pc)

		code := s.Registry.CreateRoom(pc.playerID, name, settings)
		s.Hub.Connect(pc, code)
		pc.setRoom(code)

		snap, _ := s.Registry.Snapshot(code)
		s.Hub.SendToOne(roomMessage("room_created", &snap), pc)

	case "join_room":
		code, _ := packet["code"].(string)
		code = strings.ToUpper(strings.TrimSpace(code))
		name, _ := packet["name"].(string)
		if name == "" {
			name = "Player"
		}

		s.leaveCurrentRoom(pc)

		if _, ok := s.Registry.JoinRoom(code, pc.playerID, name); !ok {
			s.Hub.SendToOne(errorMessage("room not found, full, or already playing"), pc)
			return
		}
		s.Hub.Connect(pc, code)
		pc.setRoom(code)

		snap, _ := s.Registry.Snapshot(code)
		s.Hub.BroadcastToRoom(code, roomMessage("player_joined", &snap))

	case "leave_room":
		s.leaveCurrentRoom(pc)

	case "start_game":
		code := pc.room()
		if code == "" {
			s.Hub.SendToOne(errorMessage("not in a room"), pc)
			return
		}
		snap, ok := s.Registry.Snapshot(code)
		if !ok || snap.HostID != pc.playerID {
			s.Hub.SendToOne(errorMessage("only the host can start the game"), pc)
			return
		}
		if !s.Registry.UpdateRoomStatus(code, room.StatusPlaying) {
			s.Hub.SendToOne(errorMessage("game cannot start from the current state"), pc)
			return
		}
		snap, _ = s.Registry.Snapshot(code)
		s.Hub.BroadcastToRoom(code, roomMessage("game_started", &snap))

	case "finish_game":
		code := pc.room()
		if code == "" {
			s.Hub.SendToOne(errorMessage("not in a room"), pc)
			return
		}
		if !s.Registry.UpdateRoomStatus(code, room.StatusFinished) {
			s.Hub.SendToOne(errorMessage("game is not in progress"), pc)
			return
		}
		snap, _ := s.Registry.Snapshot(code)
		s.Hub.BroadcastToRoom(code, roomMessage("game_finished", &snap))

	case "update_score":
		scoreVal, _ := packet["score"].(float64)
		if !s.Registry.SetPlayerScore(pc.playerID, int(scoreVal)) {
			s.Hub.SendToOne(errorMessage("not in a room"), pc)
			return
		}
		code := pc.room()
		s.Hub.BroadcastToRoom(code, ws.Message{
			"type":      "score_update",
			"player_id": pc.playerID,
			"score":     int(scoreVal),
		})

	case "game_state":
		// Opaque relay: the server never interprets the state payload.
		code := pc.room()
		if code == "" {
			s.Hub.SendToOne(errorMessage("not in a room"), pc)
			return
		}
		s.Hub.BroadcastToRoom(code, ws.Message{
			"type":      "game_state",
			"player_id": pc.playerID,
			"state":     packet["state"],
		})

	default:
		s.Hub.SendToOne(errorMessage(fmt.Sprintf("unknown action type: %s", action)), pc)
	}
}

// leaveCurrentRoom detaches the connection from its room, removes the
// player from the registry and notifies the remaining members. Safe to
// call when the player is in no room.
func (s *Server) leaveCurrentRoom(pc *playerConn) {
	code := pc.room()
	if code == "" {
		return
	}
	pc.setRoom("")
	s.Hub.Disconnect(pc, code)

	if left, ok := s.Registry.LeaveRoom(pc.playerID); ok {
		if snap, found := s.Registry.Snapshot(left); found {
			s.Hub.BroadcastToRoom(left, roomMessage("player_left", &snap))
		}
	}
}

// roomMessage renders a room snapshot into the wire payload shared by
// all room-level notifications.
func roomMessage(msgType string, rm *room.Room) ws.Message {
	players := make([]map[string]interface{}, 0, len(rm.Players))
	for _, p := range rm.PlayersInOrder() {
		players = append(players, map[string]interface{}{
			"id":      p.ID,
			"name":    p.Name,
			"score":   p.Score,
			"is_host": p.IsHost,
		})
	}
	payload := map[string]interface{}{
		"code":    rm.Code,
		"host_id": rm.HostID,
		"status":  string(rm.Status),
		"players": players,
	}
	if len(rm.Settings) > 0 {
		payload["settings"] = rm.Settings
	}
	return ws.Message{"type": msgType, "room": payload}
}

func errorMessage(msg string) ws.Message {
	return ws.Message{"type": "error", "message": msg}
}

// writePump drains the out-channel onto the socket and keeps the
// connection alive with periodic pings.
func writePump(ctx context.Context, c *websocket.Conn, pc *playerConn, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-pc.out:
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("failed to marshal outgoing msg for player %s: %v", pc.playerID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("failed to write to websocket for player %s: %v", pc.playerID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("ping failed for player %s, assuming disconnect: %v", pc.playerID, err)
				return
			}
		}
	}
}
