// internal/room/registry.go
package room

import (
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Registry is the single source of truth for live rooms and the
// player -> room index. All operations are synchronous and in-memory;
// a registry-wide mutex makes each one atomic with respect to every
// concurrent caller.
//
// Every operation is total: unknown codes, duplicate joins and invalid
// transitions come back as absence or false, never as a panic.
type Registry struct {
	mu          sync.Mutex
	rooms       map[string]*Room
	playerRooms map[string]string // player ID -> room code
}

// NewRegistry returns an empty Registry. One instance per process,
// owned by the server startup routine.
func NewRegistry() *Registry {
	return &Registry{
		rooms:       make(map[string]*Room),
		playerRooms: make(map[string]string),
	}
}

// GenerateCode produces a fresh invite code that does not collide with
// any currently-live room.
func (r *Registry) GenerateCode() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generateCodeLocked()
}

// generateCodeLocked draws 6 uppercase letters until the result is not
// taken. The 26^6 space makes a retry vanishingly rare.
func (r *Registry) generateCodeLocked() string {
	for {
		b := make([]byte, CodeLength)
		for i := range b {
			b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
		}
		code := string(b)
		if _, taken := r.rooms[code]; !taken {
			return code
		}
	}
}

// CreateRoom allocates a code, creates a room with the creator as its
// sole (host) player and returns the code. It always succeeds.
func (r *Registry) CreateRoom(hostID, hostName string, settings json.RawMessage) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := r.generateCodeLocked()
	now := time.Now()
	rm := &Room{
		Code:      code,
		HostID:    hostID,
		Players:   make(map[string]*Player),
		Status:    StatusWaiting,
		Settings:  settings,
		CreatedAt: now,
		ExpiresAt: now.Add(TTL),
	}
	rm.addPlayer(&Player{ID: hostID, Name: hostName, IsHost: true})

	r.rooms[code] = rm
	r.playerRooms[hostID] = code
	return code
}

// JoinRoom adds a player to a waiting, non-full room. It reports false
// when the code is unknown, the room is no longer waiting, or the room
// is full. Joining a room the player is already in is idempotent and
// returns the room unchanged.
func (r *Registry) JoinRoom(code, playerID, playerName string) (*Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[code]
	if !ok {
		return nil, false
	}
	if rm.Status != StatusWaiting {
		return nil, false
	}
	if len(rm.Players) >= MaxPlayers {
		return nil, false
	}
	if _, exists := rm.Players[playerID]; exists {
		return rm, true
	}

	rm.addPlayer(&Player{ID: playerID, Name: playerName})
	r.playerRooms[playerID] = code
	return rm, true
}

// LeaveRoom removes the player from whatever room they are in. It
// returns the room's code when the room keeps existing afterwards.
// When the departing player was the last member the room is deleted
// and LeaveRoom reports absence, same as for a player who was not in
// any room. A departing host hands the room to the earliest-joined
// remaining player.
func (r *Registry) LeaveRoom(playerID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, ok := r.playerRooms[playerID]
	if !ok {
		return "", false
	}
	delete(r.playerRooms, playerID)

	rm, ok := r.rooms[code]
	if !ok {
		// Index pointed at a room that no longer exists. Should be
		// impossible through the public operations.
		logrus.Errorf("room registry: player %s indexed to missing room %s", playerID, code)
		return "", false
	}

	rm.removePlayer(playerID)

	if playerID == rm.HostID {
		next := rm.firstPlayer()
		if next == nil {
			delete(r.rooms, code)
			return "", false
		}
		next.IsHost = true
		rm.HostID = next.ID
	} else if _, hostPresent := rm.Players[rm.HostID]; !hostPresent {
		logrus.Errorf("room registry: room %s host %s missing from players", code, rm.HostID)
		if next := rm.firstPlayer(); next != nil {
			next.IsHost = true
			rm.HostID = next.ID
		} else {
			delete(r.rooms, code)
			return "", false
		}
	}
	return code, true
}

// GetRoom looks up a room by code. The returned room is owned by the
// registry; callers must not mutate it.
func (r *Registry) GetRoom(code string) (*Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[code]
	return rm, ok
}

// GetPlayerRoom resolves the room a player currently belongs to.
func (r *Registry) GetPlayerRoom(playerID string) (*Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, ok := r.playerRooms[playerID]
	if !ok {
		return nil, false
	}
	rm, ok := r.rooms[code]
	return rm, ok
}

// Snapshot returns a deep copy of a room for read-only use outside the
// registry lock, e.g. when building broadcast payloads.
func (r *Registry) Snapshot(code string) (Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[code]
	if !ok {
		return Room{}, false
	}
	cp := *rm
	cp.Players = make(map[string]*Player, len(rm.Players))
	for id, p := range rm.Players {
		pc := *p
		cp.Players[id] = &pc
	}
	cp.joinOrder = append([]string(nil), rm.joinOrder...)
	return cp, true
}

// UpdateRoomStatus applies a status transition. Only Waiting->Playing
// and Playing->Finished are valid; anything else, including an unknown
// code, reports false and leaves the room untouched.
func (r *Registry) UpdateRoomStatus(code string, status Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[code]
	if !ok {
		return false
	}
	if !canTransition(rm.Status, status) {
		return false
	}
	rm.Status = status
	return true
}

func canTransition(from, to Status) bool {
	switch from {
	case StatusWaiting:
		return to == StatusPlaying
	case StatusPlaying:
		return to == StatusFinished
	case StatusFinished:
		return false
	}
	return false
}

// SetPlayerScore updates a player's running score inside their room.
// Reports false when the player is not in any tracked room.
func (r *Registry) SetPlayerScore(playerID string, score int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, ok := r.playerRooms[playerID]
	if !ok {
		return false
	}
	rm, ok := r.rooms[code]
	if !ok {
		logrus.Errorf("room registry: player %s indexed to missing room %s", playerID, code)
		return false
	}
	p, ok := rm.Players[playerID]
	if !ok {
		logrus.Errorf("room registry: player %s indexed to room %s but absent from it", playerID, code)
		return false
	}
	p.Score = score
	return true
}

// CleanupExpiredRooms removes every room whose TTL has lapsed, along
// with its players' index entries. It returns how many rooms were
// removed. Safe to call on any schedule, concurrently with everything
// else.
func (r *Registry) CleanupExpiredRooms() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	removed := 0
	for code, rm := range r.rooms {
		if !rm.ExpiresAt.Before(now) {
			continue
		}
		for playerID := range rm.Players {
			delete(r.playerRooms, playerID)
		}
		delete(r.rooms, code)
		removed++
	}
	return removed
}
