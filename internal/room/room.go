// internal/room/room.go
package room

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle phase of a room. Rooms move strictly
// Waiting -> Playing -> Finished; Finished is terminal.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

const (
	// CodeLength is the number of characters in an invite code.
	CodeLength = 6

	// MaxPlayers is the room capacity, enforced at join time.
	MaxPlayers = 4

	// TTL is how long a room lives after creation. It is fixed at
	// creation and not refreshed by activity.
	TTL = 2 * time.Hour
)

// Player is a participant in a room.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	IsHost bool   `json:"isHost"`
}

// Room groups up to MaxPlayers players under a short invite code.
// Rooms are memory-resident and ephemeral; the registry owns them and
// all mutation happens under the registry lock.
type Room struct {
	Code      string             `json:"code"`
	HostID    string             `json:"hostId"`
	Players   map[string]*Player `json:"players"`
	Status    Status             `json:"status"`
	Settings  json.RawMessage    `json:"settings,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	ExpiresAt time.Time          `json:"expiresAt"`

	// joinOrder records player IDs by arrival. Host transfer promotes
	// the earliest-joined remaining player, so arrival order must be
	// kept explicitly rather than relying on map iteration.
	joinOrder []string
}

func (rm *Room) addPlayer(p *Player) {
	rm.Players[p.ID] = p
	rm.joinOrder = append(rm.joinOrder, p.ID)
}

func (rm *Room) removePlayer(playerID string) {
	delete(rm.Players, playerID)
	for i, id := range rm.joinOrder {
		if id == playerID {
			rm.joinOrder = append(rm.joinOrder[:i], rm.joinOrder[i+1:]...)
			break
		}
	}
}

// firstPlayer returns the earliest-joined player still present, or nil
// if the room is empty.
func (rm *Room) firstPlayer() *Player {
	for _, id := range rm.joinOrder {
		if p, ok := rm.Players[id]; ok {
			return p
		}
	}
	return nil
}

// PlayersInOrder returns the current players sorted by arrival.
func (rm *Room) PlayersInOrder() []*Player {
	out := make([]*Player, 0, len(rm.Players))
	for _, id := range rm.joinOrder {
		if p, ok := rm.Players[id]; ok {
			out = append(out, p)
		}
	}
	return out
}
