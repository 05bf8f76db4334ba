package main

import (
	"crypto/rand"
	"sync"
	"time"
)

// Registry owns the code→Room map. It is constructed once at startup
// and injected everywhere rooms are looked up; nothing else holds a
// long-lived Room reference.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*liveRoom
	cfg   *Config
}

func newRegistry(cfg *Config) *Registry {
	return &Registry{
		rooms: make(map[string]*liveRoom),
		cfg:   cfg,
	}
}

const roomCodeLength = 6

// newRoomCode generates a crypto-random 6-character uppercase
// alphanumeric code and re-rolls on the (unlikely) collision with a
// live room.
func (reg *Registry) newRoomCode() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for {
		buf := make([]byte, roomCodeLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, roomCodeLength)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		code := string(out)

		reg.mu.Lock()
		_, exists := reg.rooms[code]
		reg.mu.Unlock()

		if !exists {
			return code
		}
	}
}

func (reg *Registry) createRoom(hostConnID, hostName string) *liveRoom {
	room := &liveRoom{
		Room: Room{
			ID:     reg.newRoomCode(),
			HostID: hostConnID,
			Players: []Player{{
				ID:     hostConnID,
				Name:   hostName,
				IsHost: true,
				Score:  0,
			}},
			GameState: GameState{
				IsStarted:        false,
				CurrentPlayerIdx: 0,
				Timer:            reg.cfg.turnSeconds,
				TimerActive:      false,
				Round:            1,
				MaxRounds:        reg.cfg.maxRounds,
				Charades:         []Card{},
				CurrentCardIdx:   0,
			},
			CreatedAt: time.Now(),
		},
		subscribers: make(map[*Client]bool),
	}

	reg.mu.Lock()
	reg.rooms[room.ID] = room
	reg.mu.Unlock()

	logf(reg.cfg, "ROOMS: Created room %s for %q", room.ID, hostName)

	return room
}

func (reg *Registry) getRoom(code string) (*liveRoom, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[code]
	return room, ok
}

// deleteRoom is idempotent; deleting an absent code is a no-op.
func (reg *Registry) deleteRoom(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.rooms[code]; ok {
		delete(reg.rooms, code)
		logf(reg.cfg, "ROOMS: Deleted room %s", code)
	}
}

// unsubscribeAll detaches a dead connection from every room's
// subscriber set, so later broadcasts cannot touch its send channel.
func (reg *Registry) unsubscribeAll(c *Client) {
	reg.mu.Lock()
	candidates := make([]*liveRoom, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		candidates = append(candidates, room)
	}
	reg.mu.Unlock()

	for _, room := range candidates {
		room.unsubscribe(c)
	}
}

// findRoomByConnection returns the room holding a seat for connID, if
// any. Room pointers are collected first so no room lock is taken while
// the registry lock is held.
func (reg *Registry) findRoomByConnection(connID string) (*liveRoom, bool) {
	reg.mu.Lock()
	candidates := make([]*liveRoom, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		candidates = append(candidates, room)
	}
	reg.mu.Unlock()

	for _, room := range candidates {
		room.mu.Lock()
		found := room.playerIndexByIDLocked(connID) >= 0
		room.mu.Unlock()

		if found {
			return room, true
		}
	}

	return nil, false
}
