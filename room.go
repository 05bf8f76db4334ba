package main

import (
	"sync"
	"time"
)

// Card is a single charade prompt, produced by the generator or
// supplied directly by the host.
type Card struct {
	Text       string `json:"text"`
	Difficulty string `json:"difficulty,omitempty"`
}

// Player is one seat in a room. ID is the current connection id owning
// the seat and changes across reconnects; identity persists by name.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
	Score  int    `json:"score"`
}

type GameState struct {
	IsStarted        bool   `json:"isStarted"`
	CurrentPlayerIdx int    `json:"currentPlayerIdx"`
	Timer            int    `json:"timer"`
	TimerActive      bool   `json:"timerActive"`
	Round            int    `json:"round"`
	MaxRounds        int    `json:"maxRounds"`
	Charades         []Card `json:"charades"`
	CurrentCardIdx   int    `json:"currentCardIdx"`
}

// Room is the wire-level view of a session, broadcast wholesale to
// every subscriber after each mutation.
type Room struct {
	ID        string    `json:"id"`
	HostID    string    `json:"hostId"`
	Players   []Player  `json:"players"`
	GameState GameState `json:"gameState"`
	CreatedAt time.Time `json:"createdAt"`
}

// liveRoom is the server-side session: the wire state plus its
// serialization domain. All mutation and all broadcasting happens
// under mu, so subscribers observe state updates in the order they
// were applied.
type liveRoom struct {
	Room

	mu          sync.Mutex
	subscribers map[*Client]bool
}

// snapshotLocked returns a copy safe to hand to write pumps while the
// room keeps mutating. Assumes r.mu is held.
func (r *liveRoom) snapshotLocked() Room {
	snap := r.Room
	snap.Players = append([]Player(nil), r.Players...)
	snap.GameState.Charades = append([]Card(nil), r.GameState.Charades...)
	return snap
}

func (r *liveRoom) subscribe(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subscribers[c] = true
}

func (r *liveRoom) unsubscribe(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.subscribers, c)
}

// broadcastLocked fans msg out to every subscribed connection. Clients
// with a full send buffer are dropped from the room's subscriber set;
// their connection cleanup handles the rest. Assumes r.mu is held.
func (r *liveRoom) broadcastLocked(event string, data any) {
	msg := serverMessage{Event: event, Data: data}

	for client := range r.subscribers {
		select {
		case client.send <- msg:
		default:
			delete(r.subscribers, client)
		}
	}
}

func (r *liveRoom) playerIndexByIDLocked(connID string) int {
	for i, p := range r.Players {
		if p.ID == connID {
			return i
		}
	}
	return -1
}

func (r *liveRoom) playerIndexByNameLocked(name string) int {
	for i, p := range r.Players {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// clampTurnLocked keeps currentPlayerIdx a valid index after the player
// list shrinks. Assumes r.mu is held.
func (r *liveRoom) clampTurnLocked() {
	if len(r.Players) == 0 {
		r.GameState.CurrentPlayerIdx = 0
		return
	}
	r.GameState.CurrentPlayerIdx %= len(r.Players)
}
