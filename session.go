package main

import (
	"sync"
	"time"
)

// disconnectedPlayer preserves a seat while its owner is offline. The
// timer either fires (permanent removal) or is cancelled by a rejoin;
// the records map is the single decision point, so exactly one of the
// two outcomes applies.
type disconnectedPlayer struct {
	roomCode       string
	player         Player
	disconnectedAt time.Time
	timer          *time.Timer
}

// Tracker maps transport connections to seats in rooms: joins, rejoins
// after navigation or disconnect, and departures. It exclusively owns
// the disconnected-player records.
//
// Lock order: room.mu before t.mu, never the reverse.
type Tracker struct {
	mu       sync.Mutex
	records  map[string]*disconnectedPlayer // keyed by the stale connection id
	registry *Registry
	cfg      *Config
}

func newTracker(cfg *Config, registry *Registry) *Tracker {
	return &Tracker{
		records:  make(map[string]*disconnectedPlayer),
		registry: registry,
		cfg:      cfg,
	}
}

// joinRoom seats a new player. Joining twice from the same connection
// is a no-op; names are unique within a room so that rejoin-by-name is
// unambiguous.
func (t *Tracker) joinRoom(code, connID, name string) (*liveRoom, Player, error) {
	room, ok := t.registry.getRoom(code)
	if !ok {
		return nil, Player{}, errRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if idx := room.playerIndexByIDLocked(connID); idx >= 0 {
		// Repeat join from the same connection: no mutation, but
		// re-broadcast so the requester's pending wait resolves.
		player := room.Players[idx]
		room.broadcastLocked("player-joined", playerJoinedData{
			Room:      room.snapshotLocked(),
			NewPlayer: player,
		})
		return room, player, nil
	}

	if idx := room.playerIndexByNameLocked(name); idx >= 0 {
		return nil, Player{}, errNameTaken
	}

	player := Player{
		ID:     connID,
		Name:   name,
		IsHost: false,
		Score:  0,
	}
	room.Players = append(room.Players, player)

	logf(t.cfg, "ROOMS: Player %q joined %s", name, code)

	room.broadcastLocked("player-joined", playerJoinedData{
		Room:      room.snapshotLocked(),
		NewPlayer: player,
	})

	return room, player, nil
}

// rejoinRoom reattaches a connection to its seat, resolving in order:
// same connection already seated, seat held under a stale connection
// id, or a pending disconnected-player record.
func (t *Tracker) rejoinRoom(code, connID, name string) (*liveRoom, error) {
	room, ok := t.registry.getRoom(code)
	if !ok {
		return nil, errRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.playerIndexByIDLocked(connID) >= 0 {
		return room, nil
	}

	if idx := room.playerIndexByNameLocked(name); idx >= 0 {
		staleID := room.Players[idx].ID
		room.Players[idx].ID = connID
		if room.Players[idx].IsHost {
			room.HostID = connID
		}
		t.cancelRecord(staleID)

		logf(t.cfg, "ROOMS: Player %q rejoined %s", name, code)

		room.broadcastLocked("player-rejoined", roomData{Room: room.snapshotLocked()})

		return room, nil
	}

	if record, ok := t.takeRecordByName(code, name); ok {
		player := record.player
		player.ID = connID
		room.Players = append(room.Players, player)
		room.clampTurnLocked()

		logf(t.cfg, "ROOMS: Player %q restored into %s", name, code)

		room.broadcastLocked("player-joined", playerJoinedData{
			Room:      room.snapshotLocked(),
			NewPlayer: player,
		})

		return room, nil
	}

	return nil, errPlayerNotFound
}

// handleDisconnect reacts to a transport-level drop. Host departure
// closes the room for everyone; other players get a grace period to
// reconnect before their seat is released.
func (t *Tracker) handleDisconnect(connID string) {
	room, ok := t.registry.findRoomByConnection(connID)
	if !ok {
		return
	}

	room.mu.Lock()

	idx := room.playerIndexByIDLocked(connID)
	if idx < 0 {
		room.mu.Unlock()
		return
	}

	if room.Players[idx].IsHost {
		room.broadcastLocked("room-closed", errorData{Message: "The host has left the game."})
		room.subscribers = make(map[*Client]bool)
		room.mu.Unlock()

		t.registry.deleteRoom(room.ID)
		logf(t.cfg, "ROOMS: Host left, closed room %s", room.ID)
		return
	}

	grace := t.cfg.lobbyGrace
	if room.GameState.IsStarted {
		grace = t.cfg.gameGrace
	}
	player := room.Players[idx]
	room.mu.Unlock()

	t.mu.Lock()
	t.records[connID] = &disconnectedPlayer{
		roomCode:       room.ID,
		player:         player,
		disconnectedAt: time.Now(),
		timer:          time.AfterFunc(grace, func() { t.finalizeRemoval(connID) }),
	}
	t.mu.Unlock()

	logf(t.cfg, "ROOMS: Player %q disconnected from %s, grace %s", player.Name, room.ID, grace)
}

// finalizeRemoval fires when a grace period expires without a rejoin.
// The seat is only released if it is still held by the stale connection
// id; a rejoin that won the race leaves the seat under a new id.
func (t *Tracker) finalizeRemoval(staleID string) {
	t.mu.Lock()
	record, ok := t.records[staleID]
	if ok {
		delete(t.records, staleID)
	}
	t.mu.Unlock()

	if !ok {
		return
	}

	room, found := t.registry.getRoom(record.roomCode)
	if !found {
		return
	}

	room.mu.Lock()

	idx := room.playerIndexByNameLocked(record.player.Name)
	if idx < 0 || room.Players[idx].ID != staleID {
		room.mu.Unlock()
		return
	}

	t.removePlayerLocked(room, idx)

	logf(t.cfg, "ROOMS: Player %q timed out of %s", record.player.Name, record.roomCode)

	room.broadcastLocked("player-left", roomData{Room: room.snapshotLocked()})

	empty := len(room.Players) == 0
	started := room.GameState.IsStarted
	room.mu.Unlock()

	// An empty room from a started game stays alive: the last player
	// may still be mid-reconnect.
	if empty && !started {
		t.registry.deleteRoom(record.roomCode)
	}
}

// leaveRoom is the explicit departure path: no grace period, the seat
// is released synchronously.
func (t *Tracker) leaveRoom(code, connID string) {
	room, ok := t.registry.getRoom(code)
	if !ok {
		return
	}

	room.mu.Lock()

	idx := room.playerIndexByIDLocked(connID)
	if idx < 0 {
		room.mu.Unlock()
		return
	}

	if room.Players[idx].IsHost {
		room.broadcastLocked("room-closed", errorData{Message: "The host has left the game."})
		room.subscribers = make(map[*Client]bool)
		room.mu.Unlock()

		t.registry.deleteRoom(code)
		return
	}

	name := room.Players[idx].Name
	t.removePlayerLocked(room, idx)

	logf(t.cfg, "ROOMS: Player %q left %s", name, code)

	room.broadcastLocked("player-left", roomData{Room: room.snapshotLocked()})

	empty := len(room.Players) == 0
	started := room.GameState.IsStarted
	room.mu.Unlock()

	if empty && !started {
		t.registry.deleteRoom(code)
	}
}

func (t *Tracker) removePlayerLocked(room *liveRoom, idx int) {
	room.Players = append(room.Players[:idx], room.Players[idx+1:]...)
	room.clampTurnLocked()
}

// cancelRecord drops a pending removal after a successful rejoin.
func (t *Tracker) cancelRecord(staleID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if record, ok := t.records[staleID]; ok {
		record.timer.Stop()
		delete(t.records, staleID)
	}
}

func (t *Tracker) takeRecordByName(code, name string) (*disconnectedPlayer, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for staleID, record := range t.records {
		if record.roomCode == code && record.player.Name == name {
			record.timer.Stop()
			delete(t.records, staleID)
			return record, true
		}
	}

	return nil, false
}
