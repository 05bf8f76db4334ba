package main

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		lobbyGrace:  50 * time.Millisecond,
		gameGrace:   250 * time.Millisecond,
		turnSeconds: 60,
		maxRounds:   3,
	}
}

func TestCreateRoomDefaults(t *testing.T) {
	reg := newRegistry(testConfig())

	room := reg.createRoom("conn-1", "Alice")

	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{6}$`), room.ID)
	require.Len(t, room.Players, 1)
	assert.True(t, room.Players[0].IsHost)
	assert.Equal(t, room.Players[0].ID, room.HostID)
	assert.Equal(t, "Alice", room.Players[0].Name)
	assert.Equal(t, 0, room.Players[0].Score)

	gs := room.GameState
	assert.False(t, gs.IsStarted)
	assert.Equal(t, 0, gs.CurrentPlayerIdx)
	assert.Equal(t, 60, gs.Timer)
	assert.False(t, gs.TimerActive)
	assert.Equal(t, 1, gs.Round)
	assert.Equal(t, 3, gs.MaxRounds)
	assert.Empty(t, gs.Charades)
	assert.Equal(t, 0, gs.CurrentCardIdx)
	assert.WithinDuration(t, time.Now(), room.CreatedAt, time.Second)
}

func TestGetAndDeleteRoom(t *testing.T) {
	reg := newRegistry(testConfig())

	room := reg.createRoom("conn-1", "Alice")

	got, ok := reg.getRoom(room.ID)
	require.True(t, ok)
	assert.Same(t, room, got)

	reg.deleteRoom(room.ID)

	_, ok = reg.getRoom(room.ID)
	assert.False(t, ok)

	// idempotent
	reg.deleteRoom(room.ID)
}

func TestRoomCodesUnique(t *testing.T) {
	reg := newRegistry(testConfig())

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		room := reg.createRoom("conn", "host")
		assert.False(t, seen[room.ID], "duplicate code %s", room.ID)
		seen[room.ID] = true
	}
}

func TestFindRoomByConnection(t *testing.T) {
	reg := newRegistry(testConfig())

	room := reg.createRoom("host-conn", "Alice")

	found, ok := reg.findRoomByConnection("host-conn")
	require.True(t, ok)
	assert.Equal(t, room.ID, found.ID)

	_, ok = reg.findRoomByConnection("nobody")
	assert.False(t, ok)
}
