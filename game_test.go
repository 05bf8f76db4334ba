package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStartedRoom(t *testing.T, cfg *Config) (*Registry, *Tracker, *liveRoom) {
	t.Helper()

	reg := newRegistry(cfg)
	tracker := newTracker(cfg, reg)

	room := reg.createRoom("host", "Alice")
	_, _, err := tracker.joinRoom(room.ID, "conn-b", "Bob")
	require.NoError(t, err)

	deck := []Card{
		{Text: "moonwalk", Difficulty: "easy"},
		{Text: "submarine", Difficulty: "medium"},
		{Text: "photosynthesis", Difficulty: "hard"},
	}

	room.mu.Lock()
	applied, err := applyActionLocked(cfg, room, "host", actionStartGame, actionPayload{Charades: deck})
	room.mu.Unlock()
	require.NoError(t, err)
	require.True(t, applied)

	return reg, tracker, room
}

func apply(t *testing.T, cfg *Config, room *liveRoom, actor, action string, payload actionPayload) error {
	t.Helper()

	room.mu.Lock()
	defer room.mu.Unlock()
	_, err := applyActionLocked(cfg, room, actor, action, payload)
	return err
}

func TestStartGameHostOnly(t *testing.T) {
	cfg := testConfig()
	reg := newRegistry(cfg)
	room := reg.createRoom("host", "Alice")

	deck := []Card{{Text: "moonwalk"}}

	require.NoError(t, apply(t, cfg, room, "stranger", actionStartGame, actionPayload{Charades: deck}))
	assert.False(t, room.GameState.IsStarted, "non-host start is silently ignored")

	require.NoError(t, apply(t, cfg, room, "host", actionStartGame, actionPayload{Charades: deck}))
	assert.True(t, room.GameState.IsStarted)
	assert.Equal(t, deck, room.GameState.Charades)
	assert.Equal(t, 0, room.GameState.CurrentCardIdx)
}

func TestCorrectScoresTurnPlayerOnly(t *testing.T) {
	cfg := testConfig()
	_, _, room := newStartedRoom(t, cfg)

	require.NoError(t, apply(t, cfg, room, "host", actionCorrect, actionPayload{}))

	assert.Equal(t, 1, room.Players[0].Score)
	assert.Equal(t, 0, room.Players[1].Score)
	assert.Equal(t, 1, room.GameState.CurrentCardIdx)
}

func TestCorrectFromNonHostIgnored(t *testing.T) {
	cfg := testConfig()
	_, _, room := newStartedRoom(t, cfg)

	require.NoError(t, apply(t, cfg, room, "conn-b", actionCorrect, actionPayload{}))

	assert.Equal(t, 0, room.Players[0].Score)
	assert.Equal(t, 0, room.Players[1].Score)
	assert.Equal(t, 0, room.GameState.CurrentCardIdx)
}

func TestStrictHostChecks(t *testing.T) {
	cfg := testConfig()
	cfg.strictHostChecks = true
	_, _, room := newStartedRoom(t, cfg)

	err := apply(t, cfg, room, "conn-b", actionCorrect, actionPayload{})
	assert.ErrorIs(t, err, errNotHost)
	assert.Equal(t, 0, room.Players[0].Score)

	// pass is never host-only, even in strict mode
	assert.NoError(t, apply(t, cfg, room, "conn-b", actionPass, actionPayload{}))
}

func TestCardIndexClampedAtDeckEnd(t *testing.T) {
	cfg := testConfig()
	_, _, room := newStartedRoom(t, cfg)

	for i := 0; i < 10; i++ {
		require.NoError(t, apply(t, cfg, room, "host", actionCorrect, actionPayload{}))
		require.NoError(t, apply(t, cfg, room, "conn-b", actionPass, actionPayload{}))
	}

	assert.Equal(t, len(room.GameState.Charades)-1, room.GameState.CurrentCardIdx)
	assert.GreaterOrEqual(t, room.GameState.CurrentCardIdx, 0)
}

func TestPassAllowedForAnyPlayer(t *testing.T) {
	cfg := testConfig()
	_, _, room := newStartedRoom(t, cfg)

	require.NoError(t, apply(t, cfg, room, "conn-b", actionPass, actionPayload{}))
	assert.Equal(t, 1, room.GameState.CurrentCardIdx)
}

func TestNextPlayerRotatesAndResetsTimer(t *testing.T) {
	cfg := testConfig()
	_, _, room := newStartedRoom(t, cfg)

	room.mu.Lock()
	room.GameState.Timer = 12
	room.GameState.TimerActive = true
	room.mu.Unlock()

	require.NoError(t, apply(t, cfg, room, "host", actionNextPlayer, actionPayload{}))
	assert.Equal(t, 1, room.GameState.CurrentPlayerIdx)
	assert.Equal(t, cfg.turnSeconds, room.GameState.Timer)
	assert.False(t, room.GameState.TimerActive)

	require.NoError(t, apply(t, cfg, room, "host", actionNextPlayer, actionPayload{}))
	assert.Equal(t, 0, room.GameState.CurrentPlayerIdx, "rotation wraps")
}

func TestTimerUpdate(t *testing.T) {
	cfg := testConfig()
	_, _, room := newStartedRoom(t, cfg)

	require.NoError(t, apply(t, cfg, room, "host", actionTimer, actionPayload{Timer: 42, TimerActive: true}))
	assert.Equal(t, 42, room.GameState.Timer)
	assert.True(t, room.GameState.TimerActive)
}

func TestUnknownActionIsNoOp(t *testing.T) {
	cfg := testConfig()
	_, _, room := newStartedRoom(t, cfg)

	room.mu.Lock()
	before := room.snapshotLocked()
	room.mu.Unlock()
	require.NoError(t, apply(t, cfg, room, "host", "dance", actionPayload{}))
	assert.Equal(t, before.GameState, room.GameState)
}

// Full walkthrough: create, two players, start with three cards,
// correct, next-player.
func TestGameplayScenario(t *testing.T) {
	cfg := testConfig()
	_, _, room := newStartedRoom(t, cfg)

	require.NoError(t, apply(t, cfg, room, "host", actionCorrect, actionPayload{}))
	assert.Equal(t, 1, room.Players[0].Score, "turn-0 player scored")
	assert.Equal(t, 1, room.GameState.CurrentCardIdx)

	require.NoError(t, apply(t, cfg, room, "host", actionNextPlayer, actionPayload{}))
	assert.Equal(t, 1, room.GameState.CurrentPlayerIdx)
	assert.Equal(t, 60, room.GameState.Timer)
	assert.False(t, room.GameState.TimerActive)
}
