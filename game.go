package main

// Game actions, as sent in game-action messages. start-game also has a
// dedicated top-level message, which funnels into the same transition.
const (
	actionStartGame  = "start-game"
	actionCorrect    = "correct"
	actionPass       = "pass"
	actionNextPlayer = "next-player"
	actionTimer      = "timer-update"
)

// applyActionLocked runs one state-machine transition on the room and
// reports whether state was mutated. Host-only actions from other
// connections are silently ignored unless --strict-host-checks is set,
// in which case errNotHost is returned for a point-to-point reply.
// Unknown actions are no-ops. Assumes r.mu is held.
func applyActionLocked(cfg *Config, r *liveRoom, actorID, action string, payload actionPayload) (bool, error) {
	gs := &r.GameState

	hostOnly := func() bool { return actorID == r.HostID }
	denied := func() (bool, error) {
		if cfg.strictHostChecks {
			return false, errNotHost
		}
		return false, nil
	}

	switch action {
	case actionStartGame:
		if !hostOnly() {
			return denied()
		}
		gs.IsStarted = true
		gs.Charades = payload.Charades
		gs.CurrentCardIdx = 0

	case actionCorrect:
		if !hostOnly() {
			return denied()
		}
		if gs.CurrentPlayerIdx >= 0 && gs.CurrentPlayerIdx < len(r.Players) {
			r.Players[gs.CurrentPlayerIdx].Score++
		}
		advanceCard(gs)

	case actionPass:
		// Any player may pass, mirroring the physical game.
		advanceCard(gs)

	case actionNextPlayer:
		if !hostOnly() {
			return denied()
		}
		if len(r.Players) > 0 {
			gs.CurrentPlayerIdx = (gs.CurrentPlayerIdx + 1) % len(r.Players)
		}
		gs.Timer = cfg.turnSeconds
		gs.TimerActive = false

	case actionTimer:
		if !hostOnly() {
			return denied()
		}
		gs.Timer = payload.Timer
		gs.TimerActive = payload.TimerActive

	default:
		return false, nil
	}

	return true, nil
}

// advanceCard steps to the next card, clamped to the end of the deck.
func advanceCard(gs *GameState) {
	if gs.CurrentCardIdx < len(gs.Charades)-1 {
		gs.CurrentCardIdx++
	}
}
