package service

import (
	"time"

	"github.com/avolkov/seabattle/game/engine"
)

// SeatResult is returned by session-entering operations. PlayerID echoes
// the caller-supplied id or carries the generated one.
type SeatResult struct {
	PlayerID string           `json:"player_id"`
	Snapshot *engine.Snapshot `json:"snapshot"`
}

// AttackResult pairs the combat outcome with the attacker's updated view.
type AttackResult struct {
	Outcome  *engine.AttackOutcome `json:"outcome"`
	Snapshot *engine.Snapshot      `json:"snapshot"`
}

// PreviewResult is a ghost-ship render of the player's own board.
type PreviewResult struct {
	Grid  [][]engine.CellState `json:"grid"`
	Valid bool                 `json:"valid"`
}

// SessionInfo is the administrative listing view of a session. It
// carries no board state.
type SessionInfo struct {
	ID             string       `json:"id"`
	Mode           string       `json:"mode"`
	Timed          bool         `json:"timed"`
	Phase          engine.Phase `json:"phase"`
	HasOpponent    bool         `json:"has_opponent"`
	CreatedAt      time.Time    `json:"created_at"`
	LastActivityAt time.Time    `json:"last_activity_at"`
}
