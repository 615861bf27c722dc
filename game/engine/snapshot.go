package engine

import "time"

// Snapshot is a read-only projection of a session from one player's
// perspective. It contains the requesting player's full board and fleet,
// their tracking view of the opponent, and only aggregate ship counts
// for the opponent, never the opponent's grid. Snapshots are deep
// copies and stay valid after the session mutates.
type Snapshot struct {
	ID       string `json:"id"`
	Mode     string `json:"mode"`
	GridSize int    `json:"grid_size"`
	Timed    bool   `json:"timed"`
	Phase    Phase  `json:"phase"`

	// Turn holds the id of the player to act, empty outside battle.
	Turn     string     `json:"turn,omitempty"`
	Deadline *time.Time `json:"turn_deadline,omitempty"`

	You      PlayerView    `json:"you"`
	Opponent *OpponentView `json:"opponent,omitempty"`

	Winner        string   `json:"winner,omitempty"`
	SurrenderedBy string   `json:"surrendered_by,omitempty"`
	EndCause      EndCause `json:"end_cause,omitempty"`

	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// PlayerView is the requesting player's own state.
type PlayerView struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Ready          bool          `json:"ready"`
	Board          [][]CellState `json:"board"`
	Tracking       [][]CellState `json:"tracking"`
	Fleet          []Ship        `json:"fleet"`
	ShipsRemaining map[int]int   `json:"ships_remaining"`
	LastShot       *ShotMark     `json:"last_shot,omitempty"`
}

// OpponentView exposes only what an opponent is allowed to know.
type OpponentView struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Ready          bool        `json:"ready"`
	ShipsRemaining map[int]int `json:"ships_remaining"`
	ShipsLeft      int         `json:"ships_left"`
}

// Snapshot builds the projection for the given player. It can be called
// at any time in any phase; the result is self-consistent because it is
// assembled under the session lock.
func (g *Game) Snapshot(playerID string) (*Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := g.playerIndex(playerID)
	if idx < 0 {
		return nil, ErrPlayerNotFound
	}
	me := g.players[idx]

	snap := &Snapshot{
		ID:             g.id,
		Mode:           g.mode.ID,
		GridSize:       g.mode.GridSize,
		Timed:          g.timed,
		Phase:          g.phase,
		CreatedAt:      g.createdAt,
		LastActivityAt: g.lastActivityAt,
		You: PlayerView{
			ID:             me.ID,
			Name:           me.Name,
			Ready:          me.Ready,
			Board:          me.Board.Grid(),
			Tracking:       me.Tracking.Grid(),
			Fleet:          copyFleet(me.Fleet),
			ShipsRemaining: me.remainingShipsBySize(),
		},
	}
	if me.LastShot != nil {
		shot := *me.LastShot
		snap.You.LastShot = &shot
	}

	if g.turn >= 0 {
		snap.Turn = g.players[g.turn].ID
	}
	if g.timed && !g.turnDeadline.IsZero() {
		deadline := g.turnDeadline
		snap.Deadline = &deadline
	}
	if opp := g.players[1-idx]; opp != nil {
		snap.Opponent = &OpponentView{
			ID:             opp.ID,
			Name:           opp.Name,
			Ready:          opp.Ready,
			ShipsRemaining: opp.remainingShipsBySize(),
			ShipsLeft:      opp.remainingShips(),
		}
	}
	if g.winner >= 0 {
		snap.Winner = g.players[g.winner].ID
	}
	if g.surrenderedBy >= 0 && g.endCause == CauseSurrender {
		snap.SurrenderedBy = g.players[g.surrenderedBy].ID
	}
	snap.EndCause = g.endCause

	return snap, nil
}

// PlayerIDs returns the ids of the seated players, host first.
func (g *Game) PlayerIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids := make([]string, 0, 2)
	for _, p := range g.players {
		if p != nil {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func copyFleet(fleet []*Ship) []Ship {
	out := make([]Ship, 0, len(fleet))
	for _, s := range fleet {
		ship := Ship{Size: s.Size}
		ship.Cells = append(ship.Cells, s.Cells...)
		ship.Hits = append(ship.Hits, s.Hits...)
		out = append(out, ship)
	}
	return out
}
