package engine

import "time"

// CellState represents the content of a single grid cell.
type CellState string

const (
	CellEmpty CellState = "empty"
	CellShip  CellState = "ship"
	CellHit   CellState = "hit"
	CellSunk  CellState = "sunk"
	CellMiss  CellState = "miss"
)

// Phase represents the lifecycle stage of a game session.
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseSetup    Phase = "setup"
	PhaseBattle   Phase = "battle"
	PhaseFinished Phase = "finished"
)

// EndCause distinguishes how a finished game ended. A timeout loss is
// reported separately from a voluntary surrender.
type EndCause string

const (
	CauseNone      EndCause = ""
	CauseVictory   EndCause = "all_ships_sunk"
	CauseSurrender EndCause = "surrender"
	CauseTimeout   EndCause = "timeout"
)

const (
	// Validation constants for custom mode files.
	MinGridSize = 4
	MaxGridSize = 16
	MaxShipSize = 6

	// Auto-placement retry budget.
	PlacementTrials   = 100
	PlacementRestarts = 50

	// DefaultTurnLimitSeconds applies when a mode file omits its own limit.
	DefaultTurnLimitSeconds = 120
)

// Coord identifies a single grid cell.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Ship is one placed ship: its cells in placement order and the subset
// that has been hit.
type Ship struct {
	Size  int     `json:"size"`
	Cells []Coord `json:"cells"`
	Hits  []Coord `json:"hits,omitempty"`
}

// Covers reports whether the ship occupies the given cell.
func (s *Ship) Covers(row, col int) bool {
	for _, c := range s.Cells {
		if c.Row == row && c.Col == col {
			return true
		}
	}
	return false
}

// RegisterHit records a hit on the given cell. Repeated hits on the same
// cell are ignored.
func (s *Ship) RegisterHit(row, col int) {
	for _, h := range s.Hits {
		if h.Row == row && h.Col == col {
			return
		}
	}
	s.Hits = append(s.Hits, Coord{Row: row, Col: col})
}

// Destroyed reports whether every cell of the ship has been hit.
func (s *Ship) Destroyed() bool {
	return len(s.Hits) == len(s.Cells)
}

// ShotMark records the opponent's most recent shot against a player,
// used by clients for one-shot highlighting. It is cleared on any hit.
type ShotMark struct {
	Row  int  `json:"row"`
	Col  int  `json:"col"`
	Miss bool `json:"miss"`
}

// Player holds one participant's boards and fleet. The board carries the
// player's own ships plus the opponent's resolved shots; the tracking
// grid is the player's view of the opponent and never contains CellShip.
type Player struct {
	ID       string
	Name     string
	Board    *Board
	Tracking *Board
	Fleet    []*Ship
	Ready    bool
	LastShot *ShotMark
}

func newPlayer(id, name string, gridSize int) *Player {
	return &Player{
		ID:       id,
		Name:     name,
		Board:    NewBoard(gridSize),
		Tracking: NewBoard(gridSize),
	}
}

// remainingShips counts the player's ships that are not yet destroyed.
func (p *Player) remainingShips() int {
	n := 0
	for _, s := range p.Fleet {
		if !s.Destroyed() {
			n++
		}
	}
	return n
}

// remainingShipsBySize counts undestroyed ships grouped by size.
func (p *Player) remainingShipsBySize() map[int]int {
	sizes := make(map[int]int)
	for _, s := range p.Fleet {
		if !s.Destroyed() {
			sizes[s.Size]++
		}
	}
	return sizes
}

// placedBySize counts all placed ships grouped by size, destroyed or not.
func (p *Player) placedBySize() map[int]int {
	sizes := make(map[int]int)
	for _, s := range p.Fleet {
		sizes[s.Size]++
	}
	return sizes
}

// shipAt returns the ship covering the given cell, or nil.
func (p *Player) shipAt(row, col int) *Ship {
	for _, s := range p.Fleet {
		if s.Covers(row, col) {
			return s
		}
	}
	return nil
}

// ModeConfig describes a game mode: the grid dimension, the multiset of
// ship sizes, and the per-turn time limit for timed games.
type ModeConfig struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	GridSize         int    `json:"grid_size"`
	Ships            []int  `json:"ships"`
	TurnLimitSeconds int    `json:"turn_limit_seconds"`
}

// TurnLimit returns the per-turn deadline duration for timed games.
func (m *ModeConfig) TurnLimit() time.Duration {
	if m.TurnLimitSeconds <= 0 {
		return DefaultTurnLimitSeconds * time.Second
	}
	return time.Duration(m.TurnLimitSeconds) * time.Second
}

// TotalShipCells returns the number of grid cells the full fleet occupies.
func (m *ModeConfig) TotalShipCells() int {
	total := 0
	for _, s := range m.Ships {
		total += s
	}
	return total
}

// shipCountsBySize returns the mode's ship-size multiset as a count map.
func (m *ModeConfig) shipCountsBySize() map[int]int {
	sizes := make(map[int]int)
	for _, s := range m.Ships {
		sizes[s]++
	}
	return sizes
}
