package engine

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Game is one two-player session from lobby through finish. All state is
// private and every operation serializes on the internal mutex, so two
// concurrent attacks (or an attack racing a timeout check) always see a
// consistent phase and turn.
type Game struct {
	mu sync.Mutex

	id    string
	mode  *ModeConfig
	timed bool

	players [2]*Player
	phase   Phase
	turn    int // index into players, -1 outside battle
	winner  int // index into players, -1 while undecided

	surrenderedBy int
	endCause      EndCause
	turnDeadline  time.Time

	createdAt      time.Time
	lastActivityAt time.Time
}

// NewGame creates a session in the lobby phase with only the host seated.
func NewGame(id string, mode *ModeConfig, timed bool, hostID, hostName string) *Game {
	now := time.Now()
	g := &Game{
		id:             id,
		mode:           mode,
		timed:          timed,
		phase:          PhaseLobby,
		turn:           -1,
		winner:         -1,
		surrenderedBy:  -1,
		createdAt:      now,
		lastActivityAt: now,
	}
	g.players[0] = newPlayer(hostID, hostName, mode.GridSize)
	return g
}

// NewRematch creates a fresh session from a finished game: same mode and
// timer settings, both players seated with empty boards, setup phase.
func NewRematch(id string, old *Game) (*Game, error) {
	old.mu.Lock()
	defer old.mu.Unlock()

	if old.phase != PhaseFinished {
		return nil, fmt.Errorf("%w: rematch requires a finished game", ErrWrongPhase)
	}
	if old.players[1] == nil {
		return nil, fmt.Errorf("%w: rematch requires two players", ErrWrongPhase)
	}

	g := NewGame(id, old.mode, old.timed, old.players[0].ID, old.players[0].Name)
	g.players[1] = newPlayer(old.players[1].ID, old.players[1].Name, old.mode.GridSize)
	g.phase = PhaseSetup
	return g, nil
}

// ID returns the session identifier. Immutable, no lock needed.
func (g *Game) ID() string { return g.id }

// Mode returns the session's mode configuration. Immutable.
func (g *Game) Mode() *ModeConfig { return g.mode }

// Timed reports whether per-turn deadlines are enforced. Immutable.
func (g *Game) Timed() bool { return g.timed }

// playerIndex resolves a player id to a seat, or -1.
func (g *Game) playerIndex(playerID string) int {
	for i, p := range g.players {
		if p != nil && p.ID == playerID {
			return i
		}
	}
	return -1
}

func (g *Game) touch() {
	g.lastActivityAt = time.Now()
}

// resetDeadline starts a new turn clock when the game is timed.
func (g *Game) resetDeadline() {
	if g.timed {
		g.turnDeadline = time.Now().Add(g.mode.TurnLimit())
	}
}

// Join seats the second player and moves the game into setup. Joining
// with the id of an already-seated player is a no-op, so a reconnecting
// creator or joiner never gets a spurious error.
func (g *Game) Join(playerID, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.playerIndex(playerID) >= 0 {
		return nil
	}
	if g.players[1] != nil {
		return ErrGameFull
	}
	if g.phase != PhaseLobby {
		return fmt.Errorf("%w: cannot join in phase %s", ErrWrongPhase, g.phase)
	}

	g.players[1] = newPlayer(playerID, name, g.mode.GridSize)
	g.phase = PhaseSetup
	g.touch()
	return nil
}

// PlaceShip places one ship for the player during setup. The ship size
// must still be available in the mode's fleet configuration and the
// position must satisfy the no-touching rule.
func (g *Game) PlaceShip(playerID string, shipSize, row, col int, horizontal bool) (*Ship, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.setupPlayer(playerID)
	if err != nil {
		return nil, err
	}

	want := g.mode.shipCountsBySize()
	placed := p.placedBySize()
	if len(p.Fleet) >= len(g.mode.Ships) {
		return nil, ErrAllShipsPlaced
	}
	if placed[shipSize] >= want[shipSize] {
		return nil, fmt.Errorf("%w: no ship of size %d remaining", ErrInvalidPlacement, shipSize)
	}
	if !p.Board.CanPlace(shipSize, row, col, horizontal) {
		return nil, fmt.Errorf("%w: size %d at (%d,%d)", ErrInvalidPlacement, shipSize, row, col)
	}

	cells := p.Board.Place(shipSize, row, col, horizontal)
	ship := &Ship{Size: shipSize, Cells: cells}
	p.Fleet = append(p.Fleet, ship)
	g.touch()
	return ship, nil
}

// RetractShip removes the ship covering (row, col) from the player's
// board during setup.
func (g *Game) RetractShip(playerID string, row, col int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.setupPlayer(playerID)
	if err != nil {
		return err
	}

	for i, s := range p.Fleet {
		if s.Covers(row, col) {
			p.Board.Remove(s.Cells)
			p.Fleet = append(p.Fleet[:i], p.Fleet[i+1:]...)
			g.touch()
			return nil
		}
	}
	return fmt.Errorf("%w: no ship at (%d,%d)", ErrInvalidPlacement, row, col)
}

// AutoPlace replaces the player's board and fleet with a randomized
// valid placement for the mode.
func (g *Game) AutoPlace(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.setupPlayer(playerID)
	if err != nil {
		return err
	}

	board, fleet, err := AutoPlaceFleet(g.mode)
	if err != nil {
		return err
	}
	p.Board = board
	p.Fleet = fleet
	g.touch()
	return nil
}

// setupPlayer resolves the player for a setup-phase mutation. The caller
// must hold the lock.
func (g *Game) setupPlayer(playerID string) (*Player, error) {
	if g.phase == PhaseFinished {
		return nil, ErrGameOver
	}
	if g.phase != PhaseSetup {
		return nil, fmt.Errorf("%w: expected setup, in %s", ErrWrongPhase, g.phase)
	}
	idx := g.playerIndex(playerID)
	if idx < 0 {
		return nil, ErrPlayerNotFound
	}
	p := g.players[idx]
	if p.Ready {
		return nil, fmt.Errorf("%w: fleet already locked in", ErrWrongPhase)
	}
	return p, nil
}

// SetReady locks in the player's fleet. When both players are ready the
// game picks a random starting player and battle begins.
func (g *Game) SetReady(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase == PhaseFinished {
		return ErrGameOver
	}
	if g.phase != PhaseSetup {
		return fmt.Errorf("%w: expected setup, in %s", ErrWrongPhase, g.phase)
	}
	idx := g.playerIndex(playerID)
	if idx < 0 {
		return ErrPlayerNotFound
	}

	p := g.players[idx]
	want := g.mode.shipCountsBySize()
	placed := p.placedBySize()
	if len(placed) != len(want) {
		return fmt.Errorf("%w: placed %d of %d ships", ErrIncompleteFleet, len(p.Fleet), len(g.mode.Ships))
	}
	for size, n := range want {
		if placed[size] != n {
			return fmt.Errorf("%w: need %d ships of size %d, have %d", ErrIncompleteFleet, n, size, placed[size])
		}
	}

	p.Ready = true
	if g.players[0].Ready && g.players[1] != nil && g.players[1].Ready {
		g.phase = PhaseBattle
		g.turn = rand.Intn(2)
		g.resetDeadline()
	}
	g.touch()
	return nil
}

// Attack resolves one shot from the given player. A miss passes the turn
// to the defender; a hit (including a sink) keeps it with the attacker.
// Sinking the last ship finishes the game.
func (g *Game) Attack(playerID string, row, col int) (*AttackOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase == PhaseFinished {
		return nil, ErrGameOver
	}
	if g.phase != PhaseBattle {
		return nil, fmt.Errorf("%w: expected battle, in %s", ErrWrongPhase, g.phase)
	}
	idx := g.playerIndex(playerID)
	if idx < 0 {
		return nil, ErrPlayerNotFound
	}
	if idx != g.turn {
		return nil, ErrNotYourTurn
	}

	defender := 1 - idx
	outcome, err := resolveAttack(g.players[idx], g.players[defender], row, col)
	if err != nil {
		return nil, err
	}

	switch {
	case outcome.AllSunk:
		g.finish(idx, -1, CauseVictory)
	case outcome.Hit:
		g.resetDeadline()
	default:
		g.turn = defender
		g.resetDeadline()
	}
	g.touch()
	return outcome, nil
}

// Surrender ends the game in the opponent's favor. Allowed in any
// non-terminal phase; surrendering before an opponent joined simply
// finishes the session with no winner.
func (g *Game) Surrender(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase == PhaseFinished {
		return ErrGameOver
	}
	idx := g.playerIndex(playerID)
	if idx < 0 {
		return ErrPlayerNotFound
	}

	winner := -1
	if g.players[1-idx] != nil {
		winner = 1 - idx
	}
	g.finish(winner, idx, CauseSurrender)
	g.touch()
	return nil
}

// CheckTimeout awards a timeout loss to the turn holder when the turn
// deadline has passed. It reports whether the game transitioned; when no
// timeout occurred it is a no-op. The scheduler collaborator calls this
// periodically; because it takes the same lock as player actions, a
// last-second attack and a timeout cannot race destructively.
func (g *Game) CheckTimeout() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseBattle || !g.timed || g.turnDeadline.IsZero() {
		return false
	}
	if time.Now().Before(g.turnDeadline) {
		return false
	}

	g.finish(1-g.turn, g.turn, CauseTimeout)
	g.touch()
	return true
}

// finish records the terminal state. The caller must hold the lock.
func (g *Game) finish(winner, loser int, cause EndCause) {
	g.phase = PhaseFinished
	g.winner = winner
	g.surrenderedBy = loser
	g.endCause = cause
	g.turn = -1
	g.turnDeadline = time.Time{}
}

// Status is a point-in-time summary used by the registry's sweeper. It
// deliberately excludes board state.
type Status struct {
	Phase          Phase
	HasOpponent    bool
	Timed          bool
	CreatedAt      time.Time
	LastActivityAt time.Time
}

// CurrentStatus returns the sweeping-relevant view of the session.
func (g *Game) CurrentStatus() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Status{
		Phase:          g.phase,
		HasOpponent:    g.players[1] != nil,
		Timed:          g.timed,
		CreatedAt:      g.createdAt,
		LastActivityAt: g.lastActivityAt,
	}
}

// Preview renders the player's own board with a ghost ship overlaid for
// the placement cursor. Read-only; valid reports whether the placement
// would be accepted.
func (g *Game) Preview(playerID string, shipSize, row, col int, horizontal bool) (grid [][]CellState, valid bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := g.playerIndex(playerID)
	if idx < 0 {
		return nil, false, ErrPlayerNotFound
	}
	grid, valid = PreviewPlacement(g.players[idx].Board, shipSize, row, col, horizontal)
	return grid, valid, nil
}
