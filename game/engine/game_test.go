package engine

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNewGame_LobbyPhase(t *testing.T) {
	g := NewGame("abc", newTestMode(), false, "p1", "Alice")

	if g.phase != PhaseLobby {
		t.Errorf("Expected lobby phase, got %s", g.phase)
	}
	if g.ID() != "abc" {
		t.Errorf("Expected id abc, got %s", g.ID())
	}
	if g.players[1] != nil {
		t.Error("Expected no second player yet")
	}
}

func TestJoin(t *testing.T) {
	g := NewGame("abc", newTestMode(), false, "p1", "Alice")

	if err := g.Join("p2", "Bob"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if g.phase != PhaseSetup {
		t.Errorf("Expected setup phase after join, got %s", g.phase)
	}

	// Rejoining with a seated id is a no-op.
	if err := g.Join("p1", "Alice"); err != nil {
		t.Errorf("Expected creator rejoin to be a no-op, got %v", err)
	}
	if err := g.Join("p2", "Bob"); err != nil {
		t.Errorf("Expected joiner rejoin to be a no-op, got %v", err)
	}

	// A third player is rejected.
	if err := g.Join("p3", "Carol"); !errors.Is(err, ErrGameFull) {
		t.Errorf("Expected ErrGameFull, got %v", err)
	}
}

func TestPlaceShip_Validation(t *testing.T) {
	g := NewGame("abc", newTestMode(), false, "p1", "Alice")

	// Placement before the opponent joins is a wrong-phase error.
	if _, err := g.PlaceShip("p1", 3, 0, 0, true); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("Expected ErrWrongPhase in lobby, got %v", err)
	}

	if err := g.Join("p2", "Bob"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	// Unknown player.
	if _, err := g.PlaceShip("p9", 3, 0, 0, true); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("Expected ErrPlayerNotFound, got %v", err)
	}

	// Size not in the mode's fleet.
	if _, err := g.PlaceShip("p1", 5, 0, 0, true); !errors.Is(err, ErrInvalidPlacement) {
		t.Errorf("Expected ErrInvalidPlacement for unknown size, got %v", err)
	}

	if _, err := g.PlaceShip("p1", 3, 0, 0, true); err != nil {
		t.Fatalf("PlaceShip failed: %v", err)
	}

	// Second size-3 ship exceeds the mode's multiset.
	if _, err := g.PlaceShip("p1", 3, 3, 0, true); !errors.Is(err, ErrInvalidPlacement) {
		t.Errorf("Expected ErrInvalidPlacement for exhausted size, got %v", err)
	}

	// Adjacent placement violates the separation rule.
	if _, err := g.PlaceShip("p1", 1, 1, 1, true); !errors.Is(err, ErrInvalidPlacement) {
		t.Errorf("Expected ErrInvalidPlacement for adjacent ship, got %v", err)
	}

	if _, err := g.PlaceShip("p1", 1, 5, 5, true); err != nil {
		t.Fatalf("PlaceShip failed: %v", err)
	}

	// Fleet complete: any further placement is rejected.
	if _, err := g.PlaceShip("p1", 1, 3, 3, true); !errors.Is(err, ErrAllShipsPlaced) {
		t.Errorf("Expected ErrAllShipsPlaced, got %v", err)
	}
}

func TestRetractShip(t *testing.T) {
	g := NewGame("abc", newTestMode(), false, "p1", "Alice")
	if err := g.Join("p2", "Bob"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if _, err := g.PlaceShip("p1", 3, 0, 0, true); err != nil {
		t.Fatalf("PlaceShip failed: %v", err)
	}

	if err := g.RetractShip("p1", 0, 1); err != nil {
		t.Fatalf("RetractShip failed: %v", err)
	}
	if len(g.players[0].Fleet) != 0 {
		t.Error("Expected empty fleet after retraction")
	}
	if g.players[0].Board.At(0, 0) != CellEmpty {
		t.Error("Expected board cells cleared after retraction")
	}

	// Retracting open water fails.
	if err := g.RetractShip("p1", 4, 4); !errors.Is(err, ErrInvalidPlacement) {
		t.Errorf("Expected ErrInvalidPlacement, got %v", err)
	}
}

func TestAutoPlace_Game(t *testing.T) {
	g := NewGame("abc", newTestMode(), false, "p1", "Alice")
	if err := g.Join("p2", "Bob"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	// Auto-place replaces an in-progress manual layout.
	if _, err := g.PlaceShip("p1", 1, 0, 0, true); err != nil {
		t.Fatalf("PlaceShip failed: %v", err)
	}
	if err := g.AutoPlace("p1"); err != nil {
		t.Fatalf("AutoPlace failed: %v", err)
	}
	if len(g.players[0].Fleet) != len(g.mode.Ships) {
		t.Errorf("Expected complete fleet, got %d ships", len(g.players[0].Fleet))
	}

	if err := g.SetReady("p1"); err != nil {
		t.Fatalf("SetReady after auto-place failed: %v", err)
	}

	// A ready player cannot re-place.
	if err := g.AutoPlace("p1"); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("Expected ErrWrongPhase after ready, got %v", err)
	}
}

func TestSetReady_IncompleteFleet(t *testing.T) {
	g := NewGame("abc", newTestMode(), false, "p1", "Alice")
	if err := g.Join("p2", "Bob"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	if err := g.SetReady("p1"); !errors.Is(err, ErrIncompleteFleet) {
		t.Errorf("Expected ErrIncompleteFleet with empty fleet, got %v", err)
	}

	if _, err := g.PlaceShip("p1", 3, 0, 0, true); err != nil {
		t.Fatalf("PlaceShip failed: %v", err)
	}
	if err := g.SetReady("p1"); !errors.Is(err, ErrIncompleteFleet) {
		t.Errorf("Expected ErrIncompleteFleet with partial fleet, got %v", err)
	}
}

func TestSetReady_StartsBattle(t *testing.T) {
	g := newBattleGame(t)

	if g.phase != PhaseBattle {
		t.Fatalf("Expected battle phase, got %s", g.phase)
	}
	if g.turn != 0 && g.turn != 1 {
		t.Errorf("Expected a starting player to be chosen, turn = %d", g.turn)
	}
}

func TestSurrender(t *testing.T) {
	g := newBattleGame(t)

	if err := g.Surrender("p2"); err != nil {
		t.Fatalf("Surrender failed: %v", err)
	}
	if g.phase != PhaseFinished {
		t.Errorf("Expected finished phase, got %s", g.phase)
	}
	if g.winner != 0 {
		t.Errorf("Expected p1 to win by surrender, winner = %d", g.winner)
	}
	if g.surrenderedBy != 1 {
		t.Errorf("Expected p2 recorded as surrendered, got %d", g.surrenderedBy)
	}
	if g.endCause != CauseSurrender {
		t.Errorf("Expected surrender cause, got %s", g.endCause)
	}

	// Any subsequent attack from either player fails GameOver.
	if _, err := g.Attack("p1", 0, 0); !errors.Is(err, ErrGameOver) {
		t.Errorf("Expected ErrGameOver, got %v", err)
	}
	if _, err := g.Attack("p2", 0, 0); !errors.Is(err, ErrGameOver) {
		t.Errorf("Expected ErrGameOver, got %v", err)
	}
	if err := g.Surrender("p1"); !errors.Is(err, ErrGameOver) {
		t.Errorf("Expected ErrGameOver on double surrender, got %v", err)
	}
}

func TestCheckTimeout(t *testing.T) {
	mode := newTestMode()
	g := NewGame("abc", mode, true, "p1", "Alice")
	if err := g.Join("p2", "Bob"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	for _, id := range []string{"p1", "p2"} {
		if err := g.AutoPlace(id); err != nil {
			t.Fatalf("AutoPlace failed: %v", err)
		}
		if err := g.SetReady(id); err != nil {
			t.Fatalf("SetReady failed: %v", err)
		}
	}
	g.turn = 0

	if g.turnDeadline.IsZero() {
		t.Fatal("Expected a turn deadline for a timed game")
	}

	// Deadline not reached: no-op.
	if g.CheckTimeout() {
		t.Error("Expected no timeout before the deadline")
	}

	// Force the deadline into the past: the turn holder loses.
	g.mu.Lock()
	g.turnDeadline = time.Now().Add(-time.Second)
	g.mu.Unlock()

	if !g.CheckTimeout() {
		t.Fatal("Expected timeout to fire")
	}
	if g.phase != PhaseFinished {
		t.Errorf("Expected finished phase, got %s", g.phase)
	}
	if g.winner != 1 {
		t.Errorf("Expected the waiting player to win, winner = %d", g.winner)
	}
	if g.surrenderedBy != 0 {
		t.Errorf("Expected turn holder recorded as loser, got %d", g.surrenderedBy)
	}
	if g.endCause != CauseTimeout {
		t.Errorf("Expected timeout cause distinct from surrender, got %s", g.endCause)
	}

	// Idempotent afterwards, and late attacks fail GameOver.
	if g.CheckTimeout() {
		t.Error("Expected no second timeout on a finished game")
	}
	if _, err := g.Attack("p1", 0, 0); !errors.Is(err, ErrGameOver) {
		t.Errorf("Expected ErrGameOver for attack after timeout, got %v", err)
	}
}

func TestUntimedGame_NoDeadline(t *testing.T) {
	g := newBattleGame(t)

	if !g.turnDeadline.IsZero() {
		t.Error("Expected no deadline for untimed game")
	}
	if g.CheckTimeout() {
		t.Error("Expected CheckTimeout to be a no-op for untimed game")
	}
}

func TestNewRematch(t *testing.T) {
	g := newBattleGame(t)

	// Rematch from a running game is rejected.
	if _, err := NewRematch("next", g); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("Expected ErrWrongPhase for running game, got %v", err)
	}

	if err := g.Surrender("p1"); err != nil {
		t.Fatalf("Surrender failed: %v", err)
	}

	rg, err := NewRematch("next", g)
	if err != nil {
		t.Fatalf("NewRematch failed: %v", err)
	}
	if rg.phase != PhaseSetup {
		t.Errorf("Expected rematch to start in setup, got %s", rg.phase)
	}
	if rg.players[0].ID != "p1" || rg.players[1].ID != "p2" {
		t.Error("Expected both players seated in the rematch")
	}
	if len(rg.players[0].Fleet) != 0 {
		t.Error("Expected empty fleets in the rematch")
	}
	if rg.Mode() != g.Mode() {
		t.Error("Expected rematch to keep the mode")
	}
}

func TestConcurrentAttacksSerialize(t *testing.T) {
	g := newBattleGame(t)

	// Fire many concurrent attacks from both players. Exactly one
	// operation can win each cell; the rest must fail cleanly with a
	// rule error rather than corrupting state.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		for r := 0; r < 6; r++ {
			for c := 0; c < 6; c++ {
				wg.Add(1)
				player := "p1"
				if i == 1 {
					player = "p2"
				}
				go func(player string, r, c int) {
					defer wg.Done()
					_, err := g.Attack(player, r, c)
					if err != nil &&
						!errors.Is(err, ErrNotYourTurn) &&
						!errors.Is(err, ErrCellAlreadyAttacked) &&
						!errors.Is(err, ErrGameOver) {
						t.Errorf("Unexpected attack error: %v", err)
					}
				}(player, r, c)
			}
		}
	}
	wg.Wait()

	// Whatever happened, the game must be in a consistent state.
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseBattle && g.phase != PhaseFinished {
		t.Errorf("Unexpected phase %s", g.phase)
	}
	if g.phase == PhaseFinished && g.winner < 0 {
		t.Error("Finished game must have a winner from combat")
	}
}

func TestSnapshot_Perspectives(t *testing.T) {
	g := newBattleGame(t)

	if _, err := g.Attack("p1", 0, 0); err != nil {
		t.Fatalf("Attack failed: %v", err)
	}

	snap, err := g.Snapshot("p1")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	if snap.Phase != PhaseBattle {
		t.Errorf("Expected battle phase, got %s", snap.Phase)
	}
	if snap.GridSize != 6 {
		t.Errorf("Expected grid size 6, got %d", snap.GridSize)
	}
	if snap.Turn != "p1" {
		t.Errorf("Expected turn p1 after a hit, got %s", snap.Turn)
	}
	if len(snap.You.Fleet) != 2 {
		t.Errorf("Expected own fleet in snapshot, got %d ships", len(snap.You.Fleet))
	}
	if snap.Opponent == nil {
		t.Fatal("Expected opponent view")
	}
	if snap.Opponent.ShipsLeft != 2 {
		t.Errorf("Expected 2 opponent ships left, got %d", snap.Opponent.ShipsLeft)
	}
	if snap.You.Tracking[0][0] != CellHit {
		t.Error("Expected hit visible on own tracking grid")
	}

	// The opponent's snapshot shows the hit on their own board but no
	// fleet details for p1.
	osnap, err := g.Snapshot("p2")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if osnap.You.Board[0][0] != CellHit {
		t.Error("Expected hit visible on opponent's own board")
	}

	// Snapshots are copies: mutating one must not touch the game.
	snap.You.Board[5][5] = CellMiss
	if g.players[0].Board.At(5, 5) == CellMiss {
		t.Error("Snapshot mutation leaked into game state")
	}

	if _, err := g.Snapshot("p9"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("Expected ErrPlayerNotFound, got %v", err)
	}
}

func TestValidateModeConfig(t *testing.T) {
	for id, mode := range BuiltinModes() {
		if err := ValidateModeConfig(mode); err != nil {
			t.Errorf("Builtin mode %s must validate: %v", id, err)
		}
	}

	tests := []struct {
		name string
		mode *ModeConfig
	}{
		{"nil", nil},
		{"missing id", &ModeConfig{GridSize: 8, Ships: []int{1}}},
		{"grid too small", &ModeConfig{ID: "x", GridSize: 2, Ships: []int{1}}},
		{"grid too large", &ModeConfig{ID: "x", GridSize: 40, Ships: []int{1}}},
		{"no ships", &ModeConfig{ID: "x", GridSize: 8}},
		{"zero ship", &ModeConfig{ID: "x", GridSize: 8, Ships: []int{0}}},
		{"overpacked", &ModeConfig{ID: "x", GridSize: 4, Ships: []int{3, 3, 3}}},
	}
	for _, tt := range tests {
		if err := ValidateModeConfig(tt.mode); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}
