package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/seabattle/game/engine"
)

// gameServiceImpl implements the GameService interface.
type gameServiceImpl struct {
	registry SessionRegistry
	modes    ModeManager
}

// NewGameService creates a new game service instance.
func NewGameService(registry SessionRegistry, modes ModeManager) GameService {
	return &gameServiceImpl{
		registry: registry,
		modes:    modes,
	}
}

// CreateSession creates a session with the host seated. An empty
// playerID gets a generated uuid; an empty modeID uses the default mode.
func (s *gameServiceImpl) CreateSession(ctx context.Context, modeID string, timed bool, playerID, playerName string) (*SeatResult, error) {
	var mode *engine.ModeConfig
	if modeID == "" {
		mode = s.modes.GetDefault()
	} else {
		var err error
		mode, err = s.modes.LoadMode(modeID)
		if err != nil {
			return nil, err
		}
	}

	if playerID == "" {
		playerID = uuid.NewString()
	}
	if playerName == "" {
		playerName = "Player"
	}

	game, err := s.registry.Create(mode, timed, playerID, playerName)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	snap, err := game.Snapshot(playerID)
	if err != nil {
		return nil, err
	}
	return &SeatResult{PlayerID: playerID, Snapshot: snap}, nil
}

// JoinSession seats the second player.
func (s *gameServiceImpl) JoinSession(ctx context.Context, sessionID, playerID, playerName string) (*SeatResult, error) {
	game, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}

	if playerID == "" {
		playerID = uuid.NewString()
	}
	if playerName == "" {
		playerName = "Player"
	}

	if err := game.Join(playerID, playerName); err != nil {
		return nil, err
	}

	snap, err := game.Snapshot(playerID)
	if err != nil {
		return nil, err
	}
	return &SeatResult{PlayerID: playerID, Snapshot: snap}, nil
}

// Rematch builds a fresh session from a finished game, with the same
// mode and timer settings and both players seated.
func (s *gameServiceImpl) Rematch(ctx context.Context, sessionID, playerID string) (*SeatResult, error) {
	old, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}

	game, err := engine.NewRematch(s.registry.NewID(), old)
	if err != nil {
		return nil, err
	}
	if err := s.registry.Insert(game); err != nil {
		return nil, fmt.Errorf("failed to register rematch: %w", err)
	}

	snap, err := game.Snapshot(playerID)
	if err != nil {
		return nil, err
	}
	return &SeatResult{PlayerID: playerID, Snapshot: snap}, nil
}

// ListSessions returns the administrative view of all sessions.
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	games := s.registry.List()
	result := make([]*SessionInfo, 0, len(games))
	for _, game := range games {
		st := game.CurrentStatus()
		result = append(result, &SessionInfo{
			ID:             game.ID(),
			Mode:           game.Mode().ID,
			Timed:          game.Timed(),
			Phase:          st.Phase,
			HasOpponent:    st.HasOpponent,
			CreatedAt:      st.CreatedAt,
			LastActivityAt: st.LastActivityAt,
		})
	}
	return result, nil
}

// GetSession returns the public info for a single session, without any
// board state. Useful before joining.
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	game, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	st := game.CurrentStatus()
	return &SessionInfo{
		ID:             game.ID(),
		Mode:           game.Mode().ID,
		Timed:          game.Timed(),
		Phase:          st.Phase,
		HasOpponent:    st.HasOpponent,
		CreatedAt:      st.CreatedAt,
		LastActivityAt: st.LastActivityAt,
	}, nil
}

// DeleteSession removes a session from the registry.
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	return s.registry.Remove(sessionID)
}

// PlaceShip places one ship during setup.
func (s *gameServiceImpl) PlaceShip(ctx context.Context, sessionID, playerID string, shipSize, row, col int, horizontal bool) (*engine.Snapshot, error) {
	game, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := game.PlaceShip(playerID, shipSize, row, col, horizontal); err != nil {
		return nil, err
	}
	return game.Snapshot(playerID)
}

// RetractShip removes the ship covering the given cell during setup.
func (s *gameServiceImpl) RetractShip(ctx context.Context, sessionID, playerID string, row, col int) (*engine.Snapshot, error) {
	game, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := game.RetractShip(playerID, row, col); err != nil {
		return nil, err
	}
	return game.Snapshot(playerID)
}

// AutoPlace replaces the player's fleet with a randomized valid layout.
func (s *gameServiceImpl) AutoPlace(ctx context.Context, sessionID, playerID string) (*engine.Snapshot, error) {
	game, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := game.AutoPlace(playerID); err != nil {
		return nil, err
	}
	return game.Snapshot(playerID)
}

// SetReady locks the player's fleet in; battle starts when both are ready.
func (s *gameServiceImpl) SetReady(ctx context.Context, sessionID, playerID string) (*engine.Snapshot, error) {
	game, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := game.SetReady(playerID); err != nil {
		return nil, err
	}
	return game.Snapshot(playerID)
}

// Preview renders the placement cursor over the player's own board.
func (s *gameServiceImpl) Preview(ctx context.Context, sessionID, playerID string, shipSize, row, col int, horizontal bool) (*PreviewResult, error) {
	game, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	grid, valid, err := game.Preview(playerID, shipSize, row, col, horizontal)
	if err != nil {
		return nil, err
	}
	return &PreviewResult{Grid: grid, Valid: valid}, nil
}

// Attack resolves one shot and returns the outcome plus the attacker's
// refreshed view.
func (s *gameServiceImpl) Attack(ctx context.Context, sessionID, playerID string, row, col int) (*AttackResult, error) {
	game, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	outcome, err := game.Attack(playerID, row, col)
	if err != nil {
		return nil, err
	}
	snap, err := game.Snapshot(playerID)
	if err != nil {
		return nil, err
	}
	return &AttackResult{Outcome: outcome, Snapshot: snap}, nil
}

// Surrender ends the game in the opponent's favor.
func (s *gameServiceImpl) Surrender(ctx context.Context, sessionID, playerID string) (*engine.Snapshot, error) {
	game, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := game.Surrender(playerID); err != nil {
		return nil, err
	}
	return game.Snapshot(playerID)
}

// Snapshot regenerates the player's view; valid at any time.
func (s *gameServiceImpl) Snapshot(ctx context.Context, sessionID, playerID string) (*engine.Snapshot, error) {
	game, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return game.Snapshot(playerID)
}

// ListModes returns all known game modes.
func (s *gameServiceImpl) ListModes(ctx context.Context) ([]*engine.ModeConfig, error) {
	return s.modes.ListModes()
}

// CheckTimeouts scans all sessions for expired turn deadlines and
// returns the ids of games that just finished on a timeout. Driven by
// the scheduler tick in main.
func (s *gameServiceImpl) CheckTimeouts(ctx context.Context) []string {
	var expired []string
	for _, game := range s.registry.List() {
		if game.CheckTimeout() {
			expired = append(expired, game.ID())
		}
	}
	return expired
}

// SweepExpired removes stale sessions per the registry retention policy.
func (s *gameServiceImpl) SweepExpired(ctx context.Context) int {
	return s.registry.Expire(time.Now())
}
