package service

import (
	"context"
	"time"

	"github.com/avolkov/seabattle/game/engine"
)

// GameService defines all game-related operations exposed to transports.
type GameService interface {
	// Session lifecycle
	CreateSession(ctx context.Context, modeID string, timed bool, playerID, playerName string) (*SeatResult, error)
	JoinSession(ctx context.Context, sessionID, playerID, playerName string) (*SeatResult, error)
	Rematch(ctx context.Context, sessionID, playerID string) (*SeatResult, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Setup phase
	PlaceShip(ctx context.Context, sessionID, playerID string, shipSize, row, col int, horizontal bool) (*engine.Snapshot, error)
	RetractShip(ctx context.Context, sessionID, playerID string, row, col int) (*engine.Snapshot, error)
	AutoPlace(ctx context.Context, sessionID, playerID string) (*engine.Snapshot, error)
	SetReady(ctx context.Context, sessionID, playerID string) (*engine.Snapshot, error)
	Preview(ctx context.Context, sessionID, playerID string, shipSize, row, col int, horizontal bool) (*PreviewResult, error)

	// Battle phase
	Attack(ctx context.Context, sessionID, playerID string, row, col int) (*AttackResult, error)
	Surrender(ctx context.Context, sessionID, playerID string) (*engine.Snapshot, error)

	// Queries and maintenance
	Snapshot(ctx context.Context, sessionID, playerID string) (*engine.Snapshot, error)
	ListModes(ctx context.Context) ([]*engine.ModeConfig, error)
	CheckTimeouts(ctx context.Context) []string
	SweepExpired(ctx context.Context) int
}

// SessionRegistry defines the session storage operations the service
// relies on.
type SessionRegistry interface {
	Create(mode *engine.ModeConfig, timed bool, hostID, hostName string) (*engine.Game, error)
	Insert(game *engine.Game) error
	NewID() string
	Get(id string) (*engine.Game, error)
	Remove(id string) error
	List() []*engine.Game
	Count() int
	Expire(now time.Time) int
}

// ModeManager resolves game-mode configurations.
type ModeManager interface {
	LoadMode(id string) (*engine.ModeConfig, error)
	ListModes() ([]*engine.ModeConfig, error)
	GetDefault() *engine.ModeConfig
}
