package engine

import "errors"

// Rule and lifecycle errors returned by game operations. All of them are
// recoverable, caller-visible conditions; transports map each kind to a
// user-facing message or status code via errors.Is.
var (
	ErrGameFull            = errors.New("game already has two players")
	ErrPlayerNotFound      = errors.New("player not in this game")
	ErrWrongPhase          = errors.New("operation not valid in current phase")
	ErrInvalidPlacement    = errors.New("invalid ship placement")
	ErrAllShipsPlaced      = errors.New("all ships already placed")
	ErrIncompleteFleet     = errors.New("fleet is incomplete")
	ErrOutOfBounds         = errors.New("coordinates out of bounds")
	ErrCellAlreadyAttacked = errors.New("cell already attacked")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrGameOver            = errors.New("game is over")
	ErrPlacementExhausted  = errors.New("auto-placement exhausted retry budget")
	ErrInvalidMode         = errors.New("invalid mode configuration")
)
