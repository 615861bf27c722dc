package engine

import "fmt"

// BuiltinModes returns the standard game modes. classic is the default:
// an 8×8 grid with two 3-deck ships, two 2-deck ships, and four
// single-deck ships. fast is a small 6×6 board for short games, full is
// the traditional 10×10 Russian-rules fleet.
func BuiltinModes() map[string]*ModeConfig {
	return map[string]*ModeConfig{
		"classic": {
			ID:               "classic",
			Name:             "Classic",
			GridSize:         8,
			Ships:            []int{3, 3, 2, 2, 1, 1, 1, 1},
			TurnLimitSeconds: 120,
		},
		"fast": {
			ID:               "fast",
			Name:             "Fast",
			GridSize:         6,
			Ships:            []int{3, 2, 1, 1},
			TurnLimitSeconds: 60,
		},
		"full": {
			ID:               "full",
			Name:             "Full",
			GridSize:         10,
			Ships:            []int{4, 3, 3, 2, 2, 2, 1, 1, 1, 1},
			TurnLimitSeconds: 120,
		},
	}
}

// ValidateModeConfig checks a mode definition for structural sanity and
// packing feasibility. Custom mode files go through this before they are
// ever used to build a game.
func ValidateModeConfig(m *ModeConfig) error {
	if m == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidMode)
	}
	if m.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidMode)
	}
	if m.GridSize < MinGridSize || m.GridSize > MaxGridSize {
		return fmt.Errorf("%w: grid size %d outside [%d,%d]", ErrInvalidMode, m.GridSize, MinGridSize, MaxGridSize)
	}
	if len(m.Ships) == 0 {
		return fmt.Errorf("%w: no ships configured", ErrInvalidMode)
	}
	for _, s := range m.Ships {
		if s < 1 || s > MaxShipSize {
			return fmt.Errorf("%w: ship size %d outside [1,%d]", ErrInvalidMode, s, MaxShipSize)
		}
		if s > m.GridSize {
			return fmt.Errorf("%w: ship size %d exceeds grid size %d", ErrInvalidMode, s, m.GridSize)
		}
	}
	// Ships need separation room, so demand at most half the grid is
	// fleet. This keeps auto-placement comfortably within its retry
	// budget for any accepted mode.
	if m.TotalShipCells()*2 > m.GridSize*m.GridSize {
		return fmt.Errorf("%w: %d ship cells cannot be separated on a %d×%d grid",
			ErrInvalidMode, m.TotalShipCells(), m.GridSize, m.GridSize)
	}
	if m.TurnLimitSeconds < 0 {
		return fmt.Errorf("%w: negative turn limit", ErrInvalidMode)
	}
	return nil
}
