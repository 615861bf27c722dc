package engine

import "math/rand"

// AutoPlaceFleet builds a complete valid fleet for the mode. The ship
// size list is shuffled, then each ship gets up to PlacementTrials
// randomized (row, col, orientation) attempts. If a ship cannot be
// placed the whole attempt restarts with a fresh shuffle, up to
// PlacementRestarts times, after which ErrPlacementExhausted is
// returned. For the supported modes a valid packing always exists, so
// hitting the budget indicates a misconfigured mode rather than bad luck.
func AutoPlaceFleet(mode *ModeConfig) (*Board, []*Ship, error) {
	for restart := 0; restart < PlacementRestarts; restart++ {
		board, fleet, ok := tryPlaceFleet(mode)
		if ok {
			return board, fleet, nil
		}
	}
	return nil, nil, ErrPlacementExhausted
}

func tryPlaceFleet(mode *ModeConfig) (*Board, []*Ship, bool) {
	size := mode.GridSize
	sizes := make([]int, len(mode.Ships))
	copy(sizes, mode.Ships)
	rand.Shuffle(len(sizes), func(i, j int) { sizes[i], sizes[j] = sizes[j], sizes[i] })

	board := NewBoard(size)
	fleet := make([]*Ship, 0, len(sizes))

	for _, shipSize := range sizes {
		placed := false
		for attempt := 0; attempt < PlacementTrials; attempt++ {
			horizontal := rand.Intn(2) == 0
			var row, col int
			if horizontal {
				row = rand.Intn(size)
				col = rand.Intn(size - shipSize + 1)
			} else {
				row = rand.Intn(size - shipSize + 1)
				col = rand.Intn(size)
			}
			if board.CanPlace(shipSize, row, col, horizontal) {
				cells := board.Place(shipSize, row, col, horizontal)
				fleet = append(fleet, &Ship{Size: shipSize, Cells: cells})
				placed = true
				break
			}
		}
		if !placed {
			return nil, nil, false
		}
	}
	return board, fleet, true
}

// PreviewPlacement returns a copy of the board with a ghost ship overlaid
// at the requested position, plus whether that placement would be valid.
// Ghost cells are rendered as CellShip when valid and CellMiss when not;
// occupied cells keep their current state. Used by clients to render a
// placement cursor and never mutates the real board.
func PreviewPlacement(board *Board, shipSize, row, col int, horizontal bool) ([][]CellState, bool) {
	grid := board.Grid()
	valid := board.CanPlace(shipSize, row, col, horizontal)

	ghost := CellShip
	if !valid {
		ghost = CellMiss
	}
	for _, c := range shipCells(shipSize, row, col, horizontal) {
		if board.InBounds(c.Row, c.Col) && grid[c.Row][c.Col] == CellEmpty {
			grid[c.Row][c.Col] = ghost
		}
	}
	return grid, valid
}
