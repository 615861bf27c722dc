package engine

// Board holds one player's N×N grid. Cells are mutated only under
// explicit instruction from the owning Game; Board itself performs no
// locking.
type Board struct {
	Size  int           `json:"size"`
	Cells [][]CellState `json:"cells"`
}

// NewBoard creates an empty board of the given dimension.
func NewBoard(size int) *Board {
	cells := make([][]CellState, size)
	for r := range cells {
		cells[r] = make([]CellState, size)
		for c := range cells[r] {
			cells[r][c] = CellEmpty
		}
	}
	return &Board{Size: size, Cells: cells}
}

// InBounds reports whether the cell lies within the grid.
func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.Size && col >= 0 && col < b.Size
}

// At returns the state of the given cell. The caller must ensure the
// cell is in bounds.
func (b *Board) At(row, col int) CellState {
	return b.Cells[row][col]
}

// shipCells enumerates the cells a ship of the given size and
// orientation would occupy starting at (row, col).
func shipCells(shipSize, row, col int, horizontal bool) []Coord {
	cells := make([]Coord, 0, shipSize)
	for i := 0; i < shipSize; i++ {
		if horizontal {
			cells = append(cells, Coord{Row: row, Col: col + i})
		} else {
			cells = append(cells, Coord{Row: row + i, Col: col})
		}
	}
	return cells
}

// CanPlace reports whether a ship of the given size fits at (row, col)
// with the given orientation. All cells must be in bounds and unoccupied,
// and no cell of the 8-neighborhood of any ship cell may hold another
// ship: ships never touch, not even diagonally.
func (b *Board) CanPlace(shipSize, row, col int, horizontal bool) bool {
	cells := shipCells(shipSize, row, col, horizontal)
	for _, c := range cells {
		if !b.InBounds(c.Row, c.Col) {
			return false
		}
		if b.Cells[c.Row][c.Col] == CellShip {
			return false
		}
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				nr, nc := c.Row+dr, c.Col+dc
				if b.InBounds(nr, nc) && b.Cells[nr][nc] == CellShip {
					return false
				}
			}
		}
	}
	return true
}

// Place marks the ship's cells on the board and returns them in
// placement order. The caller must have confirmed CanPlace; Place does
// not re-validate.
func (b *Board) Place(shipSize, row, col int, horizontal bool) []Coord {
	cells := shipCells(shipSize, row, col, horizontal)
	for _, c := range cells {
		b.Cells[c.Row][c.Col] = CellShip
	}
	return cells
}

// Remove resets the given cells to empty. Used when a player retracts a
// ship during setup.
func (b *Board) Remove(cells []Coord) {
	for _, c := range cells {
		if b.InBounds(c.Row, c.Col) {
			b.Cells[c.Row][c.Col] = CellEmpty
		}
	}
}

// Grid returns a deep copy of the board's cells, safe to hand outside
// the session lock.
func (b *Board) Grid() [][]CellState {
	grid := make([][]CellState, b.Size)
	for r := range b.Cells {
		grid[r] = make([]CellState, b.Size)
		copy(grid[r], b.Cells[r])
	}
	return grid
}
