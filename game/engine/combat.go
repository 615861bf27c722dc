package engine

// AttackOutcome describes the result of a resolved attack.
type AttackOutcome struct {
	Row      int  `json:"row"`
	Col      int  `json:"col"`
	Hit      bool `json:"hit"`
	Sunk     bool `json:"sunk"`
	ShipSize int  `json:"ship_size,omitempty"`
	AllSunk  bool `json:"all_sunk"`
}

// resolveAttack applies one attack from attacker against defender. It
// validates bounds and repeat shots, then updates the attacker's
// tracking grid and the defender's board. Turn handling, deadlines, and
// phase transitions stay with the Game; the resolver only reports what
// happened.
func resolveAttack(attacker, defender *Player, row, col int) (*AttackOutcome, error) {
	board := defender.Board
	tracking := attacker.Tracking

	if !board.InBounds(row, col) {
		return nil, ErrOutOfBounds
	}
	if tracking.At(row, col) != CellEmpty {
		return nil, ErrCellAlreadyAttacked
	}

	outcome := &AttackOutcome{Row: row, Col: col}

	if board.At(row, col) != CellShip {
		tracking.Cells[row][col] = CellMiss
		// The defender sees where the opponent shot, and the miss is
		// remembered for one-shot highlighting until the next hit.
		if board.At(row, col) == CellEmpty {
			board.Cells[row][col] = CellMiss
		}
		defender.LastShot = &ShotMark{Row: row, Col: col, Miss: true}
		return outcome, nil
	}

	outcome.Hit = true
	tracking.Cells[row][col] = CellHit
	board.Cells[row][col] = CellHit
	defender.LastShot = nil

	ship := defender.shipAt(row, col)
	if ship == nil {
		// A ship cell with no owning ship is a corrupted fleet; treat
		// the shot as a plain hit rather than corrupting further state.
		return outcome, nil
	}
	ship.RegisterHit(row, col)

	if ship.Destroyed() {
		outcome.Sunk = true
		outcome.ShipSize = ship.Size
		markSunk(ship, tracking, board)
		outcome.AllSunk = defender.remainingShips() == 0
	}

	return outcome, nil
}

// markSunk promotes the ship's cells to CellSunk on both views and marks
// every untouched 8-neighbor as a miss. Ships never touch, so those
// neighbors are provably water; surfacing them is a hint to the
// attacker, not a rule change.
func markSunk(ship *Ship, tracking, board *Board) {
	for _, c := range ship.Cells {
		tracking.Cells[c.Row][c.Col] = CellSunk
		board.Cells[c.Row][c.Col] = CellSunk
	}
	for _, c := range ship.Cells {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				nr, nc := c.Row+dr, c.Col+dc
				if !board.InBounds(nr, nc) || ship.Covers(nr, nc) {
					continue
				}
				if tracking.At(nr, nc) == CellEmpty {
					tracking.Cells[nr][nc] = CellMiss
				}
				if board.At(nr, nc) == CellEmpty {
					board.Cells[nr][nc] = CellMiss
				}
			}
		}
	}
}
