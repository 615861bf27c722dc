package engine

import "testing"

// verifyAdjacencyInvariant fails the test if any two distinct ships have
// cells within each other's 8-neighborhood.
func verifyAdjacencyInvariant(t *testing.T, fleet []*Ship) {
	t.Helper()
	for i, a := range fleet {
		for j, b := range fleet {
			if i == j {
				continue
			}
			for _, ca := range a.Cells {
				for _, cb := range b.Cells {
					dr, dc := ca.Row-cb.Row, ca.Col-cb.Col
					if dr >= -1 && dr <= 1 && dc >= -1 && dc <= 1 {
						t.Fatalf("Ships %d and %d touch at %v / %v", i, j, ca, cb)
					}
				}
			}
		}
	}
}

func TestAutoPlaceFleet_AllModes(t *testing.T) {
	for id, mode := range BuiltinModes() {
		t.Run(id, func(t *testing.T) {
			for run := 0; run < 25; run++ {
				board, fleet, err := AutoPlaceFleet(mode)
				if err != nil {
					t.Fatalf("AutoPlaceFleet failed: %v", err)
				}
				if len(fleet) != len(mode.Ships) {
					t.Fatalf("Expected %d ships, got %d", len(mode.Ships), len(fleet))
				}

				// Size multiset must match the mode exactly.
				want := mode.shipCountsBySize()
				got := make(map[int]int)
				for _, s := range fleet {
					got[s.Size]++
				}
				for size, n := range want {
					if got[size] != n {
						t.Fatalf("Expected %d ships of size %d, got %d", n, size, got[size])
					}
				}

				// Board cells must agree with the fleet.
				shipCells := 0
				for r := 0; r < board.Size; r++ {
					for c := 0; c < board.Size; c++ {
						if board.At(r, c) == CellShip {
							shipCells++
						}
					}
				}
				if shipCells != mode.TotalShipCells() {
					t.Fatalf("Expected %d ship cells on board, got %d", mode.TotalShipCells(), shipCells)
				}

				verifyAdjacencyInvariant(t, fleet)
			}
		})
	}
}

func TestAutoPlaceFleet_ImpossibleMode(t *testing.T) {
	// Too many ships for the grid: no valid packing exists, so the
	// bounded restarts must terminate with an error instead of looping.
	mode := &ModeConfig{
		ID:       "impossible",
		GridSize: 4,
		Ships:    []int{3, 3, 3, 3, 3, 3},
	}

	_, _, err := AutoPlaceFleet(mode)
	if err == nil {
		t.Fatal("Expected placement to fail for impossible mode")
	}
	if err != ErrPlacementExhausted {
		t.Errorf("Expected ErrPlacementExhausted, got %v", err)
	}
}

func TestPreviewPlacement(t *testing.T) {
	board := NewBoard(8)
	board.Place(3, 0, 0, true)

	// Valid preview: ghost cells rendered as ship, board untouched.
	grid, valid := PreviewPlacement(board, 2, 4, 4, true)
	if !valid {
		t.Error("Expected preview at (4,4) to be valid")
	}
	if grid[4][4] != CellShip || grid[4][5] != CellShip {
		t.Error("Expected ghost ship cells at (4,4) and (4,5)")
	}
	if board.At(4, 4) != CellEmpty {
		t.Error("Preview must not mutate the board")
	}

	// Invalid preview next to the placed ship.
	grid, valid = PreviewPlacement(board, 2, 1, 1, true)
	if valid {
		t.Error("Expected preview touching a ship to be invalid")
	}
	if grid[1][1] != CellMiss {
		t.Error("Expected invalid ghost cells to render as miss markers")
	}
	// Real ship cells keep their state in the preview.
	if grid[0][0] != CellShip {
		t.Error("Expected existing ship cells to stay visible")
	}
}
