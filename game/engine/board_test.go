package engine

import "testing"

func TestNewBoard(t *testing.T) {
	b := NewBoard(8)
	if b.Size != 8 {
		t.Errorf("Expected size 8, got %d", b.Size)
	}
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if b.At(r, c) != CellEmpty {
				t.Fatalf("Expected empty cell at (%d,%d), got %s", r, c, b.At(r, c))
			}
		}
	}
}

func TestBoard_InBounds(t *testing.T) {
	b := NewBoard(6)

	tests := []struct {
		row, col int
		want     bool
	}{
		{0, 0, true},
		{5, 5, true},
		{-1, 0, false},
		{0, -1, false},
		{6, 0, false},
		{0, 6, false},
	}

	for _, tt := range tests {
		if got := b.InBounds(tt.row, tt.col); got != tt.want {
			t.Errorf("InBounds(%d,%d) = %v, want %v", tt.row, tt.col, got, tt.want)
		}
	}
}

func TestBoard_CanPlace_Bounds(t *testing.T) {
	b := NewBoard(8)

	if !b.CanPlace(3, 0, 0, true) {
		t.Error("Expected size-3 ship to fit horizontally at (0,0)")
	}
	if !b.CanPlace(3, 0, 5, true) {
		t.Error("Expected size-3 ship to fit horizontally at (0,5)")
	}
	if b.CanPlace(3, 0, 6, true) {
		t.Error("Expected size-3 ship not to fit horizontally at (0,6)")
	}
	if b.CanPlace(3, 6, 0, false) {
		t.Error("Expected size-3 ship not to fit vertically at (6,0)")
	}
	if b.CanPlace(1, -1, 0, true) {
		t.Error("Expected placement at negative row to fail")
	}
}

func TestBoard_CanPlace_AdjacencyRule(t *testing.T) {
	// Spec scenario: a size-3 ship at row 0 cols 0-2. Any placement at
	// (0,3) touches it, while (0,4) leaves the required water gap.
	b := NewBoard(8)
	b.Place(3, 0, 0, true)

	if b.CanPlace(1, 0, 3, true) {
		t.Error("Expected horizontal placement at (0,3) to fail: adjacent")
	}
	if b.CanPlace(2, 0, 3, false) {
		t.Error("Expected vertical placement at (0,3) to fail: adjacent")
	}
	if !b.CanPlace(1, 0, 4, true) {
		t.Error("Expected placement at (0,4) to succeed: one column of separation")
	}

	// Diagonal contact counts as touching too.
	if b.CanPlace(1, 1, 3, true) {
		t.Error("Expected placement at (1,3) to fail: diagonal contact")
	}
	if !b.CanPlace(1, 2, 2, true) {
		t.Error("Expected placement at (2,2) to succeed: full row of separation")
	}
}

func TestBoard_CanPlace_Overlap(t *testing.T) {
	b := NewBoard(8)
	b.Place(2, 4, 4, true)

	if b.CanPlace(3, 4, 3, true) {
		t.Error("Expected overlapping placement to fail")
	}
	if b.CanPlace(2, 3, 4, false) {
		t.Error("Expected placement crossing an occupied cell to fail")
	}
}

func TestBoard_PlaceAndRemove(t *testing.T) {
	b := NewBoard(8)

	cells := b.Place(3, 2, 1, false)
	if len(cells) != 3 {
		t.Fatalf("Expected 3 cells, got %d", len(cells))
	}
	want := []Coord{{2, 1}, {3, 1}, {4, 1}}
	for i, c := range cells {
		if c != want[i] {
			t.Errorf("Cell %d: expected %v, got %v", i, want[i], c)
		}
		if b.At(c.Row, c.Col) != CellShip {
			t.Errorf("Expected CellShip at %v", c)
		}
	}

	b.Remove(cells)
	for _, c := range cells {
		if b.At(c.Row, c.Col) != CellEmpty {
			t.Errorf("Expected empty cell at %v after removal", c)
		}
	}
}

func TestBoard_Grid_IsCopy(t *testing.T) {
	b := NewBoard(4)
	b.Place(1, 0, 0, true)

	grid := b.Grid()
	grid[0][0] = CellMiss
	if b.At(0, 0) != CellShip {
		t.Error("Mutating the copy must not affect the board")
	}
}
