package types

// Grid describes the 2D layout edges are distributed over.
//
// The layout has Cols columns. Every column except the last holds Rows partitions;
// the last column holds LastColRows partitions so that
// (Cols-1)*Rows + LastColRows == NumParts. Partitions are numbered column-major:
// the partition at (col, row) is col*Rows + row.
//
// When NumParts is a perfect square the grid is Cols x Cols and PerfectSquare is set.
type Grid struct {
	// NumParts is the partition count the grid was derived from.
	NumParts int `json:"num_parts"`

	// Cols is ceil(sqrt(NumParts)).
	Cols int `json:"cols"`

	// Rows is ceil(NumParts/Cols), the height of every column but the last.
	Rows int `json:"rows"`

	// LastColRows is the height of the final column, 1 <= LastColRows <= Rows.
	LastColRows int `json:"last_col_rows"`

	// PerfectSquare reports whether NumParts == Cols*Cols.
	PerfectSquare bool `json:"perfect_square"`
}

// ColumnHeight returns the number of partitions in the given column.
//
// Returns 0 for a column outside [0, Cols).
func (g Grid) ColumnHeight(col int) int {
	switch {
	case col < 0 || col >= g.Cols:
		return 0
	case col == g.Cols-1:
		return g.LastColRows
	default:
		return g.Rows
	}
}

// Cell returns the partition index at (col, row), or -1 if the cell is outside the grid.
func (g Grid) Cell(col, row int) int {
	if row < 0 || row >= g.ColumnHeight(col) {
		return -1
	}

	return col*g.Rows + row
}

// ReplicationBound is the largest number of distinct partitions a single vertex
// can be spread over.
//
// As a source a vertex is pinned to one column (at most Rows partitions); as a
// destination it lands on one row per column (at most Cols partitions).
func (g Grid) ReplicationBound() int {
	return g.Rows + g.Cols
}
