package grid

import (
	"fmt"

	"github.com/arloliu/edgepart/types"
)

// NewGeometry derives the grid layout for numParts partitions.
//
// Parameters:
//   - numParts: Partition count (must be >= 1)
//
// Returns:
//   - types.Grid: Layout with Cols = ceil(sqrt(numParts)), Rows = ceil(numParts/Cols)
//     and LastColRows = numParts - Rows*(Cols-1)
//   - error: types.ErrInvalidPartitionCount when numParts < 1
func NewGeometry(numParts int) (types.Grid, error) {
	if numParts < 1 {
		return types.Grid{}, fmt.Errorf("%w: %d (must be >= 1)", types.ErrInvalidPartitionCount, numParts)
	}

	cols := CeilSqrt(numParts)
	if IsPerfectSquare(numParts) {
		return types.Grid{
			NumParts:      numParts,
			Cols:          cols,
			Rows:          cols,
			LastColRows:   cols,
			PerfectSquare: true,
		}, nil
	}

	rows := (numParts-1)/cols + 1

	return types.Grid{
		NumParts:    numParts,
		Cols:        cols,
		Rows:        rows,
		LastColRows: numParts - rows*(cols-1),
	}, nil
}

// Assign returns the partition index in [0, numParts) for the edge (src, dst).
//
// The function is pure, deterministic and does not allocate on success.
//
// Parameters:
//   - src: Source vertex ID (any int64, including math.MinInt64)
//   - dst: Destination vertex ID (any int64, including math.MinInt64)
//   - numParts: Partition count (must be >= 1)
//
// Returns:
//   - int: Partition index
//   - error: types.ErrInvalidPartitionCount when numParts < 1
//
// Example:
//
//	idx, err := grid.Assign(42, 7, 10)
func Assign(src, dst int64, numParts int) (int, error) {
	g, err := NewGeometry(numParts)
	if err != nil {
		return 0, err
	}

	return Locate(g, src, dst), nil
}

// Locate maps the edge (src, dst) onto a geometry built by NewGeometry.
//
// The zero Grid is not a valid geometry; passing it panics with a division by zero.
func Locate(g types.Grid, src, dst int64) int {
	n := int64(g.NumParts)

	if g.PerfectSquare {
		side := int64(g.Cols)
		col := floorMod(scramble(src), side)
		row := floorMod(scramble(dst), side)

		return int(floorMod(col*side+row, n))
	}

	rows := int64(g.Rows)
	col := floorMod(scramble(src), n) / rows

	height := rows
	if col == int64(g.Cols-1) {
		height = int64(g.LastColRows)
	}
	row := floorMod(scramble(dst), height)

	return int(col*rows + row)
}
