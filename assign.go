package edgepart

import "github.com/arloliu/edgepart/internal/grid"

// MixingConstant is multiplied into vertex IDs before they are reduced onto the grid.
const MixingConstant = grid.MixingConstant

// Assign returns the partition index in [0, numParts) for the edge (src, dst).
//
// Assign is pure and safe for concurrent use. It does not allocate unless it
// returns an error.
//
// Parameters:
//   - src: Source vertex ID (any int64)
//   - dst: Destination vertex ID (any int64)
//   - numParts: Partition count (must be >= 1)
//
// Returns:
//   - int: Partition index
//   - error: ErrInvalidPartitionCount when numParts < 1
//
// Example:
//
//	idx, err := edgepart.Assign(42, 7, 10)
func Assign(src, dst int64, numParts int) (int, error) {
	return grid.Assign(src, dst, numParts)
}

// Geometry returns the grid layout used for numParts partitions.
//
// Returns ErrInvalidPartitionCount when numParts < 1.
func Geometry(numParts int) (Grid, error) {
	return grid.NewGeometry(numParts)
}

// IsPerfectSquare reports whether numParts takes the square-grid path.
func IsPerfectSquare(numParts int) bool {
	return grid.IsPerfectSquare(numParts)
}
