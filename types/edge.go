package types

// Edge is a directed edge between two vertices.
//
// Vertex IDs span the full int64 range, negative values and math.MinInt64 included.
// They carry no identity beyond their bit pattern.
type Edge struct {
	Src int64 `json:"src"`
	Dst int64 `json:"dst"`
}

// EdgeAssigner maps an edge to a partition index in [0, numParts).
//
// Implementations must be deterministic and safe for concurrent use. A
// numParts below 1 is rejected with an error wrapping ErrInvalidPartitionCount.
type EdgeAssigner interface {
	// Assign returns the partition index for the edge (src, dst).
	//
	// Parameters:
	//   - src: Source vertex ID
	//   - dst: Destination vertex ID
	//   - numParts: Total number of partitions (must be >= 1)
	//
	// Returns:
	//   - int: Partition index in [0, numParts)
	//   - error: ErrInvalidPartitionCount when numParts < 1
	Assign(src, dst int64, numParts int) (int, error)
}

// AssignFunc adapts a plain function to the EdgeAssigner interface.
type AssignFunc func(src, dst int64, numParts int) (int, error)

var _ EdgeAssigner = AssignFunc(nil)

// Assign calls f(src, dst, numParts).
func (f AssignFunc) Assign(src, dst int64, numParts int) (int, error) {
	return f(src, dst, numParts)
}
