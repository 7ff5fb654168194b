package hash

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"

	"github.com/arloliu/edgepart/types"
)

const (
	laneSrc byte = 0
	laneDst byte = 1
)

// Stream is an indexable sequence of pseudo-random edges.
//
// Stream is a value type with no mutable state and is safe for concurrent use.
type Stream struct {
	seed uint64
	pool uint64
}

// NewStream creates an edge stream.
//
// Parameters:
//   - seed: Stream seed; equal seeds yield equal streams
//   - pool: Number of distinct vertex IDs to draw from, [0, pool). Zero or
//     negative draws from the full int64 range, negative IDs and math.MinInt64 included.
//
// Returns:
//   - Stream: Edge stream
//
// Example:
//
//	s := hash.NewStream(42, 0)
//	e := s.Edge(0)
func NewStream(seed uint64, pool int) Stream {
	s := Stream{seed: seed}
	if pool > 0 {
		s.pool = uint64(pool)
	}

	return s
}

// Edge returns the i-th edge of the stream.
func (s Stream) Edge(i uint64) types.Edge {
	return types.Edge{
		Src: s.vertex(i, laneSrc),
		Dst: s.vertex(i, laneDst),
	}
}

// Pool returns the vertex pool size, 0 when unbounded.
func (s Stream) Pool() int {
	return int(s.pool) //nolint:gosec // pool originates from a non-negative int
}

// vertex hashes (i, lane) with the stream seed.
func (s Stream) vertex(i uint64, lane byte) int64 {
	var b [9]byte
	binary.LittleEndian.PutUint64(b[:8], i)
	b[8] = lane

	h := xxh3.HashSeed(b[:], s.seed)
	if s.pool > 0 {
		return int64(h % s.pool) //nolint:gosec // h % pool < pool <= MaxInt64
	}

	return int64(h) //nolint:gosec // wraparound is intended, the stream covers all int64 values
}
