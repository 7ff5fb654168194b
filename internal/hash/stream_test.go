package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStream_Deterministic(t *testing.T) {
	a := NewStream(7, 0)
	b := NewStream(7, 0)

	for i := range uint64(1000) {
		require.Equal(t, a.Edge(i), b.Edge(i), "edge %d differs", i)
	}
}

func TestStream_SeedChangesEdges(t *testing.T) {
	a := NewStream(1, 0)
	b := NewStream(2, 0)

	same := 0
	for i := range uint64(100) {
		if a.Edge(i) == b.Edge(i) {
			same++
		}
	}
	require.Zero(t, same)
}

func TestStream_SrcAndDstDiffer(t *testing.T) {
	s := NewStream(0, 0)

	equal := 0
	for i := range uint64(1000) {
		e := s.Edge(i)
		if e.Src == e.Dst {
			equal++
		}
	}
	require.Zero(t, equal)
}

func TestStream_Pool(t *testing.T) {
	s := NewStream(3, 50)
	require.Equal(t, 50, s.Pool())

	seen := make(map[int64]struct{})
	for i := range uint64(5000) {
		e := s.Edge(i)
		require.GreaterOrEqual(t, e.Src, int64(0))
		require.Less(t, e.Src, int64(50))
		require.GreaterOrEqual(t, e.Dst, int64(0))
		require.Less(t, e.Dst, int64(50))
		seen[e.Src] = struct{}{}
		seen[e.Dst] = struct{}{}
	}
	require.Len(t, seen, 50, "5000 edges should touch every vertex of a 50-vertex pool")
}

func TestStream_UnboundedCoversNegativeIDs(t *testing.T) {
	s := NewStream(11, -5)
	require.Zero(t, s.Pool())

	var neg, pos int
	for i := range uint64(1000) {
		e := s.Edge(i)
		if e.Src < 0 {
			neg++
		} else {
			pos++
		}
	}
	require.Positive(t, neg)
	require.Positive(t, pos)
}
