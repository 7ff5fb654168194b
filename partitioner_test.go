package edgepart

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/edgepart/internal/logger"
	"github.com/arloliu/edgepart/internal/metrics"
)

type countingMetrics struct {
	*metrics.NopMetrics

	square  atomic.Int64
	general atomic.Int64
	invalid atomic.Int64
	hits    atomic.Int64
	misses  atomic.Int64
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{NopMetrics: metrics.NewNop()}
}

func (m *countingMetrics) RecordAssignment(perfectSquare bool) {
	if perfectSquare {
		m.square.Add(1)
		return
	}
	m.general.Add(1)
}

func (m *countingMetrics) RecordInvalidPartitionCount() { m.invalid.Add(1) }

func (m *countingMetrics) RecordGeometryCache(hit bool) {
	if hit {
		m.hits.Add(1)
		return
	}
	m.misses.Add(1)
}

func TestPartitioner_MatchesAssign(t *testing.T) {
	p := NewPartitioner(WithLogger(logger.NewTest(t)))
	r := rand.New(rand.NewPCG(21, 12))

	for range 5000 {
		src, dst := int64(r.Uint64()), int64(r.Uint64()) //nolint:gosec // full int64 range wanted
		n := r.IntN(300) + 1

		want, err := Assign(src, dst, n)
		require.NoError(t, err)

		got, err := p.Assign(src, dst, n)
		require.NoError(t, err)
		require.Equal(t, want, got)

		got, err = p.AssignEdge(Edge{Src: src, Dst: dst}, n)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestPartitioner_Metrics(t *testing.T) {
	m := newCountingMetrics()
	p := NewPartitioner(WithMetrics(m))

	_, err := p.Assign(1, 2, 9)
	require.NoError(t, err)
	_, err = p.Assign(3, 4, 9)
	require.NoError(t, err)
	_, err = p.Assign(1, 2, 10)
	require.NoError(t, err)
	_, err = p.Assign(1, 2, 0)
	require.ErrorIs(t, err, ErrInvalidPartitionCount)

	require.Equal(t, int64(2), m.square.Load())
	require.Equal(t, int64(1), m.general.Load())
	require.Equal(t, int64(1), m.invalid.Load())
	require.Equal(t, int64(2), m.misses.Load())
	require.Equal(t, int64(1), m.hits.Load())
}

func TestPartitioner_GeometryCache(t *testing.T) {
	t.Run("caches up to the configured size", func(t *testing.T) {
		p := NewPartitioner(WithGeometryCacheSize(2))

		for _, n := range []int{3, 4, 5, 6} {
			_, err := p.Geometry(n)
			require.NoError(t, err)
		}
		require.Equal(t, 2, p.CachedGeometries())

		g, err := p.Geometry(6)
		require.NoError(t, err)
		require.Equal(t, Grid{NumParts: 6, Cols: 3, Rows: 2, LastColRows: 2}, g)
	})

	t.Run("limit holds under concurrent misses", func(t *testing.T) {
		const limit = 4
		p := NewPartitioner(WithGeometryCacheSize(limit))

		var wg sync.WaitGroup
		start := make(chan struct{})
		for w := range 32 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				for i := range 50 {
					n := w*50 + i + 1
					g, err := p.Geometry(n)
					if err != nil || g.NumParts != n {
						t.Errorf("Geometry(%d) = %+v, %v", n, g, err)
						return
					}
				}
			}()
		}
		close(start)
		wg.Wait()

		require.Equal(t, limit, p.CachedGeometries())
	})

	t.Run("zero disables the cache", func(t *testing.T) {
		p := NewPartitioner(WithGeometryCacheSize(0))
		_, err := p.Geometry(10)
		require.NoError(t, err)
		require.Zero(t, p.CachedGeometries())
	})

	t.Run("invalid counts are never cached", func(t *testing.T) {
		p := NewPartitioner()
		_, err := p.Geometry(0)
		require.ErrorIs(t, err, ErrInvalidPartitionCount)
		require.Zero(t, p.CachedGeometries())
	})
}

func TestPartitioner_Concurrent(t *testing.T) {
	p := NewPartitioner()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for w := range 8 {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()

			r := rand.New(rand.NewPCG(seed, seed))
			for range 2000 {
				src, dst := int64(r.Uint64()), int64(r.Uint64()) //nolint:gosec // full int64 range wanted
				n := r.IntN(64) + 1

				want, _ := Assign(src, dst, n)
				got, err := p.Assign(src, dst, n)
				if err != nil {
					errs <- err
					return
				}
				if got != want {
					errs <- fmt.Errorf("Assign(%d, %d, %d): partitioner returned %d, want %d", src, dst, n, got, want)
					return
				}
			}
		}(uint64(w)) //nolint:gosec // w is small
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, 64, p.CachedGeometries())
}
