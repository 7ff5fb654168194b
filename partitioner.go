package edgepart

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/edgepart/internal/grid"
	"github.com/arloliu/edgepart/internal/logger"
	"github.com/arloliu/edgepart/internal/metrics"
)

const defaultGeometryCacheSize = 1024

// Partitioner assigns edges the same way Assign does, caching grid geometry per
// partition count and recording metrics for every assignment.
//
// A Partitioner is safe for concurrent use. Its results are always identical to
// Assign for the same arguments.
type Partitioner struct {
	geometries *xsync.Map[int, Grid]
	cacheSize  int64
	cached     atomic.Int64 // entries stored or reserved; never exceeds cacheSize

	logger  Logger
	metrics MetricsCollector
}

var _ EdgeAssigner = (*Partitioner)(nil)

// NewPartitioner creates a Partitioner.
//
// Parameters:
//   - opts: Optional configuration (WithLogger, WithMetrics, WithGeometryCacheSize)
//
// Returns:
//   - *Partitioner: Ready-to-use partitioner
//
// Example:
//
//	p := edgepart.NewPartitioner(edgepart.WithLogger(logger))
//	idx, err := p.Assign(src, dst, 10)
func NewPartitioner(opts ...Option) *Partitioner {
	o := partitionerOptions{geometryCacheSize: defaultGeometryCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = logger.NewNop()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewNop()
	}

	return &Partitioner{
		geometries: xsync.NewMap[int, Grid](),
		cacheSize:  int64(max(o.geometryCacheSize, 0)),
		logger:     o.logger,
		metrics:    o.metrics,
	}
}

// Assign returns the partition index in [0, numParts) for the edge (src, dst).
//
// Parameters:
//   - src: Source vertex ID
//   - dst: Destination vertex ID
//   - numParts: Partition count (must be >= 1)
//
// Returns:
//   - int: Partition index, identical to edgepart.Assign
//   - error: ErrInvalidPartitionCount when numParts < 1
func (p *Partitioner) Assign(src, dst int64, numParts int) (int, error) {
	g, err := p.Geometry(numParts)
	if err != nil {
		return 0, err
	}

	idx := grid.Locate(g, src, dst)
	p.metrics.RecordAssignment(g.PerfectSquare)

	return idx, nil
}

// AssignEdge is Assign for an Edge value.
func (p *Partitioner) AssignEdge(e Edge, numParts int) (int, error) {
	return p.Assign(e.Src, e.Dst, numParts)
}

// Geometry returns the grid layout for numParts, from cache when possible.
//
// Returns ErrInvalidPartitionCount when numParts < 1.
func (p *Partitioner) Geometry(numParts int) (Grid, error) {
	if g, ok := p.geometries.Load(numParts); ok {
		p.metrics.RecordGeometryCache(true)
		return g, nil
	}

	g, err := grid.NewGeometry(numParts)
	if err != nil {
		p.metrics.RecordInvalidPartitionCount()
		p.logger.Debug("rejected partition count", "num_parts", numParts, "error", err)

		return Grid{}, err
	}

	p.metrics.RecordGeometryCache(false)

	var stored bool
	p.geometries.LoadOrCompute(numParts, func() (Grid, bool) {
		if !p.reserveCacheSlot() {
			return Grid{}, true
		}
		stored = true

		return g, false
	})
	if stored {
		p.logger.Debug("cached grid geometry",
			"num_parts", numParts,
			"cols", g.Cols,
			"rows", g.Rows,
			"last_col_rows", g.LastColRows,
			"perfect_square", g.PerfectSquare,
		)
	}

	return g, nil
}

// reserveCacheSlot claims one cache entry, failing once cacheSize entries exist.
func (p *Partitioner) reserveCacheSlot() bool {
	for {
		n := p.cached.Load()
		if n >= p.cacheSize {
			return false
		}
		if p.cached.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// CachedGeometries returns the number of partition counts with cached geometry.
func (p *Partitioner) CachedGeometries() int {
	return p.geometries.Size()
}
