package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/edgepart/internal/grid"
	"github.com/arloliu/edgepart/internal/hash"
	"github.com/arloliu/edgepart/internal/logger"
	"github.com/arloliu/edgepart/internal/metrics"
	"github.com/arloliu/edgepart/types"
)

// cancelCheckMask controls how often workers poll the context (every 4096 edges).
const cancelCheckMask = 1<<12 - 1

// Sampler runs an EdgeAssigner over a deterministic edge stream and reports
// the resulting load balance and vertex replication.
//
// A Sampler is safe for concurrent use; every Run works on its own state.
type Sampler struct {
	assigner types.EdgeAssigner

	workers       int
	seed          uint64
	vertexPool    int
	maxPartitions int
	maxSamples    int

	logger  types.Logger
	metrics types.SamplerMetrics
}

// New creates a Sampler for the given assigner.
//
// Parameters:
//   - assigner: EdgeAssigner under test (e.g. *edgepart.Partitioner)
//   - opts: Optional configuration (WithWorkers, WithSeed, WithVertexPool, ...)
//
// Returns:
//   - *Sampler: Sampler ready to Run
//
// Example:
//
//	s := sampler.New(edgepart.AssignFunc(edgepart.Assign), sampler.WithSeed(42))
//	report, err := s.Run(ctx, 10, 100_000)
func New(assigner types.EdgeAssigner, opts ...Option) *Sampler {
	s := &Sampler{
		assigner:      assigner,
		workers:       defaultWorkers(),
		seed:          defaultSeed,
		maxPartitions: defaultMaxPartitions,
		maxSamples:    defaultMaxSamples,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.NewNop()
	}

	return s
}

// tally is the private result of one worker.
type tally struct {
	counts []int64

	// replicas[p] holds the vertices incident to an edge placed on partition p.
	// nil when replication is not tracked.
	replicas []*roaring.Bitmap
}

func newTally(numParts int, trackReplicas bool) *tally {
	t := &tally{counts: make([]int64, numParts)}
	if trackReplicas {
		t.replicas = make([]*roaring.Bitmap, numParts)
	}

	return t
}

func (t *tally) add(idx int, e types.Edge) {
	t.counts[idx]++
	if t.replicas == nil {
		return
	}

	b := t.replicas[idx]
	if b == nil {
		b = roaring.New()
		t.replicas[idx] = b
	}
	b.Add(uint32(e.Src)) //nolint:gosec // pooled IDs are < MaxVertexPool
	b.Add(uint32(e.Dst)) //nolint:gosec // pooled IDs are < MaxVertexPool
}

// Run assigns samples edges over numParts partitions and summarizes the result.
//
// The edge stream depends only on the seed and vertex pool, so the report's
// counts and replication figures do not depend on the worker count.
//
// Parameters:
//   - ctx: Context for cancellation
//   - numParts: Partition count, 1 <= numParts <= max partitions
//   - samples: Number of edges, 1 <= samples <= max samples
//
// Returns:
//   - *types.Report: Summarized report with a fresh RunID and Version 0
//   - error: ErrAssignerRequired, ErrInvalidPartitionCount, ErrInvalidSampleCount,
//     ErrInvalidConfig (vertex pool), ErrOutOfRange, an assigner error, or ctx.Err()
func (s *Sampler) Run(ctx context.Context, numParts, samples int) (*types.Report, error) {
	if s.assigner == nil {
		return nil, types.ErrAssignerRequired
	}
	if numParts < 1 || numParts > s.maxPartitions {
		return nil, fmt.Errorf("%w: %d (must be in [1, %d])", types.ErrInvalidPartitionCount, numParts, s.maxPartitions)
	}
	if samples < 1 || samples > s.maxSamples {
		return nil, fmt.Errorf("%w: %d (must be in [1, %d])", types.ErrInvalidSampleCount, samples, s.maxSamples)
	}
	if s.vertexPool < 0 || s.vertexPool > MaxVertexPool {
		return nil, fmt.Errorf("%w: vertex pool %d (must be in [0, %d])", types.ErrInvalidConfig, s.vertexPool, MaxVertexPool)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g, err := grid.NewGeometry(numParts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	stream := hash.NewStream(s.seed, s.vertexPool)
	workers := min(s.workers, samples)
	chunk := (samples + workers - 1) / workers
	tallies := make([]*tally, workers)

	eg, egCtx := errgroup.WithContext(ctx)
	for w := range workers {
		lo := min(w*chunk, samples)
		hi := min(lo+chunk, samples)
		t := newTally(numParts, s.vertexPool > 0)
		tallies[w] = t

		eg.Go(func() error {
			return s.assign(egCtx, stream, numParts, lo, hi, t)
		})
	}
	if err := eg.Wait(); err != nil {
		s.logger.Warn("sampling run failed", "numParts", numParts, "samples", samples, "error", err)
		return nil, err
	}

	report := &types.Report{
		RunID:            uuid.NewString(),
		NumParts:         numParts,
		Grid:             g,
		Seed:             s.seed,
		Samples:          samples,
		VertexPool:       s.vertexPool,
		Counts:           mergeCounts(tallies, numParts),
		ReplicationBound: g.ReplicationBound(),
	}
	report.Summarize()

	if s.vertexPool > 0 {
		report.MaxReplication, report.MeanReplication = replication(tallies, numParts, s.vertexPool)
	}

	report.Duration = time.Since(start)
	report.GeneratedAt = time.Now().UTC()

	s.metrics.RecordSampleRun(numParts, samples, report.Duration.Seconds())
	s.metrics.RecordImbalance(numParts, report.Imbalance)
	if s.vertexPool > 0 {
		s.metrics.RecordReplication(numParts, report.MaxReplication)
	}

	s.logger.Info("sampling run completed",
		"runID", report.RunID,
		"numParts", numParts,
		"samples", samples,
		"workers", workers,
		"min", report.Min,
		"max", report.Max,
		"imbalance", report.Imbalance,
		"maxReplication", report.MaxReplication,
		"duration", report.Duration,
	)

	return report, nil
}

// assign processes stream indexes [lo, hi) into t.
func (s *Sampler) assign(ctx context.Context, stream hash.Stream, numParts, lo, hi int, t *tally) error {
	for i := lo; i < hi; i++ {
		if (i-lo)&cancelCheckMask == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		e := stream.Edge(uint64(i)) //nolint:gosec // i >= 0
		idx, err := s.assigner.Assign(e.Src, e.Dst, numParts)
		if err != nil {
			return fmt.Errorf("failed to assign edge (%d, %d): %w", e.Src, e.Dst, err)
		}
		if idx < 0 || idx >= numParts {
			return fmt.Errorf("%w: edge (%d, %d) mapped to %d, want [0, %d)", types.ErrOutOfRange, e.Src, e.Dst, idx, numParts)
		}

		t.add(idx, e)
	}

	return nil
}

func mergeCounts(tallies []*tally, numParts int) []int64 {
	counts := make([]int64, numParts)
	for _, t := range tallies {
		for p, c := range t.counts {
			counts[p] += c
		}
	}

	return counts
}

// replication returns the largest and the mean number of distinct partitions
// per sampled vertex.
func replication(tallies []*tally, numParts, pool int) (int, float64) {
	perVertex := make([]uint32, pool)
	parts := make([]*roaring.Bitmap, 0, len(tallies))

	for p := range numParts {
		parts = parts[:0]
		for _, t := range tallies {
			if b := t.replicas[p]; b != nil {
				parts = append(parts, b)
			}
		}
		if len(parts) == 0 {
			continue
		}

		it := roaring.FastOr(parts...).Iterator()
		for it.HasNext() {
			perVertex[it.Next()]++
		}
	}

	var maxRep, vertices, total int
	for _, r := range perVertex {
		if r == 0 {
			continue
		}
		vertices++
		total += int(r)
		maxRep = max(maxRep, int(r))
	}
	if vertices == 0 {
		return 0, 0
	}

	return maxRep, float64(total) / float64(vertices)
}
