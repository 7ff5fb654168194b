// Package edgepart assigns graph edges to partitions on a near-square 2D grid.
//
// Given an edge's source and destination vertex IDs and a partition count, Assign
// returns a partition index such that:
//
//   - The same edge always maps to the same partition
//   - Edges spread evenly over partitions regardless of how vertex IDs are distributed
//   - A vertex's incident edges land in at most Rows+Cols partitions, O(sqrt(numParts))
//
// Any positive partition count is supported. Perfect squares keep the original
// square-grid placement bit-for-bit, so data partitioned before arbitrary counts
// were supported does not move.
//
// # Quick Start
//
//	idx, err := edgepart.Assign(src, dst, 10)
//	if err != nil {
//	    // numParts < 1
//	}
//
// Services that assign many edges use a Partitioner, which caches grid geometry
// and reports metrics:
//
//	p := edgepart.NewPartitioner(
//	    edgepart.WithLogger(logger),
//	    edgepart.WithMetrics(collector),
//	)
//	idx, err := p.Assign(src, dst, 10)
//
// # Arithmetic
//
// Vertex IDs are multiplied by MixingConstant and the absolute value is taken, both
// in int64 with two's-complement wraparound. |math.MinInt64| stays negative; the
// reduction onto the grid is a floored modulo so even that vertex lands in range.
//
// # Measuring balance
//
// The sampler package draws large deterministic edge samples and reports per
// partition load and vertex replication; the server package exposes assignment,
// geometry and sampling over HTTP, and the publisher package stores reports in a
// NATS JetStream KV bucket for visualization tooling.
package edgepart
