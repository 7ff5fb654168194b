// Package sampler measures how evenly an EdgeAssigner spreads edges over a
// partition grid.
//
// A run assigns a deterministic pseudo-random stream of edges and reports the
// per-partition edge counts together with vertex replication: the number of
// distinct partitions each vertex ends up in. Runs are reproducible; the same
// seed, vertex pool and sample count yield the same counts regardless of how
// many workers share the work.
//
// Basic usage:
//
//	s := sampler.New(edgepart.NewPartitioner(), sampler.WithWorkers(8), sampler.WithVertexPool(10_000))
//	report, err := s.Run(ctx, 16, 1_000_000)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(report.Imbalance, report.MaxReplication)
package sampler
