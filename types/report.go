package types

import (
	"math"
	"time"
)

// Report summarizes how a sample of edges spread over a partition grid.
//
// Reports are produced by the sampler and consumed by visualization tooling,
// either through the HTTP API or the NATS KV report bucket.
type Report struct {
	// RunID uniquely identifies the sampling run.
	RunID string `json:"run_id"`

	// Version is assigned by the report publisher and increases monotonically.
	// Zero for reports that were never published.
	Version int64 `json:"version"`

	// NumParts is the partition count that was sampled.
	NumParts int `json:"num_parts"`

	// Grid is the layout derived from NumParts.
	Grid Grid `json:"grid"`

	// Seed is the seed of the deterministic sample stream.
	Seed uint64 `json:"seed"`

	// Samples is the number of edges assigned.
	Samples int `json:"samples"`

	// VertexPool is the number of distinct vertex IDs edges were drawn from (0 = unbounded).
	VertexPool int `json:"vertex_pool"`

	// Counts holds the number of edges per partition index.
	Counts []int64 `json:"counts"`

	// Min, Max and Mean summarize Counts.
	Min  int64   `json:"min"`
	Max  int64   `json:"max"`
	Mean float64 `json:"mean"`

	// Imbalance is Max/Min. It is +Inf when at least one partition stayed empty.
	Imbalance float64 `json:"-"`

	// MaxReplication is the largest number of distinct partitions any sampled vertex
	// touched. Only tracked when VertexPool > 0.
	MaxReplication int `json:"max_replication"`

	// MeanReplication is the average replication over all sampled vertices.
	MeanReplication float64 `json:"mean_replication"`

	// ReplicationBound is Grid.ReplicationBound(), kept for consumers that only read the report.
	ReplicationBound int `json:"replication_bound"`

	// Duration is how long the sampling run took.
	Duration time.Duration `json:"duration"`

	// GeneratedAt is when the run finished.
	GeneratedAt time.Time `json:"generated_at"`
}

// Summarize fills Min, Max, Mean and Imbalance from Counts.
func (r *Report) Summarize() {
	if len(r.Counts) == 0 {
		r.Min, r.Max, r.Mean, r.Imbalance = 0, 0, 0, 0
		return
	}

	r.Min, r.Max = r.Counts[0], r.Counts[0]
	var total int64
	for _, c := range r.Counts {
		r.Min = min(r.Min, c)
		r.Max = max(r.Max, c)
		total += c
	}
	r.Mean = float64(total) / float64(len(r.Counts))

	switch {
	case r.Max == 0:
		r.Imbalance = 0
	case r.Min == 0:
		r.Imbalance = math.Inf(1)
	default:
		r.Imbalance = float64(r.Max) / float64(r.Min)
	}
}

// Balanced reports whether the largest partition holds at most factor times
// the edges of the smallest one.
func (r *Report) Balanced(factor float64) bool {
	return r.Max > 0 && r.Imbalance <= factor
}
