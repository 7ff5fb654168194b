package sampler

import (
	"runtime"

	"github.com/arloliu/edgepart/types"
)

const (
	defaultMaxPartitions = 1 << 20
	defaultMaxSamples    = 10_000_000
	defaultSeed          = 1

	// MaxVertexPool is the largest vertex pool a run can track replication for.
	MaxVertexPool = 1 << 24
)

// Option configures a Sampler.
type Option func(*Sampler)

// WithWorkers sets the number of goroutines assigning edges.
//
// Default: runtime.GOMAXPROCS(0). Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(s *Sampler) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithSeed selects the deterministic edge stream.
//
// Default: 1
func WithSeed(seed uint64) Option {
	return func(s *Sampler) {
		s.seed = seed
	}
}

// WithVertexPool draws vertex IDs from [0, n) and enables replication tracking.
// Zero draws IDs from the whole int64 range, where repeated vertices are too rare
// for replication to mean anything.
//
// Default: 0
func WithVertexPool(n int) Option {
	return func(s *Sampler) {
		s.vertexPool = n
	}
}

// WithMaxPartitions caps the partition count a run accepts. Each run allocates
// one counter per partition, per worker.
//
// Default: 1 << 20
func WithMaxPartitions(n int) Option {
	return func(s *Sampler) {
		s.maxPartitions = n
	}
}

// WithMaxSamples caps the sample count a run accepts.
//
// Default: 10,000,000
func WithMaxSamples(n int) Option {
	return func(s *Sampler) {
		s.maxSamples = n
	}
}

// WithLogger sets a logger.
func WithLogger(logger types.Logger) Option {
	return func(s *Sampler) {
		s.logger = logger
	}
}

// WithMetrics sets a metrics collector.
func WithMetrics(metrics types.SamplerMetrics) Option {
	return func(s *Sampler) {
		s.metrics = metrics
	}
}

func defaultWorkers() int {
	return max(runtime.GOMAXPROCS(0), 1)
}
