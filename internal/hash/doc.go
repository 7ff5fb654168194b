// Package hash generates the deterministic pseudo-random edge stream used by
// the sampler.
//
// Every edge is a pure function of (seed, index), so a stream can be split
// across any number of goroutines and still yield exactly the same edges.
package hash
