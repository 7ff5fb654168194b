// Package types provides core type definitions and interfaces for the edgepart library.
//
// This package contains shared types that are used across multiple packages in the
// edgepart library. Keeping them here lets internal packages depend on the types
// without importing the root edgepart package.
//
// Key types:
//   - Edge: A directed edge between two 64-bit vertex IDs
//   - Grid: The 2D partition layout derived from a partition count
//   - Report: Partition load and vertex replication statistics from a sampling run
//   - EdgeAssigner: Anything that maps an edge to a partition index
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
