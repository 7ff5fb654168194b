// Package grid implements the 2D grid edge partitioning function.
//
// An edge (src, dst) is placed on a near-square grid of partitions: the scrambled
// source ID picks a column and the scrambled destination ID picks a row inside
// that column. A vertex therefore reaches at most one column's worth of partitions
// as a source and one partition per column as a destination, which bounds its
// replication to O(sqrt(numParts)).
//
// The grid works for any positive partition count. Perfect squares keep the
// original square-grid formula bit-for-bit so existing placements never move.
//
// All arithmetic is int64 with two's-complement wraparound, including the absolute
// value: |math.MinInt64| stays math.MinInt64.
package grid
