package types

import "errors"

// Sentinel errors for the edgepart library.
//
// Callers match them with errors.Is. Components wrap them with context using
// fmt.Errorf("%w: ...", ErrX) so the offending value travels with the error.

// Assignment errors.
var (
	// ErrInvalidPartitionCount is returned when the partition count is below 1
	// or above a component's supported limit.
	ErrInvalidPartitionCount = errors.New("invalid partition count")
)

// Sampler errors.
var (
	// ErrInvalidSampleCount is returned when a sampling run asks for fewer than one sample
	// or more than the configured maximum.
	ErrInvalidSampleCount = errors.New("invalid sample count")

	// ErrAssignerRequired is returned when a sampler is built without an EdgeAssigner.
	ErrAssignerRequired = errors.New("edge assigner is required")

	// ErrOutOfRange is returned when an assigner produced an index outside [0, numParts).
	ErrOutOfRange = errors.New("partition index out of range")
)

// Report publisher errors.
var (
	// ErrNATSConnectionRequired is returned when a NATS connection is nil.
	ErrNATSConnectionRequired = errors.New("NATS connection is required")

	// ErrPublishFailed is returned when writing a report to NATS KV fails.
	ErrPublishFailed = errors.New("failed to publish report")

	// ErrReportNotFound is returned when no report exists for a partition count.
	ErrReportNotFound = errors.New("report not found")
)

// Common errors.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
)
