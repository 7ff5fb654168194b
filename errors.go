package edgepart

import "github.com/arloliu/edgepart/types"

// Sentinel errors, re-exported from the types package.
var (
	// ErrInvalidPartitionCount is returned when the partition count is below 1.
	ErrInvalidPartitionCount = types.ErrInvalidPartitionCount

	// ErrInvalidSampleCount is returned when a sampling run asks for an unusable sample count.
	ErrInvalidSampleCount = types.ErrInvalidSampleCount

	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrNATSConnectionRequired is returned when a NATS connection is nil.
	ErrNATSConnectionRequired = types.ErrNATSConnectionRequired

	// ErrPublishFailed is returned when writing a report to NATS KV fails.
	ErrPublishFailed = types.ErrPublishFailed

	// ErrReportNotFound is returned when no report exists for a partition count.
	ErrReportNotFound = types.ErrReportNotFound
)
