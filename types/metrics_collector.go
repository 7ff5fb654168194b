package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and must be safe for concurrent use:
// the partitioner records from every goroutine that assigns edges.
type MetricsCollector interface {
	AssignerMetrics
	SamplerMetrics
	PublisherMetrics
}

// AssignerMetrics defines metrics for edge assignment.
type AssignerMetrics interface {
	// RecordAssignment records one assigned edge.
	//
	// Parameters:
	//   - perfectSquare: true if the perfect-square grid path was taken
	RecordAssignment(perfectSquare bool)

	// RecordInvalidPartitionCount records a rejected partition count.
	RecordInvalidPartitionCount()

	// RecordGeometryCache records a grid geometry cache lookup.
	//
	// Parameters:
	//   - hit: true if the geometry was already cached
	RecordGeometryCache(hit bool)
}

// SamplerMetrics defines metrics for sampling runs.
type SamplerMetrics interface {
	// RecordSampleRun records a completed sampling run.
	//
	// Parameters:
	//   - numParts: Partition count that was sampled
	//   - samples: Number of edges assigned
	//   - duration: Run time in seconds
	RecordSampleRun(numParts, samples int, duration float64)

	// RecordImbalance sets the max/min partition load ratio of the latest run.
	RecordImbalance(numParts int, ratio float64)

	// RecordReplication sets the largest vertex replication observed in the latest run.
	RecordReplication(numParts, maxReplication int)
}

// PublisherMetrics defines metrics for report publishing.
type PublisherMetrics interface {
	// RecordPublish records a report publish attempt.
	//
	// Parameters:
	//   - success: true if the report was written to KV
	//   - duration: Time taken in seconds
	RecordPublish(success bool, duration float64)
}
