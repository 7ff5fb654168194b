// Package metrics provides types.MetricsCollector implementations.
package metrics

import "github.com/arloliu/edgepart/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. It is the default when no collector is configured.
type NopMetrics struct{}

var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// AssignerMetrics implementation

// RecordAssignment discards the assignment metric.
func (n *NopMetrics) RecordAssignment(_ /* perfectSquare */ bool) {}

// RecordInvalidPartitionCount discards the rejection metric.
func (n *NopMetrics) RecordInvalidPartitionCount() {}

// RecordGeometryCache discards the cache lookup metric.
func (n *NopMetrics) RecordGeometryCache(_ /* hit */ bool) {}

// SamplerMetrics implementation

// RecordSampleRun discards the sampling run metric.
func (n *NopMetrics) RecordSampleRun(_ /* numParts */, _ /* samples */ int, _ /* duration */ float64) {}

// RecordImbalance discards the imbalance metric.
func (n *NopMetrics) RecordImbalance(_ /* numParts */ int, _ /* ratio */ float64) {}

// RecordReplication discards the replication metric.
func (n *NopMetrics) RecordReplication(_ /* numParts */, _ /* maxReplication */ int) {}

// PublisherMetrics implementation

// RecordPublish discards the publish metric.
func (n *NopMetrics) RecordPublish(_ /* success */ bool, _ /* duration */ float64) {}
