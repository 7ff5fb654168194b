package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/edgepart/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use, so constructing a
// PrometheusCollector that is never exercised leaves the registry untouched.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	// assigner
	assignments    *prometheus.CounterVec
	invalidCounts  prometheus.Counter
	geometryLookup *prometheus.CounterVec

	// sampler
	sampleRuns     *prometheus.CounterVec
	sampledEdges   *prometheus.CounterVec
	sampleDuration *prometheus.HistogramVec
	imbalance      *prometheus.GaugeVec
	replication    *prometheus.GaugeVec

	// publisher
	publishResults  *prometheus.CounterVec
	publishDuration prometheus.Histogram
}

var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer (prometheus.DefaultRegisterer if nil)
//   - namespace: Metrics namespace ("edgepart" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "edgepart"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.assignments = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "assigner",
			Name:      "assignments_total",
			Help:      "Total edges assigned, by grid path (square, general).",
		}, []string{"path"})

		p.invalidCounts = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "assigner",
			Name:      "invalid_partition_counts_total",
			Help:      "Total assignments rejected because the partition count was below 1.",
		})

		p.geometryLookup = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "assigner",
			Name:      "geometry_cache_lookups_total",
			Help:      "Grid geometry cache lookups by result (hit, miss).",
		}, []string{"result"})

		p.sampleRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "sampler",
			Name:      "runs_total",
			Help:      "Completed sampling runs by partition-count class.",
		}, []string{"parts_class"})

		p.sampledEdges = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "sampler",
			Name:      "edges_total",
			Help:      "Edges assigned by sampling runs, by partition-count class.",
		}, []string{"parts_class"})

		p.sampleDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "sampler",
			Name:      "run_duration_seconds",
			Help:      "Duration of sampling runs in seconds, by partition-count class.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms .. ~8s
		}, []string{"parts_class"})

		p.imbalance = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "sampler",
			Name:      "imbalance_ratio",
			Help:      "Max/min partition load of the latest run in each partition-count class.",
		}, []string{"parts_class"})

		p.replication = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "sampler",
			Name:      "max_replication",
			Help:      "Largest vertex replication factor of the latest run in each partition-count class.",
		}, []string{"parts_class"})

		p.publishResults = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "publisher",
			Name:      "publish_total",
			Help:      "Report publish attempts by result (success, failure).",
		}, []string{"result"})

		p.publishDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "publisher",
			Name:      "publish_duration_seconds",
			Help:      "Latency of report publish operations in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		})

		p.reg.MustRegister(p.assignments)
		p.reg.MustRegister(p.invalidCounts)
		p.reg.MustRegister(p.geometryLookup)
		p.reg.MustRegister(p.sampleRuns)
		p.reg.MustRegister(p.sampledEdges)
		p.reg.MustRegister(p.sampleDuration)
		p.reg.MustRegister(p.imbalance)
		p.reg.MustRegister(p.replication)
		p.reg.MustRegister(p.publishResults)
		p.reg.MustRegister(p.publishDuration)
	})
}

// AssignerMetrics implementation

// RecordAssignment increments the assignment counter for the grid path taken.
func (p *PrometheusCollector) RecordAssignment(perfectSquare bool) {
	p.ensureRegistered()
	if perfectSquare {
		p.assignments.WithLabelValues("square").Inc()
		return
	}
	p.assignments.WithLabelValues("general").Inc()
}

// RecordInvalidPartitionCount increments the rejection counter.
func (p *PrometheusCollector) RecordInvalidPartitionCount() {
	p.ensureRegistered()
	p.invalidCounts.Inc()
}

// RecordGeometryCache increments the cache lookup counter.
func (p *PrometheusCollector) RecordGeometryCache(hit bool) {
	p.ensureRegistered()
	p.geometryLookup.WithLabelValues(hitLabel(hit)).Inc()
}

// SamplerMetrics implementation

// RecordSampleRun records a completed sampling run.
func (p *PrometheusCollector) RecordSampleRun(numParts, samples int, duration float64) {
	p.ensureRegistered()
	parts := PartsClass(numParts)
	p.sampleRuns.WithLabelValues(parts).Inc()
	p.sampledEdges.WithLabelValues(parts).Add(float64(samples))
	p.sampleDuration.WithLabelValues(parts).Observe(duration)
}

// RecordImbalance sets the imbalance gauge for the class of numParts.
func (p *PrometheusCollector) RecordImbalance(numParts int, ratio float64) {
	p.ensureRegistered()
	p.imbalance.WithLabelValues(PartsClass(numParts)).Set(ratio)
}

// RecordReplication sets the max replication gauge for the class of numParts.
func (p *PrometheusCollector) RecordReplication(numParts, maxReplication int) {
	p.ensureRegistered()
	p.replication.WithLabelValues(PartsClass(numParts)).Set(float64(maxReplication))
}

// PublisherMetrics implementation

// RecordPublish records a publish attempt and its latency.
func (p *PrometheusCollector) RecordPublish(success bool, duration float64) {
	p.ensureRegistered()
	result := "failure"
	if success {
		result = "success"
	}
	p.publishResults.WithLabelValues(result).Inc()
	p.publishDuration.Observe(duration)
}

// partsClassBounds are the inclusive upper bounds of the partition-count label
// classes. Counts above the last bound share one open-ended class.
var partsClassBounds = []int{1, 4, 16, 64, 256, 1024, 4096, 16384, 65536}

// PartsClass maps a partition count onto a fixed set of label values so that
// client-chosen counts cannot grow the series set. Exact per-count figures
// live in the sampling report.
//
// Example:
//
//	PartsClass(1)    // "1"
//	PartsClass(10)   // "5-16"
//	PartsClass(1e6)  // "65537+"
func PartsClass(numParts int) string {
	if numParts < 1 {
		return "invalid"
	}

	lower := 1
	for _, upper := range partsClassBounds {
		if numParts <= upper {
			if lower == upper {
				return strconv.Itoa(upper)
			}

			return strconv.Itoa(lower) + "-" + strconv.Itoa(upper)
		}
		lower = upper + 1
	}

	return strconv.Itoa(lower) + "+"
}

func hitLabel(hit bool) string {
	if hit {
		return "hit"
	}

	return "miss"
}
