package edgepart

// Option configures a Partitioner with optional dependencies.
type Option func(*partitionerOptions)

// partitionerOptions holds optional Partitioner configuration.
type partitionerOptions struct {
	metrics           MetricsCollector
	logger            Logger
	geometryCacheSize int
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewPartitioner
//
// Example:
//
//	collector := metrics.NewPrometheus(prometheus.DefaultRegisterer, "edgepart")
//	p := edgepart.NewPartitioner(edgepart.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *partitionerOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewPartitioner
func WithLogger(logger Logger) Option {
	return func(o *partitionerOptions) {
		o.logger = logger
	}
}

// WithGeometryCacheSize limits how many distinct partition counts the
// Partitioner keeps grid geometry for. Geometry for further counts is computed
// on every call. Zero or negative disables the cache.
//
// Default: 1024
func WithGeometryCacheSize(size int) Option {
	return func(o *partitionerOptions) {
		o.geometryCacheSize = size
	}
}
