package publisher

import (
	"time"

	"github.com/arloliu/edgepart/types"
)

const (
	// DefaultBucket is the KV bucket reports are written to.
	DefaultBucket = "edgepart-reports"

	// DefaultKeyPrefix prefixes report keys.
	DefaultKeyPrefix = "report"

	defaultHistory          = 5
	defaultOperationTimeout = 5 * time.Second
	bucketCreateAttempts    = 3
)

// Config describes the report bucket.
type Config struct {
	// Bucket is the KV bucket name. Default: "edgepart-reports".
	Bucket string

	// KeyPrefix prefixes report keys. Default: "report".
	KeyPrefix string

	// History is the number of revisions kept per key. Default: 5.
	History int

	// OperationTimeout bounds each KV operation. Default: 5s.
	OperationTimeout time.Duration
}

func (c *Config) setDefaults() {
	if c.Bucket == "" {
		c.Bucket = DefaultBucket
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
	if c.History <= 0 {
		c.History = defaultHistory
	}
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = defaultOperationTimeout
	}
}

// Option configures a ReportPublisher.
type Option func(*ReportPublisher)

// WithLogger sets a logger.
func WithLogger(logger types.Logger) Option {
	return func(p *ReportPublisher) {
		p.logger = logger
	}
}

// WithMetrics sets a metrics collector.
func WithMetrics(metrics types.PublisherMetrics) Option {
	return func(p *ReportPublisher) {
		p.metrics = metrics
	}
}

// WithOperationTimeout bounds each KV operation. Zero leaves the caller's context as is.
func WithOperationTimeout(d time.Duration) Option {
	return func(p *ReportPublisher) {
		p.opTimeout = d
	}
}
