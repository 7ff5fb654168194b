package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/edgepart/internal/kvutil"
	"github.com/arloliu/edgepart/internal/logger"
	"github.com/arloliu/edgepart/internal/metrics"
	"github.com/arloliu/edgepart/internal/natsutil"
	"github.com/arloliu/edgepart/types"
)

// ReportPublisher writes sampling reports to a NATS KV bucket.
//
// Version monotonicity is kept across restarts by discovering the highest
// existing version before the first publish. ReportPublisher is safe for
// concurrent use; publishes are serialized.
type ReportPublisher struct {
	kv        jetstream.KeyValue
	prefix    string
	keyPrefix string // cached "prefix."
	opTimeout time.Duration

	mu             sync.Mutex
	currentVersion int64

	logger  types.Logger
	metrics types.PublisherMetrics
}

// New creates a publisher on an existing bucket.
//
// New does not touch the bucket; call DiscoverHighestVersion before the first
// Publish when the bucket may already hold reports.
//
// Parameters:
//   - kv: Report bucket
//   - prefix: Key prefix (e.g., "report")
//   - opts: Optional configuration (WithLogger, WithMetrics, WithOperationTimeout)
//
// Returns:
//   - *ReportPublisher: A new publisher
func New(kv jetstream.KeyValue, prefix string, opts ...Option) *ReportPublisher {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	p := &ReportPublisher{
		kv:        kv,
		prefix:    prefix,
		keyPrefix: prefix + ".",
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = logger.NewNop()
	}
	if p.metrics == nil {
		p.metrics = metrics.NewNop()
	}

	return p
}

// Open creates or opens the report bucket described by cfg and returns a
// publisher whose version counter continues from the bucket's contents.
//
// Parameters:
//   - ctx: Context for bucket creation and version discovery
//   - nc: NATS connection
//   - cfg: Bucket configuration (zero fields take defaults)
//   - opts: Optional configuration
//
// Returns:
//   - *ReportPublisher: Ready-to-use publisher
//   - error: ErrNATSConnectionRequired, or a bucket/discovery error
//
// Example:
//
//	nc, _ := nats.Connect(nats.DefaultURL)
//	pub, err := publisher.Open(ctx, nc, publisher.Config{}, publisher.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	err = pub.Publish(ctx, report)
func Open(ctx context.Context, nc *nats.Conn, cfg Config, opts ...Option) (*ReportPublisher, error) {
	if nc == nil {
		return nil, types.ErrNATSConnectionRequired
	}
	cfg.setDefaults()

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kv, err := kvutil.EnsureKVBucketWithRetry(ctx, js, jetstream.KeyValueConfig{
		Bucket:      cfg.Bucket,
		Description: "edgepart sampling reports",
		History:     uint8(min(cfg.History, 64)), //nolint:gosec // clamped to the JetStream maximum
	}, bucketCreateAttempts)
	if err != nil {
		return nil, err
	}

	opts = append([]Option{WithOperationTimeout(cfg.OperationTimeout)}, opts...)
	p := New(kv, cfg.KeyPrefix, opts...)
	if err := p.DiscoverHighestVersion(ctx); err != nil {
		return nil, err
	}

	return p, nil
}

// Key returns the KV key holding the report for numParts.
func (p *ReportPublisher) Key(numParts int) string {
	return p.keyPrefix + strconv.Itoa(numParts)
}

// withTimeout bounds ctx by the operation timeout.
func (p *ReportPublisher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.opTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, p.opTimeout)
}

// reportKeys lists the keys under the publisher's prefix.
func (p *ReportPublisher) reportKeys(ctx context.Context) ([]string, error) {
	keys, err := p.kv.Keys(ctx)
	if err != nil {
		if natsutil.IsNoKeysError(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to list KV keys: %w", err)
	}

	out := keys[:0]
	for _, key := range keys {
		if strings.HasPrefix(key, p.keyPrefix) {
			out = append(out, key)
		}
	}

	return out, nil
}

// DiscoverHighestVersion scans the bucket for the highest existing report version.
//
// Keys outside the prefix and entries that fail to decode are skipped.
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - error: Nil on success, error on KV access failure
func (p *ReportPublisher) DiscoverHighestVersion(ctx context.Context) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	keys, err := p.reportKeys(ctx)
	if err != nil {
		return err
	}

	highest := int64(0)
	for _, key := range keys {
		entry, err := p.kv.Get(ctx, key)
		if err != nil {
			p.logger.Debug("failed to read report key", "key", key, "error", err)
			continue
		}

		var r types.Report
		if err := json.Unmarshal(entry.Value(), &r); err != nil {
			p.logger.Debug("failed to unmarshal report", "key", key, "error", err)
			continue
		}

		highest = max(highest, r.Version)
	}

	p.mu.Lock()
	p.currentVersion = max(p.currentVersion, highest)
	p.mu.Unlock()

	if highest > 0 {
		p.logger.Info("discovered existing reports", "highestVersion", highest, "keys", len(keys))
	} else {
		p.logger.Debug("no existing reports found", "prefix", p.prefix)
	}

	return nil
}

// Publish assigns the next version to report and writes it to the bucket,
// replacing the previous report for the same partition count.
//
// Parameters:
//   - ctx: Context for cancellation
//   - report: Report to publish; its Version field is updated on success
//
// Returns:
//   - error: ErrPublishFailed wrapping the cause, nil on success
//
// Example:
//
//	report, _ := s.Run(ctx, 16, 100_000)
//	if err := pub.Publish(ctx, report); err != nil {
//	    return err
//	}
//	fmt.Println("published version", report.Version)
func (p *ReportPublisher) Publish(ctx context.Context, report *types.Report) error {
	if report == nil {
		return fmt.Errorf("%w: nil report", types.ErrPublishFailed)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	version := p.currentVersion + 1

	out := *report
	out.Version = version
	data, err := json.Marshal(&out)
	if err != nil {
		p.metrics.RecordPublish(false, time.Since(start).Seconds())
		return fmt.Errorf("%w: failed to marshal report: %w", types.ErrPublishFailed, err)
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	key := p.Key(report.NumParts)
	if _, err := p.kv.Put(ctx, key, data); err != nil {
		p.metrics.RecordPublish(false, time.Since(start).Seconds())
		if natsutil.IsConnectivityError(err) {
			p.logger.Warn("NATS unavailable, report not published", "key", key, "error", err)
		}

		return fmt.Errorf("%w: %s: %w", types.ErrPublishFailed, key, err)
	}

	p.currentVersion = version
	report.Version = version
	p.metrics.RecordPublish(true, time.Since(start).Seconds())

	p.logger.Info("report published",
		"key", key,
		"version", version,
		"runID", report.RunID,
		"bytes", len(data),
	)

	return nil
}

// Latest returns the most recently published report for numParts.
//
// Returns:
//   - *types.Report: Decoded report with Imbalance recomputed from Counts
//   - error: ErrReportNotFound when no report exists for numParts
func (p *ReportPublisher) Latest(ctx context.Context, numParts int) (*types.Report, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	key := p.Key(numParts)
	entry, err := p.kv.Get(ctx, key)
	if err != nil {
		if natsutil.IsNoKeysError(err) {
			return nil, fmt.Errorf("%w: %d partitions", types.ErrReportNotFound, numParts)
		}

		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	var r types.Report
	if err := json.Unmarshal(entry.Value(), &r); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	r.Summarize()

	return &r, nil
}

// PartitionCounts returns the partition counts that have a published report.
func (p *ReportPublisher) PartitionCounts(ctx context.Context) ([]int, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	keys, err := p.reportKeys(ctx)
	if err != nil {
		return nil, err
	}

	counts := make([]int, 0, len(keys))
	for _, key := range keys {
		n, err := strconv.Atoi(strings.TrimPrefix(key, p.keyPrefix))
		if err != nil {
			continue
		}
		counts = append(counts, n)
	}

	return counts, nil
}

// Cleanup deletes every report under the publisher's prefix.
//
// Versions keep increasing after a cleanup; deletion failures of single keys
// are logged and skipped.
func (p *ReportPublisher) Cleanup(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	keys, err := p.reportKeys(ctx)
	if err != nil {
		p.logger.Warn("failed to list keys for cleanup", "error", err)
		return err
	}

	deleted := 0
	for _, key := range keys {
		if err := p.kv.Delete(ctx, key); err != nil {
			p.logger.Warn("failed to delete report", "key", key, "error", err)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		p.logger.Info("cleaned up reports", "deleted", deleted)
	}

	return nil
}

// CurrentVersion returns the version of the last published or discovered report.
func (p *ReportPublisher) CurrentVersion() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.currentVersion
}
