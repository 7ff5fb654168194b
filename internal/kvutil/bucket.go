// Package kvutil provides helpers for NATS JetStream KeyValue buckets.
package kvutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/edgepart/internal/natsutil"
)

const (
	defaultMaxAttempts = 3
	initialBackoff     = 10 * time.Millisecond
	maxBackoff         = time.Second
)

// ErrBucketUnavailable is returned when the broker stayed unreachable for every attempt.
var ErrBucketUnavailable = errors.New("kv bucket unavailable")

// EnsureKVBucketWithRetry creates a KV bucket, or opens it when it already exists.
//
// Several publishers (CLI runs, server replicas) may race to create the report
// bucket. Losing that race surfaces as jetstream.ErrBucketExists and is resolved
// by opening the bucket. Only transient failures are retried: connectivity
// errors (see natsutil.IsConnectivityError) and a bucket that vanished between
// create and open. Anything else, such as an invalid bucket name, is returned
// after the first attempt. Backoff doubles from 10ms and is capped at 1s.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - js: JetStream context
//   - config: Bucket configuration
//   - maxAttempts: Attempts before giving up (<= 0 means 3)
//
// Returns:
//   - jetstream.KeyValue: The bucket
//   - error: The first permanent error, a context error, or ErrBucketUnavailable
//     wrapping the last transient error
//
// Example:
//
//	kv, err := kvutil.EnsureKVBucketWithRetry(ctx, js, jetstream.KeyValueConfig{
//	    Bucket:  "edgepart-reports",
//	    History: 5,
//	}, 3)
func EnsureKVBucketWithRetry(
	ctx context.Context,
	js jetstream.JetStream,
	config jetstream.KeyValueConfig,
	maxAttempts int,
) (jetstream.KeyValue, error) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		kv, err := createOrOpen(ctx, js, config)
		if err == nil {
			return kv, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("ensure KV bucket %s: %w", config.Bucket, ctxErr)
		}
		if !isTransient(err) {
			return nil, fmt.Errorf("ensure KV bucket %s: %w", config.Bucket, err)
		}
		if attempt >= maxAttempts {
			return nil, fmt.Errorf("%w: %s after %d attempts: %w", ErrBucketUnavailable, config.Bucket, attempt, err)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("ensure KV bucket %s: %w", config.Bucket, ctx.Err())
		case <-timer.C:
		}
		backoff = min(2*backoff, maxBackoff)
	}
}

func createOrOpen(ctx context.Context, js jetstream.JetStream, config jetstream.KeyValueConfig) (jetstream.KeyValue, error) {
	kv, err := js.CreateKeyValue(ctx, config)
	if !errors.Is(err, jetstream.ErrBucketExists) {
		return kv, err
	}

	kv, err = js.KeyValue(ctx, config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("bucket exists but failed to open: %w", err)
	}

	return kv, nil
}

func isTransient(err error) bool {
	return natsutil.IsConnectivityError(err) || errors.Is(err, jetstream.ErrBucketNotFound)
}
