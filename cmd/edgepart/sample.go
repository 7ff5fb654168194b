package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/arloliu/edgepart"
	"github.com/arloliu/edgepart/publisher"
	"github.com/arloliu/edgepart/sampler"
	"github.com/arloliu/edgepart/types"
)

type sampleFlags struct {
	parts      int
	samples    int
	seed       uint64
	workers    int
	vertexPool int
	publish    bool
	asJSON     bool
}

func newSampleCmd(a *app) *cobra.Command {
	var f sampleFlags

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Measure load balance and vertex replication over a random edge stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return a.runSample(ctx, cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&f.parts, "parts", 0, "partition count (required)")
	flags.IntVar(&f.samples, "samples", 0, "number of edges (default from config)")
	flags.Uint64Var(&f.seed, "seed", 0, "edge stream seed (default from config)")
	flags.IntVar(&f.workers, "workers", 0, "assigning goroutines (default from config)")
	flags.IntVar(&f.vertexPool, "vertex-pool", 0, "draw vertex IDs from [0, n) and report replication (default from config)")
	flags.BoolVar(&f.publish, "publish", false, "publish the report to the NATS KV report bucket")
	flags.BoolVar(&f.asJSON, "json", false, "print the report as JSON")
	_ = cmd.MarkFlagRequired("parts")

	return cmd
}

func (a *app) runSample(ctx context.Context, cmd *cobra.Command, f sampleFlags) error {
	sc := a.cfg.Sampler
	flags := cmd.Flags()
	if flags.Changed("samples") {
		sc.Samples = f.samples
	}
	if flags.Changed("seed") {
		sc.Seed = f.seed
	}
	if flags.Changed("workers") {
		sc.Workers = f.workers
	}
	if flags.Changed("vertex-pool") {
		sc.VertexPool = f.vertexPool
	}

	s := sampler.New(edgepart.NewPartitioner(),
		sampler.WithWorkers(sc.Workers),
		sampler.WithSeed(sc.Seed),
		sampler.WithVertexPool(sc.VertexPool),
		sampler.WithMaxPartitions(sc.MaxPartitions),
		sampler.WithMaxSamples(sc.MaxSamples),
		sampler.WithLogger(a.logger),
	)

	report, err := s.Run(ctx, f.parts, sc.Samples)
	if err != nil {
		return err
	}

	if f.publish {
		if err := a.publish(ctx, report); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(report)
	}
	printReport(out, report)

	return nil
}

// publish writes report to the configured report bucket.
func (a *app) publish(ctx context.Context, report *types.Report) error {
	nc, err := connectNATS(a.cfg.NATS)
	if err != nil {
		return err
	}
	defer nc.Close()

	pub, err := publisher.Open(ctx, nc, publisherConfig(a.cfg.NATS), publisher.WithLogger(a.logger))
	if err != nil {
		return err
	}

	return pub.Publish(ctx, report)
}

func connectNATS(cfg edgepart.NATSConfig) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("edgepart"),
		nats.Timeout(cfg.OperationTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.URL, err)
	}

	return nc, nil
}

func publisherConfig(cfg edgepart.NATSConfig) publisher.Config {
	return publisher.Config{
		Bucket:           cfg.Bucket,
		KeyPrefix:        cfg.KeyPrefix,
		History:          cfg.History,
		OperationTimeout: cfg.OperationTimeout,
	}
}

func printReport(w io.Writer, r *types.Report) {
	fmt.Fprintf(w, "run:          %s\n", r.RunID)
	if r.Version > 0 {
		fmt.Fprintf(w, "version:      %d\n", r.Version)
	}
	fmt.Fprintf(w, "grid:         %d parts, %d cols x %d rows (last column %d)\n",
		r.NumParts, r.Grid.Cols, r.Grid.Rows, r.Grid.LastColRows)
	fmt.Fprintf(w, "samples:      %d (seed %d)\n", r.Samples, r.Seed)
	fmt.Fprintf(w, "load:         min %d, max %d, mean %.1f\n", r.Min, r.Max, r.Mean)
	if math.IsInf(r.Imbalance, 1) {
		fmt.Fprintf(w, "imbalance:    inf (empty partitions)\n")
	} else {
		fmt.Fprintf(w, "imbalance:    %.3f\n", r.Imbalance)
	}
	if r.VertexPool > 0 {
		fmt.Fprintf(w, "replication:  max %d, mean %.2f, bound %d (pool %d)\n",
			r.MaxReplication, r.MeanReplication, r.ReplicationBound, r.VertexPool)
	}
	fmt.Fprintf(w, "duration:     %s\n", r.Duration.Round(time.Microsecond))
}
