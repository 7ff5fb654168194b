package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/arloliu/edgepart"
	"github.com/arloliu/edgepart/internal/metrics"
	"github.com/arloliu/edgepart/publisher"
	"github.com/arloliu/edgepart/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve assignment, grid and sampling endpoints over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg

	partOpts := []edgepart.Option{edgepart.WithLogger(a.logger)}
	srvOpts := []server.Option{
		server.WithLogger(a.logger),
		server.WithSamplerConfig(cfg.Sampler),
	}

	var collector *metrics.PrometheusCollector
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		collector = metrics.NewPrometheus(reg, cfg.Metrics.Namespace)

		partOpts = append(partOpts, edgepart.WithMetrics(collector))
		srvOpts = append(srvOpts, server.WithMetrics(collector, reg))
	}

	if cfg.NATS.Enabled {
		nc, err := connectNATS(cfg.NATS)
		if err != nil {
			return err
		}
		defer drain(nc)

		pubOpts := []publisher.Option{publisher.WithLogger(a.logger)}
		if collector != nil {
			pubOpts = append(pubOpts, publisher.WithMetrics(collector))
		}

		pub, err := publisher.Open(ctx, nc, publisherConfig(cfg.NATS), pubOpts...)
		if err != nil {
			return err
		}
		srvOpts = append(srvOpts, server.WithReportStore(pub))
		a.logger.Info("publishing reports", "url", cfg.NATS.URL, "bucket", cfg.NATS.Bucket)
	}

	srv := server.New(cfg.Server, edgepart.NewPartitioner(partOpts...), srvOpts...)

	return srv.Run(ctx)
}

func drain(nc *nats.Conn) {
	if err := nc.Drain(); err != nil {
		nc.Close()
	}
}
