package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arloliu/edgepart"
	"github.com/arloliu/edgepart/internal/logger"
	"github.com/arloliu/edgepart/internal/metrics"
	"github.com/arloliu/edgepart/types"
)

// ReportStore persists sampling reports. *publisher.ReportPublisher implements it.
type ReportStore interface {
	Publish(ctx context.Context, report *types.Report) error
	Latest(ctx context.Context, numParts int) (*types.Report, error)
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a logger for requests and lifecycle events.
func WithLogger(logger types.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithSamplerConfig sets the defaults and limits for POST /v1/sample.
//
// Default: edgepart.DefaultConfig().Sampler
func WithSamplerConfig(cfg edgepart.SamplerConfig) Option {
	return func(s *Server) {
		s.sampler = cfg
	}
}

// WithReportStore publishes every sampled report and enables GET /v1/reports/:parts.
func WithReportStore(store ReportStore) Option {
	return func(s *Server) {
		s.reports = store
	}
}

// WithMetrics records sampler metrics to collector and serves gatherer at /metrics.
// A nil gatherer leaves /metrics unregistered.
func WithMetrics(collector types.SamplerMetrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = collector
		s.gatherer = gatherer
	}
}

// Server is the HTTP front end of a Partitioner.
type Server struct {
	Engine *gin.Engine

	cfg         edgepart.ServerConfig
	sampler     edgepart.SamplerConfig
	partitioner *edgepart.Partitioner
	reports     ReportStore
	gatherer    prometheus.Gatherer

	logger  types.Logger
	metrics types.SamplerMetrics
}

// New creates a Server and registers its routes.
//
// Parameters:
//   - cfg: Listen address, gin mode and timeouts
//   - p: Partitioner answering assignment and geometry requests
//   - opts: Optional configuration (WithLogger, WithSamplerConfig, WithReportStore, WithMetrics)
//
// Returns:
//   - *Server: Server ready to Run
//
// Example:
//
//	srv := server.New(cfg.Server, edgepart.NewPartitioner(), server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal("server failed", "error", err)
//	}
func New(cfg edgepart.ServerConfig, p *edgepart.Partitioner, opts ...Option) *Server {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if p == nil {
		p = edgepart.NewPartitioner()
	}

	s := &Server{
		cfg:         cfg,
		sampler:     edgepart.DefaultConfig().Sampler,
		partitioner: p,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/v1")
	v1.GET("/assign", s.handleAssign)
	v1.GET("/grid/:parts", s.handleGrid)
	v1.POST("/sample", s.handleSample)
	v1.GET("/reports/:parts", s.handleLatestReport)

	s.Engine = r

	return s
}

// requestLogger logs each request at debug level.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully within
// the configured shutdown timeout.
//
// Returns:
//   - error: Listen or serve error; nil after a graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}

	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Engine,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()

		s.logger.Info("stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("HTTP server forced to shutdown", "error", err)
		}
	}()

	s.logger.Info("starting HTTP server", "address", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-shutdownDone

	return nil
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.cfg.ShutdownTimeout > 0 {
		return s.cfg.ShutdownTimeout
	}

	return 5 * time.Second
}
