package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arloliu/edgepart/internal/natsutil"
	"github.com/arloliu/edgepart/sampler"
	"github.com/arloliu/edgepart/types"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"cached_geometries": s.partitioner.CachedGeometries(),
		"reports":           s.reports != nil,
	})
}

// handleAssign handles GET /v1/assign?src=&dst=&parts=
func (s *Server) handleAssign(c *gin.Context) {
	var query struct {
		Src   *int64 `form:"src" binding:"required"`
		Dst   *int64 `form:"dst" binding:"required"`
		Parts *int   `form:"parts" binding:"required"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "Invalid query parameters", err)
		return
	}

	idx, err := s.partitioner.Assign(*query.Src, *query.Dst, *query.Parts)
	if err != nil {
		badRequest(c, "Invalid partition count", err)
		return
	}

	c.JSON(http.StatusOK, AssignResponse{
		Src:       *query.Src,
		Dst:       *query.Dst,
		Parts:     *query.Parts,
		Partition: idx,
	})
}

// partsURI leaves range checks to Partitioner.Geometry so that 0 and negative
// counts get the same error.
type partsURI struct {
	Parts int `uri:"parts"`
}

// handleGrid handles GET /v1/grid/:parts
func (s *Server) handleGrid(c *gin.Context) {
	var uri partsURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, "Invalid path parameters", err)
		return
	}

	g, err := s.partitioner.Geometry(uri.Parts)
	if err != nil {
		badRequest(c, "Invalid partition count", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"grid":              g,
		"replication_bound": g.ReplicationBound(),
	})
}

// handleSample handles POST /v1/sample
func (s *Server) handleSample(c *gin.Context) {
	var req SampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	cfg := s.sampler
	samples := req.Samples
	if samples == 0 {
		samples = cfg.Samples
	}
	seed := cfg.Seed
	if req.Seed != nil {
		seed = *req.Seed
	}
	pool := cfg.VertexPool
	if req.VertexPool != nil {
		pool = *req.VertexPool
	}

	smp := sampler.New(s.partitioner,
		sampler.WithWorkers(cfg.Workers),
		sampler.WithSeed(seed),
		sampler.WithVertexPool(pool),
		sampler.WithMaxPartitions(cfg.MaxPartitions),
		sampler.WithMaxSamples(cfg.MaxSamples),
		sampler.WithLogger(s.logger),
		sampler.WithMetrics(s.metrics),
	)

	report, err := smp.Run(c.Request.Context(), req.Parts, samples)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrInvalidPartitionCount),
			errors.Is(err, types.ErrInvalidSampleCount),
			errors.Is(err, types.ErrInvalidConfig):
			badRequest(c, "Invalid sampling request", err)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				ErrorType: ErrorTypeUnavailable,
				Message:   "Sampling run cancelled",
				Details:   err.Error(),
			})
		default:
			internalError(c, "Sampling run failed", err)
		}

		return
	}

	published := false
	if s.reports != nil {
		if err := s.reports.Publish(c.Request.Context(), report); err != nil {
			s.logger.Warn("failed to publish report", "runID", report.RunID, "error", err)
		} else {
			published = true
		}
	}

	c.JSON(http.StatusOK, newReportResponse(report, published))
}

// handleLatestReport handles GET /v1/reports/:parts
func (s *Server) handleLatestReport(c *gin.Context) {
	if s.reports == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			ErrorType: ErrorTypeNotFound,
			Message:   "Report store is not configured",
		})
		return
	}

	var uri partsURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, "Invalid path parameters", err)
		return
	}

	if _, err := s.partitioner.Geometry(uri.Parts); err != nil {
		badRequest(c, "Invalid partition count", err)
		return
	}

	report, err := s.reports.Latest(c.Request.Context(), uri.Parts)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, newReportResponse(report, true))
	case errors.Is(err, types.ErrReportNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			ErrorType: ErrorTypeNotFound,
			Message:   fmt.Sprintf("No report for %d partitions", uri.Parts),
		})
	case natsutil.IsConnectivityError(err):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			ErrorType: ErrorTypeUnavailable,
			Message:   "Report store unavailable",
			Details:   err.Error(),
		})
	default:
		internalError(c, "Failed to read report", err)
	}
}

func badRequest(c *gin.Context, msg string, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		ErrorType: ErrorTypeInvalidRequest,
		Message:   msg,
		Details:   err.Error(),
	})
}

func internalError(c *gin.Context, msg string, err error) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		ErrorType: ErrorTypeInternal,
		Message:   msg,
		Details:   err.Error(),
	})
}
