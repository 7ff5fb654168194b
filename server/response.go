package server

import (
	"math"

	"github.com/arloliu/edgepart/types"
)

// Error types carried in ErrorResponse.ErrorType.
const (
	ErrorTypeInvalidRequest = "invalid_request"
	ErrorTypeNotFound       = "not_found"
	ErrorTypeUnavailable    = "unavailable"
	ErrorTypeInternal       = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
}

// AssignResponse is the body of GET /v1/assign.
type AssignResponse struct {
	Src       int64 `json:"src"`
	Dst       int64 `json:"dst"`
	Parts     int   `json:"parts"`
	Partition int   `json:"partition"`
}

// SampleRequest is the body of POST /v1/sample. Zero or missing fields take
// the server's sampler defaults.
type SampleRequest struct {
	Parts      int     `json:"parts" binding:"required"`
	Samples    int     `json:"samples"`
	Seed       *uint64 `json:"seed"`
	VertexPool *int    `json:"vertex_pool"`
}

// ReportResponse wraps a report with the fields JSON cannot carry directly.
type ReportResponse struct {
	Report *types.Report `json:"report"`

	// Imbalance is Max/Min; omitted when a partition received no edges.
	Imbalance *float64 `json:"imbalance,omitempty"`

	// Balanced is true when Imbalance <= 2.
	Balanced bool `json:"balanced"`

	// Published is true when the report was written to the report store.
	Published bool `json:"published"`
}

func newReportResponse(r *types.Report, published bool) ReportResponse {
	resp := ReportResponse{
		Report:    r,
		Balanced:  r.Balanced(balanceFactor),
		Published: published,
	}
	if !math.IsInf(r.Imbalance, 0) && !math.IsNaN(r.Imbalance) {
		imbalance := r.Imbalance
		resp.Imbalance = &imbalance
	}

	return resp
}

// balanceFactor is the largest max/min load ratio reported as balanced.
const balanceFactor = 2.0
