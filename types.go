package edgepart

import "github.com/arloliu/edgepart/types"

// Re-export types from the types package so callers only import edgepart.
type (
	Edge   = types.Edge
	Grid   = types.Grid
	Report = types.Report
)

// Re-export interfaces from the types package for convenience.
type (
	EdgeAssigner     = types.EdgeAssigner
	AssignFunc       = types.AssignFunc
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
)
