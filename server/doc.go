// Package server exposes edge assignment, grid geometry and sampling reports
// over HTTP, as a data feed for visualization tools.
//
// Routes:
//
//	GET  /healthz
//	GET  /metrics                 Prometheus metrics (when a gatherer is configured)
//	GET  /v1/assign?src=&dst=&parts=
//	GET  /v1/grid/:parts
//	POST /v1/sample               {"parts": 16, "samples": 100000, "seed": 1, "vertex_pool": 1000}
//	GET  /v1/reports/:parts       latest published report (when a report store is configured)
package server
