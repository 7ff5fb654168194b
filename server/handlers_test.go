package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/edgepart"
	"github.com/arloliu/edgepart/internal/metrics"
	"github.com/arloliu/edgepart/types"
)

// memoryStore is an in-memory ReportStore.
type memoryStore struct {
	mu         sync.Mutex
	reports    map[int]*types.Report
	version    int64
	publishErr error
	latestErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{reports: make(map[int]*types.Report)}
}

func (m *memoryStore) Publish(_ context.Context, r *types.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.publishErr != nil {
		return m.publishErr
	}
	m.version++
	r.Version = m.version
	stored := *r
	m.reports[r.NumParts] = &stored

	return nil
}

func (m *memoryStore) Latest(_ context.Context, numParts int) (*types.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.latestErr != nil {
		return nil, m.latestErr
	}
	r, ok := m.reports[numParts]
	if !ok {
		return nil, fmt.Errorf("%w: %d partitions", types.ErrReportNotFound, numParts)
	}

	return r, nil
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := edgepart.TestConfig()
	opts = append([]Option{WithSamplerConfig(cfg.Sampler)}, opts...)

	return New(cfg.Server, edgepart.NewPartitioner(), opts...)
}

func doRequest(t *testing.T, s *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Engine.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]any](t, w)
	require.Equal(t, "ok", body["status"])
	require.Equal(t, false, body["reports"])
}

func TestHandleAssign(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantPart   int
	}{
		{"single partition", "src=5&dst=9&parts=1", http.StatusOK, 0},
		{"origin on four", "src=0&dst=0&parts=4", http.StatusOK, 0},
		{"perfect square", "src=1&dst=1&parts=100", http.StatusOK, 77},
		{"general path", "src=7&dst=1&parts=10", http.StatusOK, 9},
		{"min int64", "src=-9223372036854775808&dst=-9223372036854775808&parts=10", http.StatusOK, 1},
		{"zero partitions", "src=1&dst=1&parts=0", http.StatusBadRequest, 0},
		{"negative partitions", "src=1&dst=1&parts=-4", http.StatusBadRequest, 0},
		{"missing dst", "src=1&parts=4", http.StatusBadRequest, 0},
		{"non-numeric src", "src=abc&dst=1&parts=4", http.StatusBadRequest, 0},
		{"src overflow", "src=9223372036854775808&dst=1&parts=4", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, s, http.MethodGet, "/v1/assign?"+tt.query, nil)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantStatus != http.StatusOK {
				resp := decode[ErrorResponse](t, w)
				require.Equal(t, ErrorTypeInvalidRequest, resp.ErrorType)
				return
			}

			resp := decode[AssignResponse](t, w)
			require.Equal(t, tt.wantPart, resp.Partition)

			want, err := edgepart.Assign(resp.Src, resp.Dst, resp.Parts)
			require.NoError(t, err)
			require.Equal(t, want, resp.Partition)
		})
	}
}

func TestHandleGrid(t *testing.T) {
	s := newTestServer(t)

	t.Run("general grid", func(t *testing.T) {
		w := doRequest(t, s, http.MethodGet, "/v1/grid/10", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decode[struct {
			Grid             types.Grid `json:"grid"`
			ReplicationBound int        `json:"replication_bound"`
		}](t, w)
		require.Equal(t, types.Grid{NumParts: 10, Cols: 4, Rows: 3, LastColRows: 1}, body.Grid)
		require.Equal(t, 7, body.ReplicationBound)
	})

	t.Run("perfect square", func(t *testing.T) {
		w := doRequest(t, s, http.MethodGet, "/v1/grid/16", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"perfect_square":true`)
	})

	for _, parts := range []string{"0", "-1"} {
		t.Run("rejected count "+parts, func(t *testing.T) {
			w := doRequest(t, s, http.MethodGet, "/v1/grid/"+parts, nil)
			require.Equal(t, http.StatusBadRequest, w.Code)

			resp := decode[ErrorResponse](t, w)
			require.Equal(t, "Invalid partition count", resp.Message)
			require.Contains(t, resp.Details, types.ErrInvalidPartitionCount.Error())
		})
	}

	t.Run("non-numeric", func(t *testing.T) {
		w := doRequest(t, s, http.MethodGet, "/v1/grid/ten", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "Invalid path parameters", decode[ErrorResponse](t, w).Message)
	})
}

func TestHandleSample(t *testing.T) {
	t.Run("uses defaults and publishes", func(t *testing.T) {
		store := newMemoryStore()
		s := newTestServer(t, WithReportStore(store))

		w := doRequest(t, s, http.MethodPost, "/v1/sample", map[string]any{"parts": 10})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decode[ReportResponse](t, w)
		require.True(t, resp.Published)
		require.True(t, resp.Balanced)
		require.NotNil(t, resp.Imbalance)
		require.Equal(t, 10, resp.Report.NumParts)
		require.Equal(t, edgepart.TestConfig().Sampler.Samples, resp.Report.Samples)
		require.Equal(t, int64(1), resp.Report.Version)
		require.Len(t, resp.Report.Counts, 10)

		stored, err := store.Latest(context.Background(), 10)
		require.NoError(t, err)
		require.Equal(t, resp.Report.RunID, stored.RunID)
	})

	t.Run("explicit parameters", func(t *testing.T) {
		s := newTestServer(t)

		w := doRequest(t, s, http.MethodPost, "/v1/sample", map[string]any{
			"parts": 16, "samples": 5000, "seed": 0, "vertex_pool": 200,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decode[ReportResponse](t, w)
		require.False(t, resp.Published)
		require.Equal(t, uint64(0), resp.Report.Seed)
		require.Equal(t, 200, resp.Report.VertexPool)
		require.Equal(t, 5000, resp.Report.Samples)
		require.Positive(t, resp.Report.MaxReplication)
		require.LessOrEqual(t, resp.Report.MaxReplication, resp.Report.ReplicationBound)
	})

	t.Run("same seed gives same counts", func(t *testing.T) {
		s := newTestServer(t)
		body := map[string]any{"parts": 7, "samples": 3000, "seed": 42}

		a := decode[ReportResponse](t, doRequest(t, s, http.MethodPost, "/v1/sample", body))
		b := decode[ReportResponse](t, doRequest(t, s, http.MethodPost, "/v1/sample", body))
		require.Equal(t, a.Report.Counts, b.Report.Counts)
		require.NotEqual(t, a.Report.RunID, b.Report.RunID)
	})

	t.Run("empty partitions omit imbalance", func(t *testing.T) {
		s := newTestServer(t)

		w := doRequest(t, s, http.MethodPost, "/v1/sample", map[string]any{"parts": 100, "samples": 10})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decode[ReportResponse](t, w)
		require.Nil(t, resp.Imbalance)
		require.False(t, resp.Balanced)
		require.NotContains(t, w.Body.String(), `"imbalance"`)
	})

	t.Run("publish failure still returns report", func(t *testing.T) {
		store := newMemoryStore()
		store.publishErr = fmt.Errorf("%w: %w", types.ErrPublishFailed, nats.ErrConnectionClosed)
		s := newTestServer(t, WithReportStore(store))

		w := doRequest(t, s, http.MethodPost, "/v1/sample", map[string]any{"parts": 4, "samples": 100})
		require.Equal(t, http.StatusOK, w.Code)
		require.False(t, decode[ReportResponse](t, w).Published)
	})

	invalid := []struct {
		name string
		body any
	}{
		{"missing parts", map[string]any{"samples": 10}},
		{"negative parts", map[string]any{"parts": -2}},
		{"parts above max", map[string]any{"parts": edgepart.TestConfig().Sampler.MaxPartitions + 1}},
		{"samples above max", map[string]any{"parts": 4, "samples": edgepart.TestConfig().Sampler.MaxSamples + 1}},
		{"negative samples", map[string]any{"parts": 4, "samples": -1}},
		{"negative vertex pool", map[string]any{"parts": 4, "vertex_pool": -1}},
		{"wrong type", map[string]any{"parts": "four"}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			w := doRequest(t, s, http.MethodPost, "/v1/sample", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			require.Equal(t, ErrorTypeInvalidRequest, decode[ErrorResponse](t, w).ErrorType)
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		s := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/v1/sample", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.Engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("cancelled request", func(t *testing.T) {
		s := newTestServer(t)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		req := httptest.NewRequest(http.MethodPost, "/v1/sample", strings.NewReader(`{"parts": 4}`)).WithContext(ctx)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.Engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestHandleLatestReport(t *testing.T) {
	t.Run("store not configured", func(t *testing.T) {
		s := newTestServer(t)

		w := doRequest(t, s, http.MethodGet, "/v1/reports/4", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("returns published report", func(t *testing.T) {
		store := newMemoryStore()
		s := newTestServer(t, WithReportStore(store))

		sampled := decode[ReportResponse](t, doRequest(t, s, http.MethodPost, "/v1/sample", map[string]any{"parts": 9, "samples": 2000}))

		w := doRequest(t, s, http.MethodGet, "/v1/reports/9", nil)
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[ReportResponse](t, w)
		require.Equal(t, sampled.Report.RunID, got.Report.RunID)
		require.True(t, got.Published)
	})

	t.Run("missing report", func(t *testing.T) {
		s := newTestServer(t, WithReportStore(newMemoryStore()))

		w := doRequest(t, s, http.MethodGet, "/v1/reports/12", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, ErrorTypeNotFound, decode[ErrorResponse](t, w).ErrorType)
	})

	t.Run("store unavailable", func(t *testing.T) {
		store := newMemoryStore()
		store.latestErr = fmt.Errorf("failed to read report.4: %w", nats.ErrTimeout)
		s := newTestServer(t, WithReportStore(store))

		w := doRequest(t, s, http.MethodGet, "/v1/reports/4", nil)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		store := newMemoryStore()
		store.latestErr = errors.New("failed to decode report.4")
		s := newTestServer(t, WithReportStore(store))

		w := doRequest(t, s, http.MethodGet, "/v1/reports/4", nil)
		require.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("invalid parts", func(t *testing.T) {
		s := newTestServer(t, WithReportStore(newMemoryStore()))

		w := doRequest(t, s, http.MethodGet, "/v1/reports/x", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("zero parts", func(t *testing.T) {
		s := newTestServer(t, WithReportStore(newMemoryStore()))

		w := doRequest(t, s, http.MethodGet, "/v1/reports/0", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)

		resp := decode[ErrorResponse](t, w)
		require.Equal(t, "Invalid partition count", resp.Message)
		require.Contains(t, resp.Details, types.ErrInvalidPartitionCount.Error())
	})
}

func TestMetricsEndpoint(t *testing.T) {
	t.Run("not registered without gatherer", func(t *testing.T) {
		s := newTestServer(t)

		w := doRequest(t, s, http.MethodGet, "/metrics", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("serves sampler metrics", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		collector := metrics.NewPrometheus(reg, "edgepart")
		s := newTestServer(t, WithMetrics(collector, reg))

		w := doRequest(t, s, http.MethodPost, "/v1/sample", map[string]any{"parts": 4, "samples": 1000})
		require.Equal(t, http.StatusOK, w.Code)

		w = doRequest(t, s, http.MethodGet, "/metrics", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "edgepart_sampler_runs_total")
	})

	t.Run("series stay fixed across client partition counts", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		collector := metrics.NewPrometheus(reg, "edgepart")
		s := newTestServer(t, WithMetrics(collector, reg))

		countSeries := func() int {
			families, err := reg.Gather()
			require.NoError(t, err)

			n := 0
			for _, f := range families {
				n += len(f.GetMetric())
			}

			return n
		}

		sample := func(parts int) {
			w := doRequest(t, s, http.MethodPost, "/v1/sample", map[string]any{"parts": parts, "samples": 1})
			require.Equal(t, http.StatusOK, w.Code, "parts=%d", parts)
		}

		// One run per partition-count class up to 1024.
		for _, parts := range []int{1, 2, 5, 17, 65, 257} {
			sample(parts)
		}
		baseline := countSeries()

		for parts := 1; parts <= 500; parts++ {
			sample(parts)
		}

		require.Equal(t, baseline, countSeries())
	})
}
