package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/edgepart"
	"github.com/arloliu/edgepart/internal/logger"
)

func TestNew_Defaults(t *testing.T) {
	s := New(edgepart.ServerConfig{Mode: "test"}, nil)

	require.NotNil(t, s.Engine)
	require.NotNil(t, s.partitioner)
	require.NotNil(t, s.logger)
	require.NotNil(t, s.metrics)
	require.Nil(t, s.reports)
	require.Equal(t, edgepart.DefaultConfig().Sampler, s.sampler)
	require.Equal(t, 5*time.Second, s.shutdownTimeout())
}

func TestServer_ServeAndShutdown(t *testing.T) {
	cfg := edgepart.TestConfig()
	s := New(cfg.Server, edgepart.NewPartitioner(), WithLogger(logger.NewTest(t)))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, ln)
	}()

	url := fmt.Sprintf("http://%s/v1/assign?src=1&dst=1&parts=100", ln.Addr())
	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get(url) //nolint:noctx // test request
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	var body AssignResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 77, body.Partition)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_RunInvalidAddress(t *testing.T) {
	cfg := edgepart.TestConfig().Server
	cfg.Addr = "256.0.0.1:http-alt-invalid"
	s := New(cfg, nil)

	require.Error(t, s.Run(context.Background()))
}
