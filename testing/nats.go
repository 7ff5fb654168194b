package testing

import (
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// StartEmbeddedNATS starts an in-process NATS server with JetStream enabled.
//
// The server listens on a random local port and stores JetStream data in
// t.TempDir(). Server and connection are shut down by t.Cleanup.
//
// Parameters:
//   - tb: Test or benchmark
//
// Returns:
//   - *server.Server: The embedded server
//   - *nats.Conn: A client connected to it
//
// Example:
//
//	_, nc := edgetest.StartEmbeddedNATS(t)
//	js, _ := jetstream.New(nc)
func StartEmbeddedNATS(tb testing.TB) (*server.Server, *nats.Conn) {
	tb.Helper()

	ns, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      -1, // random free port
		JetStream: true,
		StoreDir:  tb.TempDir(),
		NoLog:     true,
	})
	if err != nil {
		tb.Fatalf("Failed to create embedded NATS server: %v", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		tb.Fatal("Embedded NATS server not ready within timeout")
	}

	nc, err := nats.Connect(ns.ClientURL(),
		nats.Name("edgepart-test"),
		nats.Timeout(2*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		ns.Shutdown()
		tb.Fatalf("Failed to connect to embedded NATS server: %v", err)
	}

	tb.Cleanup(func() {
		nc.Close()
		ns.Shutdown()
		ns.WaitForShutdown()
	})

	return ns, nc
}

// CreateJetStreamKV creates a memory-backed KV bucket for tests.
//
// Parameters:
//   - tb: Test or benchmark
//   - nc: Connection from StartEmbeddedNATS
//   - bucket: Bucket name
//
// Returns:
//   - jetstream.KeyValue: The new bucket
func CreateJetStreamKV(tb testing.TB, nc *nats.Conn, bucket string) jetstream.KeyValue {
	tb.Helper()

	js, err := jetstream.New(nc)
	if err != nil {
		tb.Fatalf("Failed to get JetStream context: %v", err)
	}

	kv, err := js.CreateKeyValue(tb.Context(), jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: fmt.Sprintf("edgepart test bucket %s", bucket),
		History:     5,
		Storage:     jetstream.MemoryStorage,
		Replicas:    1,
	})
	if err != nil {
		tb.Fatalf("Failed to create KV bucket %s: %v", bucket, err)
	}

	return kv
}
