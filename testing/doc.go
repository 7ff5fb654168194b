// Package testing provides test helpers for code built on edgepart.
//
// It starts an in-process NATS server with JetStream so report publishing can
// be tested without Docker or an external broker, in the spirit of net/http/httptest.
//
// Key utilities:
//   - StartEmbeddedNATS: single NATS server with JetStream
//   - CreateJetStreamKV: memory-backed KV bucket on that server
//   - NewTestLogger: types.Logger that writes through t.Logf
//
// Example usage:
//
//	import (
//	    "testing"
//	    edgetest "github.com/arloliu/edgepart/testing"
//	)
//
//	func TestReports(t *testing.T) {
//	    _, nc := edgetest.StartEmbeddedNATS(t)
//	    kv := edgetest.CreateJetStreamKV(t, nc, "reports")
//	    // publish reports into kv
//	}
package testing
