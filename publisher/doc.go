// Package publisher stores sampling reports in a NATS JetStream KeyValue bucket.
//
// Each partition count has one key, "<prefix>.<numParts>", holding the latest
// report for that count as JSON. Every published report carries a Version that
// increases across all keys and survives publisher restarts: a new publisher
// scans the bucket for the highest existing version before writing.
//
// Visualization tooling can read the bucket directly or watch it for updates:
//
//	watcher, _ := kv.Watch(ctx, "report.*")
//	for entry := range watcher.Updates() {
//	    // decode types.Report from entry.Value()
//	}
package publisher
