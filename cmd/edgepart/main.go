// Command edgepart assigns graph edges to partitions on a 2D grid, samples
// the resulting load balance, and serves both over HTTP.
//
// Usage:
//
//	edgepart assign 42 7 10
//	edgepart grid 10
//	edgepart sample --parts 16 --samples 1000000 --vertex-pool 10000 --publish
//	edgepart serve --config edgepart.yaml
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
