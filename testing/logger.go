package testing

import (
	"testing"

	"github.com/arloliu/edgepart/internal/logger"
	"github.com/arloliu/edgepart/types"
)

// NewTestLogger returns a logger that writes through tb.Logf, so output only
// shows up for failing or verbose tests. Fatal fails the test.
func NewTestLogger(tb testing.TB) types.Logger {
	return logger.NewTest(tb)
}
