package debug

import (
	"testing"

	"github.com/timandy/routine"
)

// tls carries the test currently capturing trace output. It is inheritable
// so traces logged from goroutines the test spawns still attach to it.
var tls = routine.NewInheritableThreadLocal[testing.TB]()

// WithTesting routes trace lines through t.Log until the returned restore
// function runs.
func WithTesting(t testing.TB) (restore func()) {
	t.Helper()

	prev := tls.Get()
	tls.Set(t)
	return func() {
		tls.Set(prev)
	}
}
