//go:build debug

// Package debug includes debugging helpers.
//
// With the debug build tag, arena operations and vector pushes and resizes
// emit trace lines and the allocators run their extra invariant checks.
// Without it, the hooks in nodbg.go compile away.
package debug

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/timandy/routine"
)

// Enabled is true when the library is built with the debug tag, which turns
// on allocator tracing and the extra invariant checks.
const Enabled = true

var (
	filter    = flagFunc("samrena.filter", "regexp to filter debug traces by", regexp.Compile)
	nocapture = flag.Bool("samrena.nocapture", false, "disables capturing debug traces as test logs")
)

// flagFunc is like [flag.Func], but allocates its own storage for the parsed
// value so it can be used in a var block.
func flagFunc[T any](name, usage string, fn func(string) (T, error)) *T {
	v := new(T)
	flag.Func(name, usage, func(s string) (err error) {
		*v, err = fn(s)
		return err
	})
	return v
}

// Log prints one allocator trace line to stderr, or to the capturing test's
// log inside [WithTesting].
//
// context identifies the owner of the operation — the arena or vector
// header and its accounting — as a leading format string plus its args. op
// names the operation the way the allocators' Log methods spell it (alloc,
// commit, reset, push, resize, ...).
func Log(context []any, op, format string, args ...any) {
	line := new(strings.Builder)

	_, _ = fmt.Fprintf(line, "%s [g%04d", caller(), routine.Goid())
	if len(context) > 0 {
		_, _ = fmt.Fprintf(line, ", "+context[0].(string), context[1:]...)
	}
	_, _ = fmt.Fprintf(line, "] %s: ", op)
	_, _ = fmt.Fprintf(line, format, args...)

	if *filter != nil && !(*filter).MatchString(line.String()) {
		return
	}

	if t := tls.Get(); t != nil && !*nocapture {
		t.Log(line.String())
		return
	}

	_, _ = os.Stderr.WriteString(line.String() + "\n")
	_ = os.Stderr.Sync()
}

// caller resolves the package and source line a trace came from, skipping
// the Log wrapper methods sitting between the operation and this package.
func caller() string {
	pcs := make([]uintptr, 8)
	frames := runtime.CallersFrames(pcs[:runtime.Callers(2, pcs)])

	var fr runtime.Frame
	for more := true; more; {
		fr, more = frames.Next()

		name := fr.Function[strings.LastIndex(fr.Function, ".")+1:]
		if !strings.HasPrefix(name, "log") && !strings.Contains(name, "Log") {
			break
		}
	}

	pkg := strings.TrimPrefix(fr.Function, "github.com/lordwindy/samrena/")
	if i := strings.IndexByte(pkg, '.'); i >= 0 {
		pkg = pkg[:i]
	}

	return fmt.Sprintf("%s/%s:%d", pkg, filepath.Base(fr.File), fr.Line)
}

// Assert panics if cond is false, but only in debug mode.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("samrena: internal assertion failed: "+format, args...))
	}
}

// Value is a value of any type that only exists when the debug tag is
// enabled. When disabled, this struct is replaced with an empty struct.
type Value[T any] struct {
	x T
}

// Get returns a pointer to this value. Panics if not in debug mode.
func (v *Value[T]) Get() *T { return &v.x }
