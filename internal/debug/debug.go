//go:build debug

// Package debug includes debugging helpers for the ART engine.
//
// These are compiled in only when building with -tags debug; release builds
// use the no-op stubs in nodbg.go instead, so the hot paths (child search,
// the OLC spin) carry no tracing overhead in production.
package debug

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/timandy/routine"
)

// Enabled is true when the compiler is building with the debug tag.
const Enabled = true

// Log prints a goroutine-tagged trace line to stderr.
//
// format/args follow fmt.Printf conventions. The line is prefixed with the
// caller's file, line, and goroutine id so interleaved traces from
// concurrent readers/writers can be told apart.
func Log(format string, args ...any) {
	_, file, line, _ := runtime.Caller(1)
	file = filepath(file)

	buf := new(strings.Builder)
	_, _ = fmt.Fprintf(buf, "art/%s:%d [g%04d] ", file, line, routine.Goid())
	_, _ = fmt.Fprintf(buf, format, args...)
	_, _ = buf.WriteString("\n")

	_, _ = os.Stderr.WriteString(buf.String())
}

// Assert panics if cond is false, but only in debug builds.
//
// Used to check invariants that indicate a bug in the engine itself, never
// a caller error, when violated.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("art: internal assertion failed: "+format, args...))
	}
}

func filepath(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}

	return path
}
