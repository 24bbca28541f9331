//go:build !debug

package debug

// Enabled is false in release builds; Log and Assert below compile down to
// no-ops.
const Enabled = false

// Log is a no-op outside of debug builds.
func Log(string, ...any) {}

// Assert is a no-op outside of debug builds.
func Assert(bool, string, ...any) {}
