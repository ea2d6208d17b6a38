package cleaner

import "runtime"

// Cleanup is a handle to a registered cleanup; Stop cancels it if the
// callback has not already run.
type Cleanup struct {
	c runtime.Cleanup
}

// Stop cancels the cleanup. It is safe to call even if the callback has
// already fired.
func (c Cleanup) Stop() {
	c.c.Stop()
}

// Register arranges for cleanup to run, at most once, sometime after
// referent becomes unreachable. cleanup must not itself retain a reference
// to referent (directly or via closure capture) - doing so would make
// referent permanently reachable and the cleanup would never fire.
func Register[T any](referent *T, cleanup func()) Cleanup {
	return Cleanup{c: runtime.AddCleanup(referent, func(fn func()) { fn() }, cleanup)}
}
