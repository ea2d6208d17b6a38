/*
 * Copyright (c) 2020-present unTill Pro, Ltd.
 */

// Package cleaner implements the unreachability-triggered cleanup contract
// the recycler depends on (spec ObjectCleaner): register a referent and a
// callback, and the callback runs at most once, some time after the
// referent becomes unreachable. The runtime does not guarantee that it runs
// at all (for example before the program exits).
//
// Where netty's ObjectCleaner parks a WeakReference in a LIVE_SET and drains
// a ReferenceQueue on a dedicated daemon thread, Register here is a thin,
// direct wrapper over runtime.AddCleanup (Go 1.24+): the standard library
// already runs the equivalent queue-and-drain machinery internally, so there
// is nothing left for this package to do for that half of the contract.
//
// The other half - noticing that a *goroutine* (as opposed to a heap value)
// is gone - has no real analogue in Go: goroutines are not addressable heap
// objects and cannot be weakly referenced. GoroutineSweeper fills that gap
// the way the spec's own design notes sanction for languages without weak
// maps: a strong registry plus a periodic, best-effort liveness sweep.
package cleaner
