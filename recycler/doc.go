/*
 * Copyright (c) 2020-present unTill Pro, Ltd.
 */

// Package recycler implements a thread-biased, cross-thread-capable object
// recycling pool. Each pool keeps one lock-free stack per owning goroutine;
// a value acquired on goroutine G and recycled on goroutine G again is a
// plain, uncontended push/pop. A value recycled from a different goroutine
// is appended to a per-(stack, foreign-goroutine) intake queue instead, and
// is only folded into the owner's stack the next time the owner pops and
// finds its own stack empty (scavenge).
//
// A drop policy admits only one of every Config.Ratio recycles, and a
// per-stack available-shared-capacity counter bounds how much data any
// number of foreign goroutines may have in flight toward one stack at once.
// The shared-capacity bound cannot be configured away, and the drop policy
// only by setting Ratio to 1: this package trades strict
// LIFO reuse and guaranteed recycling for bounded memory and allocation-free
// steady state, and callers that need the former should use sync.Pool or a
// buffered channel instead.
package recycler
