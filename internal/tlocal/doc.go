/*
 * Copyright (c) 2020-present unTill Pro, Ltd.
 */

// Package tlocal is the Go counterpart of netty/hulk's InternalThreadLocalMap:
// an indexed, array-backed per-goroutine store keyed by a globally-minted,
// monotonically increasing slot index.
//
// Go has no language-level equivalent of a Java Thread object that can be
// weakly referenced and whose death can be observed directly, so "per
// thread" here is read as "per goroutine", identified by the numeric
// goroutine id the runtime prints in panic traces and debug dumps. Reading
// that id back out of runtime.Stack is the same trick used by
// goroutine-local-storage shims throughout the ecosystem; Current() pays
// that parsing cost on every call, and every slot lookup after that is a
// plain slice index into the goroutine's own LocalMap. Reaping of dead
// goroutines' entries is delegated to cleaner.GoroutineSweeper (a periodic,
// best-effort sweep - see package cleaner), mirroring ObjectCleaner's role
// in the original.
package tlocal
