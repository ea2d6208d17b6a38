/*
 * Copyright (c) 2020-present unTill Pro, Ltd.
 */

// Package future implements a one-shot settable result with listener and
// wait semantics, in the style of Netty's Promise/DefaultPromise: a Future
// starts uncompleted, transitions exactly once to success, failure, or
// cancelled, and fires every registered listener exactly once, in the
// order they were added, even when a listener itself adds another listener
// or when several goroutines complete or observe the future concurrently.
package future
