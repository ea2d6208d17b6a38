package recycler

// Releasable is what Recycle ultimately calls. Handle implements it
// directly; a pooled value recovers it by embedding Releasable as a field
// set from the factory, exactly the way this package's own tests do:
//
//	type myType struct {
//	    recycler.Releasable
//	    buf []byte
//	}
//	p, err := recycler.New(func(h *recycler.Handle[*myType]) *myType {
//	    return &myType{Releasable: h}
//	})
//
// Embedding promotes Recycle onto *myType, so callers can write
// v.Recycle() directly instead of going through the pool. recycleOwned,
// getOwnedTail, and setOwnedTail are part of this interface, rather than
// split into one of their own, purely so that embedding also promotes what
// AcquireOwned needs to splice an owned handle onto an arbitrary owner's
// chain and release it later without tripping Recycle's owned-handle
// panic - none of the three are meant to be called directly by user code.
type Releasable interface {
	Recycle() error
	recycleOwned() error
	getOwnedTail() Releasable
	setOwnedTail(Releasable)
}

// Handle wraps exactly one value of type T for its entire pooled lifetime.
// It carries the recycle-id/last-recycle-id pair that distinguishes a
// fresh handle, a handle sitting in a foreign-intake queue, and a handle
// owned by its stack, and dispatches Recycle to whichever of those the
// current state calls for.
type Handle[T any] struct {
	value T
	stack *stack[T]
	pool  *Pool[T]

	recycleID     int64
	lastRecycleID int64

	// hasBeenRecycled is the drop-policy's "already drop-tested" marker
	// (spec: has-been-recycled): once set, dropHandle always passes the
	// handle through instead of re-evaluating the recycle-counter.
	hasBeenRecycled bool

	// recycled guards against recycling the same handle twice with no
	// intervening acquire, regardless of which of the three push paths
	// (owner, foreign, sink) is about to run - checked before any side
	// effect (Cleanup, owned-chain release, in-use accounting) fires, not
	// buried inside the path-specific push logic.
	recycled bool

	isOwned   bool
	ownedTail Releasable

	isSink bool

	initHook      interface{ Init() }
	cleanupHook   interface{ Cleanup() }
	hooksResolved bool

	borrowStackTrace string
}

// Value returns the handle's wrapped value.
func (h *Handle[T]) Value() T { return h.value }

// Recycle returns the handle's value: to its owning stack directly if
// called from the owner goroutine, or to a foreign-intake queue otherwise.
// It panics with ErrOwnedHandle if the handle was obtained via
// AcquireOwned - its lifetime is controlled by its owner, not by callers
// holding the value itself.
func (h *Handle[T]) Recycle() error {
	if h.isOwned {
		panic(ErrOwnedHandle)
	}
	return h.recycle()
}

// recycleOwned is what an owner's own recycle uses to release a handle it
// borrowed via AcquireOwned, bypassing the panic Recycle raises for direct,
// user-initiated calls on an owned handle.
func (h *Handle[T]) recycleOwned() error {
	return h.recycle()
}

func (h *Handle[T]) recycle() error {
	if h.recycled {
		return ErrDoubleRecycle
	}
	h.recycled = true

	if h.cleanupHook != nil {
		h.cleanupHook.Cleanup()
	}
	if tail := h.ownedTail; tail != nil {
		h.ownedTail = nil
		if err := tail.recycleOwned(); err != nil {
			return err
		}
	}
	recordRecycle(h)
	if h.pool != nil {
		h.pool.objectsInUse.Add(-1)
	}
	if h.isSink {
		return nil
	}
	h.stack.push(h)
	return nil
}

func (h *Handle[T]) getOwnedTail() Releasable  { return h.ownedTail }
func (h *Handle[T]) setOwnedTail(r Releasable) { h.ownedTail = r }

// resolveHooks determines, once per handle, whether its value opts into
// the optional Init/Cleanup lifecycle hooks. Resolved once because the
// same handle (and the same underlying value) is reused across every
// subsequent acquire/recycle cycle.
func (h *Handle[T]) resolveHooks() {
	if h.hooksResolved {
		return
	}
	h.hooksResolved = true
	h.initHook, _ = any(h.value).(interface{ Init() })
	h.cleanupHook, _ = any(h.value).(interface{ Cleanup() })
}

func (h *Handle[T]) runInit() {
	if h.initHook != nil {
		h.initHook.Init()
	}
}

// resetIDs restores a handle to the fresh state (both ids zero, not yet
// recycled), done exactly once per successful pop, never while the handle
// is reachable from anywhere else.
func (h *Handle[T]) resetIDs() {
	h.recycleID = 0
	h.lastRecycleID = 0
	h.recycled = false
}
