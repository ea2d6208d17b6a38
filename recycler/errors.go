package recycler

import "github.com/cockroachdb/errors"

// ErrDoubleRecycle is returned by Handle.Recycle when the handle was
// already recycled once with no intervening acquire (whether or not that
// earlier recycle actually kept it in the pool).
var ErrDoubleRecycle = errors.New("recycler: handle recycled twice without an intervening acquire")

// ErrInconsistentHandle is the panic value raised by Acquire when a popped
// or transferred handle's recycle-id disagrees with its last-recycle-id,
// indicating a race or a programming error rather than routine
// double-recycling.
var ErrInconsistentHandle = errors.New("recycler: handle's recycle-id and last-recycle-id disagree")

// ErrNotReleasable is returned by Pool.Recycle when the value passed in
// does not embed a Releasable handle.
var ErrNotReleasable = errors.New("recycler: value does not embed a Releasable handle")

// ErrOwnedHandle is the panic value raised when user code calls Recycle
// directly on a handle obtained through AcquireOwned; only the chain's
// root may recycle it.
var ErrOwnedHandle = errors.New("recycler: handle must be recycled by its owner")
