package tlocal

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// Slot is a globally-unique, ascending index minted by NextSlot. Slots are
// never reused for the lifetime of the process.
type Slot int

// nextIndex is the process-wide slot-index generator, the Go counterpart of
// InternalThreadLocalMap.nextIndex.
var nextIndex int64

// ErrSlotExhausted is raised if the slot-index counter would overflow.
var ErrSlotExhausted = errors.New("tlocal: too many thread-local slots minted")

// NextSlot mints and returns a new, never-before-used Slot. It is intended
// to be called a handful of times at program setup (once per pool, once per
// distinct thread-local variable), not in a hot path.
func NextSlot() (Slot, error) {
	v := atomic.AddInt64(&nextIndex, 1) - 1
	if v < 0 || v > int64(^uint32(0)>>1) {
		atomic.AddInt64(&nextIndex, -1)
		return 0, ErrSlotExhausted
	}
	return Slot(v), nil
}
