package recycler

import (
	"sync/atomic"

	"github.com/untillpro/recycler/internal/cleaner"
	"github.com/untillpro/recycler/internal/tlocal"
)

// idGenerator mints every id this package hands out to a stack's owner
// sentinel or to a foreign-intake queue. The first id minted becomes the
// shared owner-thread sentinel; every id after that tags a distinct queue.
var idGenerator atomic.Int64

func nextID() int64 { return idGenerator.Add(1) }

// ownerSentinel is the recycle-id/last-recycle-id value a handle carries
// while it sits in its owning stack's elements slice.
var ownerSentinel = nextID()

// capacityLedger tracks how much of a stack's available-shared-capacity
// one queue currently holds reserved, without the queue itself (or
// anything reachable from the queue) being reachable from the ledger. That
// separation is what lets cleaner.Register's GC-triggered callback close
// over the ledger alone: the callback must not keep the queue it is
// cleaning up alive, or it would never fire.
type capacityLedger struct {
	shared   *atomic.Int64
	reserved atomic.Int64
}

func (l *capacityLedger) reserve(n int64) bool {
	for {
		cur := l.shared.Load()
		if cur < n {
			return false
		}
		if l.shared.CompareAndSwap(cur, cur-n) {
			l.reserved.Add(n)
			return true
		}
	}
}

func (l *capacityLedger) reclaim(n int64) {
	l.reserved.Add(-n)
	l.shared.Add(n)
}

// reclaimAll returns everything still reserved. Safe to call more than
// once (a link-by-link reclaim in transfer may have already brought
// reserved down to zero by the time this runs) since reclaiming zero is a
// no-op.
func (l *capacityLedger) reclaimAll() {
	remaining := l.reserved.Swap(0)
	if remaining > 0 {
		l.shared.Add(remaining)
	}
}

// link is a fixed-size run of handle slots within a queue. writeIndex is
// written with release semantics by the producing foreign goroutine and
// read with acquire semantics by the owner during transfer; readIndex is
// touched only by the owner.
type link[T any] struct {
	elements   []*Handle[T]
	writeIndex atomic.Int32
	readIndex  int32
	next       *link[T]
}

func newLink[T any](capacity int) *link[T] {
	return &link[T]{elements: make([]*Handle[T], capacity)}
}

// queue is a per-(target-stack, foreign-goroutine) intake structure: a
// linked list of links, a positive id distinct from ownerSentinel, and the
// bookkeeping needed to detect that its foreign producer (or its target's
// owner) has gone away.
type queue[T any] struct {
	id     int64
	ledger *capacityLedger

	// first/tail: first is the head data link the owner drains from,
	// mutated only by the owner during transfer; tail is the link the
	// foreign producer is currently appending to, mutated only by that
	// producer under no lock (append is the only foreign-side writer).
	first *link[T]
	tail  *link[T]

	// next links this queue into its target stack's foreign-queue list,
	// newest-first. Only ever set once (at construction, to the prior
	// head) by the allocator and thereafter only by the owner's scavenge
	// unlink step - see the stack.go/scavenge reasoning for why that is
	// race-free despite no lock guarding it.
	next *queue[T]

	foreignGoroutineID int64
	foreignDead        atomic.Bool

	ownerGoroutineID int64

	linkCapacity int
}

// newQueue allocates a fresh intake queue targeting s, reserving one
// link's worth of capacity up front. Returns nil if that reservation
// fails. Must be called from the foreign goroutine that will own the
// queue's tail. delayedMap is that goroutine's own foreign-queue map,
// captured directly (not looked up later) so the owner-death callback can
// prune it regardless of which goroutine ends up running it.
func newQueue[T any](s *stack[T], foreignGoroutineID int64, delayedMap map[*stack[T]]*queue[T], sweeper *cleaner.GoroutineSweeper) *queue[T] {
	ledger := &capacityLedger{shared: &s.availableSharedCapacity}
	if !ledger.reserve(int64(s.linkCapacity)) {
		return nil
	}
	first := newLink[T](s.linkCapacity)
	q := &queue[T]{
		id:                 nextID(),
		ledger:             ledger,
		first:              first,
		tail:               first,
		foreignGoroutineID: foreignGoroutineID,
		ownerGoroutineID:   s.ownerGoroutineID,
		linkCapacity:       s.linkCapacity,
	}
	s.setHead(q)

	// GC backstop: whenever this queue becomes unreachable (its owner's
	// foreign-queue map entry for it was dropped, its stack died, the
	// whole pool was abandoned, ...) give back whatever it still holds.
	// The closure captures only ledger, never q, per cleaner.Register's
	// contract.
	cleaner.Register(q, func() { ledger.reclaimAll() })

	if sweeper != nil {
		// Owner-death path: prune this goroutine's own map entry and
		// reclaim immediately, instead of waiting on GC to notice the
		// queue is unreachable.
		ownerID := s.ownerGoroutineID
		sweeper.Track(ownerID, func(*tlocal.LocalMap) {
			delete(delayedMap, s)
			ledger.reclaimAll()
		})

		// Foreign-death path: let scavenge notice cheaply via an atomic
		// flag instead of re-parsing every live goroutine's stack dump on
		// every scavenge call.
		sweeper.Track(foreignGoroutineID, func(*tlocal.LocalMap) {
			q.foreignDead.Store(true)
		})
	}

	return q
}

// add appends h to q's tail, growing the link chain (and reserving another
// linkCapacity) if the current tail is full. Returns false if the
// reservation for a new link failed, in which case h is dropped. Called
// only from the foreign goroutine producing into q.
func (q *queue[T]) add(h *Handle[T]) bool {
	h.lastRecycleID = q.id
	tail := q.tail
	writeIndex := int(tail.writeIndex.Load())
	if writeIndex == q.linkCapacity {
		if !q.ledger.reserve(int64(q.linkCapacity)) {
			return false
		}
		next := newLink[T](q.linkCapacity)
		tail.next = next
		q.tail = next
		tail = next
		writeIndex = 0
	}
	tail.elements[writeIndex] = h
	h.stack = nil
	tail.writeIndex.Store(int32(writeIndex + 1))
	return true
}

// transfer moves as much of q's available data as will fit into dst,
// respecting dst.maxCapacity, and returns whether anything was moved.
func (q *queue[T]) transfer(dst *stack[T]) bool {
	l := q.first
	if l.readIndex == int32(q.linkCapacity) && l.next == nil {
		return false
	}
	if l.readIndex == int32(q.linkCapacity) {
		q.first = l.next
		l = q.first
	}

	srcStart := l.readIndex
	srcEnd := l.writeIndex.Load()
	if srcStart == srcEnd {
		return false
	}

	available := int64(dst.maxCapacity) - int64(dst.size)
	if available <= 0 {
		return false
	}
	count := int64(srcEnd - srcStart)
	if count > available {
		count = available
		srcEnd = srcStart + int32(count)
	}

	dst.ensureCapacity(dst.size + int(count))

	moved := 0
	for i := srcStart; i < srcEnd; i++ {
		element := l.elements[i]
		l.elements[i] = nil
		if element.recycleID == 0 {
			element.recycleID = element.lastRecycleID
		} else if element.recycleID != element.lastRecycleID {
			panic(ErrInconsistentHandle)
		}
		if dst.dropHandle(element) {
			continue
		}
		element.stack = dst
		dst.elements[dst.size] = element
		dst.size++
		moved++
	}

	if srcEnd == int32(q.linkCapacity) && l.next != nil {
		q.ledger.reclaim(int64(q.linkCapacity))
		q.first = l.next
	}
	l.readIndex = srcEnd

	return moved > 0
}
