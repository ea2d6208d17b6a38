package recycler

import (
	"sync"
	"sync/atomic"

	"github.com/untillpro/recycler/internal/tlocal"
)

// stack is one goroutine's private view of a Pool[T]: the handles it owns
// outright, plus the list of foreign-intake queues other goroutines have
// built up against it. Every field except head, availableSharedCapacity,
// and dummy is touched only by the owning goroutine and needs no
// synchronization at all.
type stack[T any] struct {
	pool             *Pool[T]
	ownerGoroutineID int64

	elements     []*Handle[T]
	size         int
	maxCapacity  int
	linkCapacity int

	availableSharedCapacity atomic.Int64
	maxDelayedQueues        int
	dropMask                int
	recycleCounter          int64

	headMu sync.Mutex
	head   atomic.Pointer[queue[T]]
	cursor *queue[T]
	prev   *queue[T]

	// dummy is a distinct, never-dereferenced sentinel inserted into a
	// foreign goroutine's delayed-map once that goroutine already holds
	// maxDelayedQueues intake queues: "drop anything more this goroutine
	// tries to recycle here."
	dummy *queue[T]

	metrics *Metrics
}

func newStack[T any](p *Pool[T], ownerGoroutineID int64) *stack[T] {
	cfg := p.cfg
	s := &stack[T]{
		pool:             p,
		ownerGoroutineID: ownerGoroutineID,
		elements:         make([]*Handle[T], minStackCapacity(cfg.MaxCapacityPerThread)),
		maxCapacity:      cfg.MaxCapacityPerThread,
		linkCapacity:     cfg.LinkCapacity,
		maxDelayedQueues: cfg.MaxDelayedQueuesPerThread,
		dropMask:         cfg.dropMask(),
		recycleCounter:   -1,
		dummy:            &queue[T]{},
		metrics:          p.metrics,
	}
	s.availableSharedCapacity.Store(cfg.sharedCapacity())
	return s
}

func minStackCapacity(maxCapacity int) int {
	if maxCapacity < 256 {
		if maxCapacity == 0 {
			return 0
		}
		return maxCapacity
	}
	return 256
}

// push dispatches to pushNow or pushLater depending on which goroutine is
// calling, exactly mirroring Handle.recycle's contract. Neither path can
// fail: a push that cannot be admitted (capacity, drop policy, queue
// allocation) is simply dropped, not reported as an error.
func (s *stack[T]) push(h *Handle[T]) {
	if tlocal.CurrentID() == s.ownerGoroutineID {
		s.pushNow(h)
		return
	}
	s.pushLater(h)
}

func (s *stack[T]) pushNow(h *Handle[T]) {
	h.recycleID = ownerSentinel
	h.lastRecycleID = ownerSentinel

	if s.size >= s.maxCapacity {
		s.metrics.observeDrop()
		return
	}
	if s.dropHandle(h) {
		return
	}
	s.ensureCapacity(s.size + 1)
	s.elements[s.size] = h
	s.size++
}

// pushLater appends h to the calling (foreign) goroutine's intake queue
// for s, allocating that queue (or the DUMMY drop sentinel) on first use.
// Never returns an error: a foreign recycle that cannot be queued is
// simply dropped, per spec.
func (s *stack[T]) pushLater(h *Handle[T]) {
	foreignID := tlocal.CurrentID()
	m := s.pool.delayedMap()

	q, ok := m[s]
	if !ok {
		if len(m) >= s.maxDelayedQueues {
			m[s] = s.dummy
			return
		}
		q = newQueue(s, foreignID, m, s.pool.sweeper)
		if q == nil {
			return
		}
		m[s] = q
		s.metrics.observeForeignQueueDelta(1)
	}
	if q == s.dummy {
		return
	}
	q.add(h)
}

// pop removes and returns the handle at the top of s, scavenging foreign
// queues first if s is empty. Returns (nil, nil) if nothing is available
// anywhere.
func (s *stack[T]) pop() (*Handle[T], error) {
	size := s.size
	if size == 0 {
		if !s.scavenge() {
			return nil, nil
		}
		size = s.size
		if size == 0 {
			return nil, nil
		}
	}
	size--
	h := s.elements[size]
	s.elements[size] = nil
	s.size = size
	if h.lastRecycleID != h.recycleID {
		return nil, ErrInconsistentHandle
	}
	h.resetIDs()
	return h, nil
}

// setHead publishes q at the front of s's foreign-queue list. Called by
// whichever foreign goroutine allocates a new queue; serialized against
// every other concurrent allocator by headMu, but read by the owner
// (scavenge) without any lock, via the atomic pointer.
func (s *stack[T]) setHead(q *queue[T]) {
	s.headMu.Lock()
	defer s.headMu.Unlock()
	q.next = s.head.Load()
	s.head.Store(q)
}

// scavenge walks the foreign-queue list looking for anything transferable,
// resuming from cursor/prev across calls so a long list is not rescanned
// from the head every time. Returns whether it found something.
func (s *stack[T]) scavenge() bool {
	success := s.scavengeSome()
	if !success {
		s.prev = nil
		s.cursor = s.head.Load()
	}
	s.metrics.observeScavenge(success)
	return success
}

func (s *stack[T]) scavengeSome() bool {
	cursor := s.cursor
	prev := s.prev
	if cursor == nil {
		cursor = s.head.Load()
		if cursor == nil {
			return false
		}
		prev = nil
	}

	success := false
	for cursor != nil {
		if cursor.transfer(s) {
			success = true
			break
		}
		next := cursor.next
		if cursor.foreignDead.Load() {
			for cursor.transfer(s) {
			}
			if prev != nil {
				prev.next = next
				s.metrics.observeForeignQueueDelta(-1)
			}
			cursor.ledger.reclaimAll()
		} else {
			prev = cursor
		}
		cursor = next
	}
	s.prev = prev
	s.cursor = cursor
	return success
}

// dropHandle implements the admission-ratio drop policy: called once per
// release attempt, it passes a handle through unconditionally once it has
// already been drop-tested, and otherwise admits exactly one of every
// Config.Ratio calls.
func (s *stack[T]) dropHandle(h *Handle[T]) bool {
	if h.hasBeenRecycled {
		return false
	}
	s.recycleCounter++
	if int(s.recycleCounter)&s.dropMask != 0 {
		s.metrics.observeDrop()
		return true
	}
	h.hasBeenRecycled = true
	return false
}

// ensureCapacity grows elements, doubling up to maxCapacity, so that at
// least n slots exist.
func (s *stack[T]) ensureCapacity(n int) {
	if n <= len(s.elements) {
		return
	}
	newCap := len(s.elements) * 2
	if newCap == 0 {
		newCap = 1
	}
	for newCap < n {
		newCap *= 2
	}
	if newCap > s.maxCapacity {
		newCap = s.maxCapacity
	}
	grown := make([]*Handle[T], newCap)
	copy(grown, s.elements)
	s.elements = grown
}
