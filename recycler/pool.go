package recycler

import (
	"sync/atomic"
	"time"

	"github.com/untillpro/recycler/internal/cleaner"
	"github.com/untillpro/recycler/internal/tlocal"
)

// sweepInterval controls how often a Pool's GoroutineSweeper checks for
// dead owner/foreign goroutines. Reclamation also happens incrementally
// during transfer and eventually via GC-triggered cleanup, so this only
// needs to be prompt enough to keep steady-state memory bounded, not
// instantaneous.
const sweepInterval = 5 * time.Second

// Pool recycles values of type T. A zero Pool is not usable; construct one
// with New.
type Pool[T any] struct {
	factory func(*Handle[T]) T
	cfg     Config

	stackSlot   tlocal.Slot
	delayedSlot tlocal.Slot

	sweeper *cleaner.GoroutineSweeper
	metrics *Metrics

	objectsInUse atomic.Int64
}

// New constructs a Pool whose values are created by factory on demand.
// factory receives the Handle that will own the constructed value; a value
// that wants Recycle() promoted onto itself embeds that Handle behind the
// Releasable interface (see Handle's doc comment).
//
// New fails only if the process has minted more thread-local slots than
// tlocal supports, which in practice means never.
func New[T any](factory func(*Handle[T]) T, opts ...Option) (*Pool[T], error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.normalize()

	stackSlot, err := tlocal.NextSlot()
	if err != nil {
		return nil, err
	}
	delayedSlot, err := tlocal.NextSlot()
	if err != nil {
		return nil, err
	}

	p := &Pool[T]{
		factory:     factory,
		cfg:         cfg,
		stackSlot:   stackSlot,
		delayedSlot: delayedSlot,
	}

	if cfg.MaxCapacityPerThread > 0 {
		p.sweeper = cleaner.NewGoroutineSweeper(sweepInterval)
		go p.sweeper.Run()
	}

	if cfg.registerer != nil {
		p.metrics = newMetrics(cfg.registerer, cfg.name)
	}

	registerObjectsInUseCounter(func() int64 { return p.objectsInUse.Load() })

	return p, nil
}

// Acquire returns a value from the pool, constructing one via factory if
// nothing is available to reuse.
func (p *Pool[T]) Acquire() T {
	return p.acquireHandle().value
}

// AcquireOwned returns a value whose lifetime is controlled by owner rather
// than by the caller: the returned value's Recycle panics with
// ErrOwnedHandle if called directly, and is instead recycled automatically,
// in reverse acquisition order, when owner itself is recycled.
func (p *Pool[T]) AcquireOwned(owner Releasable) T {
	h := p.acquireHandle()
	h.isOwned = true
	// h may already head a chain of its own (values its Init borrowed via
	// AcquireOwned); owner's previous chain is appended after that one.
	var last Releasable = h
	for t := last.getOwnedTail(); t != nil; t = t.getOwnedTail() {
		last = t
	}
	last.setOwnedTail(owner.getOwnedTail())
	owner.setOwnedTail(h)
	return h.value
}

func (p *Pool[T]) acquireHandle() *Handle[T] {
	var h *Handle[T]

	if p.cfg.MaxCapacityPerThread == 0 {
		h = &Handle[T]{isSink: true, pool: p}
		h.value = p.factory(h)
	} else {
		st := p.ownerStack()
		popped, err := st.pop()
		if err != nil {
			panic(err)
		}
		if popped != nil {
			h = popped
			h.pool = p
		} else {
			h = &Handle[T]{stack: st, pool: p}
			h.value = p.factory(h)
		}
		p.metrics.observeAcquire(st.size)
	}

	h.resolveHooks()
	h.runInit()
	recordBorrow(h)
	p.objectsInUse.Add(1)
	return h
}

// Recycle returns v to the pool it came from. It fails with ErrNotReleasable
// if v does not embed a Handle's promoted Releasable methods - the same
// failure mode Handle.Recycle would hit if called on an unrelated value.
// Prefer calling v's own promoted Recycle method directly; this exists for
// callers that only have the pool and the value, not a reference to the
// value's embedded handle.
func (p *Pool[T]) Recycle(v T) error {
	r, ok := any(v).(Releasable)
	if !ok {
		return ErrNotReleasable
	}
	return r.Recycle()
}

// Close stops this pool's background goroutine sweeper. It does not
// invalidate values already acquired; it only stops reclaiming capacity
// from goroutines that exit after Close returns.
func (p *Pool[T]) Close() {
	if p.sweeper != nil {
		p.sweeper.Stop()
	}
}

// ownerStack returns the calling goroutine's stack for this pool, creating
// it on first use.
func (p *Pool[T]) ownerStack() *stack[T] {
	m := tlocal.Current()
	if v := m.Get(p.stackSlot); v != tlocal.Unset {
		return v.(*stack[T])
	}
	s := newStack(p, tlocal.CurrentID())
	m.Set(p.stackSlot, s, nil)
	return s
}

// delayedMap returns the calling (foreign) goroutine's map of target stack
// to intake queue for this pool, creating it on first use.
func (p *Pool[T]) delayedMap() map[*stack[T]]*queue[T] {
	m := tlocal.Current()
	if v := m.Get(p.delayedSlot); v != tlocal.Unset {
		return v.(map[*stack[T]]*queue[T])
	}
	dm := make(map[*stack[T]]*queue[T])
	m.Set(p.delayedSlot, dm, nil)
	return dm
}
