package cleaner

import (
	"sync"
	"time"

	"github.com/untillpro/recycler/internal/cset"
	"github.com/untillpro/recycler/internal/tlocal"
)

// GoroutineSweeper periodically compares the set of goroutine ids passed to
// Track (and not yet swept) against the set of goroutine ids actually still
// running, and reaps (and reports) the ones that are gone. This is the
// "periodic sweep" fallback the package doc describes: best-effort, and
// only as prompt as its interval.
type GoroutineSweeper struct {
	interval time.Duration

	// tracked is the set of ids with at least one pending callback, kept
	// separate from onDead's values so sweepOnce can snapshot the id list
	// with cset's own Range instead of locking mu just to walk map keys.
	tracked *cset.Set[int64]

	mu      sync.Mutex
	onDead  map[int64][]func(*tlocal.LocalMap)
	stopCh  chan struct{}
	stopped bool
}

// NewGoroutineSweeper creates a sweeper that, once started, checks
// liveness every interval.
func NewGoroutineSweeper(interval time.Duration) *GoroutineSweeper {
	return &GoroutineSweeper{
		interval: interval,
		tracked:  cset.New[int64](),
		onDead:   make(map[int64][]func(*tlocal.LocalMap)),
		stopCh:   make(chan struct{}),
	}
}

// Track registers a callback to run (with the goroutine's LocalMap) once
// the sweeper observes that goroutine id is no longer alive. Multiple
// callbacks may be tracked against the same id - e.g. several foreign
// queues fed by the same goroutine, or several queues targeting the same
// owner - and all of them run once that id is swept.
func (s *GoroutineSweeper) Track(id int64, onDead func(*tlocal.LocalMap)) {
	s.mu.Lock()
	s.onDead[id] = append(s.onDead[id], onDead)
	s.mu.Unlock()
	s.tracked.Add(id)
}

// Run starts the background sweep loop. It blocks until Stop is called, so
// callers run it in its own goroutine.
func (s *GoroutineSweeper) Run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

// Stop halts the sweep loop. Calling it more than once is safe: every call
// after the first does nothing.
func (s *GoroutineSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.stopCh)
}

func (s *GoroutineSweeper) sweepOnce() {
	if s.tracked.IsEmpty() {
		return
	}
	tracked := make([]int64, 0, s.tracked.Len())
	s.tracked.Range(func(id int64) bool {
		tracked = append(tracked, id)
		return true
	})

	alive := tlocal.LiveGoroutineIDs()

	for _, id := range tracked {
		if _, ok := alive[id]; ok {
			continue
		}
		s.tracked.Remove(id)
		s.mu.Lock()
		fns, ok := s.onDead[id]
		if ok {
			delete(s.onDead, id)
		}
		s.mu.Unlock()
		if !ok {
			continue
		}
		m, _ := tlocal.Delete(id)
		if m != nil {
			m.ClearAll()
		}
		for _, fn := range fns {
			fn(m)
		}
	}
}
