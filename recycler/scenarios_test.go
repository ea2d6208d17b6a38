package recycler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDropRatioAdmitsOneOfEveryRatio exercises the admission-ratio policy
// directly: with Ratio=4, only every fourth same-thread recycle should
// actually be kept once a handle has never been drop-tested before.
func TestDropRatioAdmitsOneOfEveryRatio(t *testing.T) {
	p, err := New(
		func(h *Handle[*myStruct]) *myStruct { return &myStruct{Releasable: h} },
		WithRatio(4),
		WithMaxCapacityPerThread(64),
	)
	require.NoError(t, err)
	defer p.Close()

	st := p.ownerStack()

	kept := 0
	for i := 0; i < 40; i++ {
		v := p.Acquire()
		require.NoError(t, v.Recycle())
		if st.size > 0 {
			kept++
			// Drain back to empty so each iteration starts from the same
			// "never drop-tested" state dropHandle checks.
			for st.size > 0 {
				h := st.elements[st.size-1]
				st.elements[st.size-1] = nil
				st.size--
				h.resetIDs()
			}
		}
	}

	// Every handle here is fresh (hasBeenRecycled starts false), so each
	// recycle is drop-tested exactly once: 1 kept in every Ratio attempts.
	require.Equal(t, 10, kept)
}

// TestHandleSurvivesOnceDropTested checks the other half of the policy: a
// handle that has already been admitted once (hasBeenRecycled) is never
// drop-tested again, and is always kept from then on.
func TestHandleSurvivesOnceDropTested(t *testing.T) {
	p, err := New(
		func(h *Handle[*myStruct]) *myStruct { return &myStruct{Releasable: h} },
		WithRatio(8),
		WithMaxCapacityPerThread(64),
	)
	require.NoError(t, err)
	defer p.Close()

	v := p.Acquire()
	require.NoError(t, v.Recycle()) // first recycle: drop-tested, admitted (recycleCounter starts at -1, first increment is 0)

	for i := 0; i < 20; i++ {
		v2 := p.Acquire()
		require.Same(t, v, v2)
		require.NoError(t, v2.Recycle())
	}
}
