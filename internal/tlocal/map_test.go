package tlocal

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalMapGetSetUnset(t *testing.T) {
	m := newLocalMap()
	require.Equal(t, Unset, m.Get(5))
	require.False(t, m.IsSet(5))

	m.Set(5, "hello", nil)
	require.Equal(t, "hello", m.Get(5))
	require.True(t, m.IsSet(5))
}

func TestLocalMapGrowsPastInitialCapacity(t *testing.T) {
	m := newLocalMap()
	m.Set(1000, "far", nil)
	require.Equal(t, "far", m.Get(1000))
	// everything below it that was never written stays Unset.
	require.Equal(t, Unset, m.Get(999))
}

func TestLocalMapRemoveFiresHook(t *testing.T) {
	m := newLocalMap()
	var removed any
	m.Set(3, "value", func(v any) { removed = v })
	got := m.Remove(3)
	require.Equal(t, "value", got)
	require.Equal(t, "value", removed)
	require.Equal(t, Unset, m.Get(3))

	// a second remove is a no-op, hook does not fire again.
	removed = nil
	got = m.Remove(3)
	require.Equal(t, Unset, got)
	require.Nil(t, removed)
}

func TestLocalMapClearAllFiresAllHooks(t *testing.T) {
	m := newLocalMap()
	var fired []int
	m.Set(1, "a", func(any) { fired = append(fired, 1) })
	m.Set(2, "b", func(any) { fired = append(fired, 2) })
	m.Set(3, "c", nil)

	m.ClearAll()
	require.ElementsMatch(t, []int{1, 2}, fired)
}

func TestNextSlotIsAscendingAndNeverReused(t *testing.T) {
	a, err := NextSlot()
	require.NoError(t, err)
	b, err := NextSlot()
	require.NoError(t, err)
	require.Less(t, int(a), int(b))
}

func TestCurrentIsPerGoroutine(t *testing.T) {
	slot, err := NextSlot()
	require.NoError(t, err)

	Current().Set(slot, "main-goroutine", nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		require.Equal(t, Unset, Current().Get(slot))
		Current().Set(slot, "other-goroutine", nil)
		require.Equal(t, "other-goroutine", Current().Get(slot))
	}()
	wg.Wait()

	require.Equal(t, "main-goroutine", Current().Get(slot))
}
