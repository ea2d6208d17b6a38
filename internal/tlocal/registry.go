package tlocal

import "sync"

// registry holds the one LocalMap each live goroutine has touched. Entries
// are never removed by the owning goroutine itself (it has no hook to run
// code on its own exit); they are reaped by a cleaner.GoroutineSweeper
// calling Delete once it has independently confirmed the goroutine id is no
// longer live. Until a sweeper is wired in, registry simply grows - the
// same "strong map + periodic sweep" tradeoff the package doc describes.
var registry sync.Map // int64 -> *LocalMap

// CurrentID returns the calling goroutine's id, the same id Current uses to
// key the registry. Exposed for callers (notably cleaner.GoroutineSweeper)
// that need to track a goroutine's identity from outside its own call
// stack.
func CurrentID() int64 {
	return goroutineID()
}

// Current returns the calling goroutine's LocalMap, creating it on first
// use.
func Current() *LocalMap {
	id := goroutineID()
	if v, ok := registry.Load(id); ok {
		return v.(*LocalMap)
	}
	m := newLocalMap()
	actual, loaded := registry.LoadOrStore(id, m)
	if loaded {
		return actual.(*LocalMap)
	}
	return m
}

// Snapshot returns the current (id -> LocalMap) registry contents. It is
// intended for use by a background sweep only.
func Snapshot() map[int64]*LocalMap {
	out := make(map[int64]*LocalMap)
	registry.Range(func(k, v any) bool {
		out[k.(int64)] = v.(*LocalMap)
		return true
	})
	return out
}

// Delete drops the registry entry for id, returning the LocalMap that was
// removed, if any.
func Delete(id int64) (*LocalMap, bool) {
	v, ok := registry.LoadAndDelete(id)
	if !ok {
		return nil, false
	}
	return v.(*LocalMap), true
}

// Len reports how many goroutines currently have a registered LocalMap.
// Diagnostic only.
func Len() int {
	n := 0
	registry.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
