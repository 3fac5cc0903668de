package miner

import "sync"

// WatchSwap is a single-slot cell that always holds the latest value written
// to it, tagged with a monotonically increasing generation. Workers poll it
// between hash attempts to notice a new template without blocking on a
// channel send the coordinator might make while every worker is mid-batch.
type WatchSwap[T any] struct {
	mu         sync.RWMutex
	value      T
	generation uint64
	set        bool
}

// NewWatchSwap returns an empty cell; Load before any Store reports ok=false.
func NewWatchSwap[T any]() *WatchSwap[T] {
	return &WatchSwap[T]{}
}

// Store overwrites the cell's value and bumps its generation, regardless of
// whether a previous value was ever read.
func (w *WatchSwap[T]) Store(v T) {
	w.mu.Lock()
	w.value = v
	w.generation++
	w.set = true
	w.mu.Unlock()
}

// Load returns the current value, its generation, and whether anything has
// ever been stored.
func (w *WatchSwap[T]) Load() (value T, generation uint64, ok bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.value, w.generation, w.set
}

// Generation returns the current generation without copying the value,
// useful for a worker's tight "has anything changed" check.
func (w *WatchSwap[T]) Generation() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.generation
}
