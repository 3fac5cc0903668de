package miner

import "sync/atomic"

// HashCounter is a shared, lock-free running total of hashes computed across
// every worker, used purely for hashrate reporting; exact counts are not
// required (spec's ordering guarantees only ask for eventual consistency).
type HashCounter struct {
	total uint64
}

// Add adds n hashes to the running total.
func (c *HashCounter) Add(n uint64) {
	atomic.AddUint64(&c.total, n)
}

// Snapshot returns the current total without resetting it.
func (c *HashCounter) Snapshot() uint64 {
	return atomic.LoadUint64(&c.total)
}

// SnapshotAndReset returns the current total and resets it to zero,
// convenient for a periodic hashrate ticker: hashes-since-last-tick / interval.
func (c *HashCounter) SnapshotAndReset() uint64 {
	return atomic.SwapUint64(&c.total, 0)
}
