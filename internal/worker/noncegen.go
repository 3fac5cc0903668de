package worker

import "github.com/pyrinminer/pyrinminer/internal/pow"

// NonceGenerator produces the next candidate nonce for a single thread/lane,
// restricted to the caller's (mask, fixed) partition.
type NonceGenerator interface {
	Next(nonceMask, nonceFixed uint64) uint64
}

// LeanNonceGenerator implements the "lean" strategy: one RNG draw per
// iteration as the seed, with thread_id folded in by the caller via fixed.
// Threads sharing a seed but distinct nonceFixed values never collide.
type LeanNonceGenerator struct {
	seed uint64
}

// NewLeanNonceGenerator seeds a lean generator from an arbitrary 64-bit draw
// (typically the low limb of a fresh xoshiro256** Next()).
func NewLeanNonceGenerator(seed uint64) *LeanNonceGenerator {
	return &LeanNonceGenerator{seed: seed}
}

// Next folds the lane's fixed bits into the shared seed, satisfying
// n&nonceMask==nonceFixed by construction.
func (g *LeanNonceGenerator) Next(nonceMask, nonceFixed uint64) uint64 {
	return (g.seed &^ nonceMask) | nonceFixed
}

// Reseed draws a new shared seed for the next iteration.
func (g *LeanNonceGenerator) Reseed(seed uint64) {
	g.seed = seed
}

// XoshiroNonceGenerator implements the "xoshiro" strategy: each lane owns a
// private, jump-initialized xoshiro256** stream so no two lanes ever
// enumerate the same nonce twice.
type XoshiroNonceGenerator struct {
	rng *pow.Xoshiro256StarStar
}

// NewXoshiroNonceGenerator builds a per-lane stream from a shared base
// generator, advancing base by one Jump so streams stay disjoint across
// lanes built from successive calls against the same base.
func NewXoshiroNonceGenerator(base *pow.Xoshiro256StarStar) *XoshiroNonceGenerator {
	lane := base.Clone()
	base.Jump()
	return &XoshiroNonceGenerator{rng: lane}
}

// Next draws the lane's next nonce, masked into its assigned partition.
func (g *XoshiroNonceGenerator) Next(nonceMask, nonceFixed uint64) uint64 {
	return (g.rng.Next() &^ nonceMask) | nonceFixed
}
