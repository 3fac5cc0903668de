package pow

import "math/bits"

// Xoshiro256StarStar is the xoshiro256** generator (Blackman & Vigna). It is
// the PRNG used both to derive mixing matrices from a pre-PoW hash and,
// optionally, to give each GPU thread its own disjoint nonce stream.
type Xoshiro256StarStar struct {
	s [4]uint64
}

// NewXoshiro256StarStar seeds a generator from four 64-bit words, typically
// the little-endian limbs of a pre-PoW hash.
func NewXoshiro256StarStar(seed [4]uint64) *Xoshiro256StarStar {
	x := &Xoshiro256StarStar{s: seed}
	if x.s == ([4]uint64{}) {
		// An all-zero state is a fixed point; nudge it the same way the
		// reference splitmix64-seeded implementations avoid it.
		x.s[0] = 1
	}
	return x
}

// Next returns the next pseudo-random uint64 and advances the state.
func (x *Xoshiro256StarStar) Next() uint64 {
	s := &x.s
	result := bits.RotateLeft64(s[1]*5, 7) * 9

	t := s[1] << 17

	s[2] ^= s[0]
	s[3] ^= s[1]
	s[1] ^= s[2]
	s[0] ^= s[3]

	s[2] ^= t

	s[3] = bits.RotateLeft64(s[3], 45)

	return result
}

// jumpPoly is the jump polynomial equivalent to 2^128 calls to Next,
// producing non-overlapping streams for up to 2^128 parallel generators.
var jumpPoly = [4]uint64{
	0x180ec6d33cfd0aba,
	0xd5a61266f0c9392c,
	0xa9582618e03fc9aa,
	0x39abdc4529b1661c,
}

// Jump advances the state as if Next had been called 2^128 times, producing
// a state usable as the seed of an independent stream. This is how the
// xoshiro nonce-generation strategy (spec.md §4.3) gives each GPU thread its
// own disjoint sequence from a single seed.
func (x *Xoshiro256StarStar) Jump() {
	var s0, s1, s2, s3 uint64
	for i := 0; i < 4; i++ {
		for b := 0; b < 64; b++ {
			if jumpPoly[i]&(uint64(1)<<uint(b)) != 0 {
				s0 ^= x.s[0]
				s1 ^= x.s[1]
				s2 ^= x.s[2]
				s3 ^= x.s[3]
			}
			x.Next()
		}
	}
	x.s[0], x.s[1], x.s[2], x.s[3] = s0, s1, s2, s3
}

// Clone returns an independent copy of the generator's current state.
func (x *Xoshiro256StarStar) Clone() *Xoshiro256StarStar {
	c := *x
	return &c
}
