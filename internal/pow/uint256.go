package pow

import "encoding/binary"

// Hash256 is a fixed 32-byte digest, the common currency of the PoW engine:
// header hashes, pre-PoW hashes, and final heavy-hash outputs all share this
// type.
type Hash256 [32]byte

// Uint256 views a Hash256 as four 64-bit little-endian limbs, limb[0] being
// the least significant. This is the representation target comparison and
// compact-bits expansion operate on.
type Uint256 [4]uint64

// ToUint256 reinterprets the hash bytes as little-endian limbs.
func (h Hash256) ToUint256() Uint256 {
	var u Uint256
	for i := 0; i < 4; i++ {
		u[i] = binary.LittleEndian.Uint64(h[i*8 : i*8+8])
	}
	return u
}

// Bytes packs the limbs back into a 32-byte little-endian array.
func (u Uint256) Bytes() Hash256 {
	var h Hash256
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(h[i*8:i*8+8], u[i])
	}
	return h
}

// Cmp returns -1, 0, or 1 comparing u and v as unsigned 256-bit integers,
// most significant limb first.
func (u Uint256) Cmp(v Uint256) int {
	for i := 3; i >= 0; i-- {
		if u[i] < v[i] {
			return -1
		}
		if u[i] > v[i] {
			return 1
		}
	}
	return 0
}

// LessOrEqual reports whether u <= v as unsigned 256-bit integers.
func (u Uint256) LessOrEqual(v Uint256) bool {
	return u.Cmp(v) <= 0
}

// MaxUint256 is the all-ones 256-bit value, the largest possible target.
var MaxUint256 = Uint256{
	0xFFFFFFFFFFFFFFFF,
	0xFFFFFFFFFFFFFFFF,
	0xFFFFFFFFFFFFFFFF,
	0xFFFFFFFFFFFFFFFF,
}

// shiftLeftBytes shifts u left by n bytes (n*8 bits), discarding bits that
// overflow past the top limb. CompactToTarget does its shifting on math/big
// and does not call this.
func shiftLeftBytes(u Uint256, n uint) Uint256 {
	if n == 0 {
		return u
	}
	if n >= 32 {
		return Uint256{}
	}
	b := u.Bytes()
	var out Hash256
	// Bytes() is little-endian; shifting the integer left by n bytes moves
	// each byte up by n positions in this little-endian byte array.
	for i := 31; i >= int(n); i-- {
		out[i] = b[i-int(n)]
	}
	return out.ToUint256()
}
