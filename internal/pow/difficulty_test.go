package pow

import "testing"

func TestCompactToTargetScenarioA(t *testing.T) {
	target := CompactToTarget(0x1b0404cb)

	zeroHash := Hash256{}
	if !zeroHash.ToUint256().LessOrEqual(target) {
		t.Fatalf("an all-zero hash must always meet any non-zero target")
	}

	var topBitSet Hash256
	topBitSet[31] = 0x80 // most significant byte of the big-endian value
	if topBitSet.ToUint256().LessOrEqual(target) {
		t.Fatalf("a hash with the top bit set must not meet this target")
	}
}

func TestCompactToTargetCappedAtMaxTarget(t *testing.T) {
	// An exponent/mantissa pair encoding something larger than MaxTarget
	// must be clamped down to MaxTarget, never allowed through uncapped.
	target := CompactToTarget(0x20123456)
	if target.Cmp(bigToUint256(MaxTarget)) > 0 {
		t.Fatalf("target must never exceed MaxTarget")
	}
}

func TestCompactTargetRoundTrip(t *testing.T) {
	for _, bits := range []uint32{0x1b0404cb, 0x1d00ffff, 0x207fffff} {
		target := CompactToTarget(bits)
		back := TargetToCompact(target)
		if back != bits {
			// re-expanding the round-tripped bits must still agree, even if
			// the compact encoding isn't byte-identical (mantissa might
			// renormalize at the boundary).
			if CompactToTarget(back).Cmp(target) != 0 {
				t.Fatalf("round trip mismatch for bits=%#x: got %#x", bits, back)
			}
		}
	}
}
