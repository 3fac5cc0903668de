package pow

import (
	"math/big"
	"testing"
)

func easyTargetHeader() *BlockHeader {
	var h Hash256
	for i := range h {
		h[i] = byte(i * 9)
	}
	return &BlockHeader{
		Version:              1,
		Parents:              []ParentLevel{{Hashes: []Hash256{h}}},
		HashMerkleRoot:       h,
		AcceptedIDMerkleRoot: h,
		UTXOCommitment:       h,
		Timestamp:            1700000001,
		Bits:                 0x207fffff, // expands past MaxTarget, so CompactToTarget caps it at MaxTarget
		Nonce:                0,
		DAAScore:             1,
		BlueWork:             big.NewInt(1),
		BlueScore:            1,
		PruningPoint:         h,
	}
}

func TestNewStateMatchesDirectCalculation(t *testing.T) {
	header := easyTargetHeader()
	tmpl := NewTemplate(header)
	state := NewState(tmpl)

	got := state.CalculatePoW(42)

	prePow := header.PrePowHash()
	var buf [finalHashInputSize]byte
	copy(buf[0:32], prePow[:])
	putUint64LE(buf[32:40], header.Timestamp)
	putUint64LE(buf[64:72], 42)
	want := HeavyHash(tmpl.Matrix.HeavyHash(ProofOfWorkHash(buf[:])))

	if got != want {
		t.Fatalf("PowState.CalculatePoW diverged from a direct recomputation of the same pipeline")
	}
}

func TestCalculatePoWDeterministicAcrossCalls(t *testing.T) {
	state := NewState(NewTemplate(easyTargetHeader()))
	a := state.CalculatePoW(7)
	b := state.CalculatePoW(7)
	if a != b {
		t.Fatalf("CalculatePoW must be deterministic for the same nonce")
	}
}

func TestCalculatePoWDoesNotMutateSharedState(t *testing.T) {
	state := NewState(NewTemplate(easyTargetHeader()))
	before := state.buf
	state.CalculatePoW(123)
	if state.buf != before {
		t.Fatalf("CalculatePoW must not mutate the state's shared buffer")
	}
}

func TestCalculatePoWVariesWithNonce(t *testing.T) {
	state := NewState(NewTemplate(easyTargetHeader()))
	a := state.CalculatePoW(1)
	b := state.CalculatePoW(2)
	if a == b {
		t.Fatalf("distinct nonces produced the same PoW hash")
	}
}

func TestCheckPoWAgainstAllOnesTargetAlwaysPasses(t *testing.T) {
	tmpl := NewTemplate(easyTargetHeader())
	tmpl.Target = MaxUint256
	state := NewState(tmpl)
	for nonce := uint64(0); nonce < 16; nonce++ {
		if _, ok := state.CheckPoW(nonce); !ok {
			t.Fatalf("nonce %d should pass at the all-ones (easiest possible) target", nonce)
		}
	}
}

func TestCheckPoWReturnsSameHashAsCalculatePoW(t *testing.T) {
	state := NewState(NewTemplate(easyTargetHeader()))
	direct := state.CalculatePoW(55)
	hash, _ := state.CheckPoW(55)
	if hash != direct {
		t.Fatalf("CheckPoW must return the same hash CalculatePoW would for the same nonce")
	}
}

func putUint64LE(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * uint(i)))
	}
}
