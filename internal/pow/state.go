package pow

import "encoding/binary"

// finalHashInputSize is the size of the reusable per-template buffer that
// gets the candidate nonce patched into it on every iteration: the 32-byte
// pre-PoW hash, an 8-byte timestamp, 24 bytes of zero padding, and the
// 8-byte nonce (spec.md §3: "Worker state ... owns a copy of header (72
// bytes of the final hash input)").
const finalHashInputSize = 32 + 8 + 24 + 8

// Template bundles everything a worker needs to search for a solving nonce:
// the pre-PoW hash and timestamp (the two fields that seed the 72-byte final
// hash input), the expanded target, and the derived mixing matrix. Header is
// set only when the template came from a full node block, for resubmission;
// a pool-issued partial template carries none. Templates are immutable once
// built — any field change means a new Template and, in the coordinator, a
// new generation (spec.md §3).
type Template struct {
	Header     *BlockHeader
	PrePowHash Hash256
	Timestamp  uint64
	Target     Uint256
	Matrix     Matrix
}

// NewTemplate builds a Template from a header: expands its compact bits into
// a capped 256-bit target and derives the mixing matrix from its pre-PoW
// hash (computed with nonce excluded, per spec.md §4.2).
func NewTemplate(header *BlockHeader) *Template {
	prePow := header.PrePowHash()
	return &Template{
		Header:     header,
		PrePowHash: prePow,
		Timestamp:  header.Timestamp,
		Target:     CompactToTarget(header.Bits),
		Matrix:     GenerateMatrix(prePow),
	}
}

// PowState is the per-template proof-of-work evaluator: given a candidate
// nonce it reproduces the exact pre-PoW -> heavy-hash -> compare pipeline
// every backend (CPU or GPU) must agree on byte-for-byte.
//
// The 72-byte final-hash-input buffer is built once per template (prefix is
// the same for every nonce) and only the trailing 8 bytes are rewritten per
// iteration, the same amortization a GPU kernel relies on to avoid
// re-serializing the whole header per candidate.
type PowState struct {
	buf    [finalHashInputSize]byte
	matrix Matrix
	target Uint256
}

// NewState constructs a PowState from a Template.
func NewState(t *Template) *PowState {
	s := &PowState{
		matrix: t.Matrix,
		target: t.Target,
	}
	copy(s.buf[0:32], t.PrePowHash[:])
	binary.LittleEndian.PutUint64(s.buf[32:40], t.Timestamp)
	// bytes 40:64 stay zero padding.
	return s
}

// NewStateFromConstants builds a PowState directly from the 72-byte final
// hash input prefix, matrix and target a Worker receives via
// LoadBlockConstants, without needing the original BlockHeader. This is the
// constructor CPU/GPU backends use: the coordinator hands out raw constants,
// not header objects, so every backend (including ones that never link
// against BlockHeader at all) can build an evaluator from them.
func NewStateFromConstants(headerPrefix [finalHashInputSize]byte, matrix Matrix, target Uint256) *PowState {
	return &PowState{
		buf:    headerPrefix,
		matrix: matrix,
		target: target,
	}
}

// CalculatePoW computes the final PoW hash for a candidate nonce without
// comparing it to the target.
func (s *PowState) CalculatePoW(nonce uint64) Hash256 {
	buf := s.buf
	binary.LittleEndian.PutUint64(buf[64:72], nonce)
	pre := ProofOfWorkHash(buf[:])
	mixed := s.matrix.HeavyHash(pre)
	return HeavyHash(mixed)
}

// CheckPoW computes the final PoW hash for nonce and reports whether it
// meets the template's target, returning the hash either way so the caller
// never has to recompute it for logging or submission.
func (s *PowState) CheckPoW(nonce uint64) (hash Hash256, ok bool) {
	hash = s.CalculatePoW(nonce)
	ok = hash.ToUint256().LessOrEqual(s.target)
	return hash, ok
}

// Target exposes the expanded target, e.g. for workers that want it as raw
// limbs to upload to a device.
func (s *PowState) Target() Uint256 {
	return s.target
}
