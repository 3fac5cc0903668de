package miner

import "github.com/pyrinminer/pyrinminer/internal/pow"

// BlockSeed is the tagged value carried between a Client adapter and the
// MinerManager: either a full block handed out by a node, or a partial
// header handed out by a Stratum pool. Exactly one of FullBlock or
// PartialBlock is set.
type BlockSeed struct {
	FullBlock   *FullBlockSeed
	PartialBlock *PartialBlockSeed
}

// IsPartial reports whether this seed came from a pool rather than a node.
func (b BlockSeed) IsPartial() bool {
	return b.PartialBlock != nil
}

// FullBlockSeed wraps a complete node-supplied block. On a solve, the client
// resubmits the same block verbatim with the solving nonce substituted into
// its header.
type FullBlockSeed struct {
	Header    *pow.BlockHeader
	ExtraData []byte
}

// PartialBlockSeed is what a Stratum pool hands out in place of a full
// block: just enough to build a Template and report a solve back by job id.
type PartialBlockSeed struct {
	JobID       string
	HeaderHash  pow.Hash256
	Timestamp   uint64
	Bits        uint32
	Target      pow.Uint256
	NonceMask   uint64
	NonceFixed  uint64
	ExtraData   []byte
}

// SolvedSeed is a BlockSeed together with the nonce and hash that solved it,
// and the template generation it was computed under. The MinerManager
// forwards these to the Client without interpreting JobID/Header semantics.
type SolvedSeed struct {
	Seed       BlockSeed
	Nonce      uint64
	Hash       pow.Hash256
	Generation uint64
}

// WithNonce returns a copy of the full block's header with nonce substituted
// in, ready for submission.
func (f *FullBlockSeed) WithNonce(nonce uint64) *pow.BlockHeader {
	h := f.Header.Clone()
	h.Nonce = nonce
	return h
}
