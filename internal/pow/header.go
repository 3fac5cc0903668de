package pow

import (
	"bytes"
	"encoding/binary"
	"io"
	"math/big"
)

// BlockHeader carries every field the miner must serialize, in the exact
// order spec.md §3 fixes. Field order is the consensus-critical part of this
// type: a byte-for-byte identical serialization is what lets a CPU worker
// and a GPU worker agree on a hash (spec.md §3 invariants, §8 property 1).
type BlockHeader struct {
	Version               uint16
	Parents               []ParentLevel
	HashMerkleRoot        Hash256
	AcceptedIDMerkleRoot  Hash256
	UTXOCommitment        Hash256
	Timestamp             uint64
	Bits                  uint32
	Nonce                 uint64
	DAAScore              uint64
	BlueWork              *big.Int
	BlueScore             uint64
	PruningPoint          Hash256
}

// ParentLevel is one level of the parents DAG reference list: an ordered set
// of block hashes at that level.
type ParentLevel struct {
	Hashes []Hash256
}

// Clone returns a deep copy so a caller can safely mutate Nonce/Timestamp on
// a worker's private copy without racing the coordinator's template.
func (h *BlockHeader) Clone() *BlockHeader {
	c := *h
	c.Parents = make([]ParentLevel, len(h.Parents))
	for i, lvl := range h.Parents {
		c.Parents[i].Hashes = append([]Hash256(nil), lvl.Hashes...)
	}
	if h.BlueWork != nil {
		c.BlueWork = new(big.Int).Set(h.BlueWork)
	}
	return &c
}

// Serialize writes the header in the canonical wire order. When
// includeNonce is false the 8 nonce bytes are omitted entirely (not
// zeroed), matching spec.md §4.1's serialize_header contract; every field
// after the nonce is still written either way. This is the function that
// must produce byte-identical output from every backend implementation.
func (h *BlockHeader) Serialize(w io.Writer, includeNonce bool) error {
	if err := writeUint16(w, h.Version); err != nil {
		return err
	}
	if err := writeUint64(w, uint64(len(h.Parents))); err != nil {
		return err
	}
	for _, level := range h.Parents {
		if err := writeUint64(w, uint64(len(level.Hashes))); err != nil {
			return err
		}
		for _, hash := range level.Hashes {
			if _, err := w.Write(hash[:]); err != nil {
				return err
			}
		}
	}
	if _, err := w.Write(h.HashMerkleRoot[:]); err != nil {
		return err
	}
	if _, err := w.Write(h.AcceptedIDMerkleRoot[:]); err != nil {
		return err
	}
	if _, err := w.Write(h.UTXOCommitment[:]); err != nil {
		return err
	}
	if err := writeUint64(w, h.Timestamp); err != nil {
		return err
	}
	if err := writeUint32(w, h.Bits); err != nil {
		return err
	}
	if includeNonce {
		if err := writeUint64(w, h.Nonce); err != nil {
			return err
		}
	}
	if err := writeUint64(w, h.DAAScore); err != nil {
		return err
	}
	blueWork := minimalBigEndian(h.BlueWork)
	if err := writeUint64(w, uint64(len(blueWork))); err != nil {
		return err
	}
	if _, err := w.Write(blueWork); err != nil {
		return err
	}
	if err := writeUint64(w, h.BlueScore); err != nil {
		return err
	}
	if _, err := w.Write(h.PruningPoint[:]); err != nil {
		return err
	}
	return nil
}

// SerializeBytes is a convenience wrapper around Serialize for callers that
// just want the bytes (the common case: feeding a hasher).
func (h *BlockHeader) SerializeBytes(includeNonce bool) []byte {
	var buf bytes.Buffer
	// Serialize never actually fails against a bytes.Buffer.
	_ = h.Serialize(&buf, includeNonce)
	return buf.Bytes()
}

// BlockID computes the domain-tagged block ID hash, nonce included.
func (h *BlockHeader) BlockID() Hash256 {
	return BlockHash(h.SerializeBytes(true))
}

// PrePowHash computes the domain-tagged pre-PoW hash, nonce excluded. This
// is also the seed for the header's mixing Matrix (spec.md §4.2).
func (h *BlockHeader) PrePowHash() Hash256 {
	return ProofOfWorkHash(h.SerializeBytes(false))
}

func minimalBigEndian(n *big.Int) []byte {
	if n == nil {
		return nil
	}
	return n.Bytes()
}

func writeUint16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeUint32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeUint64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}
