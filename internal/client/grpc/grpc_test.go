package grpc

import (
	"math/big"
	"testing"

	"github.com/pyrinminer/pyrinminer/internal/client/grpc/rpcpb"
	"github.com/pyrinminer/pyrinminer/internal/pow"
)

func TestTemplateToHeaderAndBackRoundTrips(t *testing.T) {
	h := &pow.BlockHeader{
		Version: 1,
		Parents: []pow.ParentLevel{
			{Hashes: []pow.Hash256{{1, 2, 3}, {4, 5, 6}}},
			{Hashes: []pow.Hash256{{7, 8, 9}}},
		},
		HashMerkleRoot:       pow.Hash256{10},
		AcceptedIDMerkleRoot: pow.Hash256{11},
		UTXOCommitment:       pow.Hash256{12},
		Timestamp:            1234567890,
		Bits:                 0x207fffff,
		Nonce:                42,
		DAAScore:             100,
		BlueWork:             big.NewInt(999),
		BlueScore:            200,
		PruningPoint:         pow.Hash256{13},
	}

	req := headerToSubmitRequest(h)
	back, err := templateToHeader(req.Template)
	if err != nil {
		t.Fatalf("templateToHeader: %v", err)
	}

	if back.Version != h.Version || back.Timestamp != h.Timestamp || back.Bits != h.Bits {
		t.Fatalf("scalar fields did not round-trip: %+v", back)
	}
	if back.HashMerkleRoot != h.HashMerkleRoot || back.PruningPoint != h.PruningPoint {
		t.Fatalf("hash fields did not round-trip")
	}
	if back.BlueWork.Cmp(h.BlueWork) != 0 {
		t.Fatalf("blue work did not round-trip: got %v want %v", back.BlueWork, h.BlueWork)
	}
	if len(back.Parents) != 2 || len(back.Parents[0].Hashes) != 2 || len(back.Parents[1].Hashes) != 1 {
		t.Fatalf("parent levels did not round-trip: %+v", back.Parents)
	}
	if back.Parents[0].Hashes[1] != h.Parents[0].Hashes[1] {
		t.Fatalf("parent hash mismatch")
	}
}

func TestTemplateToHeaderRejectsNil(t *testing.T) {
	if _, err := templateToHeader(nil); err == nil {
		t.Fatalf("expected an error for a nil template")
	}
}

func TestJSONCodecRoundTrips(t *testing.T) {
	var codec jsonCodec
	env := &rpcpb.Envelope{GetInfoRequest: &rpcpb.GetInfoRequest{}}
	data, err := codec.Marshal(env)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out rpcpb.Envelope
	if err := codec.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.GetInfoRequest == nil {
		t.Fatalf("expected GetInfoRequest to round-trip")
	}
}
