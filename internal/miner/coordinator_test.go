package miner

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/pyrinminer/pyrinminer/internal/pow"
	"github.com/pyrinminer/pyrinminer/internal/worker"
)

// fakeWorker is a minimal Worker that reports a nonzero nonce in its
// partition (the last fixed value with bit 0x10 set) after the solveOn-th
// CalculateHash call and 0 after every other call, letting tests drive the
// coordinator's solution path deterministically.
type fakeWorker struct {
	id       string
	loaded   chan worker.BlockConstants
	solveOn  int
	calls    int
	lastFixed uint64
}

func (w *fakeWorker) ID() string { return w.id }

func (w *fakeWorker) LoadBlockConstants(ctx context.Context, c worker.BlockConstants) error {
	select {
	case w.loaded <- c:
	default:
	}
	return nil
}

func (w *fakeWorker) CalculateHash(ctx context.Context, nonceMask, nonceFixed uint64) error {
	w.calls++
	w.lastFixed = nonceFixed
	return nil
}

func (w *fakeWorker) Sync(ctx context.Context) error { return nil }

func (w *fakeWorker) CopyOutputTo(out *uint64) error {
	if w.calls == w.solveOn {
		*out = w.lastFixed | 0x10 // an arbitrary nonzero nonce in this lane's partition
	} else {
		*out = 0
	}
	return nil
}

func (w *fakeWorker) Workload() uint64 { return 1 }

func (w *fakeWorker) RequiresJobs() bool { return false }

func testHeader() *pow.BlockHeader {
	return &pow.BlockHeader{
		Version:              1,
		Parents:              []pow.ParentLevel{{Hashes: []pow.Hash256{{}}}},
		HashMerkleRoot:       pow.Hash256{1},
		AcceptedIDMerkleRoot: pow.Hash256{2},
		UTXOCommitment:       pow.Hash256{3},
		Timestamp:            1700000000,
		Bits:                 pow.MaxTargetBits,
		DAAScore:             1,
		BlueWork:             big.NewInt(1),
		BlueScore:            1,
		PruningPoint:         pow.Hash256{4},
	}
}

func TestPartitionNoncesCoverage(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 9} {
		shares := partitionNonces(n)
		if len(shares) != n {
			t.Fatalf("expected %d shares, got %d", n, len(shares))
		}
		seen := make(map[uint64]bool)
		for _, s := range shares {
			if s.fixed&^s.mask != 0 {
				t.Fatalf("fixed %d has bits outside mask %d", s.fixed, s.mask)
			}
			seen[s.fixed] = true
		}
		if len(seen) != n {
			t.Fatalf("expected %d distinct fixed values, got %d", n, len(seen))
		}
	}
}

func TestMinerManagerDeliversSolution(t *testing.T) {
	w := &fakeWorker{id: "fake-0", loaded: make(chan worker.BlockConstants, 4), solveOn: 2}
	mm := NewMinerManager([]worker.Worker{w}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mm.Start(ctx)
	defer mm.Stop()

	seed := BlockSeed{FullBlock: &FullBlockSeed{Header: testHeader()}}
	if err := mm.Submit(seed); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	select {
	case solved := <-mm.Solutions():
		if solved.Nonce == 0 {
			t.Fatalf("expected a nonzero solved nonce")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a solution")
	}
}

func TestMinerManagerPauseIdlesWorkers(t *testing.T) {
	w := &fakeWorker{id: "fake-0", loaded: make(chan worker.BlockConstants, 4), solveOn: -1}
	mm := NewMinerManager([]worker.Worker{w}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mm.Start(ctx)
	defer mm.Stop()

	mm.Pause()

	select {
	case <-mm.Solutions():
		t.Fatalf("did not expect a solution while paused")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBuildTemplateRejectsEmptySeed(t *testing.T) {
	if _, err := buildTemplate(BlockSeed{}); err == nil {
		t.Fatalf("expected an error for a BlockSeed with neither variant set")
	}
}
