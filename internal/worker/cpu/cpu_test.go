package cpu

import (
	"context"
	"math/big"
	"testing"

	"github.com/pyrinminer/pyrinminer/internal/pow"
	"github.com/pyrinminer/pyrinminer/internal/worker"
)

func easyConstants(t *testing.T) worker.BlockConstants {
	t.Helper()
	header := &pow.BlockHeader{
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
	tmpl := pow.NewTemplate(header)

	var constants worker.BlockConstants
	prePow := header.PrePowHash()
	copy(constants.HeaderPrefix[0:32], prePow[:])
	for i := 0; i < 8; i++ {
		constants.HeaderPrefix[32+i] = byte(header.Timestamp >> (8 * uint(i)))
	}
	for i := 0; i < 64; i++ {
		for j := 0; j < 64; j++ {
			constants.Matrix[i][j] = tmpl.Matrix[i][j]
		}
	}
	constants.Target = [4]uint64(pow.MaxUint256)
	return constants
}

func TestCPUWorkerFindsSolutionAtMaxTarget(t *testing.T) {
	w := New(0, 1024)
	ctx := context.Background()

	if err := w.LoadBlockConstants(ctx, easyConstants(t)); err != nil {
		t.Fatalf("LoadBlockConstants: %v", err)
	}
	if err := w.CalculateHash(ctx, 0, 0); err != nil {
		t.Fatalf("CalculateHash: %v", err)
	}
	if err := w.Sync(ctx); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	var nonce uint64
	if err := w.CopyOutputTo(&nonce); err != nil {
		t.Fatalf("CopyOutputTo: %v", err)
	}
	// At the all-ones (easiest possible) target, nonce 0 must already satisfy
	// the PoW, so the search must report it as the found nonce.
	if nonce != 0 {
		t.Fatalf("expected nonce 0 to solve at the maximum target, got %d", nonce)
	}
}

func TestCPUWorkerRequiresLoadBeforeCalculate(t *testing.T) {
	w := New(0, 16)
	if err := w.CalculateHash(context.Background(), 0, 0); err == nil {
		t.Fatalf("expected an error calling CalculateHash before LoadBlockConstants")
	}
}

func TestCPUWorkerReportsWorkloadAndRequiresJobs(t *testing.T) {
	w := New(0, 4096)
	if w.Workload() != 4096 {
		t.Fatalf("expected workload 4096, got %d", w.Workload())
	}
	if w.RequiresJobs() {
		t.Fatalf("CPU backend enumerates nonces internally and must not require jobs")
	}
}

func TestCPUPluginDefaultSpecsMatchGOMAXPROCS(t *testing.T) {
	p := NewPlugin()
	specs, err := p.GetWorkerSpecs()
	if err != nil {
		t.Fatalf("GetWorkerSpecs: %v", err)
	}
	if len(specs) == 0 {
		t.Fatalf("expected at least one default CPU spec")
	}
}

func TestCPUPluginProcessOptionOverridesThreadCount(t *testing.T) {
	p := NewPlugin()
	n, err := p.ProcessOption("cpu-threads", "3")
	if err != nil {
		t.Fatalf("ProcessOption: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected ProcessOption to report 1 spec-affecting change, got %d", n)
	}
	specs, err := p.GetWorkerSpecs()
	if err != nil {
		t.Fatalf("GetWorkerSpecs: %v", err)
	}
	if len(specs) != 3 {
		t.Fatalf("expected 3 specs after overriding cpu-threads=3, got %d", len(specs))
	}
}

func TestCPUPluginIgnoresUnrelatedOption(t *testing.T) {
	p := NewPlugin()
	n, err := p.ProcessOption("cuda-device", "0")
	if err != nil {
		t.Fatalf("ProcessOption must not error on an option belonging to another backend: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 for an unrelated option, got %d", n)
	}
}
