package miner

import "testing"

func TestWatchSwapEmptyBeforeStore(t *testing.T) {
	w := NewWatchSwap[int]()
	_, _, ok := w.Load()
	if ok {
		t.Fatalf("expected ok=false before any Store")
	}
}

func TestWatchSwapStoreOverwritesAndBumpsGeneration(t *testing.T) {
	w := NewWatchSwap[string]()
	w.Store("a")
	v, gen1, ok := w.Load()
	if !ok || v != "a" {
		t.Fatalf("unexpected load after first store: %v %v", v, ok)
	}

	w.Store("b")
	v, gen2, ok := w.Load()
	if !ok || v != "b" {
		t.Fatalf("unexpected load after second store: %v %v", v, ok)
	}
	if gen2 <= gen1 {
		t.Fatalf("expected generation to strictly increase, got %d -> %d", gen1, gen2)
	}
}

func TestWatchSwapGenerationMatchesLoad(t *testing.T) {
	w := NewWatchSwap[int]()
	w.Store(1)
	_, loadGen, _ := w.Load()
	if w.Generation() != loadGen {
		t.Fatalf("Generation() disagreed with the generation returned by Load()")
	}
}
