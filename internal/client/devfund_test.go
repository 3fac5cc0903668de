package client

import "testing"

func TestRotatorDisabledWithoutDevfundAddress(t *testing.T) {
	r := NewRotator("pyrin:qminer", "", 500)
	if r.Enabled() {
		t.Fatalf("expected a Rotator with no devfund address to be disabled")
	}
	if r.PayAddress() != "pyrin:qminer" {
		t.Fatalf("expected PayAddress to fall back to the miner address")
	}
}

func TestRotatorDisabledAcrossNetworks(t *testing.T) {
	r := NewRotator("pyrin:qminer", "pyrintest:qdevfund", 500)
	if r.Enabled() {
		t.Fatalf("expected a Rotator across networks to be disabled")
	}
}

func TestRotatorRotatesExactShare(t *testing.T) {
	r := NewRotator("pyrin:qminer", "pyrin:qdevfund", 500) // 5%
	if !r.Enabled() {
		t.Fatalf("expected Rotator to be enabled for same-network addresses")
	}

	devfundCount := 0
	for i := 0; i < 10000; i++ {
		if r.PayAddress() == "pyrin:qdevfund" {
			devfundCount++
		}
	}
	if devfundCount != 500 {
		t.Fatalf("expected exactly 500 of 10000 requests to target devfund, got %d", devfundCount)
	}
}

func TestRotatorZeroPercentNeverRotates(t *testing.T) {
	r := NewRotator("pyrin:qminer", "pyrin:qdevfund", 0)
	if r.Enabled() {
		t.Fatalf("expected a 0 bps Rotator to be disabled")
	}
}
