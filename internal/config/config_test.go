package config

import "testing"

func TestValidateRequiresMiningAddress(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PyrinAddress = "grpc://127.0.0.1:16110"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error when --mining-address is unset")
	}
}

func TestValidateRejectsOutOfRangeDevfundPercent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MiningAddress = "pyrin:q..."
	cfg.DevfundPercentBps = 10001
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error for devfund-percent-bps > 10000")
	}
}

func TestResolveDefaultsSwitchesToTestnetPort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Testnet = true
	cfg.ResolveDefaults(false)
	if cfg.PyrinAddress != testnetPyrinAddress {
		t.Fatalf("expected testnet default %q, got %q", testnetPyrinAddress, cfg.PyrinAddress)
	}
}

func TestResolveDefaultsRespectsExplicitPyrinAddress(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Testnet = true
	cfg.PyrinAddress = "grpc://example.com:16110"
	cfg.ResolveDefaults(true)
	if cfg.PyrinAddress != "grpc://example.com:16110" {
		t.Fatalf("explicit --pyrin-address should not be overwritten, got %q", cfg.PyrinAddress)
	}
}
