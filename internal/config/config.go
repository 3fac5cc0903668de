// Package config holds the miner's runtime configuration, grounded on the
// teacher's internal/config/config.go (a nested struct with a DefaultConfig
// constructor and a Validate method), narrowed from a full-node config down
// to what a mining client needs: which chain to talk to, how many threads
// and which backends to run, and where rewards go.
package config

import "fmt"

// Config is the miner's full runtime configuration, assembled by
// internal/config/flags.go from cobra flags.
type Config struct {
	MiningAddress  string
	PyrinAddress   string
	Testnet        bool
	Threads        int
	MineWhenNotSynced bool
	Debug          bool

	DevfundAddress string
	// DevfundPercentBps is the devfund cut in basis points out of 10,000
	// (e.g. 500 == 5%), matching client.Rotator's mod-10000 rotation.
	DevfundPercentBps int

	MetricsAddr string

	// BackendOptions are raw "key=value" strings forwarded to
	// worker.Registry.ProcessOption, e.g. "cpu-threads=8", "cuda-device=0".
	BackendOptions []string
}

// DefaultConfig returns the miner's default configuration.
func DefaultConfig() *Config {
	return &Config{
		PyrinAddress:      "grpc://127.0.0.1:16110",
		Threads:           0, // 0 means "use GOMAXPROCS", resolved by the cpu plugin
		DevfundPercentBps: 100, // 1%
		MetricsAddr:       "127.0.0.1:9329",
	}
}

// Validate checks the configuration is internally consistent enough to
// start mining.
func (c *Config) Validate() error {
	if c.MiningAddress == "" {
		return fmt.Errorf("config: --mining-address is required")
	}
	if c.PyrinAddress == "" {
		return fmt.Errorf("config: --pyrin-address is required")
	}
	if c.DevfundPercentBps < 0 || c.DevfundPercentBps > 10000 {
		return fmt.Errorf("config: --devfund-percent-bps must be between 0 and 10000 basis points, got %d", c.DevfundPercentBps)
	}
	return nil
}

// testnetPyrinAddress is the default node address when --testnet is set,
// matching the teacher's convention of per-network default ports.
const testnetPyrinAddress = "grpc://127.0.0.1:16211"

// ResolveDefaults fills in network-dependent defaults once Testnet is known.
// Cobra binds --testnet and --pyrin-address independently, so this must run
// after flag parsing, before Validate.
func (c *Config) ResolveDefaults(pyrinAddressWasSet bool) {
	if c.Testnet && !pyrinAddressWasSet {
		c.PyrinAddress = testnetPyrinAddress
	}
}
