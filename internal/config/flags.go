package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// BuildRootCommand constructs the miner's cobra root command, replacing the
// teacher's stdlib flag.FlagSet (the old ParseFlags/Flags pair this file
// used to hold) with the pack's cobra convention. run is invoked once flags
// are parsed and the Config is fully resolved and validated.
func BuildRootCommand(run func(cfg *Config) error) *cobra.Command {
	cfg := DefaultConfig()

	cmd := &cobra.Command{
		Use:   "pyrinminer",
		Short: "A Pyrin/Kaspa-family proof-of-work mining client",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.ResolveDefaults(cmd.Flags().Changed("pyrin-address"))
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg)
		},
		SilenceUsage: true,
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.MiningAddress, "mining-address", "", "payout address credited for solved blocks (required)")
	flags.StringVar(&cfg.PyrinAddress, "pyrin-address", cfg.PyrinAddress, "node or pool address, e.g. grpc://host:port or stratum+tcp://host:port")
	flags.BoolVar(&cfg.Testnet, "testnet", false, "connect to testnet defaults instead of mainnet")
	flags.IntVar(&cfg.Threads, "threads", cfg.Threads, "CPU worker thread count (0 = GOMAXPROCS)")
	flags.IntVar(&cfg.Threads, "cpu-threads", cfg.Threads, "alias of --threads")
	flags.BoolVar(&cfg.MineWhenNotSynced, "mine-when-not-synced", false, "keep mining against templates from a node that reports itself as not synced")
	flags.BoolVar(&cfg.Debug, "debug", false, "enable debug-level logging")
	flags.StringVar(&cfg.DevfundAddress, "devfund-address", "", "devfund payout address (disabled if empty or on a different network than --mining-address)")
	flags.IntVar(&cfg.DevfundPercentBps, "devfund-percent-bps", cfg.DevfundPercentBps, "devfund cut in basis points out of 10000 (500 = 5%)")
	flags.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "address to serve Prometheus metrics on")
	flags.StringArrayVar(&cfg.BackendOptions, "backend-option", nil, `backend-specific "key=value" option, may be repeated (e.g. --backend-option cuda-device=0)`)

	return cmd
}

// SplitBackendOption parses a single "key=value" backend option string, the
// shape every --backend-option argument must take before being forwarded to
// worker.Registry.ProcessOption.
func SplitBackendOption(opt string) (key, value string, err error) {
	idx := strings.IndexByte(opt, '=')
	if idx < 0 {
		return "", "", fmt.Errorf("config: backend option %q is not in key=value form", opt)
	}
	return opt[:idx], opt[idx+1:], nil
}
