// Command pyrinminer is a Pyrin/Kaspa-family proof-of-work mining client:
// it owns a MinerManager coordinator, one or more Worker backends, and an
// upstream Client adapter (a node over gRPC, or a pool over Stratum),
// wiring them together the way the teacher's cmd/node wires chain, state,
// and RPC, but for a miner rather than a full node.
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pyrinminer/pyrinminer/internal/client"
	grpcclient "github.com/pyrinminer/pyrinminer/internal/client/grpc"
	"github.com/pyrinminer/pyrinminer/internal/client/stratum"
	"github.com/pyrinminer/pyrinminer/internal/config"
	"github.com/pyrinminer/pyrinminer/internal/logging"
	"github.com/pyrinminer/pyrinminer/internal/metrics"
	"github.com/pyrinminer/pyrinminer/internal/miner"
	"github.com/pyrinminer/pyrinminer/internal/worker"
	"github.com/pyrinminer/pyrinminer/internal/worker/cpu"
	"github.com/pyrinminer/pyrinminer/internal/worker/cuda"
	"github.com/pyrinminer/pyrinminer/internal/worker/opencl"
)

// bps is the chain's target blocks-per-second, per spec.md §9's open
// question: hard-coded for this chain family, same as the original.
const bps = 1.0

// reconnectDelay is spec.md §7's fixed wait before a reconnect attempt
// after a transient Client-adapter error.
const reconnectDelay = 100 * time.Millisecond

func main() {
	cmd := config.BuildRootCommand(run)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logging.Init(cfg.Debug, true)
	logger := logging.For("main")

	registry, err := buildRegistry(cfg)
	if err != nil {
		return fmt.Errorf("main: %w", err)
	}
	specs, err := registry.AllSpecs()
	if err != nil {
		return fmt.Errorf("main: %w", err)
	}
	if len(specs) == 0 {
		return fmt.Errorf("main: no workers configured (spec.md §7 configuration error)")
	}

	workers := make([]worker.Worker, 0, len(specs))
	for _, spec := range specs {
		w, err := spec.Build()
		if err != nil {
			logger.Error().Err(err).Str("spec", spec.ID()).Msg("backend initialization failed; skipping this worker")
			continue
		}
		workers = append(workers, w)
	}
	if len(workers) == 0 {
		return fmt.Errorf("main: every worker failed to initialize")
	}

	mets := metrics.New()
	mets.ActiveWorkers.Set(float64(len(workers)))
	go func() {
		if err := metrics.Serve(cfg.MetricsAddr); err != nil {
			logger.Warn().Err(err).Msg("metrics server exited")
		}
	}()

	mm := miner.NewMinerManager(workers, bps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go reportHashrate(ctx, mm, mets)

	mm.Start(ctx)
	defer mm.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}
		c, err := dialClient(cfg)
		if err != nil {
			logger.Error().Err(err).Msg("failed to build client adapter; this is a configuration error, not transient")
			return err
		}
		if cfg.DevfundAddress != "" {
			c.AddDevfund(cfg.DevfundAddress, cfg.DevfundPercentBps)
		}
		if err := c.Register(ctx); err != nil {
			logger.Warn().Err(err).Msg("register failed, retrying")
			time.Sleep(reconnectDelay)
			continue
		}
		err = c.Listen(ctx, mm)
		if ctx.Err() != nil {
			return nil
		}
		logger.Warn().Err(err).Msg("client adapter disconnected, reconnecting")
		mm.Pause()
		time.Sleep(reconnectDelay)
	}
}

func buildRegistry(cfg *config.Config) (*worker.Registry, error) {
	registry := worker.NewRegistry(cpu.NewPlugin(), cuda.NewPlugin(), opencl.NewPlugin())

	if cfg.Threads > 0 {
		if _, err := registry.ProcessOption("cpu-threads", strconv.Itoa(cfg.Threads)); err != nil {
			return nil, err
		}
	}
	for _, opt := range cfg.BackendOptions {
		key, value, err := config.SplitBackendOption(opt)
		if err != nil {
			return nil, err
		}
		n, err := registry.ProcessOption(key, value)
		if err != nil {
			return nil, fmt.Errorf("backend option %q: %w", opt, err)
		}
		if n == 0 {
			return nil, fmt.Errorf("backend option %q was not recognized by any enabled plugin", opt)
		}
	}
	return registry, nil
}

// dialClient picks the Client adapter from --pyrin-address's URL scheme:
// grpc:// for a node, stratum+tcp:// for a pool.
func dialClient(cfg *config.Config) (client.Client, error) {
	u, err := url.Parse(cfg.PyrinAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid --pyrin-address %q: %w", cfg.PyrinAddress, err)
	}
	switch u.Scheme {
	case "grpc":
		c, err := grpcclient.New(u.Host, cfg.MiningAddress)
		if err != nil {
			return nil, err
		}
		c.MineWhenNotSynced = cfg.MineWhenNotSynced
		return c, nil
	case "stratum+tcp", "stratum":
		user := cfg.MiningAddress
		pass := "x"
		if u.User != nil {
			user = u.User.Username()
			if p, ok := u.User.Password(); ok {
				pass = p
			}
		}
		return stratum.New(u.Host, user, pass), nil
	default:
		return nil, fmt.Errorf("unsupported --pyrin-address scheme %q (want grpc:// or stratum+tcp://)", u.Scheme)
	}
}

func reportHashrate(ctx context.Context, mm *miner.MinerManager, mets *metrics.Metrics) {
	const interval = 10 * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count := mm.HashesSinceLastCall()
			mets.HashesTotal.Add(float64(count))
			hps := count.Rate(interval)
			mets.HashrateGauge.Set(hps)
			log.Info().Float64("hashesPerSecond", hps).Msg("hashrate")
		}
	}
}

