// Package miner implements the MinerManager coordinator: it owns every live
// Worker, republishes each incoming BlockSeed as a Template generation via a
// WatchSwap, and forwards solved seeds back upstream. Concurrency shape
// (select-on-stop-channel workers, mutex-guarded shared state, buffered
// result channel) follows the teacher's internal/consensus/pow.CPUMiner and
// internal/miner.SubmissionHandler patterns, generalized from double-SHA256
// block mining to the matrix-mixing PoW engine and a pluggable Worker set.
package miner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pyrinminer/pyrinminer/internal/pow"
	"github.com/pyrinminer/pyrinminer/internal/worker"
)

// templateState is what's published into the WatchSwap: either an active
// template, or paused=true meaning every worker should idle.
type templateState struct {
	paused bool
	seed   BlockSeed
	tmpl   *pow.Template
}

// nonceShare is a worker's (nonce_mask, nonce_fixed) partition.
type nonceShare struct {
	mask  uint64
	fixed uint64
}

// MinerManager is the core coordinator. It owns the worker pool, the shared
// WatchSwap<Template>, and the HashCounter, and runs each worker's loop on
// its own goroutine.
type MinerManager struct {
	bps     float64 // blocks-per-second target, bounds Sync's deadline
	workers []worker.Worker
	shares  []nonceShare

	watch   *WatchSwap[templateState]
	counter HashCounter

	solutions chan SolvedSeed

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewMinerManager builds a coordinator over a fixed worker set. bps is the
// blocks-per-second target used to bound each Sync call's deadline
// (1000ms / bps per spec.md §4.3).
func NewMinerManager(workers []worker.Worker, bps float64) *MinerManager {
	mm := &MinerManager{
		bps:       bps,
		workers:   workers,
		shares:    partitionNonces(len(workers)),
		watch:     NewWatchSwap[templateState](),
		solutions: make(chan SolvedSeed, 1),
	}
	return mm
}

// partitionNonces computes each worker's (mask, fixed) pair: mask is the
// smallest power-of-two-minus-one at least covering N workers, and worker i
// gets fixed=i (spec.md §4.5 state machine, step 1).
func partitionNonces(n int) []nonceShare {
	if n <= 0 {
		return nil
	}
	size := uint64(1)
	for size < uint64(n) {
		size <<= 1
	}
	mask := size - 1
	shares := make([]nonceShare, n)
	for i := 0; i < n; i++ {
		shares[i] = nonceShare{mask: mask, fixed: uint64(i)}
	}
	return shares
}

// Solutions returns the channel solved seeds are delivered on.
func (m *MinerManager) Solutions() <-chan SolvedSeed {
	return m.solutions
}

// Start launches every worker's loop. Run Submit (or Pause) to publish
// templates once started.
func (m *MinerManager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()

	for i, w := range m.workers {
		m.wg.Add(1)
		go m.runWorker(ctx, w, m.shares[i])
	}
}

// Stop signals every worker to exit and waits for them to return.
func (m *MinerManager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

// Submit publishes a new BlockSeed as the current template, bumping the
// generation so every worker picks it up at its next iteration boundary
// (spec.md §4.5 step 1 and step 3).
func (m *MinerManager) Submit(seed BlockSeed) error {
	tmpl, err := buildTemplate(seed)
	if err != nil {
		return err
	}
	m.watch.Store(templateState{tmpl: tmpl, seed: seed})
	return nil
}

// Pause publishes the paused sentinel; every worker idles until the next Submit.
func (m *MinerManager) Pause() {
	m.watch.Store(templateState{paused: true})
}

// buildTemplate constructs a Template from whichever BlockSeed variant was
// given: a FullBlock's header is used directly; a PartialBlock's fields are
// assembled into a header-less template from the seed's header hash,
// timestamp and already-expanded Target, used as-is (its Bits are not
// re-expanded here).
func buildTemplate(seed BlockSeed) (*pow.Template, error) {
	switch {
	case seed.FullBlock != nil:
		return pow.NewTemplate(seed.FullBlock.Header), nil
	case seed.PartialBlock != nil:
		pb := seed.PartialBlock
		return &pow.Template{
			PrePowHash: pb.HeaderHash,
			Timestamp:  pb.Timestamp,
			Target:     pb.Target,
			Matrix:     pow.GenerateMatrix(pb.HeaderHash),
		}, nil
	default:
		return nil, fmt.Errorf("miner: BlockSeed has neither FullBlock nor PartialBlock set")
	}
}

// HashesPerSecond reports the hashrate accumulated since the last call,
// resetting the running counter (a periodic ticker is the intended caller).
func (m *MinerManager) HashesPerSecond(since time.Duration) float64 {
	return m.HashesSinceLastCall().Rate(since)
}

// HashCount is the raw hash delta returned by HashesSinceLastCall; Rate
// divides it by an elapsed duration to get a hashes-per-second figure.
type HashCount uint64

func (h HashCount) Rate(since time.Duration) float64 {
	if since <= 0 {
		return 0
	}
	return float64(h) / since.Seconds()
}

// HashesSinceLastCall returns and resets the running hash counter, for
// callers (e.g. internal/metrics reporting) that want both the raw count
// and a derived rate from the same sample.
func (m *MinerManager) HashesSinceLastCall() HashCount {
	return HashCount(m.counter.SnapshotAndReset())
}

// runWorker is the per-worker loop: poll WatchSwap, reload constants on a
// generation change, search, and forward any solution.
func (m *MinerManager) runWorker(ctx context.Context, w worker.Worker, share nonceShare) {
	defer m.wg.Done()

	var lastGen uint64
	haveLoaded := false

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		state, gen, ok := m.watch.Load()
		if !ok || state.paused {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		if !haveLoaded || gen != lastGen {
			constants, err := buildConstants(state.tmpl)
			if err != nil {
				log.Error().Err(err).Str("worker", w.ID()).Msg("miner: failed to build block constants")
				time.Sleep(50 * time.Millisecond)
				continue
			}
			if err := w.LoadBlockConstants(ctx, constants); err != nil {
				log.Error().Err(err).Str("worker", w.ID()).Msg("miner: LoadBlockConstants failed")
				time.Sleep(50 * time.Millisecond)
				continue
			}
			lastGen = gen
			haveLoaded = true
		}

		if err := w.CalculateHash(ctx, share.mask, share.fixed); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Str("worker", w.ID()).Msg("miner: CalculateHash failed")
			continue
		}

		syncCtx, cancel := context.WithTimeout(ctx, m.syncDeadline())
		err := w.Sync(syncCtx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("worker", w.ID()).Msg("miner: sync exceeded deadline, workload may be too large")
			continue
		}

		m.counter.Add(w.Workload())

		var nonce uint64
		if err := w.CopyOutputTo(&nonce); err != nil {
			log.Error().Err(err).Str("worker", w.ID()).Msg("miner: CopyOutputTo failed")
			continue
		}
		if nonce == 0 {
			continue
		}

		if _, curGen, _ := m.watch.Load(); curGen != gen {
			// the template moved on while this batch was in flight; the
			// solution no longer applies to the current generation.
			continue
		}

		hash := recomputeHash(state.tmpl, nonce)

		solved := SolvedSeed{
			Seed:       state.seed,
			Nonce:      nonce,
			Hash:       hash,
			Generation: gen,
		}
		select {
		case m.solutions <- solved:
		case <-ctx.Done():
			return
		}
	}
}

func (m *MinerManager) syncDeadline() time.Duration {
	if m.bps <= 0 {
		return time.Second
	}
	return time.Duration(float64(time.Second) / m.bps)
}

// recomputeHash reproduces the final PoW hash for a solving nonce so the
// coordinator can attach it to the SolvedSeed without the Worker interface
// needing to expose hashes (backends only surface the nonce, per spec.md
// §4.3's copy_output_to contract).
func recomputeHash(tmpl *pow.Template, nonce uint64) pow.Hash256 {
	state := pow.NewState(tmpl)
	return state.CalculatePoW(nonce)
}

func buildConstants(tmpl *pow.Template) (worker.BlockConstants, error) {
	var c worker.BlockConstants
	if tmpl == nil {
		return c, fmt.Errorf("miner: nil template")
	}
	copy(c.HeaderPrefix[0:32], tmpl.PrePowHash[:])
	for i := 0; i < 8; i++ {
		c.HeaderPrefix[32+i] = byte(tmpl.Timestamp >> (8 * uint(i)))
	}
	for i := 0; i < 64; i++ {
		for j := 0; j < 64; j++ {
			c.Matrix[i][j] = tmpl.Matrix[i][j]
		}
	}
	c.Target = [4]uint64(tmpl.Target)
	return c, nil
}
