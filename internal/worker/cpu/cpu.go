// Package cpu implements the CPU mining backend: a Worker and Plugin pair
// that search nonces on ordinary goroutines, grounded on the teacher's
// CPUMiner worker-loop shape (select-on-stop-channel, periodic hashrate
// bookkeeping) but driven by the shared internal/pow evaluator instead of
// double-SHA256.
package cpu

import (
	"context"
	"fmt"
	"math/bits"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/pyrinminer/pyrinminer/internal/pow"
	"github.com/pyrinminer/pyrinminer/internal/worker"
)

// Worker is the CPU backend's Worker implementation. CalculateHash runs
// synchronously to completion, matching spec.md's CPU-backend contract.
type Worker struct {
	id       string
	workload uint64

	mu    sync.Mutex
	state *pow.PowState

	foundNonce uint64 // atomic
}

// New constructs a CPU worker identified by lane, searching workload nonces
// per CalculateHash call.
func New(lane int, workload uint64) *Worker {
	return &Worker{
		id:       fmt.Sprintf("#%d (CPU)", lane),
		workload: workload,
	}
}

func (w *Worker) ID() string { return w.id }

func (w *Worker) LoadBlockConstants(ctx context.Context, constants worker.BlockConstants) error {
	var matrix pow.Matrix
	for i := range constants.Matrix {
		for j := range constants.Matrix[i] {
			matrix[i][j] = constants.Matrix[i][j]
		}
	}
	target := pow.Uint256(constants.Target)

	w.mu.Lock()
	w.state = pow.NewStateFromConstants(constants.HeaderPrefix, matrix, target)
	w.mu.Unlock()

	atomic.StoreUint64(&w.foundNonce, 0)
	return nil
}

func (w *Worker) CalculateHash(ctx context.Context, nonceMask, nonceFixed uint64) error {
	w.mu.Lock()
	state := w.state
	w.mu.Unlock()
	if state == nil {
		return fmt.Errorf("cpu worker %s: CalculateHash called before LoadBlockConstants", w.id)
	}

	atomic.StoreUint64(&w.foundNonce, 0)

	// nonceMask's set bits are the low, contiguous bits fixed to this
	// worker's share; every other bit is free to search. Splice the
	// counter into those free bits (shifted past the fixed ones) instead
	// of masking it directly, or every worker.Workload() iterations only
	// covers workload/len(mask bits) distinct nonces.
	shift := bits.OnesCount64(nonceMask)
	var n uint64
	for i := uint64(0); i < w.workload; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		nonce := nonceFixed | (n << shift)
		if _, ok := state.CheckPoW(nonce); ok {
			atomic.StoreUint64(&w.foundNonce, nonce)
			break
		}
		n++
	}
	return nil
}

// Sync is a no-op for the CPU backend: CalculateHash already ran to
// completion by the time it returns.
func (w *Worker) Sync(ctx context.Context) error {
	return nil
}

func (w *Worker) CopyOutputTo(out *uint64) error {
	*out = atomic.LoadUint64(&w.foundNonce)
	return nil
}

func (w *Worker) Workload() uint64 { return w.workload }

func (w *Worker) RequiresJobs() bool { return false }

// Plugin is the CPU backend's Plugin: always enabled, configured via a
// single "cpu-threads" option (defaulting to GOMAXPROCS).
type Plugin struct {
	mu      sync.Mutex
	threads int
	specs   []worker.WorkerSpec
}

// NewPlugin returns a CPU plugin with threads defaulted to GOMAXPROCS.
func NewPlugin() *Plugin {
	return &Plugin{threads: runtime.GOMAXPROCS(0)}
}

func (p *Plugin) Name() string  { return "cpu" }
func (p *Plugin) Enabled() bool { return true }

func (p *Plugin) ProcessOption(key, value string) (int, error) {
	if key != "cpu-threads" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("cpu-threads must be a positive integer, got %q", value)
	}
	p.mu.Lock()
	p.threads = n
	p.mu.Unlock()
	log.Debug().Int("threads", n).Msg("cpu plugin: thread count overridden")
	return 1, nil
}

func (p *Plugin) GetWorkerSpecs() ([]worker.WorkerSpec, error) {
	p.mu.Lock()
	threads := p.threads
	p.mu.Unlock()
	if threads <= 0 {
		threads = 1
	}

	specs := make([]worker.WorkerSpec, threads)
	for i := 0; i < threads; i++ {
		specs[i] = cpuSpec{lane: i}
	}
	return specs, nil
}

const defaultWorkload = 1 << 20

type cpuSpec struct {
	lane int
}

func (s cpuSpec) ID() string { return fmt.Sprintf("cpu:%d", s.lane) }

func (s cpuSpec) Build() (worker.Worker, error) {
	return New(s.lane, defaultWorkload), nil
}
