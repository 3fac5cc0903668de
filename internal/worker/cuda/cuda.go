//go:build pyrinminer_cuda

// Package cuda is the CUDA backend plugin. It is only compiled into the
// binary with the pyrinminer_cuda build tag; without it, internal/worker/cuda
// contributes only the disabled stub in stub.go so `cmd/pyrinminer` can
// always import and register this package unconditionally.
package cuda

import (
	"fmt"

	"github.com/pyrinminer/pyrinminer/internal/worker"
)

// Plugin is the CUDA backend. Device discovery, kernel compilation and
// overclocking are external collaborators this package only needs a seam
// for (spec.md Non-goals): NewPlugin below leaves devices unpopulated until
// a real CUDA binding is wired in.
type Plugin struct{}

// NewPlugin returns a CUDA plugin. Enabled() reports false until a device
// enumeration hook is wired in; the plugin still exists so CLI help and
// config parsing can reference cuda-* flags without a build-time branch.
func NewPlugin() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string  { return "cuda" }
func (p *Plugin) Enabled() bool { return false }

func (p *Plugin) ProcessOption(key, value string) (int, error) {
	if key == "cuda-device" || key == "cuda-workload" {
		return 0, fmt.Errorf("cuda backend not available in this build")
	}
	return 0, nil
}

func (p *Plugin) GetWorkerSpecs() ([]worker.WorkerSpec, error) {
	return nil, nil
}
