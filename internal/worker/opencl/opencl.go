//go:build pyrinminer_opencl

// Package opencl is the OpenCL backend plugin, mirroring internal/worker/cuda:
// compiled in only under the pyrinminer_opencl build tag.
package opencl

import (
	"fmt"

	"github.com/pyrinminer/pyrinminer/internal/worker"
)

// Plugin is the OpenCL backend. Platform/device enumeration and kernel
// compilation are external collaborators (spec.md Non-goals: GPU driver
// init); this package only needs the seam.
type Plugin struct{}

// NewPlugin returns an OpenCL plugin, disabled until a real binding is wired in.
func NewPlugin() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string  { return "opencl" }
func (p *Plugin) Enabled() bool { return false }

func (p *Plugin) ProcessOption(key, value string) (int, error) {
	if key == "opencl-platform" || key == "opencl-device" {
		return 0, fmt.Errorf("opencl backend not available in this build")
	}
	return 0, nil
}

func (p *Plugin) GetWorkerSpecs() ([]worker.WorkerSpec, error) {
	return nil, nil
}
