//go:build !pyrinminer_opencl

package opencl

import "github.com/pyrinminer/pyrinminer/internal/worker"

// Plugin is the disabled stand-in used when this binary was built without
// the pyrinminer_opencl tag.
type Plugin struct{}

// NewPlugin returns the disabled OpenCL plugin stand-in.
func NewPlugin() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string  { return "opencl" }
func (p *Plugin) Enabled() bool { return false }

func (p *Plugin) ProcessOption(key, value string) (int, error) { return 0, nil }

func (p *Plugin) GetWorkerSpecs() ([]worker.WorkerSpec, error) { return nil, nil }
