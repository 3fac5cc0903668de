//go:build !pyrinminer_cuda

package cuda

import "github.com/pyrinminer/pyrinminer/internal/worker"

// Plugin is the disabled stand-in used when this binary was built without
// the pyrinminer_cuda tag. Registering it unconditionally in cmd/pyrinminer
// means CLI help can always list "cuda" as a known-but-maybe-unavailable
// backend rather than needing a build-time conditional at the call site.
type Plugin struct{}

// NewPlugin returns the disabled CUDA plugin stand-in.
func NewPlugin() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string  { return "cuda" }
func (p *Plugin) Enabled() bool { return false }

func (p *Plugin) ProcessOption(key, value string) (int, error) { return 0, nil }

func (p *Plugin) GetWorkerSpecs() ([]worker.WorkerSpec, error) { return nil, nil }
