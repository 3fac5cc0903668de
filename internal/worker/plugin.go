package worker

// WorkerSpec is a cheap, clonable, constructor-like descriptor: the
// expensive Worker it describes is only built when Build is called.
type WorkerSpec interface {
	// ID identifies this spec, e.g. "cpu:3" or "cuda:0".
	ID() string
	// Build constructs the (expensive) Worker this spec describes.
	Build() (Worker, error)
}

// Plugin is a discoverable backend. The PluginManager is the registry that
// merges every registered plugin's backend-specific configuration options
// into a single configuration surface.
type Plugin interface {
	// Name identifies the backend, e.g. "cpu", "cuda", "opencl".
	Name() string
	// Enabled reports whether this backend is usable on this build/host
	// (e.g. a CUDA plugin compiled without cgo, or with no device present).
	Enabled() bool
	// ProcessOption parses a single backend-specific "key=value" option. It
	// returns a non-zero count when this plugin claimed the option, zero and
	// nil when the option is not this plugin's, and an error when the option
	// is this plugin's but cannot be applied.
	ProcessOption(key, value string) (int, error)
	// GetWorkerSpecs returns every WorkerSpec this plugin has accumulated
	// from ProcessOption calls (plus any default specs for config-free
	// backends like CPU).
	GetWorkerSpecs() ([]WorkerSpec, error)
}

// Registry is the PluginManager: a static, compile-time list of plugins this
// binary was built with. Unlike a dynamically loaded plugin system, backends
// are selected at build time via build tags (internal/worker/cuda,
// internal/worker/opencl) and registered here unconditionally; Enabled()
// governs whether a registered-but-unsupported backend actually contributes
// specs.
type Registry struct {
	plugins []Plugin
}

// NewRegistry builds a registry from a fixed set of plugins.
func NewRegistry(plugins ...Plugin) *Registry {
	return &Registry{plugins: plugins}
}

// ProcessOption forwards a "key=value" option to every enabled plugin and
// returns the sum of their counts, stopping at the first plugin that
// returns an error.
func (r *Registry) ProcessOption(key, value string) (int, error) {
	total := 0
	for _, p := range r.plugins {
		if !p.Enabled() {
			continue
		}
		n, err := p.ProcessOption(key, value)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// AllSpecs collects WorkerSpecs from every enabled plugin.
func (r *Registry) AllSpecs() ([]WorkerSpec, error) {
	var specs []WorkerSpec
	for _, p := range r.plugins {
		if !p.Enabled() {
			continue
		}
		s, err := p.GetWorkerSpecs()
		if err != nil {
			return nil, err
		}
		specs = append(specs, s...)
	}
	return specs, nil
}

// Plugins returns the registered plugins, enabled or not (useful for CLI
// help text listing every backend this binary was compiled with).
func (r *Registry) Plugins() []Plugin {
	return r.plugins
}
