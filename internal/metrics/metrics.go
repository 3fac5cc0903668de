// Package metrics exposes a Prometheus /metrics endpoint over the teacher's
// gorilla/mux router (internal/rpc/server.go and the old internal/miner/pool.go
// both route HTTP through mux), enrichment grounded on weisyn-go-weisyn's use
// of prometheus/client_golang for node-level counters.
package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the fixed set of counters/gauges this miner reports.
type Metrics struct {
	HashesTotal     prometheus.Counter
	SolutionsTotal  prometheus.Counter
	RejectedTotal   prometheus.Counter
	HashrateGauge   prometheus.Gauge
	ActiveWorkers   prometheus.Gauge
	TemplateAge     prometheus.Gauge
}

// Current is the process-wide Metrics instance, set by New. Client adapters
// (internal/client/grpc, internal/client/stratum) record solution/rejection
// counts through it rather than threading a *Metrics value through every
// constructor; it is nil until New runs, so every call site guards on that.
var Current *Metrics

// New registers and returns the miner's metrics against the default
// registry.
func New() *Metrics {
	m := &Metrics{
		HashesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "pyrinminer",
			Name:      "hashes_total",
			Help:      "Total hashes computed across all workers.",
		}),
		SolutionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "pyrinminer",
			Name:      "solutions_total",
			Help:      "Total solutions accepted by the upstream node or pool.",
		}),
		RejectedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "pyrinminer",
			Name:      "rejected_total",
			Help:      "Total solutions rejected by the upstream node or pool.",
		}),
		HashrateGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "pyrinminer",
			Name:      "hashrate",
			Help:      "Current aggregate hashrate in hashes per second.",
		}),
		ActiveWorkers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "pyrinminer",
			Name:      "active_workers",
			Help:      "Number of workers currently running.",
		}),
		TemplateAge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "pyrinminer",
			Name:      "template_age_seconds",
			Help:      "Seconds since the current template was received.",
		}),
	}
	Current = m
	return m
}

// Serve starts the metrics HTTP server on addr, blocking until it exits.
func Serve(addr string) error {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, r)
}
