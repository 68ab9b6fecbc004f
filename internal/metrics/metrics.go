// Package metrics exposes stage outcomes as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/beetlebugorg/maptopo/internal/stage"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder collects the metrics of one run in its own registry.
type Recorder struct {
	Registry *prometheus.Registry

	Events     *prometheus.CounterVec
	Unresolved *prometheus.GaugeVec
	Duration   prometheus.Gauge
}

// NewRecorder returns a recorder with every metric registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "maptopo_stage_events_total",
			Help: "Topology events per stage, e.g. healed, merged, labeled, mouths",
		}, []string{"stage", "event"}),
		Unresolved: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "maptopo_stage_unresolved",
			Help: "Features a stage left unresolved",
		}, []string{"stage"}),
		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "maptopo_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
	}
	r.Registry.MustRegister(r.Events, r.Unresolved, r.Duration)
	return r
}

// Observe records the results of a run.
func (r *Recorder) Observe(results []stage.Result, elapsed time.Duration) {
	for _, res := range results {
		name := string(res.Stage)
		for _, ev := range res.Events() {
			r.Events.WithLabelValues(name, ev).Add(float64(res.Counters[ev]))
		}
		r.Unresolved.WithLabelValues(name).Set(float64(res.Unresolved))
	}
	r.Duration.Set(elapsed.Seconds())
}

// WriteToTextfile writes the metrics in the text exposition format, for
// the node exporter textfile collector.
func (r *Recorder) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}
