package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder observes tool runs
type Recorder interface {
	ObserveRun(tool, status string, d time.Duration)
	AddRows(tool, direction string, n int)
}

// NopRecorder ignores all observations
type NopRecorder struct{}

func (NopRecorder) ObserveRun(string, string, time.Duration) {}
func (NopRecorder) AddRows(string, string, int)              {}

// Prometheus exposes tool metrics on its own registry
type Prometheus struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rows     *prometheus.CounterVec
}

// NewPrometheus registers the tool collectors plus Go and process collectors
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storeplan_tool_runs_total",
			Help: "Tool runs by tool and outcome",
		}, []string{"tool", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storeplan_tool_run_duration_seconds",
			Help:    "Wall time of tool runs",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storeplan_tool_rows_total",
			Help: "Rows read from inputs or written to outputs",
		}, []string{"tool", "direction"}),
	}
	p.registry.MustRegister(
		p.runs, p.duration, p.rows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// ObserveRun counts a finished run and records its duration
func (p *Prometheus) ObserveRun(tool, status string, d time.Duration) {
	p.runs.WithLabelValues(tool, status).Inc()
	p.duration.WithLabelValues(tool).Observe(d.Seconds())
}

// AddRows counts rows read ("in") or written ("out")
func (p *Prometheus) AddRows(tool, direction string, n int) {
	p.rows.WithLabelValues(tool, direction).Add(float64(n))
}

// Registry returns the underlying registry
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
