// Package metrics counts what a vendorize run did and can dump the counts in the
// Prometheus text format for a node-exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vendorize"

// Fetch kinds.
const (
	KindAsset  = "asset"
	KindNested = "nested"
)

// Document outcomes.
const (
	DocRewritten = "rewritten"
	DocUnchanged = "unchanged"
	DocFailed    = "failed"
)

// OutcomeOK labels a successful fetch.
const OutcomeOK = "ok"

// Recorder owns a private registry so tests and repeated runs never collide
// with the global default. A nil *Recorder accepts every call and records nothing.
type Recorder struct {
	registry  *prometheus.Registry
	fetches   *prometheus.CounterVec
	bytes     *prometheus.CounterVec
	documents *prometheus.CounterVec
	lastRun   prometheus.Gauge
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_total",
				Help:      "Fetch attempts by asset kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_bytes_total",
				Help:      "Bytes persisted by asset kind",
			},
			[]string{"kind"},
		),
		documents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_total",
				Help:      "HTML documents processed by outcome",
			},
			[]string{"outcome"},
		),
		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix timestamp of the last completed run",
			},
		),
	}
	r.registry.MustRegister(r.fetches, r.bytes, r.documents, r.lastRun)
	return r
}

// ObserveFetch records one fetch attempt. Bytes are only counted for successes.
func (r *Recorder) ObserveFetch(kind, outcome string, n int64) {
	if r == nil {
		return
	}
	r.fetches.WithLabelValues(kind, outcome).Inc()
	if outcome == OutcomeOK && n > 0 {
		r.bytes.WithLabelValues(kind).Add(float64(n))
	}
}

// ObserveDocument records one processed document.
func (r *Recorder) ObserveDocument(outcome string) {
	if r == nil {
		return
	}
	r.documents.WithLabelValues(outcome).Inc()
}

// MarkRun stamps the completion time of a run.
func (r *Recorder) MarkRun(t time.Time) {
	if r == nil {
		return
	}
	r.lastRun.Set(float64(t.Unix()))
}

// Registry exposes the underlying registry, e.g. for testutil.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile writes every collected metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
