package localize

import (
	"strings"
	"time"

	"vendorize/internal/fetch"
	"vendorize/internal/metrics"
)

// Outcome records one fetch-and-persist attempt.
type Outcome struct {
	// Asset is the plan name for top-level assets and the file name for nested ones.
	Asset string
	// Parent names the stylesheet a nested reference came from; empty for top-level assets.
	Parent string
	URL    string
	// Dest is slash-separated and relative to the site root.
	Dest  string
	Bytes int64
	Err   error
}

// OK reports whether the asset was fetched and persisted.
func (o Outcome) OK() bool { return o.Err == nil }

// Nested reports whether the outcome belongs to a reference found inside a stylesheet.
func (o Outcome) Nested() bool { return o.Parent != "" }

// Reason returns a short failure classification, or "" on success.
func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	if k := fetch.KindOf(o.Err); k != 0 {
		return k.String()
	}
	return "error"
}

func (o Outcome) metricLabel() string {
	if o.Err == nil {
		return metrics.OutcomeOK
	}
	return strings.ReplaceAll(o.Reason(), " ", "_")
}

// RunReport aggregates every outcome of a run in attempt order.
type RunReport struct {
	Outcomes []Outcome
	Started  time.Time
	Finished time.Time
}

// Succeeded returns the successful outcomes.
func (r *RunReport) Succeeded() []Outcome { return r.filter(true) }

// Failed returns the failed outcomes.
func (r *RunReport) Failed() []Outcome { return r.filter(false) }

// HasFailures reports whether any attempt failed.
func (r *RunReport) HasFailures() bool { return len(r.Failed()) > 0 }

// Duration is the wall time of the run.
func (r *RunReport) Duration() time.Duration { return r.Finished.Sub(r.Started) }

// TotalBytes sums the bytes persisted by successful outcomes.
func (r *RunReport) TotalBytes() int64 {
	var n int64
	for _, o := range r.Outcomes {
		if o.OK() {
			n += o.Bytes
		}
	}
	return n
}

func (r *RunReport) filter(ok bool) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.OK() == ok {
			out = append(out, o)
		}
	}
	return out
}
