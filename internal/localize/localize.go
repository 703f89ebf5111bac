// Package localize downloads every asset of a plan into the site root.
//
// Assets are processed strictly in plan order, one request at a time. A stylesheet
// with nested references is buffered so its url(...) references can be extracted,
// persisted, and then each reference is fetched on its own. No failure aborts the run.
package localize

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"vendorize/internal/atomicfile"
	"vendorize/internal/cssref"
	"vendorize/internal/fetch"
	"vendorize/internal/logging"
	"vendorize/internal/metrics"
	"vendorize/internal/plan"
)

// Fetcher is the subset of fetch.Client the localizer drives.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	FetchToFile(ctx context.Context, url, dest string) (int64, error)
}

var _ Fetcher = (*fetch.Client)(nil)

// Localizer executes plans against a site root.
type Localizer struct {
	fetcher Fetcher
	root    string
	logger  *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

// Option configures a Localizer.
type Option func(*Localizer)

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(loc *Localizer) { loc.logger = l }
}

// WithMetrics records fetch counts into rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(loc *Localizer) { loc.metrics = rec }
}

// New returns a Localizer writing below root.
func New(f Fetcher, root string, opts ...Option) *Localizer {
	loc := &Localizer{
		fetcher: f,
		root:    root,
		logger:  logging.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(loc)
	}
	return loc
}

// Localize attempts every asset of p and returns the outcomes. It never returns early:
// a failed top-level fetch only skips that asset's persist and nested references.
func (l *Localizer) Localize(ctx context.Context, p *plan.Plan) *RunReport {
	report := &RunReport{Started: l.now()}
	l.logger.InfoContext(ctx, "starting asset localization", "assets", len(p.Assets), "root", l.root)

	l.ensureDirs(ctx, p.Dirs())

	for _, a := range p.Assets {
		if a.Nested == nil {
			report.Outcomes = append(report.Outcomes, l.stream(ctx, a))
			continue
		}
		report.Outcomes = append(report.Outcomes, l.stylesheet(ctx, a)...)
	}

	report.Finished = l.now()
	l.metrics.MarkRun(report.Finished)
	l.logger.InfoContext(ctx, "asset localization complete",
		"succeeded", len(report.Succeeded()), "failed", len(report.Failed()))
	return report
}

func (l *Localizer) ensureDirs(ctx context.Context, dirs []string) {
	for _, d := range dirs {
		if err := os.MkdirAll(l.abs(d), 0o755); err != nil {
			// The writes into d will fail and be reported per asset.
			l.logger.ErrorContext(ctx, "create directory", "dir", d, "error", err)
		}
	}
}

func (l *Localizer) stream(ctx context.Context, a plan.AssetSpec) Outcome {
	l.logger.InfoContext(ctx, "downloading", "asset", a.Name, "url", a.URL)
	o := Outcome{Asset: a.Name, URL: a.URL, Dest: a.Dest}
	o.Bytes, o.Err = l.fetcher.FetchToFile(ctx, a.URL, l.abs(a.Dest))
	l.record(ctx, metrics.KindAsset, o)
	return o
}

// stylesheet buffers a, persists it, then fetches each nested reference.
func (l *Localizer) stylesheet(ctx context.Context, a plan.AssetSpec) []Outcome {
	l.logger.InfoContext(ctx, "processing stylesheet", "asset", a.Name, "url", a.URL)
	top := Outcome{Asset: a.Name, URL: a.URL, Dest: a.Dest}

	data, err := l.fetcher.Fetch(ctx, a.URL)
	if err != nil {
		top.Err = err
		l.record(ctx, metrics.KindAsset, top)
		return []Outcome{top}
	}

	refs := cssref.Extract(string(data), a.Nested.RefPrefix())
	l.logger.InfoContext(ctx, "found nested references", "asset", a.Name, "count", len(refs))

	if err := atomicfile.WriteFile(l.abs(a.Dest), data, atomicfile.DefaultPerm); err != nil {
		top.Err = fetch.Filesystem(a.URL, err)
	} else {
		top.Bytes = int64(len(data))
	}
	l.record(ctx, metrics.KindAsset, top)

	outcomes := make([]Outcome, 0, len(refs)+1)
	outcomes = append(outcomes, top)
	for _, name := range refs {
		o := Outcome{
			Asset:  name,
			Parent: a.Name,
			URL:    a.Nested.URLFor(name),
		}
		if err := plan.CheckRefName(name); err != nil {
			o.Err = fetch.Filesystem(o.URL, err)
			l.record(ctx, metrics.KindNested, o)
			outcomes = append(outcomes, o)
			continue
		}
		o.Dest = a.Nested.DestFor(name)
		l.logger.DebugContext(ctx, "downloading", "asset", name, "url", o.URL)
		o.Bytes, o.Err = l.fetcher.FetchToFile(ctx, o.URL, l.abs(o.Dest))
		l.record(ctx, metrics.KindNested, o)
		outcomes = append(outcomes, o)
	}
	return outcomes
}

func (l *Localizer) record(ctx context.Context, kind string, o Outcome) {
	l.metrics.ObserveFetch(kind, o.metricLabel(), o.Bytes)
	if o.Err != nil {
		l.logger.ErrorContext(ctx, "asset failed", "asset", o.Asset, "url", o.URL, "reason", o.Reason(), "error", o.Err)
		return
	}
	l.logger.InfoContext(ctx, "asset saved", "asset", o.Asset, "dest", o.Dest, "bytes", o.Bytes)
}

func (l *Localizer) abs(rel string) string {
	return filepath.Join(l.root, filepath.FromSlash(rel))
}
