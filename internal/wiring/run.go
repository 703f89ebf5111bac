// Package wiring runs the whole localization flow: fetch assets, rewrite documents,
// then audit what still points at the CDN hosts.
package wiring

import (
	"context"
	"fmt"
	"log/slog"

	"vendorize/internal/audit"
	"vendorize/internal/localize"
	"vendorize/internal/logging"
	"vendorize/internal/metrics"
	"vendorize/internal/plan"
	"vendorize/internal/rewrite"
)

// Config selects what Run does and with which collaborators.
type Config struct {
	Root    string
	Plan    *plan.Plan
	Fetcher localize.Fetcher
	Logger  *slog.Logger
	Metrics *metrics.Recorder

	SkipFetch   bool
	SkipRewrite bool
	SkipAudit   bool
	// AuditAnyHost reports every remote reference instead of only the plan's hosts.
	AuditAnyHost bool
	// AuditParallel bounds concurrent document parsing; 0 uses audit.DefaultParallel.
	AuditParallel int
}

// Summary is everything a run produced. Sections that were skipped stay nil.
type Summary struct {
	Report    *localize.RunReport
	Documents []rewrite.DocumentChange
	Findings  []audit.Finding
}

// Failed reports whether any asset or document failed.
func (s *Summary) Failed() bool {
	if s.Report != nil && s.Report.HasFailures() {
		return true
	}
	return len(rewrite.Failed(s.Documents)) > 0
}

// Run executes the flow: Validate → ListHTML → Localize → RewriteFiles → Scan.
// Only setup errors (invalid plan, unreadable root) and audit read errors are returned;
// fetch and rewrite failures are recorded on the Summary.
func Run(ctx context.Context, cfg Config) (*Summary, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	if err := cfg.Plan.Validate(); err != nil {
		return nil, err
	}
	docs, err := rewrite.ListHTML(cfg.Root)
	if err != nil {
		return nil, err
	}
	if !cfg.SkipFetch && cfg.Fetcher == nil {
		return nil, fmt.Errorf("wiring: fetcher is required")
	}

	sum := &Summary{}
	if !cfg.SkipFetch {
		loc := localize.New(cfg.Fetcher, cfg.Root,
			localize.WithLogger(logger.With("stage", "fetch")),
			localize.WithMetrics(cfg.Metrics))
		sum.Report = loc.Localize(ctx, cfg.Plan)
	}
	if !cfg.SkipRewrite {
		rw := rewrite.NewRewriter(logger.With("stage", "rewrite"), cfg.Metrics)
		sum.Documents = rw.RewriteFiles(docs, cfg.Plan.Rules())
		logger.InfoContext(ctx, "documents processed",
			"total", len(docs), "rewritten", len(rewrite.Changed(sum.Documents)))
	}
	if !cfg.SkipAudit {
		hosts := cfg.Plan.Hosts()
		if cfg.AuditAnyHost {
			hosts = nil
		}
		findings, err := audit.Scan(ctx, docs, hosts, cfg.AuditParallel)
		if err != nil {
			return sum, fmt.Errorf("audit: %w", err)
		}
		sum.Findings = findings
		if len(findings) > 0 {
			logger.WarnContext(ctx, "remote references remain", "count", len(findings), "hosts", audit.Hosts(findings))
		}
	}
	return sum, nil
}
