package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"vendorize/internal/fetch"
	"vendorize/internal/format"
	"vendorize/internal/logging"
	"vendorize/internal/metrics"
	"vendorize/internal/plan"
	"vendorize/internal/wiring"
)

var (
	errFailures = errors.New("one or more assets or documents failed")
	errRemote   = errors.New("documents still reference remote assets")
)

// envOrDefault returns $key, or fallback when it is unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (o *globalOptions) loadPlan() (*plan.Plan, error) {
	if o.manifest == "" {
		return plan.Default(), nil
	}
	p, err := plan.Load(o.manifest)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	return p, nil
}

func (o *globalOptions) newFetcher() (*fetch.Client, error) {
	return fetch.New(
		fetch.WithTimeout(o.timeout),
		fetch.WithMaxRedirects(o.maxRedirects),
		fetch.WithUserAgent("vendorize/"+version),
		fetch.WithLogger(logging.New("fetch")),
	)
}

// baseConfig resolves the plan and, when fetching, the HTTP client.
func (o *globalOptions) baseConfig(withFetcher bool) (wiring.Config, *metrics.Recorder, error) {
	p, err := o.loadPlan()
	if err != nil {
		return wiring.Config{}, nil, err
	}
	var rec *metrics.Recorder
	if o.metricsFile != "" {
		rec = metrics.New()
	}
	cfg := wiring.Config{
		Root:    o.root,
		Plan:    p,
		Logger:  logging.New("vendorize"),
		Metrics: rec,
	}
	if withFetcher {
		client, err := o.newFetcher()
		if err != nil {
			return wiring.Config{}, nil, err
		}
		cfg.Fetcher = client
	}
	return cfg, rec, nil
}

func (o *globalOptions) writeMetrics(rec *metrics.Recorder) error {
	if o.metricsFile == "" {
		return nil
	}
	if err := rec.WriteTextfile(o.metricsFile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// printSummary writes the non-nil sections of sum to w.
func (o *globalOptions) printSummary(w io.Writer, sum *wiring.Summary) {
	if sum == nil {
		return
	}
	if sum.Report != nil {
		fmt.Fprintln(w, format.RunReport(sum.Report, o.mode()))
	}
	if sum.Documents != nil {
		fmt.Fprintln(w, format.Documents(sum.Documents, o.root, o.mode()))
	}
	if len(sum.Findings) > 0 {
		fmt.Fprintln(w, format.Findings(sum.Findings, o.root, o.mode()))
	}
}
