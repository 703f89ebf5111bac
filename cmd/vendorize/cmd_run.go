package main

import (
	"github.com/spf13/cobra"

	"vendorize/internal/wiring"
)

func newRunCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Fetch every asset, rewrite documents, and report leftovers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStages(cmd, opts, false, false)
		},
	}
}

// runStages drives wiring.Run for the fetch/rewrite subset a command wants.
func runStages(cmd *cobra.Command, opts *globalOptions, skipFetch, skipRewrite bool) error {
	cfg, rec, err := opts.baseConfig(!skipFetch)
	if err != nil {
		return err
	}
	cfg.SkipFetch = skipFetch
	cfg.SkipRewrite = skipRewrite
	cfg.SkipAudit = skipRewrite

	sum, err := wiring.Run(cmd.Context(), cfg)
	opts.printSummary(cmd.OutOrStdout(), sum)
	// Counters from stages that completed before an audit error are still written.
	if sum != nil {
		if merr := opts.writeMetrics(rec); merr != nil && err == nil {
			err = merr
		}
	}
	if err != nil {
		return err
	}
	if sum.Failed() {
		return errFailures
	}
	return nil
}
