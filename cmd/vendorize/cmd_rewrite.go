package main

import "github.com/spf13/cobra"

func newRewriteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rewrite",
		Short: "Point documents at already downloaded assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStages(cmd, opts, true, false)
		},
	}
}
