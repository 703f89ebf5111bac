package main

import "github.com/spf13/cobra"

func newFetchCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download the planned assets without touching documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStages(cmd, opts, false, true)
		},
	}
}
