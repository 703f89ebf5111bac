package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vendorize/internal/wiring"
)

func newVerifyCmd(opts *globalOptions) *cobra.Command {
	var anyHost bool
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Fail when documents still load scripts or stylesheets from the planned CDN hosts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := opts.baseConfig(false)
			if err != nil {
				return err
			}
			cfg.SkipFetch = true
			cfg.SkipRewrite = true
			cfg.AuditAnyHost = anyHost

			sum, err := wiring.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			opts.printSummary(cmd.OutOrStdout(), sum)
			if len(sum.Findings) > 0 {
				return errRemote
			}
			fmt.Fprintln(cmd.OutOrStdout(), "No remote references found.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&anyHost, "any-host", false, "Report references to any remote host, not only the planned ones")
	return cmd
}
