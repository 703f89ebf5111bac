package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vendorize/internal/format"
)

func newPlanCmd(opts *globalOptions) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the assets that would be fetched",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := opts.loadPlan()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asYAML {
				data, err := p.YAML()
				if err != nil {
					return fmt.Errorf("render manifest: %w", err)
				}
				_, err = out.Write(data)
				return err
			}
			fmt.Fprintln(out, format.Plan(p, opts.mode()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the plan as a manifest that --manifest accepts")
	return cmd
}
