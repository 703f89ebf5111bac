// vendorize downloads a static site's CDN assets into the site and rewrites its HTML
// documents to reference the local copies.
//
// Usage:
//
//	vendorize run     [--root=<dir>] [--manifest=<file>]
//	vendorize fetch   [--root=<dir>] [--manifest=<file>]
//	vendorize rewrite [--root=<dir>] [--manifest=<file>]
//	vendorize verify  [--root=<dir>] [--any-host]
//	vendorize plan    [--yaml]
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"vendorize/internal/fetch"
	"vendorize/internal/format"
	"vendorize/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

type globalOptions struct {
	root         string
	manifest     string
	logLevel     string
	logFormat    string
	summary      string
	metricsFile  string
	timeout      time.Duration
	maxRedirects int
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "vendorize",
		Short: "Localize CDN assets of a static site",
		Long: "vendorize fetches the third-party scripts, stylesheets and webfonts a static site\n" +
			"loads from CDNs, stores them under assets/, and rewrites the HTML documents to use them.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return logging.Init(logging.Options{
				Level:  opts.logLevel,
				Format: opts.logFormat,
				Output: cmd.ErrOrStderr(),
			})
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.root, "root", envOrDefault("VENDORIZE_ROOT", "."), "Site root containing the HTML documents")
	f.StringVar(&opts.manifest, "manifest", os.Getenv("VENDORIZE_MANIFEST"), "Asset manifest (YAML/JSON); built-in plan when empty")
	f.StringVar(&opts.logLevel, "log-level", envOrDefault("VENDORIZE_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	f.StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")
	f.StringVar(&opts.summary, "summary", "ascii", "Summary table format: ascii or markdown")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
	f.DurationVar(&opts.timeout, "timeout", fetch.DefaultTimeout, "Per-request timeout")
	f.IntVar(&opts.maxRedirects, "max-redirects", fetch.DefaultMaxRedirects, "Redirects followed per request")

	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newFetchCmd(opts))
	root.AddCommand(newRewriteCmd(opts))
	root.AddCommand(newVerifyCmd(opts))
	root.AddCommand(newPlanCmd(opts))
	return root
}

func (o *globalOptions) mode() format.Mode { return format.ParseMode(o.summary) }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
