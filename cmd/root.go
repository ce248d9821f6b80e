package cmd

import (
	"fmt"
	"os"

	"github.com/shivasurya/code-pathfinder/archrules/internal/telemetry"
	"github.com/shivasurya/code-pathfinder/archrules/output"
	"github.com/spf13/cobra"
)

var (
	verboseFlag bool
	Version     = "0.1.0"
	GitCommit   = "HEAD"

	// telemetryPublicKey is intentionally empty: this build ships with no
	// PostHog project key baked in, so Reporter.ReportEvent is always a
	// no-op regardless of --disable-metrics. A downstream packager can set
	// this at build time via -ldflags.
	telemetryPublicKey = ""
)

// reporter is shared by every subcommand's PersistentPreRun-derived state.
var reporter *telemetry.Reporter

var rootCmd = &cobra.Command{
	Use:   "archrules",
	Short: "Declarative architectural rule engine for statically-typed OO source",
	Long: `archrules evaluates declarative architectural rules against a codebase's
Source Model, Call Graph, and Package Dependency Graph: transaction
boundaries crossing remote calls, retry-wrapped non-idempotent operations,
layering violations, circular package dependencies, and more.

Rules are authored as JSON or YAML rule definitions and evaluated without
recompiling the engine.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		disableMetrics, _ := cmd.Flags().GetBool("disable-metrics") //nolint:all
		verboseFlag, _ = cmd.Flags().GetBool("verbose")             //nolint:all

		reporter = telemetry.NewReporter(telemetryPublicKey, Version, disableMetrics)
		reporter.LoadAnonymousID()

		// Show banner for help command
		if cmd.Name() == "help" || (len(os.Args) == 1 || (len(os.Args) == 2 && (os.Args[1] == "--help" || os.Args[1] == "-h"))) {
			noBanner, _ := cmd.Flags().GetBool("no-banner")
			logger := output.NewLogger(output.VerbosityDefault)
			if output.ShouldShowBanner(logger.IsTTY(), noBanner) {
				output.PrintBanner(logger.GetWriter(), Version, output.DefaultBannerOptions())
			} else if logger.IsTTY() && !noBanner {
				fmt.Fprintln(os.Stderr, output.GetCompactBanner(Version))
				fmt.Fprintln(os.Stderr)
			}
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("disable-metrics", false, "Disable anonymous usage metrics")
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose output")
	rootCmd.PersistentFlags().Bool("no-banner", false, "Disable startup banner")
}
