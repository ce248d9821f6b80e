package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shivasurya/code-pathfinder/archrules/internal/rulefile"
	"github.com/shivasurya/code-pathfinder/archrules/internal/telemetry"
)

var rulesDirFlag string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect rule definitions without running an analysis",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every rule definition found under --dir",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reporter.ReportEvent(telemetry.RulesListed)
		rules, loadErrs := rulefile.LoadDir(rulesDirFlag)
		for _, le := range loadErrs {
			fmt.Fprintln(os.Stderr, "rule load error:", le.Error())
		}
		sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSEVERITY\tCATEGORY\tENABLED\tNAME")
		for _, r := range rules {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", r.ID, r.Severity, r.Category, r.Enabled, r.Name)
		}
		return tw.Flush()
	},
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load every rule file under --dir and report parse errors",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rules, loadErrs := rulefile.LoadDir(rulesDirFlag)
		for _, le := range loadErrs {
			fmt.Fprintln(os.Stderr, "rule load error:", le.Error())
		}
		fmt.Printf("%d rule file(s) loaded, %d error(s)\n", len(rules), len(loadErrs))
		if len(loadErrs) > 0 {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rulesCmd.PersistentFlags().StringVar(&rulesDirFlag, "dir", "", "directory of JSON/YAML rule definitions (required)")
	_ = rulesCmd.MarkPersistentFlagRequired("dir")
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesValidateCmd)
	rootCmd.AddCommand(rulesCmd)
}
