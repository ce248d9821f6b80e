package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shivasurya/code-pathfinder/archrules/internal/callgraph"
	"github.com/shivasurya/code-pathfinder/archrules/internal/evaluator"
	"github.com/shivasurya/code-pathfinder/archrules/internal/orchestrator"
	"github.com/shivasurya/code-pathfinder/archrules/internal/packagegraph"
	"github.com/shivasurya/code-pathfinder/archrules/internal/parseradapter"
	"github.com/shivasurya/code-pathfinder/archrules/internal/report"
	"github.com/shivasurya/code-pathfinder/archrules/internal/rulefile"
	"github.com/shivasurya/code-pathfinder/archrules/internal/telemetry"
	"github.com/shivasurya/code-pathfinder/archrules/model"
	"github.com/shivasurya/code-pathfinder/archrules/output"
)

// analyzeOptions collects analyzeCmd's flags, mirroring the teacher's
// cmd/scan.go flag struct (one field per --flag, bound in init, with
// sourcePath set from the positional argument in RunE, and consumed by
// runAnalyze).
type analyzeOptions struct {
	sourcePath      string
	rulesDir        string
	ruleIDs         []string
	format          string
	outputPath      string
	failOn          string
	includeTests    bool
	resolveSymbols  bool
	excludePatterns []string
	maxWorkers      int
	perRuleTimeout  time.Duration
	globalTimeout   time.Duration
}

var analyzeOpts analyzeOptions

var analyzeCmd = &cobra.Command{
	Use:   "analyze <source-path>",
	Short: "Evaluate architectural rules against a source tree",
	Long: `analyze parses a source tree into a Source Model, builds the Call Graph
and Package Dependency Graph, loads rule definitions from --rules, and runs
the Rule Evaluation Engine over every enabled (or explicitly selected) rule,
reporting violations as text, JSON, or SARIF.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		analyzeOpts.sourcePath = args[0]
		return runAnalyze(cmd, analyzeOpts)
	},
}

func init() {
	flags := analyzeCmd.Flags()
	flags.StringVar(&analyzeOpts.rulesDir, "rules", "", "directory of JSON/YAML rule definitions (required)")
	flags.StringSliceVar(&analyzeOpts.ruleIDs, "rule-id", nil, "restrict evaluation to these rule ids (repeatable); empty means all enabled rules")
	flags.StringVar(&analyzeOpts.format, "format", "text", "output format: text|json|sarif")
	flags.StringVar(&analyzeOpts.outputPath, "output", "", "write the report to this file instead of stdout")
	flags.StringVar(&analyzeOpts.failOn, "fail-on", "blocker,error", "comma-separated severities that cause a non-zero exit (empty disables)")
	flags.BoolVar(&analyzeOpts.includeTests, "include-tests", false, "include test source files in the parse")
	flags.BoolVar(&analyzeOpts.resolveSymbols, "resolve-symbols", true, "best-effort resolve call-site receivers to FQNs")
	flags.StringSliceVar(&analyzeOpts.excludePatterns, "exclude", nil, "substring patterns excluding files from the parse (repeatable)")
	flags.IntVar(&analyzeOpts.maxWorkers, "max-workers", 0, "bound the rule-evaluation worker pool (0 = auto)")
	flags.DurationVar(&analyzeOpts.perRuleTimeout, "rule-timeout", 30*time.Second, "per-rule evaluation deadline")
	flags.DurationVar(&analyzeOpts.globalTimeout, "timeout", 0, "overall analysis deadline (0 = none)")
	_ = analyzeCmd.MarkFlagRequired("rules")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, opts analyzeOptions) error {
	logger := output.NewLogger(verbosityFromFlag())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var cancel context.CancelFunc
	if opts.globalTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, opts.globalTimeout)
		defer cancel()
	}

	reporter.ReportEvent(telemetry.AnalyzeStarted)

	stopParse := logger.StartTiming("parse")
	parseResult, err := parseradapter.Parse(ctx, opts.sourcePath, parseradapter.Options{
		IncludeTests:    opts.includeTests,
		ResolveSymbols:  opts.resolveSymbols,
		ExcludePatterns: opts.excludePatterns,
		ShowProgress:    logger.IsTTY(),
	})
	stopParse()
	if err != nil {
		reporter.ReportEvent(telemetry.AnalyzeFailed)
		return fmt.Errorf("parsing %s: %w", opts.sourcePath, err)
	}
	sm := parseResult.SourceModel
	logger.Progress("parsed %d files (%d failed), %d types, %d methods", parseResult.Stats.FilesParsed, parseResult.Stats.FilesFailed, len(sm.AllTypes()), len(sm.AllMethods()))
	for _, diag := range sm.Diagnostics() {
		logger.Debug("resolution diagnostic: %s", diag.Message)
	}

	cg := buildCallGraph(parseResult)
	pg := buildPackageGraph(sm)

	rules, loadErrs := rulefile.LoadDir(opts.rulesDir)
	for _, le := range loadErrs {
		logger.Warning("rule load error: %s", le.Error())
	}
	rules = selectRules(rules, opts.ruleIDs)
	rules = orchestrator.SortedByID(rules)
	if len(rules) == 0 {
		logger.Warning("no enabled rules selected from %s", opts.rulesDir)
	}

	registry := evaluator.NewDefaultRegistry()

	runOpts := orchestrator.Options{
		MaxWorkers:     opts.maxWorkers,
		PerRuleTimeout: opts.perRuleTimeout,
	}
	stopEval := logger.StartTiming("evaluate")
	runReport := orchestrator.Run(ctx, sm, cg, pg, rules, registry, runOpts)
	stopEval()
	logger.PrintTimingSummary()

	failOn, err := report.ParseFailOn(opts.failOn)
	if err != nil {
		return err
	}

	var errMessages []string
	for _, r := range runReport.Results {
		if r.Status == evaluator.StatusError {
			errMessages = append(errMessages, fmt.Sprintf("%s: %s", r.RuleID, r.ErrorMessage))
		}
	}

	runInfo := report.RunInfo{
		RunID:         runReport.RunID,
		Target:        opts.sourcePath,
		ToolVersion:   Version,
		Duration:      time.Duration(runReport.Stats.DurationMs) * time.Millisecond,
		RulesExecuted: runReport.Stats.RulesExecuted,
		FilesAnalyzed: runReport.Stats.Files,
		Errors:        errMessages,
	}

	w := os.Stdout
	if opts.outputPath != "" {
		f, err := os.Create(opts.outputPath)
		if err != nil {
			return fmt.Errorf("creating output file %s: %w", opts.outputPath, err)
		}
		defer f.Close()
		if err := formatReport(opts.format, f, runReport.Violations, runInfo); err != nil {
			return err
		}
	} else if err := formatReport(opts.format, w, runReport.Violations, runInfo); err != nil {
		return err
	}

	exitCode := report.DetermineExitCode(runReport.Violations, failOn, runReport.HadErrors)
	reporter.ReportEventWithProperties(telemetry.AnalyzeCompleted, map[string]interface{}{
		"violations": len(runReport.Violations),
		"rules":      runReport.Stats.RulesExecuted,
		"exit_code":  int(exitCode),
	})
	if exitCode != report.ExitCodeSuccess {
		os.Exit(int(exitCode))
	}
	return nil
}

// buildCallGraph marks every Source Model method as application-defined,
// replays the parser adapter's resolved call edges, expands interface
// dispatch, and freezes -- mirroring spec §4.2's "applicationMethods equals
// the set of method FQNs defined inside the analyzed sources" invariant.
func buildCallGraph(parseResult *parseradapter.Result) *callgraph.Graph {
	b := callgraph.NewBuilder()
	for _, m := range parseResult.SourceModel.AllMethods() {
		b.MarkApplicationMethod(m.Fqn)
	}
	for _, e := range parseResult.CallEdges {
		b.AddEdge(e)
	}
	b.ExpandInterfaceDispatch(parseResult.SourceModel)
	return b.Freeze()
}

// buildPackageGraph derives the Package Dependency Graph from the frozen
// Source Model's supertype/interface/field/call relationships (spec §4.3).
func buildPackageGraph(sm *model.SourceModel) *packagegraph.Graph {
	b := packagegraph.NewBuilder()
	b.FromSourceModel(sm)
	return b.Freeze()
}

func selectRules(rules []rulefile.RuleDefinition, ids []string) []rulefile.RuleDefinition {
	repo := rulefile.NewMemoryRepository(rules)
	if len(ids) == 0 {
		return repo.FindEnabled()
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[strings.TrimSpace(id)] = true
	}
	var selected []rulefile.RuleDefinition
	for _, r := range rules {
		if wanted[r.ID] {
			selected = append(selected, r)
		}
	}
	return selected
}

func formatReport(format string, w *os.File, violations []model.Violation, run report.RunInfo) error {
	switch strings.ToLower(format) {
	case "json":
		return report.NewJSONFormatter(w).Format(violations, run)
	case "sarif":
		return report.NewSARIFFormatter(w).Format(violations, run)
	case "text", "":
		return report.NewTextFormatter(w).Format(violations, run)
	default:
		return fmt.Errorf("unknown --format %q (want text, json, or sarif)", format)
	}
}

func verbosityFromFlag() output.VerbosityLevel {
	if verboseFlag {
		return output.VerbosityVerbose
	}
	return output.VerbosityDefault
}
