// Package report formats rule-evaluation results for human and machine
// consumption and derives the CLI's exit code from them.
//
// Grounded on the teacher's output package (json_formatter.go,
// sarif_formatter.go, text_formatter.go, exit_code.go), retargeted from its
// dsl.EnrichedDetection security-finding shape to this engine's
// model.Violation shape. Logger/banner/TTY concerns live in the output
// package; formatters here only need an io.Writer.
package report

import (
	"time"

	"github.com/shivasurya/code-pathfinder/archrules/model"
)

// RunInfo carries the scan-level metadata every formatter prepends to its
// output: what was analyzed, how long it took, and how many rules ran.
type RunInfo struct {
	RunID         string
	Target        string
	ToolVersion   string
	Duration      time.Duration
	RulesExecuted int
	FilesAnalyzed int
	Errors        []string
}

// Summary aggregates violation counts by severity, mirroring the teacher's
// JSONSummary/statistics block.
type Summary struct {
	Total      int
	BySeverity map[model.Severity]int
}

// Summarize computes a Summary over a violation set.
func Summarize(violations []model.Violation) Summary {
	s := Summary{BySeverity: make(map[model.Severity]int)}
	for _, v := range violations {
		s.Total++
		s.BySeverity[v.Severity]++
	}
	return s
}

// severityOrder is the fixed display order used by every formatter,
// most-severe first, matching the teacher's "critical, high, medium, low"
// text-formatter grouping generalized to this engine's severity set.
var severityOrder = []model.Severity{
	model.SeverityBlocker,
	model.SeverityError,
	model.SeverityWarn,
	model.SeverityInfo,
}
