package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/shivasurya/code-pathfinder/archrules/model"
)

// TextFormatter renders violations as human-readable CLI text. Grounded on
// the teacher's output/text_formatter.go (header, severity grouping,
// detailed-vs-abbreviated finding rendering), retargeted to model.Violation
// and this engine's BLOCKER/ERROR/WARN/INFO severity set in place of the
// teacher's critical/high/medium/low.
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a text formatter writing to w.
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes violations grouped by severity, most severe first.
func (f *TextFormatter) Format(violations []model.Violation, run RunInfo) error {
	if len(violations) == 0 {
		fmt.Fprintln(f.writer, "No architectural rule violations found.")
		return nil
	}

	fmt.Fprintf(f.writer, "Architecture rule evaluation — %s\n\n", run.Target)

	grouped := groupBySeverity(violations)
	for _, sev := range severityOrder {
		group := grouped[sev]
		if len(group) == 0 {
			continue
		}
		f.writeSeverityGroup(sev, group)
	}

	f.writeSummary(Summarize(violations), run)
	return nil
}

func groupBySeverity(violations []model.Violation) map[model.Severity][]model.Violation {
	grouped := make(map[model.Severity][]model.Violation)
	for _, v := range violations {
		grouped[v.Severity] = append(grouped[v.Severity], v)
	}
	return grouped
}

func (f *TextFormatter) writeSeverityGroup(severity model.Severity, violations []model.Violation) {
	fmt.Fprintf(f.writer, "%s (%d):\n\n", severity, len(violations))

	detailed := severity == model.SeverityBlocker || severity == model.SeverityError
	for _, v := range violations {
		if detailed {
			f.writeDetailedFinding(v)
		} else {
			f.writeAbbreviatedFinding(v)
		}
	}
	fmt.Fprintln(f.writer)
}

func (f *TextFormatter) writeDetailedFinding(v model.Violation) {
	fmt.Fprintf(f.writer, "  [%s] %s: %s\n", v.Severity, v.RuleID, v.RuleName)
	fmt.Fprintf(f.writer, "    %s\n", v.Location.String())
	fmt.Fprintf(f.writer, "    %s\n", v.Message)
	if chain := v.ChainString(); chain != "" {
		fmt.Fprintf(f.writer, "    Chain: %s\n", chain)
	}
	fmt.Fprintln(f.writer)
}

func (f *TextFormatter) writeAbbreviatedFinding(v model.Violation) {
	fmt.Fprintf(f.writer, "  [%s] %s: %s\n", v.Severity, v.RuleID, v.Location.String())
}

func (f *TextFormatter) writeSummary(summary Summary, run RunInfo) {
	fmt.Fprintln(f.writer, "Summary:")
	fmt.Fprintf(f.writer, "  %d violation(s) across %d rule(s) in %s\n",
		summary.Total, run.RulesExecuted, run.Duration.Round(0))

	var parts []string
	for _, sev := range severityOrder {
		if count := summary.BySeverity[sev]; count > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", sev, count))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(f.writer, "  %s\n", strings.Join(parts, ", "))
	}
}
