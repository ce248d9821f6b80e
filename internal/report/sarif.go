package report

import (
	"encoding/json"
	"io"

	sarif "github.com/owenrumney/go-sarif/v2/sarif"
	"github.com/shivasurya/code-pathfinder/archrules/model"
)

// SARIFFormatter renders violations as SARIF 2.1.0, for GitHub code-scanning
// and other SARIF-consuming tooling. Grounded 1:1 on the teacher's
// output/sarif_formatter.go, retargeted from dsl.EnrichedDetection to
// model.Violation and from security CWE/OWASP metadata to a rule's call
// chain as the SARIF code-flow.
type SARIFFormatter struct {
	writer io.Writer
}

// NewSARIFFormatter creates a SARIF formatter writing to w.
func NewSARIFFormatter(w io.Writer) *SARIFFormatter {
	return &SARIFFormatter{writer: w}
}

// Format writes violations as a single SARIF run to the formatter's writer.
func (f *SARIFFormatter) Format(violations []model.Violation, run RunInfo) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}

	sarifRun := sarif.NewRunWithInformationURI("archrules", "https://github.com/shivasurya/code-pathfinder")

	f.buildRules(violations, sarifRun)
	for _, v := range violations {
		f.buildResult(v, sarifRun)
	}

	report.AddRun(sarifRun)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func (f *SARIFFormatter) buildRules(violations []model.Violation, run *sarif.Run) {
	seen := make(map[string]bool)
	for _, v := range violations {
		if seen[v.RuleID] {
			continue
		}
		seen[v.RuleID] = true

		sarifRule := run.AddRule(v.RuleID).
			WithName(v.RuleName).
			WithHelpURI("https://github.com/shivasurya/code-pathfinder")
		sarifRule.WithDefaultConfiguration(
			sarif.NewReportingConfiguration().WithLevel(severityToLevel(v.Severity)),
		)
	}
}

func (f *SARIFFormatter) buildResult(v model.Violation, run *sarif.Run) {
	message := v.Message
	if v.ChainString() != "" {
		message += " (chain: " + v.ChainString() + ")"
	}

	result := run.CreateResultForRule(v.RuleID).
		WithMessage(sarif.NewTextMessage(message))

	region := sarif.NewRegion().WithStartLine(v.Location.StartLine)
	if v.Location.StartCol > 0 {
		region.WithStartColumn(v.Location.StartCol)
	}
	location := sarif.NewLocation().
		WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(v.Location.FilePath)).
				WithRegion(region),
		)
	result.AddLocation(location)

	if len(v.CallChain) > 1 {
		f.addCodeFlow(v, result)
	}
}

// addCodeFlow renders the violation's call chain as a single SARIF thread
// flow, one location per FQN in the chain. Only the entry's location is
// known precisely (intermediate chain nodes are FQNs, not locations), so
// every flow location shares the entry's physical location and is
// distinguished by message text only.
func (f *SARIFFormatter) addCodeFlow(v model.Violation, result *sarif.Result) {
	var locations []*sarif.ThreadFlowLocation
	for _, fqn := range v.CallChain {
		loc := sarif.NewLocation().
			WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(v.Location.FilePath)).
					WithRegion(sarif.NewRegion().WithStartLine(v.Location.StartLine)),
			).
			WithMessage(sarif.NewTextMessage(fqn))
		locations = append(locations, sarif.NewThreadFlowLocation().WithLocation(loc))
	}

	threadFlow := sarif.NewThreadFlow().WithLocations(locations)
	codeFlow := sarif.NewCodeFlow().
		WithThreadFlows([]*sarif.ThreadFlow{threadFlow}).
		WithMessage(sarif.NewTextMessage("Call chain: " + v.ChainString()))

	result.WithCodeFlows([]*sarif.CodeFlow{codeFlow})
}

func severityToLevel(sev model.Severity) string {
	switch sev {
	case model.SeverityBlocker, model.SeverityError:
		return "error"
	case model.SeverityWarn:
		return "warning"
	default:
		return "note"
	}
}
