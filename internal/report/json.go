package report

import (
	"encoding/json"
	"io"

	"github.com/shivasurya/code-pathfinder/archrules/model"
)

// JSONFormatter renders violations as a single JSON document. Grounded on
// the teacher's output/json_formatter.go shape (tool/scan/results/summary),
// field names generalized from security-finding vocabulary to this
// engine's rule-violation vocabulary.
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a JSON formatter writing to w.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

type jsonOutput struct {
	Tool    jsonTool     `json:"tool"`
	Run     jsonRun      `json:"run"`
	Results []jsonResult `json:"results"`
	Summary jsonSummary  `json:"summary"`
	Errors  []string     `json:"errors,omitempty"`
}

type jsonTool struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	URL     string `json:"url"`
}

type jsonRun struct {
	RunID         string  `json:"runId"`
	Target        string  `json:"target"`
	DurationSec   float64 `json:"durationSeconds"`
	RulesExecuted int     `json:"rulesExecuted"`
	FilesAnalyzed int     `json:"filesAnalyzed"`
}

type jsonResult struct {
	RuleID    string                 `json:"ruleId"`
	RuleName  string                 `json:"ruleName"`
	Severity  string                 `json:"severity"`
	Message   string                 `json:"message"`
	Location  jsonLocation           `json:"location"`
	CallChain []string               `json:"callChain,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

type jsonLocation struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startColumn,omitempty"`
	EndLine   int    `json:"endLine,omitempty"`
	EndCol    int    `json:"endColumn,omitempty"`
}

type jsonSummary struct {
	Total      int            `json:"total"`
	BySeverity map[string]int `json:"bySeverity"`
}

// Format writes violations as JSON to the formatter's writer.
func (f *JSONFormatter) Format(violations []model.Violation, run RunInfo) error {
	out := jsonOutput{
		Tool: jsonTool{
			Name:    "archrules",
			Version: run.ToolVersion,
			URL:     "https://github.com/shivasurya/code-pathfinder",
		},
		Run: jsonRun{
			RunID:         run.RunID,
			Target:        run.Target,
			DurationSec:   run.Duration.Seconds(),
			RulesExecuted: run.RulesExecuted,
			FilesAnalyzed: run.FilesAnalyzed,
		},
		Results: make([]jsonResult, 0, len(violations)),
		Errors:  run.Errors,
	}

	summary := Summarize(violations)
	out.Summary = jsonSummary{Total: summary.Total, BySeverity: make(map[string]int, len(summary.BySeverity))}
	for sev, count := range summary.BySeverity {
		out.Summary.BySeverity[string(sev)] = count
	}

	for _, v := range violations {
		out.Results = append(out.Results, jsonResult{
			RuleID:   v.RuleID,
			RuleName: v.RuleName,
			Severity: string(v.Severity),
			Message:  v.Message,
			Location: jsonLocation{
				File:      v.Location.FilePath,
				StartLine: v.Location.StartLine,
				StartCol:  v.Location.StartCol,
				EndLine:   v.Location.EndLine,
				EndCol:    v.Location.EndCol,
			},
			CallChain: v.CallChain,
			Context:   v.Context,
		})
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
