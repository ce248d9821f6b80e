package report

import (
	"fmt"
	"strings"

	"github.com/shivasurya/code-pathfinder/archrules/model"
)

// ExitCode is the CLI's process exit status.
type ExitCode int

const (
	// ExitCodeSuccess: no violation at or above --fail-on, and no evaluator
	// ran into an error.
	ExitCodeSuccess ExitCode = 0
	// ExitCodeFindings: at least one violation met the --fail-on threshold.
	ExitCodeFindings ExitCode = 1
	// ExitCodeError: an evaluator or the orchestrator itself failed;
	// distinct from "a rule found a violation" per the teacher's
	// three-tier convention.
	ExitCodeError ExitCode = 2
)

// InvalidSeverityError is returned when a --fail-on token isn't a known
// Severity.
type InvalidSeverityError struct {
	Severity string
	Valid    []string
}

func (e *InvalidSeverityError) Error() string {
	return fmt.Sprintf("invalid severity %q, must be one of: %s", e.Severity, strings.Join(e.Valid, ", "))
}

var validSeverityTokens = []string{
	string(model.SeverityBlocker),
	string(model.SeverityError),
	string(model.SeverityWarn),
	string(model.SeverityInfo),
}

// ParseFailOn parses a comma-separated --fail-on flag value into Severity
// tokens, trimming whitespace and dropping empty entries.
func ParseFailOn(value string) ([]model.Severity, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	var out []model.Severity
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		upper := strings.ToUpper(part)
		valid := false
		for _, v := range validSeverityTokens {
			if v == upper {
				valid = true
				break
			}
		}
		if !valid {
			return nil, &InvalidSeverityError{Severity: part, Valid: validSeverityTokens}
		}
		out = append(out, model.Severity(upper))
	}
	return out, nil
}

// DetermineExitCode computes the process exit code. Precedence, per the
// teacher's DetermineExitCode: an execution error always wins; otherwise a
// violation at or above any of the failOn severities yields ExitCodeFindings;
// otherwise ExitCodeSuccess. An empty failOn list never fails the build on
// findings alone, matching the teacher's "no --fail-on means always success"
// rule.
func DetermineExitCode(violations []model.Violation, failOn []model.Severity, hadErrors bool) ExitCode {
	if hadErrors {
		return ExitCodeError
	}
	if len(failOn) == 0 {
		return ExitCodeSuccess
	}
	for _, v := range violations {
		for _, threshold := range failOn {
			if v.Severity.AtLeast(threshold) {
				return ExitCodeFindings
			}
		}
	}
	return ExitCodeSuccess
}
