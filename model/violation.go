package model

import (
	"sort"
	"strings"
)

// Severity is an ordered classification of a rule's impact.
type Severity string

const (
	SeverityBlocker Severity = "BLOCKER"
	SeverityError   Severity = "ERROR"
	SeverityWarn    Severity = "WARN"
	SeverityInfo    Severity = "INFO"
)

// severityRank orders severities from most to least severe for comparisons
// and --fail-on threshold checks (blocker > error > warn > info).
var severityRank = map[Severity]int{
	SeverityBlocker: 3,
	SeverityError:   2,
	SeverityWarn:    1,
	SeverityInfo:    0,
}

// AtLeast reports whether s is at least as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return severityRank[s] >= severityRank[other]
}

// ParseSeverity normalizes a case-insensitive severity token, defaulting to
// ERROR for unrecognized input per the rule-file format's stated default.
func ParseSeverity(token string) Severity {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case string(SeverityBlocker):
		return SeverityBlocker
	case string(SeverityWarn):
		return SeverityWarn
	case string(SeverityInfo):
		return SeverityInfo
	default:
		return SeverityError
	}
}

// Violation is the output of rule evaluation: one finding with its full
// evidentiary chain.
type Violation struct {
	RuleID    string
	RuleName  string
	Severity  Severity
	Message   string
	Location  Location
	CallChain []string
	Context   map[string]interface{}
}

// ChainString renders CallChain using the spec-mandated " → " separator.
func (v Violation) ChainString() string {
	return strings.Join(v.CallChain, " → ")
}

// DedupKey is the comparison key the spec mandates for deduplicating
// violations: (ruleId, location, context-hash).
func (v Violation) DedupKey() string {
	return v.RuleID + "|" + v.Location.String() + "|" + contextHash(v.Context)
}

func contextHash(ctx map[string]interface{}) string {
	if len(ctx) == 0 {
		return ""
	}
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(toComparable(ctx[k]))
		b.WriteByte(';')
	}
	return b.String()
}

func toComparable(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		return strings.Join(t, ",")
	default:
		return ""
	}
}

// ResolutionDiagnosticKind mirrors the callee-resolution failure taxonomy:
// why a reference could not be bound to a concrete model entity.
type ResolutionDiagnosticKind string

const (
	DiagParseError         ResolutionDiagnosticKind = "parse_error"
	DiagExternalFramework  ResolutionDiagnosticKind = "external_framework"
	DiagORMPattern         ResolutionDiagnosticKind = "orm_pattern"
	DiagAttributeChain     ResolutionDiagnosticKind = "attribute_chain"
	DiagVariableMethod     ResolutionDiagnosticKind = "variable_method"
	DiagSuperCall          ResolutionDiagnosticKind = "super_call"
	DiagNotInImports       ResolutionDiagnosticKind = "not_in_imports"
	DiagUnknown            ResolutionDiagnosticKind = "unknown"
	DiagDuplicateFqn       ResolutionDiagnosticKind = "duplicate_fqn"
)

// ResolutionDiagnostic records a non-fatal issue encountered while building
// the Source Model: a skipped file, an unresolved FQN, or a rejected
// duplicate declaration.
type ResolutionDiagnostic struct {
	Kind     ResolutionDiagnosticKind
	Message  string
	Location Location
}
