// Package rulefile defines the JSON/YAML rule-definition schema and the
// repository contract a hosting CLI uses to load, filter, and look up rule
// definitions. Storage and discovery beyond a local directory are external
// collaborators per spec §1; this package owns the schema, a JSON/YAML
// directory loader, and a small in-memory repository implementation.
package rulefile

import "github.com/shivasurya/code-pathfinder/archrules/model"

// Category is a free-form enum of rule categories. Unknown tokens pass
// through, upper-cased with hyphens and spaces turned into underscores like
// known ones; "CUSTOM" is the documented default.
type Category string

const (
	CategoryTransactionSafety   Category = "TRANSACTION_SAFETY"
	CategoryAsyncSafety         Category = "ASYNC_SAFETY"
	CategoryRetrySafety         Category = "RETRY_SAFETY"
	CategoryCircularDependency  Category = "CIRCULAR_DEPENDENCY"
	CategoryLayeredArchitecture Category = "LAYERED_ARCHITECTURE"
	CategorySecurity            Category = "SECURITY"
	CategoryPerformance         Category = "PERFORMANCE"
	CategoryCustom              Category = "CUSTOM"
)

// MatchSpec describes an entry-point or sink predicate along three
// independent dimensions: annotation names, owning-type names, and
// method-FQN patterns. Patterns support only a leading and/or trailing "*"
// wildcard (or "*" alone) and otherwise compare exactly; regular
// expressions are not interpreted. A method matches if it satisfies any
// configured dimension (the dimensions are OR'd); an empty spec matches
// nothing, per spec §8's boundary behavior for empty entry/sink predicates.
type MatchSpec struct {
	Annotations    []string `json:"annotations" yaml:"annotations"`
	Types          []string `json:"types" yaml:"types"`
	MethodPatterns []string `json:"methodPatterns" yaml:"methodPatterns"`
}

// Empty reports whether every dimension of the spec is unset.
func (m MatchSpec) Empty() bool {
	return len(m.Annotations) == 0 && len(m.Types) == 0 && len(m.MethodPatterns) == 0
}

// PathConstraints bounds and filters the chains a Detection produces.
type PathConstraints struct {
	MustContain    []string `json:"mustContain" yaml:"mustContain"`
	MustNotContain []string `json:"mustNotContain" yaml:"mustNotContain"`
	MaxDepth       int      `json:"maxDepth" yaml:"maxDepth"`
}

// Detection is the three-part detection block of a rule: entry points,
// sinks, and path constraints.
type Detection struct {
	EntryPoints     MatchSpec       `json:"entryPoints" yaml:"entryPoints"`
	Sinks           MatchSpec       `json:"sinks" yaml:"sinks"`
	PathConstraints PathConstraints `json:"pathConstraints" yaml:"pathConstraints"`
}

// Remediation is advisory guidance attached to a rule; the engine never
// acts on it (no auto-fix per spec §1's non-goals).
type Remediation struct {
	QuickFix    string   `json:"quickFix" yaml:"quickFix"`
	Explanation string   `json:"explanation" yaml:"explanation"`
	References  []string `json:"references" yaml:"references"`
}

// RuleDefinition is one parsed rule, matching the external JSON/YAML format
// of spec §6 exactly; unknown top-level keys are ignored by the decoder.
type RuleDefinition struct {
	ID          string                 `json:"id" yaml:"id"`
	Name        string                 `json:"name" yaml:"name"`
	Description string                 `json:"description" yaml:"description"`
	Severity    model.Severity         `json:"severity" yaml:"severity"`
	Category    Category               `json:"category" yaml:"category"`
	Enabled     bool                   `json:"enabled" yaml:"enabled"`
	Detection   Detection              `json:"detection" yaml:"detection"`
	Remediation Remediation            `json:"remediation" yaml:"remediation"`
	Config      map[string]interface{} `json:"config" yaml:"config"`
}
