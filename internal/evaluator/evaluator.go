// Package evaluator implements the pluggable Rule Evaluation Engine:
// evaluators that each declare supports(rule), dispatched by a linear-scan
// Registry, run against a shared read-only Context of model + graphs +
// rule to produce Violations.
//
// Dispatch mirrors the teacher's dsl package, which picks one executor per
// IR node type (CallMatcherIR, VariableMatcherIR, DataflowIR) via a type
// switch; here the same "one handler per shape" idea is generalized to
// rule-id-prefix/category-keyed evaluators registered in a static list.
package evaluator

import (
	"time"

	"github.com/shivasurya/code-pathfinder/archrules/internal/callgraph"
	"github.com/shivasurya/code-pathfinder/archrules/internal/packagegraph"
	"github.com/shivasurya/code-pathfinder/archrules/internal/rulefile"
	"github.com/shivasurya/code-pathfinder/archrules/model"
)

// Status is an evaluator run's terminal state.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// Context is the shared, read-only input every Evaluator runs against. No
// evaluator may mutate any field reachable from Context; all of it is
// published once by the Orchestrator after the model and graphs are
// frozen.
type Context struct {
	Rule         rulefile.RuleDefinition
	SourceModel  *model.SourceModel
	CallGraph    *callgraph.Graph
	PackageGraph *packagegraph.Graph

	// Deadline, if non-zero, is the point past which a long-running
	// evaluator should abort and return a StatusError result with message
	// "timeout" rather than corrupt accumulated state (spec §5).
	Deadline time.Time
}

// Expired reports whether ctx's deadline has passed.
func (c Context) Expired() bool {
	return !c.Deadline.IsZero() && time.Now().After(c.Deadline)
}

// Result is one evaluator run's outcome.
type Result struct {
	RuleID        string
	Violations    []model.Violation
	DurationMs    int64
	NodesAnalyzed int
	Status        Status
	ErrorMessage  string
}

// Evaluator is a single rule-shape handler: Supports is a pure predicate
// (typically keyed on rule id prefix, category, or detection-block shape);
// Evaluate runs the check. At most one registered Evaluator handles a given
// rule (Registry.Dispatch picks the first match).
type Evaluator interface {
	Supports(rule rulefile.RuleDefinition) bool
	Evaluate(ctx Context) Result
}

// Run executes fn and wraps a panic or returned error as a StatusError
// result, guaranteeing the core never lets a panic escape Evaluate (spec
// §7: "the core never panics out of analyze"). clock lets tests control
// duration measurement; production callers pass time.Now.
func Run(ruleID string, clock func() time.Time, fn func() ([]model.Violation, int, error)) (result Result) {
	start := clock()
	defer func() {
		result.DurationMs = clock().Sub(start).Milliseconds()
		if r := recover(); r != nil {
			result.Status = StatusError
			result.Violations = nil
			result.ErrorMessage = panicMessage(r)
		}
	}()

	violations, nodes, err := fn()
	if err != nil {
		return Result{RuleID: ruleID, Status: StatusError, ErrorMessage: err.Error(), NodesAnalyzed: nodes}
	}
	return Result{RuleID: ruleID, Status: StatusSuccess, Violations: violations, NodesAnalyzed: nodes}
}

func panicMessage(r interface{}) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	if s, ok := r.(string); ok {
		return s
	}
	return "evaluator panicked"
}
