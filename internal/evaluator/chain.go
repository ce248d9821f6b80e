package evaluator

import (
	"sort"
	"time"

	"github.com/shivasurya/code-pathfinder/archrules/internal/callgraph"
	"github.com/shivasurya/code-pathfinder/archrules/internal/rulefile"
	"github.com/shivasurya/code-pathfinder/archrules/model"
)

// entryFilterFunc decides whether method m is an entry point for rule.
type entryFilterFunc func(rule rulefile.RuleDefinition, m *model.Method) bool

// chainEvaluator is the one generic engine behind most of the built-in
// evaluators: TX-BOUNDARY, Retry-safety, JDBC-in-retry,
// JDBC-outside-transaction, and Async-in-transaction all reduce to "for
// every matching entry point, search chains to a sink within maxDepth, keep
// chains honoring the path constraints" (spec §4.4/§4.5); only the entry
// filter varies between them.
type chainEvaluator struct {
	name        string
	supportsFn  func(rule rulefile.RuleDefinition) bool
	entryFilter entryFilterFunc
}

func (e *chainEvaluator) Supports(rule rulefile.RuleDefinition) bool {
	return e.supportsFn(rule)
}

func (e *chainEvaluator) Evaluate(ctx Context) Result {
	return Run(ctx.Rule.ID, time.Now, func() ([]model.Violation, int, error) {
		rule := ctx.Rule
		sinks := rule.Detection.Sinks
		pc := rule.Detection.PathConstraints

		maxDepth := pc.MaxDepth

		entries := make([]*model.Method, 0)
		for _, m := range ctx.SourceModel.AllMethods() {
			if ctx.Expired() {
				return nil, 0, errTimeout
			}
			if e.entryFilter(rule, m) {
				entries = append(entries, m)
			}
		}
		// Deterministic evaluation order (spec §8 property 7): sort entry
		// points by FQN before walking them.
		sort.Slice(entries, func(i, j int) bool { return entries[i].Fqn < entries[j].Fqn })

		var violations []model.Violation
		nodesAnalyzed := 0
		for _, entry := range entries {
			if ctx.Expired() {
				return violations, nodesAnalyzed, errTimeout
			}
			chains := ctx.CallGraph.ChainsToSinks(entry.Fqn, sinkPredicateFor(sinks, ctx.SourceModel), maxDepth)
			nodesAnalyzed += len(ctx.CallGraph.Callees(entry.Fqn)) + 1
			for _, chain := range chains {
				if !satisfiesPathConstraints(chain, pc) {
					continue
				}
				violations = append(violations, model.Violation{
					RuleID:    rule.ID,
					RuleName:  rule.Name,
					Severity:  rule.Severity,
					Message:   rule.Description,
					Location:  entry.Location,
					CallChain: chain,
				})
			}
		}
		return violations, nodesAnalyzed, nil
	})
}

func sinkPredicateFor(sinks rulefile.MatchSpec, sm *model.SourceModel) callgraph.SinkPredicate {
	return func(fqn string) bool { return matchesSink(fqn, sinks, sm) }
}

// singleEdgeEvaluator checks every application method's direct outgoing
// edges against the rule's sink predicate, without any multi-hop search.
// Thread-management is its only built-in instance: a violation per matching
// call site, carrying a one-element chain (the containing method FQN) and
// the call site's own location.
type singleEdgeEvaluator struct {
	name       string
	supportsFn func(rule rulefile.RuleDefinition) bool
}

func (e *singleEdgeEvaluator) Supports(rule rulefile.RuleDefinition) bool {
	return e.supportsFn(rule)
}

func (e *singleEdgeEvaluator) Evaluate(ctx Context) Result {
	return Run(ctx.Rule.ID, time.Now, func() ([]model.Violation, int, error) {
		rule := ctx.Rule
		sinks := rule.Detection.Sinks
		pc := rule.Detection.PathConstraints

		methods := ctx.SourceModel.AllMethods()
		sort.Slice(methods, func(i, j int) bool { return methods[i].Fqn < methods[j].Fqn })

		var violations []model.Violation
		nodesAnalyzed := 0
		for _, m := range methods {
			if ctx.Expired() {
				return violations, nodesAnalyzed, errTimeout
			}
			nodesAnalyzed++
			for _, edge := range ctx.CallGraph.Outgoing(m.Fqn) {
				if !matchesSink(edge.EffectiveCallee(), sinks, ctx.SourceModel) {
					continue
				}
				chain := []string{m.Fqn}
				if !satisfiesPathConstraints(chain, pc) {
					continue
				}
				violations = append(violations, model.Violation{
					RuleID:    rule.ID,
					RuleName:  rule.Name,
					Severity:  rule.Severity,
					Message:   rule.Description,
					Location:  edge.Location,
					CallChain: chain,
				})
			}
		}
		return violations, nodesAnalyzed, nil
	})
}

// errTimeout is the sentinel error a chainEvaluator returns when ctx's
// deadline expires mid-run; Run wraps it into a StatusError result with
// message "timeout" per spec §5.
var errTimeout = timeoutError{}

type timeoutError struct{}

func (timeoutError) Error() string { return "timeout" }
