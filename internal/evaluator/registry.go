package evaluator

import "github.com/shivasurya/code-pathfinder/archrules/internal/rulefile"

// Registry holds registered Evaluators in registration order and dispatches
// a rule to the first one whose Supports returns true (spec §4.5: "at most
// one evaluator handles a given rule").
type Registry struct {
	evaluators []Evaluator
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends e to the dispatch list. Order matters: earlier
// registrations take priority over later, more general ones.
func (r *Registry) Register(e Evaluator) {
	r.evaluators = append(r.evaluators, e)
}

// Dispatch returns the first registered Evaluator supporting rule, or
// (nil, false) if none does.
func (r *Registry) Dispatch(rule rulefile.RuleDefinition) (Evaluator, bool) {
	for _, e := range r.evaluators {
		if e.Supports(rule) {
			return e, true
		}
	}
	return nil, false
}

// EvaluateRule dispatches rule and runs it, producing a skipped result
// (never an error) when no evaluator supports it (spec §4.5, §7 "missing
// evaluator... not an error").
func (r *Registry) EvaluateRule(ctx Context) Result {
	e, ok := r.Dispatch(ctx.Rule)
	if !ok {
		return Result{RuleID: ctx.Rule.ID, Status: StatusSkipped}
	}
	return e.Evaluate(ctx)
}
