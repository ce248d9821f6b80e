package evaluator

import (
	"fmt"
	"time"

	"github.com/shivasurya/code-pathfinder/archrules/internal/rulefile"
	"github.com/shivasurya/code-pathfinder/archrules/model"
)

// cycleEvaluator implements the Circular-package-dependency built-in: it
// consumes only the Package Dependency Graph (spec §4.5: "Consumes only
// the Package Dependency Graph"), reporting each detected cycle as one
// Violation carrying the canonicalized cycle in context["cycle"].
type cycleEvaluator struct{}

func circularPackageDependencyEvaluator() *cycleEvaluator {
	return &cycleEvaluator{}
}

func (e *cycleEvaluator) Supports(rule rulefile.RuleDefinition) bool {
	return hasPrefix(rule, "CIRCULAR", "CIRCULAR-DEP", "CIRCULAR_DEP") ||
		rule.Category == rulefile.CategoryCircularDependency
}

func (e *cycleEvaluator) Evaluate(ctx Context) Result {
	return Run(ctx.Rule.ID, time.Now, func() ([]model.Violation, int, error) {
		rule := ctx.Rule
		cycles := ctx.PackageGraph.FindCycles()

		violations := make([]model.Violation, 0, len(cycles))
		for _, cyc := range cycles {
			violations = append(violations, model.Violation{
				RuleID:    rule.ID,
				RuleName:  rule.Name,
				Severity:  rule.Severity,
				Message:   fmt.Sprintf("circular package dependency: %v", cyc.Packages),
				CallChain: cyc.Packages,
				Context:   map[string]interface{}{"cycle": cyc.Packages},
			})
		}
		return violations, len(ctx.PackageGraph.Packages()), nil
	})
}
