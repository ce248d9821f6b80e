package evaluator

import (
	"testing"

	"github.com/shivasurya/code-pathfinder/archrules/internal/callgraph"
	"github.com/shivasurya/code-pathfinder/archrules/internal/packagegraph"
	"github.com/shivasurya/code-pathfinder/archrules/internal/rulefile"
	"github.com/shivasurya/code-pathfinder/archrules/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S4: p.A has a field of type q.B, q.B has a field of type p.A.
func TestCircularPackageDependency_S4(t *testing.T) {
	typeMap := map[string]*model.Type{
		"p.A": {Fqn: "p.A", SimpleName: "A", Package: "p"},
		"q.B": {Fqn: "q.B", SimpleName: "B", Package: "q"},
	}
	fieldMap := map[string]*model.Field{
		"p.A#b": {Fqn: "p.A#b", SimpleName: "b", ContainingTypeFqn: "p.A", Type: model.TypeRef{SimpleName: "B", Fqn: "q.B"}},
		"q.B#a": {Fqn: "q.B#a", SimpleName: "a", ContainingTypeFqn: "q.B", Type: model.TypeRef{SimpleName: "A", Fqn: "p.A"}},
	}
	relationships := []model.Relationship{
		{Kind: model.RelUsesType, Source: "p.A#b", Target: "q.B"},
		{Kind: model.RelUsesType, Source: "q.B#a", Target: "p.A"},
	}
	sm := model.NewFrozenSourceModel(typeMap, nil, fieldMap, relationships, nil)

	pgb := packagegraph.NewBuilder()
	pgb.FromSourceModel(sm)
	pg := pgb.Freeze()

	rule := rulefile.RuleDefinition{
		ID:       "CIRCULAR-DEP-001",
		Name:     "Circular package dependency",
		Severity: model.SeverityWarn,
		Category: rulefile.CategoryCircularDependency,
		Enabled:  true,
	}
	cgb := callgraph.NewBuilder()
	ctx := Context{Rule: rule, SourceModel: sm, CallGraph: cgb.Freeze(), PackageGraph: pg}

	eval := circularPackageDependencyEvaluator()
	require.True(t, eval.Supports(rule))
	result := eval.Evaluate(ctx)

	require.Equal(t, StatusSuccess, result.Status)
	require.Len(t, result.Violations, 1)
	v := result.Violations[0]
	assert.Equal(t, []string{"p", "q", "p"}, v.Context["cycle"])
}

func TestCircularPackageDependency_NoCycle(t *testing.T) {
	pgb := packagegraph.NewBuilder()
	pgb.AddEdge("p", "q")
	pg := pgb.Freeze()

	rule := rulefile.RuleDefinition{ID: "CIRCULAR-DEP-002", Category: rulefile.CategoryCircularDependency}
	ctx := Context{Rule: rule, SourceModel: model.NewFrozenSourceModel(nil, nil, nil, nil, nil), CallGraph: callgraph.NewBuilder().Freeze(), PackageGraph: pg}

	result := circularPackageDependencyEvaluator().Evaluate(ctx)
	assert.Empty(t, result.Violations)
}
