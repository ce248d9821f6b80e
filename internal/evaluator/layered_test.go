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

func layeredRule(config map[string]interface{}) rulefile.RuleDefinition {
	return rulefile.RuleDefinition{
		ID:       "LAYERED-ARCH-001",
		Name:     "Layer violation",
		Severity: model.SeverityError,
		Category: rulefile.CategoryLayeredArchitecture,
		Enabled:  true,
		Config:   config,
	}
}

func TestLayeredArchitecture_AllowedDirection(t *testing.T) {
	pgb := packagegraph.NewBuilder()
	pgb.AddEdge("web", "service")
	pgb.AddEdge("service", "repository")
	pg := pgb.Freeze()

	config := map[string]interface{}{
		"tiers": []interface{}{"web", "service", "repository"},
		"packageTiers": map[string]interface{}{
			"web": "web", "service": "service", "repository": "repository",
		},
	}
	ctx := Context{Rule: layeredRule(config), SourceModel: model.NewFrozenSourceModel(nil, nil, nil, nil, nil), CallGraph: callgraph.NewBuilder().Freeze(), PackageGraph: pg}

	eval := layeredArchitecture()
	require.True(t, eval.Supports(ctx.Rule))
	result := eval.Evaluate(ctx)

	require.Equal(t, StatusSuccess, result.Status)
	assert.Empty(t, result.Violations)
}

func TestLayeredArchitecture_ReverseDependencyIsAViolation(t *testing.T) {
	pgb := packagegraph.NewBuilder()
	pgb.AddEdge("repository", "web")
	pg := pgb.Freeze()

	config := map[string]interface{}{
		"tiers": []interface{}{"web", "service", "repository"},
		"packageTiers": map[string]interface{}{
			"web": "web", "repository": "repository",
		},
	}
	ctx := Context{Rule: layeredRule(config), SourceModel: model.NewFrozenSourceModel(nil, nil, nil, nil, nil), CallGraph: callgraph.NewBuilder().Freeze(), PackageGraph: pg}

	result := layeredArchitecture().Evaluate(ctx)

	require.Len(t, result.Violations, 1)
	v := result.Violations[0]
	assert.Equal(t, []string{"repository", "web"}, v.CallChain)
	assert.Equal(t, "web", v.Context["toTier"])
}

func TestLayeredArchitecture_UnmappedPackagesIgnored(t *testing.T) {
	pgb := packagegraph.NewBuilder()
	pgb.AddEdge("web", "unmapped")
	pg := pgb.Freeze()

	config := map[string]interface{}{
		"tiers":        []interface{}{"web"},
		"packageTiers": map[string]interface{}{"web": "web"},
	}
	ctx := Context{Rule: layeredRule(config), SourceModel: model.NewFrozenSourceModel(nil, nil, nil, nil, nil), CallGraph: callgraph.NewBuilder().Freeze(), PackageGraph: pg}

	result := layeredArchitecture().Evaluate(ctx)
	assert.Empty(t, result.Violations)
}
