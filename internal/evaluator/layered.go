package evaluator

import (
	"fmt"
	"sort"
	"time"

	"github.com/shivasurya/code-pathfinder/archrules/internal/rulefile"
	"github.com/shivasurya/code-pathfinder/archrules/model"
)

// layeredArchitectureEvaluator verifies a declared tier ordering over
// packages: it consumes only the Package Dependency Graph. Configuration
// lives in the rule's free-form config block:
//
//	"config": {
//	  "tiers": ["presentation", "service", "repository"],
//	  "packageTiers": {"com.app.web": "presentation", "com.app.service": "service"}
//	}
//
// tiers lists allowed-dependency order outward-to-inward; a package may
// depend on a package in the same or a later tier. Any edge from a later
// tier back into an earlier one is a violation (spec §4.5: "a violation is
// any cross-tier edge against the arrow").
type layeredArchitectureEvaluator struct{}

func layeredArchitecture() *layeredArchitectureEvaluator {
	return &layeredArchitectureEvaluator{}
}

func (e *layeredArchitectureEvaluator) Supports(rule rulefile.RuleDefinition) bool {
	return hasPrefix(rule, "LAYERED", "LAYER") || rule.Category == rulefile.CategoryLayeredArchitecture
}

func (e *layeredArchitectureEvaluator) Evaluate(ctx Context) Result {
	return Run(ctx.Rule.ID, time.Now, func() ([]model.Violation, int, error) {
		rule := ctx.Rule
		tiers, packageTiers, err := parseLayerConfig(rule.Config)
		if err != nil {
			return nil, 0, err
		}
		if len(tiers) == 0 {
			return nil, 0, nil
		}

		packages := ctx.PackageGraph.Packages()
		sort.Strings(packages)

		var violations []model.Violation
		nodesAnalyzed := 0
		for _, pkg := range packages {
			fromTier, ok := packageTiers[pkg]
			if !ok {
				continue
			}
			deps := ctx.PackageGraph.Dependencies(pkg)
			sort.Strings(deps)
			for _, dep := range deps {
				nodesAnalyzed++
				toTier, ok := packageTiers[dep]
				if !ok {
					continue
				}
				if toTier >= fromTier {
					continue // same tier or a later (inward) tier: allowed
				}
				violations = append(violations, model.Violation{
					RuleID:    rule.ID,
					RuleName:  rule.Name,
					Severity:  rule.Severity,
					Message:   fmt.Sprintf("package %q (tier %s) depends on %q (tier %s) against the declared layer direction", pkg, tiers[fromTier], dep, tiers[toTier]),
					CallChain: []string{pkg, dep},
					Context:   map[string]interface{}{"fromPackage": pkg, "toPackage": dep, "fromTier": tiers[fromTier], "toTier": tiers[toTier]},
				})
			}
		}
		return violations, nodesAnalyzed, nil
	})
}

func parseLayerConfig(config map[string]interface{}) ([]string, map[string]int, error) {
	var tiers []string
	if raw, ok := config["tiers"]; ok {
		list, ok := raw.([]interface{})
		if !ok {
			return nil, nil, fmt.Errorf("layered-architecture config: \"tiers\" must be a list of strings")
		}
		for _, v := range list {
			s, ok := v.(string)
			if !ok {
				return nil, nil, fmt.Errorf("layered-architecture config: \"tiers\" entries must be strings")
			}
			tiers = append(tiers, s)
		}
	}

	tierIndex := make(map[string]int, len(tiers))
	for i, t := range tiers {
		tierIndex[t] = i
	}

	packageTiers := make(map[string]int)
	if raw, ok := config["packageTiers"]; ok {
		mapping, ok := raw.(map[string]interface{})
		if !ok {
			return nil, nil, fmt.Errorf("layered-architecture config: \"packageTiers\" must be an object")
		}
		for pkg, tierRaw := range mapping {
			tierName, ok := tierRaw.(string)
			if !ok {
				return nil, nil, fmt.Errorf("layered-architecture config: packageTiers[%q] must be a string", pkg)
			}
			idx, ok := tierIndex[tierName]
			if !ok {
				return nil, nil, fmt.Errorf("layered-architecture config: unknown tier %q for package %q", tierName, pkg)
			}
			packageTiers[pkg] = idx
		}
	}

	return tiers, packageTiers, nil
}
