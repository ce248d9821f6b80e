package evaluator

import (
	"strings"

	"github.com/shivasurya/code-pathfinder/archrules/internal/rulefile"
	"github.com/shivasurya/code-pathfinder/archrules/model"
)

// dispatchKey resolves which built-in evaluator a rule belongs to. Config
// key "evaluator" always wins when present (an author can pin a rule to a
// specific evaluator regardless of id/category); failing that, dispatch
// falls back to a case-insensitive rule-id prefix, then to category.
func dispatchKey(rule rulefile.RuleDefinition) string {
	if raw, ok := rule.Config["evaluator"]; ok {
		if s, ok := raw.(string); ok && s != "" {
			return strings.ToUpper(s)
		}
	}
	return strings.ToUpper(rule.ID)
}

func hasPrefix(rule rulefile.RuleDefinition, prefixes ...string) bool {
	key := dispatchKey(rule)
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// NewDefaultRegistry builds the Registry carrying all eight built-in
// evaluators, in the dispatch priority spec.md §4.5 documents them: the
// first Supports match wins, so more specific id prefixes are registered
// ahead of their category-only fallbacks.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(transactionBoundaryEvaluator())
	r.Register(retrySafetyEvaluator())
	r.Register(jdbcInRetryEvaluator())
	r.Register(jdbcOutsideTransactionEvaluator())
	r.Register(threadManagementEvaluator())
	r.Register(asyncInTransactionEvaluator())
	r.Register(circularPackageDependencyEvaluator())
	r.Register(layeredArchitecture())
	return r
}

// transactionBoundaryEvaluator: entry points are methods matching the
// rule's configured entry-point predicate (typically @Transactional); sink
// is the rule's configured sink predicate (typically a remote-call client
// type, matched by type-prefix). Chains respect maxDepth as configured
// (spec recommends 30).
func transactionBoundaryEvaluator() *chainEvaluator {
	return &chainEvaluator{
		name: "transaction-boundary",
		supportsFn: func(rule rulefile.RuleDefinition) bool {
			if hasPrefix(rule, "TX-BOUNDARY", "TX_BOUNDARY") {
				return true
			}
			return rule.Category == rulefile.CategoryTransactionSafety && !hasPrefix(rule, "JDBC")
		},
		entryFilter: func(rule rulefile.RuleDefinition, m *model.Method) bool {
			return matchesEntryPoint(m, rule.Detection.EntryPoints)
		},
	}
}

// retrySafetyEvaluator: entry points are @Retryable-shaped methods; sink is
// a non-idempotent remote call identified by a method-FQN pattern (e.g.
// "*#post*"). The path-constraint layer already enforces mustContain/
// mustNotContain, so no extra constraint code is needed here beyond what
// chainEvaluator provides.
func retrySafetyEvaluator() *chainEvaluator {
	return &chainEvaluator{
		name: "retry-safety",
		supportsFn: func(rule rulefile.RuleDefinition) bool {
			if hasPrefix(rule, "RETRY", "REMOTE-RETRY", "REMOTE_RETRY") {
				return true
			}
			return rule.Category == rulefile.CategoryRetrySafety && !hasPrefix(rule, "JDBC")
		},
		entryFilter: func(rule rulefile.RuleDefinition, m *model.Method) bool {
			return matchesEntryPoint(m, rule.Detection.EntryPoints)
		},
	}
}

// jdbcInRetryEvaluator: positive entry filter variant — entry points are
// methods annotated as retryable, sink is a data-access template type.
func jdbcInRetryEvaluator() *chainEvaluator {
	return &chainEvaluator{
		name: "jdbc-in-retry",
		supportsFn: func(rule rulefile.RuleDefinition) bool {
			return hasPrefix(rule, "JDBC-IN-RETRY", "JDBC_IN_RETRY")
		},
		entryFilter: func(rule rulefile.RuleDefinition, m *model.Method) bool {
			return matchesEntryPoint(m, rule.Detection.EntryPoints)
		},
	}
}

// jdbcOutsideTransactionEvaluator: negative entry filter variant — entry
// points are methods that carry NONE of the configured entry-point
// annotations (e.g. methods not under @Transactional), sink is still a
// data-access template type. This is the "negative entry filter" spec
// §4.5 calls out.
func jdbcOutsideTransactionEvaluator() *chainEvaluator {
	return &chainEvaluator{
		name: "jdbc-outside-transaction",
		supportsFn: func(rule rulefile.RuleDefinition) bool {
			return hasPrefix(rule, "JDBC-OUTSIDE", "JDBC_OUTSIDE")
		},
		entryFilter: func(rule rulefile.RuleDefinition, m *model.Method) bool {
			return lacksAllAnnotations(m, rule.Detection.EntryPoints)
		},
	}
}

// threadManagementEvaluator: every application method is a candidate entry
// point (the entry-point spec in the rule file, if any, is ignored — spec
// §4.5 says explicitly "all application methods"); the sink is any call
// matching the rule's configured sink predicate (typically the thread type,
// so its constructor and start calls match). This is a
// single-edge check, not a multi-hop chain search: one violation per
// matching call site, with a one-element chain (the containing method) and
// the invocation's own location rather than the method declaration's.
func threadManagementEvaluator() *singleEdgeEvaluator {
	return &singleEdgeEvaluator{
		name: "thread-management",
		supportsFn: func(rule rulefile.RuleDefinition) bool {
			return hasPrefix(rule, "THREAD")
		},
	}
}

// asyncInTransactionEvaluator: entry points are @Transactional methods,
// sink predicate is an annotation (@Async) rather than a type — matchesSink
// already checks annotations first, so no extra code is needed beyond
// wiring the configured predicates through.
func asyncInTransactionEvaluator() *chainEvaluator {
	return &chainEvaluator{
		name: "async-in-transaction",
		supportsFn: func(rule rulefile.RuleDefinition) bool {
			if hasPrefix(rule, "ASYNC") {
				return true
			}
			return rule.Category == rulefile.CategoryAsyncSafety
		},
		entryFilter: func(rule rulefile.RuleDefinition, m *model.Method) bool {
			return matchesEntryPoint(m, rule.Detection.EntryPoints)
		},
	}
}
