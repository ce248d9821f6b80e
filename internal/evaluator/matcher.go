package evaluator

import (
	"strings"

	"github.com/shivasurya/code-pathfinder/archrules/internal/rulefile"
	"github.com/shivasurya/code-pathfinder/archrules/model"
)

// matchesPattern implements the wildcard vocabulary the teacher's call/
// variable matchers support: a bare "*" matches anything, "prefix*" and
// "*suffix" anchor one side, "*mid*" requires a substring, and a pattern
// with no "*" is an exact match.
func matchesPattern(pattern, s string) bool {
	if pattern == "*" {
		return true
	}
	switch {
	case strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*") && len(pattern) > 1:
		return strings.Contains(s, pattern[1:len(pattern)-1])
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(s, pattern[1:])
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(s, pattern[:len(pattern)-1])
	default:
		return pattern == s
	}
}

func matchesAnyPattern(patterns []string, s string) bool {
	for _, p := range patterns {
		if matchesPattern(p, s) {
			return true
		}
	}
	return false
}

// typeSimpleName strips a dotted package/type path down to its last segment,
// so a sink spec's type entry ("RestTemplate") compares equal to either a
// simple name or a fully-qualified one ("org.springframework...RestTemplate").
func typeSimpleName(fqn string) string {
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		fqn = fqn[i+1:]
	}
	return fqn
}

// ownerFqnOf returns the containing type FQN of a method FQN of the
// canonical "Type#method(params)" form, or fqn itself if it names a type.
func ownerFqnOf(fqn string) string {
	if i := strings.IndexByte(fqn, '#'); i >= 0 {
		return fqn[:i]
	}
	return fqn
}

// matchesEntryPoint reports whether method m satisfies spec: any configured
// dimension (annotations, types, methodPatterns) matching is sufficient. An
// empty spec matches nothing, per the rule format's documented boundary
// behavior for an unconfigured entry-point predicate.
func matchesEntryPoint(m *model.Method, spec rulefile.MatchSpec) bool {
	if spec.Empty() {
		return false
	}
	for _, a := range spec.Annotations {
		if m.HasAnnotation(a) {
			return true
		}
	}
	for _, t := range spec.Types {
		if typeSimpleName(m.ContainingTypeFqn) == typeSimpleName(t) {
			return true
		}
	}
	return matchesAnyPattern(spec.MethodPatterns, m.Fqn)
}

// lacksAllAnnotations reports whether m carries none of spec's configured
// annotations — the negated-entry shape JDBC-outside-transaction needs
// ("methods NOT under @Transactional"). Types/methodPatterns dimensions of
// spec are ignored here: a negated entry filter is annotation-only by
// convention (spec §4.5's "positive and negative entry filters" note).
func lacksAllAnnotations(m *model.Method, spec rulefile.MatchSpec) bool {
	if len(spec.Annotations) == 0 {
		return false
	}
	for _, a := range spec.Annotations {
		if m.HasAnnotation(a) {
			return false
		}
	}
	return true
}

// matchesSink reports whether fqn (an effective callee, possibly a library
// method never present in the model) satisfies spec. Annotations are
// checked against the resolved Method fact and its owning Type when one
// exists; methodPatterns are matched against fqn itself; types are checked by type-prefix/subtype match against the
// owning type when resolvable, falling back to a literal prefix compare on
// fqn for unresolved library callees (spec §9's Open Question resolution).
func matchesSink(fqn string, spec rulefile.MatchSpec, sm *model.SourceModel) bool {
	if spec.Empty() {
		return false
	}

	if m, ok := sm.Method(fqn); ok {
		for _, a := range spec.Annotations {
			if m.HasAnnotation(a) {
				return true
			}
		}
		if t, ok := sm.Type(m.ContainingTypeFqn); ok {
			for _, a := range spec.Annotations {
				if t.HasAnnotation(a) {
					return true
				}
			}
		}
	}

	owner := ownerFqnOf(fqn)
	for _, t := range spec.Types {
		if matchesSinkType(owner, t, sm) {
			return true
		}
	}

	return matchesAnyPattern(spec.MethodPatterns, fqn)
}

// matchesSinkType matches a sink type configuration entry against an
// owning-type FQN three ways: exact/simple-name equality, resolved
// model-subtype relationship, or literal FQN prefix (covers unresolved
// third-party receivers the model never saw a declaration for).
func matchesSinkType(ownerFqn, configuredType string, sm *model.SourceModel) bool {
	if typeSimpleName(ownerFqn) == typeSimpleName(configuredType) {
		return true
	}
	if sm.IsSubtype(ownerFqn, configuredType) {
		return true
	}
	return strings.HasPrefix(ownerFqn, configuredType)
}

// satisfiesPathConstraints applies mustContain/mustNotContain over an
// entire chain (spec §8 property 5: the constraint ranges over the whole
// callChain, not just intermediate nodes).
func satisfiesPathConstraints(chain []string, pc rulefile.PathConstraints) bool {
	for _, required := range pc.MustContain {
		if !containsFqn(chain, required) {
			return false
		}
	}
	for _, forbidden := range pc.MustNotContain {
		if containsFqn(chain, forbidden) {
			return false
		}
	}
	return true
}

func containsFqn(chain []string, needle string) bool {
	for _, fqn := range chain {
		if fqn == needle || matchesPattern(needle, fqn) {
			return true
		}
	}
	return false
}
