// Package callgraph builds and queries the directed, bidirectionally
// indexed Call Graph described by the engine's Source Model: every
// caller->callee fact plus interface-dispatch expansion, frozen before rule
// evaluation begins.
//
// The representation follows the teacher's core.CallGraph shape (forward
// and reverse adjacency as maps of slices, never owning pointers between
// nodes) generalized from a single-language intraprocedural call graph to
// this engine's cross-file, interface-aware one.
package callgraph

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/shivasurya/code-pathfinder/archrules/model"
)

// defaultReachableCeiling bounds Reachable's BFS so a pathological or
// cyclic graph cannot make a single query unbounded.
const defaultReachableCeiling = 100000

// reachableCacheSize bounds the number of distinct start FQNs whose BFS
// result Reachable memoizes. A rule set re-queries the same hot entry
// points (controller/service methods) across many rules and scenarios, so a
// small LRU pays for itself without holding the whole call graph's closure
// in memory at once.
const reachableCacheSize = 1024

// Graph is the frozen, read-only Call Graph. Build one with a Builder and
// Freeze it; Graph itself exposes no mutators.
type Graph struct {
	outgoing           map[string][]model.CallEdge
	incoming           map[string][]model.CallEdge
	applicationMethods map[string]bool

	// reachableCache memoizes Reachable by start FQN. Safe to share across
	// concurrent rule evaluations: the Graph it caches against is frozen
	// and never mutated after Freeze.
	reachableCache *lru.Cache[string, map[string]bool]
}

// Builder accumulates call-graph facts before Freeze publishes them as a
// read-only Graph. Mirrors the spec's "Builder -> freeze" design note.
type Builder struct {
	outgoing           map[string][]model.CallEdge
	incoming           map[string][]model.CallEdge
	applicationMethods map[string]bool
}

// NewBuilder creates an empty call-graph Builder.
func NewBuilder() *Builder {
	return &Builder{
		outgoing:           make(map[string][]model.CallEdge),
		incoming:           make(map[string][]model.CallEdge),
		applicationMethods: make(map[string]bool),
	}
}

// MarkApplicationMethod records fqn as defined inside the analyzed
// sources. The spec requires applicationMethods to equal exactly the set of
// methods present in the Source Model; callers should mark every Method
// fact's Fqn, not infer membership from call edges.
func (b *Builder) MarkApplicationMethod(fqn string) {
	b.applicationMethods[fqn] = true
}

// AddEdge records a caller->callee fact. Call AddEdge once per observed call
// site; duplicate (caller, callee, location) triples are preserved as
// distinct edges since each represents a distinct call site.
func (b *Builder) AddEdge(edge model.CallEdge) {
	b.outgoing[edge.CallerFqn] = append(b.outgoing[edge.CallerFqn], edge)
	callee := edge.EffectiveCallee()
	b.incoming[callee] = append(b.incoming[callee], edge)
}

// ExpandInterfaceDispatch synthesizes additional virtual edges for call
// sites whose declared receiver is an interface or abstract type: one edge
// per direct subtype that declares a method with the same name and
// parameter types, call-type "virtual".
// This must run before Freeze so TX-BOUNDARY-shaped rules can see remote
// calls reached only through an interface (spec §4.2).
func (b *Builder) ExpandInterfaceDispatch(sm *model.SourceModel) {
	// Snapshot outgoing edges before mutating: expansion must not re-expand
	// edges it itself introduces in the same pass.
	type pending struct {
		caller string
		edge   model.CallEdge
	}
	var additions []pending

	for caller, edges := range b.outgoing {
		for _, e := range edges {
			callee := e.EffectiveCallee()
			m, ok := sm.Method(callee)
			if !ok {
				continue
			}
			owner, ok := sm.Type(m.ContainingTypeFqn)
			if !ok || (owner.Kind != model.KindInterface && !owner.Modifiers.Has("abstract")) {
				continue
			}
			for _, implFqn := range sm.DirectSubtypes(owner.Fqn) {
				implMethodFqn := model.MethodFQN(implFqn, m.SimpleName, paramSimpleTypes(m))
				if implMethodFqn == callee {
					continue
				}
				if _, exists := sm.Method(implMethodFqn); !exists {
					continue
				}
				additions = append(additions, pending{
					caller: caller,
					edge: model.CallEdge{
						CallerFqn:         caller,
						CalleeFqn:         implMethodFqn,
						ResolvedCalleeFqn: implMethodFqn,
						CallType:          model.CallVirtual,
						Location:          e.Location,
					},
				})
			}
		}
	}

	for _, p := range additions {
		b.AddEdge(p.edge)
	}
}

func paramSimpleTypes(m *model.Method) []string {
	out := make([]string, len(m.Parameters))
	for i, p := range m.Parameters {
		out[i] = p.Type.SimpleName
	}
	return out
}

// Freeze publishes the accumulated facts as a read-only Graph.
func (b *Builder) Freeze() *Graph {
	cache, _ := lru.New[string, map[string]bool](reachableCacheSize)
	return &Graph{
		outgoing:           b.outgoing,
		incoming:           b.incoming,
		applicationMethods: b.applicationMethods,
		reachableCache:     cache,
	}
}

// Outgoing returns every CallEdge whose caller is fqn.
func (g *Graph) Outgoing(fqn string) []model.CallEdge {
	return g.outgoing[fqn]
}

// Incoming returns every CallEdge whose effective callee is fqn.
func (g *Graph) Incoming(fqn string) []model.CallEdge {
	return g.incoming[fqn]
}

// Callees returns the distinct effective-callee FQNs reachable from fqn by
// one call-graph edge.
func (g *Graph) Callees(fqn string) []string {
	return distinctEffectiveCallees(g.outgoing[fqn])
}

// Callers returns the distinct caller FQNs of fqn.
func (g *Graph) Callers(fqn string) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range g.incoming[fqn] {
		if !seen[e.CallerFqn] {
			seen[e.CallerFqn] = true
			out = append(out, e.CallerFqn)
		}
	}
	return out
}

func distinctEffectiveCallees(edges []model.CallEdge) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range edges {
		c := e.EffectiveCallee()
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// IsApplicationMethod reports whether fqn is defined in the analyzed
// sources, per the Source Model's applicationMethods set.
func (g *Graph) IsApplicationMethod(fqn string) bool {
	return g.applicationMethods[fqn]
}

// Reachable performs a BFS from start, stopping descent at library
// boundaries (methods not in applicationMethods are visited but not
// expanded further), capped at defaultReachableCeiling total visits as a
// safety bound against pathological graphs.
func (g *Graph) Reachable(start string) map[string]bool {
	if g.reachableCache != nil {
		if cached, ok := g.reachableCache.Get(start); ok {
			return cached
		}
	}

	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 && len(visited) < defaultReachableCeiling {
		cur := queue[0]
		queue = queue[1:]
		if !g.IsApplicationMethod(cur) && cur != start {
			continue // library boundary: do not expand further
		}
		for _, callee := range g.Callees(cur) {
			if !visited[callee] {
				visited[callee] = true
				queue = append(queue, callee)
			}
		}
	}

	if g.reachableCache != nil {
		g.reachableCache.Add(start, visited)
	}
	return visited
}
