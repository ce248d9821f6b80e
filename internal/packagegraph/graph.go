// Package packagegraph builds and queries the Package Dependency Graph: a
// directed graph of packages, derived from supertype, interface,
// field-type, and call relationships between the types they contain.
//
// Nodes are package names; edges are stored as adjacency sets, never as
// owning pointers between node objects, per the spec's design note for
// cyclic data.
package packagegraph

import "github.com/shivasurya/code-pathfinder/archrules/model"

// Graph is the frozen Package Dependency Graph.
type Graph struct {
	edges map[string]map[string]struct{}
	nodes map[string]struct{}
}

// Builder accumulates package edges before Freeze.
type Builder struct {
	edges map[string]map[string]struct{}
	nodes map[string]struct{}
}

// NewBuilder creates an empty package-graph Builder.
func NewBuilder() *Builder {
	return &Builder{
		edges: make(map[string]map[string]struct{}),
		nodes: make(map[string]struct{}),
	}
}

// AddPackage registers a package node even if it has no edges yet, so an
// isolated package still appears in traversal and cycle results.
func (b *Builder) AddPackage(pkg string) {
	b.nodes[pkg] = struct{}{}
}

// AddEdge records a dependency from 'from' to 'to'. Self-edges are
// suppressed per spec §4.3.
func (b *Builder) AddEdge(from, to string) {
	b.AddPackage(from)
	b.AddPackage(to)
	if from == to {
		return
	}
	if b.edges[from] == nil {
		b.edges[from] = make(map[string]struct{})
	}
	b.edges[from][to] = struct{}{}
}

// FromSourceModel derives package edges from a frozen Source Model: a type
// in package A depends on package B if A has a supertype/interface in B, a
// field of a type in B, or (via relationships) calls into a method whose
// containing type lives in B.
func (b *Builder) FromSourceModel(sm *model.SourceModel) {
	for _, t := range sm.AllTypes() {
		b.AddPackage(t.Package)
		for _, super := range append(append([]string{}, t.Supertypes...), t.Interfaces...) {
			if st, ok := sm.Type(super); ok {
				b.AddEdge(t.Package, st.Package)
			}
		}
	}
	for _, rel := range allRelationships(sm) {
		if rel.Kind != model.RelUsesType && rel.Kind != model.RelUsesField && rel.Kind != model.RelCalls {
			continue
		}
		srcPkg := packageOfFqn(sm, rel.Source)
		dstPkg := packageOfFqn(sm, rel.Target)
		if srcPkg == "" || dstPkg == "" {
			continue
		}
		b.AddEdge(srcPkg, dstPkg)
	}
}

func allRelationships(sm *model.SourceModel) []model.Relationship {
	var out []model.Relationship
	for _, t := range sm.AllTypes() {
		out = append(out, sm.RelationshipsFrom(t.Fqn)...)
	}
	for _, m := range sm.AllMethods() {
		out = append(out, sm.RelationshipsFrom(m.Fqn)...)
	}
	for _, f := range sm.AllFields() {
		out = append(out, sm.RelationshipsFrom(f.Fqn)...)
	}
	return out
}

// packageOfFqn resolves a type or method FQN to its containing package,
// using the source model's method->containing-type link when fqn names a
// method rather than a type.
func packageOfFqn(sm *model.SourceModel, fqn string) string {
	if t, ok := sm.Type(fqn); ok {
		return t.Package
	}
	if m, ok := sm.Method(fqn); ok {
		if t, ok := sm.Type(m.ContainingTypeFqn); ok {
			return t.Package
		}
	}
	if f, ok := sm.Field(fqn); ok {
		if t, ok := sm.Type(f.ContainingTypeFqn); ok {
			return t.Package
		}
	}
	return ""
}

// Freeze publishes the accumulated edges as a read-only Graph.
func (b *Builder) Freeze() *Graph {
	return &Graph{edges: b.edges, nodes: b.nodes}
}

// Packages returns every package node in the graph.
func (g *Graph) Packages() []string {
	out := make([]string, 0, len(g.nodes))
	for p := range g.nodes {
		out = append(out, p)
	}
	return out
}

// Dependencies returns the packages pkg directly depends on.
func (g *Graph) Dependencies(pkg string) []string {
	deps := g.edges[pkg]
	out := make([]string, 0, len(deps))
	for d := range deps {
		out = append(out, d)
	}
	return out
}

// HasEdge reports whether pkg directly depends on other.
func (g *Graph) HasEdge(pkg, other string) bool {
	_, ok := g.edges[pkg][other]
	return ok
}
