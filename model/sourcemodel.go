package model

// SourceModel is the immutable, indexed aggregate of every Type, Method,
// and Field fact extracted from a codebase, plus the typed relationships
// between them. It is published once by a builder's Freeze step and never
// mutated afterward; concurrent readers need no synchronization.
//
// Construct one via modelbuilder.Builder, never directly.
type SourceModel struct {
	types   map[string]*Type
	methods map[string]*Method
	fields  map[string]*Field

	relationships []Relationship

	typesByPackage         map[string][]*Type
	methodsByAnnotation    map[string][]*Method // keyed by both simple and FQN form
	typesByAnnotation      map[string][]*Type
	fieldsByAnnotation     map[string][]*Field
	relationshipsBySource  map[string][]Relationship
	relationshipsByTarget  map[string][]Relationship
	subtypesOf             map[string][]string // supertype/interface FQN -> direct subtype FQNs

	diagnostics []ResolutionDiagnostic
	frozen      bool
}

// NewFrozenSourceModel assembles a SourceModel from already-validated facts
// and builds every index in one pass. Intended to be called exactly once,
// from modelbuilder.Builder.Freeze.
func NewFrozenSourceModel(
	types map[string]*Type,
	methods map[string]*Method,
	fields map[string]*Field,
	relationships []Relationship,
	diagnostics []ResolutionDiagnostic,
) *SourceModel {
	sm := &SourceModel{
		types:                 types,
		methods:               methods,
		fields:                fields,
		relationships:         relationships,
		diagnostics:           diagnostics,
		typesByPackage:        make(map[string][]*Type),
		methodsByAnnotation:   make(map[string][]*Method),
		typesByAnnotation:     make(map[string][]*Type),
		fieldsByAnnotation:    make(map[string][]*Field),
		relationshipsBySource: make(map[string][]Relationship),
		relationshipsByTarget: make(map[string][]Relationship),
		subtypesOf:            make(map[string][]string),
		frozen:                true,
	}

	for _, t := range types {
		sm.typesByPackage[t.Package] = append(sm.typesByPackage[t.Package], t)
		for _, a := range t.Annotations {
			indexByBothNames(sm.typesByAnnotation, a, t)
		}
		for _, super := range append(append([]string{}, t.Supertypes...), t.Interfaces...) {
			sm.subtypesOf[super] = append(sm.subtypesOf[super], t.Fqn)
		}
	}
	for _, m := range methods {
		for _, a := range m.Annotations {
			indexByBothNames(sm.methodsByAnnotation, a, m)
		}
	}
	for _, f := range fields {
		for _, a := range f.Annotations {
			indexByBothNames(sm.fieldsByAnnotation, a, f)
		}
	}
	for _, r := range relationships {
		sm.relationshipsBySource[r.Source] = append(sm.relationshipsBySource[r.Source], r)
		sm.relationshipsByTarget[r.Target] = append(sm.relationshipsByTarget[r.Target], r)
	}

	return sm
}

func indexByBothNames[V any](idx map[string][]V, a AnnotationRef, v V) {
	if a.SimpleName != "" {
		idx[a.SimpleName] = append(idx[a.SimpleName], v)
	}
	if a.Fqn != "" && a.Fqn != a.SimpleName {
		idx[a.Fqn] = append(idx[a.Fqn], v)
	}
}

// IsFrozen reports whether this model has completed construction. Always
// true for a SourceModel obtained via NewFrozenSourceModel; exists so
// downstream code can assert the invariant rather than special-case it.
func (sm *SourceModel) IsFrozen() bool { return sm.frozen }

// Type looks up a Type by FQN.
func (sm *SourceModel) Type(fqn string) (*Type, bool) {
	t, ok := sm.types[fqn]
	return t, ok
}

// Method looks up a Method by FQN.
func (sm *SourceModel) Method(fqn string) (*Method, bool) {
	m, ok := sm.methods[fqn]
	return m, ok
}

// Field looks up a Field by FQN.
func (sm *SourceModel) Field(fqn string) (*Field, bool) {
	f, ok := sm.fields[fqn]
	return f, ok
}

// AllMethods returns every Method fact in the model. The returned slice is
// freshly allocated and safe for the caller to hold or mutate.
func (sm *SourceModel) AllMethods() []*Method {
	out := make([]*Method, 0, len(sm.methods))
	for _, m := range sm.methods {
		out = append(out, m)
	}
	return out
}

// AllTypes returns every Type fact in the model.
func (sm *SourceModel) AllTypes() []*Type {
	out := make([]*Type, 0, len(sm.types))
	for _, t := range sm.types {
		out = append(out, t)
	}
	return out
}

// AllFields returns every Field fact in the model.
func (sm *SourceModel) AllFields() []*Field {
	out := make([]*Field, 0, len(sm.fields))
	for _, f := range sm.fields {
		out = append(out, f)
	}
	return out
}

// TypesInPackage returns the Types declared in the named package.
func (sm *SourceModel) TypesInPackage(pkg string) []*Type {
	return sm.typesByPackage[pkg]
}

// MethodsByAnnotation returns Methods annotated with name (matched by
// either simple or fully-qualified form).
func (sm *SourceModel) MethodsByAnnotation(name string) []*Method {
	return sm.methodsByAnnotation[name]
}

// TypesByAnnotation returns Types annotated with name.
func (sm *SourceModel) TypesByAnnotation(name string) []*Type {
	return sm.typesByAnnotation[name]
}

// FieldsByAnnotation returns Fields annotated with name.
func (sm *SourceModel) FieldsByAnnotation(name string) []*Field {
	return sm.fieldsByAnnotation[name]
}

// RelationshipsFrom returns every relationship whose Source is fqn.
func (sm *SourceModel) RelationshipsFrom(fqn string) []Relationship {
	return sm.relationshipsBySource[fqn]
}

// RelationshipsTo returns every relationship whose Target is fqn.
func (sm *SourceModel) RelationshipsTo(fqn string) []Relationship {
	return sm.relationshipsByTarget[fqn]
}

// DirectSubtypes returns the FQNs of types that directly extend or
// implement superFqn.
func (sm *SourceModel) DirectSubtypes(superFqn string) []string {
	return sm.subtypesOf[superFqn]
}

// IsSubtype reports whether candidateFqn is superFqn itself or transitively
// extends/implements it, walking the inheritance closure.
func (sm *SourceModel) IsSubtype(candidateFqn, superFqn string) bool {
	if candidateFqn == superFqn {
		return true
	}
	t, ok := sm.types[candidateFqn]
	if !ok {
		return false
	}
	visited := map[string]bool{candidateFqn: true}
	queue := append(append([]string{}, t.Supertypes...), t.Interfaces...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if visited[next] {
			continue
		}
		visited[next] = true
		if next == superFqn {
			return true
		}
		if nt, ok := sm.types[next]; ok {
			queue = append(queue, nt.Supertypes...)
			queue = append(queue, nt.Interfaces...)
		}
	}
	return false
}

// Diagnostics returns every non-fatal issue recorded while building the
// model (skipped files, unresolved FQNs, rejected duplicates).
func (sm *SourceModel) Diagnostics() []ResolutionDiagnostic {
	return sm.diagnostics
}

// Stats summarizes model size, used in Orchestrator run statistics.
type Stats struct {
	Types   int
	Methods int
	Fields  int
}

// Stats computes counts over the frozen model.
func (sm *SourceModel) Stats() Stats {
	return Stats{Types: len(sm.types), Methods: len(sm.methods), Fields: len(sm.fields)}
}
