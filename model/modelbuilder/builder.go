// Package modelbuilder normalizes the raw entity and call facts emitted by
// a Parser Adapter into the engine's immutable Source Model.
//
// Grounded on the teacher's map-based Builder->Freeze shape (seen in
// internal/callgraph.Builder and internal/packagegraph.Builder, themselves
// grounded on graph/callgraph/core/types.go's CallGraph): a Builder holds
// plain mutable maps, never owning pointers between entities, and Freeze
// publishes a read-only view in one pass. Per spec §4.1, per-file parse
// failures and duplicate-FQN collisions are recorded as diagnostics rather
// than aborting the build.
package modelbuilder

import (
	"sort"

	"github.com/shivasurya/code-pathfinder/archrules/model"
)

// frameworkComponentAnnotations are the marker annotations that flag a Type
// as advisory "framework-component-like", per spec §4.1.
var frameworkComponentAnnotations = map[string]bool{
	"Component":      true,
	"Service":        true,
	"Repository":     true,
	"Controller":     true,
	"RestController": true,
}

const configurationAnnotation = "Configuration"

// Builder accumulates Type, Method, and Field facts (plus call-relationship
// facts) before Freeze publishes them as a read-only SourceModel. Not safe
// for concurrent use; a caller parallelizing per-compilation-unit extraction
// must merge each unit's facts into one Builder sequentially.
type Builder struct {
	types   map[string]*model.Type
	methods map[string]*model.Method
	fields  map[string]*model.Field

	relationships []model.Relationship
	diagnostics   []model.ResolutionDiagnostic

	// insertion order of type/method/field FQNs, kept only so Freeze's
	// derived relationships (CONTAINS/USES_TYPE) are emitted in a
	// deterministic order regardless of map iteration order.
	typeOrder   []string
	methodOrder []string
	fieldOrder  []string
}

// NewBuilder creates an empty Source Model Builder.
func NewBuilder() *Builder {
	return &Builder{
		types:   make(map[string]*model.Type),
		methods: make(map[string]*model.Method),
		fields:  make(map[string]*model.Field),
	}
}

// AddType registers a Type fact. A duplicate FQN is flagged as a
// DiagDuplicateFqn diagnostic and rejected; the first declaration wins, per
// spec §4.1 ("last-write-wins is forbidden; flag a diagnostic and keep the
// first"). FrameworkComponent/ConfigurationLike flags are computed here from
// the type's annotations rather than trusted from the caller.
func (b *Builder) AddType(t model.Type) {
	if _, exists := b.types[t.Fqn]; exists {
		b.diagnostics = append(b.diagnostics, model.ResolutionDiagnostic{
			Kind:     model.DiagDuplicateFqn,
			Message:  "duplicate type FQN " + t.Fqn + ", keeping first declaration",
			Location: t.Location,
		})
		return
	}
	t.FrameworkComponent = hasAnyAnnotation(t.Annotations, frameworkComponentAnnotations)
	t.ConfigurationLike = hasAnnotation(t.Annotations, configurationAnnotation)
	tCopy := t
	b.types[t.Fqn] = &tCopy
	b.typeOrder = append(b.typeOrder, t.Fqn)
}

// AddMethod registers a Method fact. Duplicate FQNs follow the same
// first-write-wins-plus-diagnostic policy as AddType.
func (b *Builder) AddMethod(m model.Method) {
	if _, exists := b.methods[m.Fqn]; exists {
		b.diagnostics = append(b.diagnostics, model.ResolutionDiagnostic{
			Kind:     model.DiagDuplicateFqn,
			Message:  "duplicate method FQN " + m.Fqn + ", keeping first declaration",
			Location: m.Location,
		})
		return
	}
	mCopy := m
	b.methods[m.Fqn] = &mCopy
	b.methodOrder = append(b.methodOrder, m.Fqn)
}

// AddField registers a Field fact. Duplicate FQNs follow the same
// first-write-wins-plus-diagnostic policy as AddType.
func (b *Builder) AddField(f model.Field) {
	if _, exists := b.fields[f.Fqn]; exists {
		b.diagnostics = append(b.diagnostics, model.ResolutionDiagnostic{
			Kind:     model.DiagDuplicateFqn,
			Message:  "duplicate field FQN " + f.Fqn + ", keeping first declaration",
			Location: f.Location,
		})
		return
	}
	fCopy := f
	b.fields[f.Fqn] = &fCopy
	b.fieldOrder = append(b.fieldOrder, f.Fqn)
}

// AddCallRelationship records a CALLS relationship between a caller and
// callee FQN, so the Package Dependency Graph builder (which derives edges
// from the Source Model's relationships, not the Call Graph) can see call
// edges too, per spec §4.3's "a method in A calls a method whose containing
// type is in B". The Call Graph itself is built separately, directly from
// the Parser Adapter's CallEdge facts.
func (b *Builder) AddCallRelationship(callerFqn, calleeFqn string) {
	b.relationships = append(b.relationships, model.Relationship{
		Kind: model.RelCalls, Source: callerFqn, Target: calleeFqn,
	})
}

// AddParseError records a per-file parse failure as a diagnostic. Per spec
// §7, a parse error is never fatal: the file is skipped and the build
// continues.
func (b *Builder) AddParseError(filePath, message string) {
	b.diagnostics = append(b.diagnostics, model.ResolutionDiagnostic{
		Kind:     model.DiagParseError,
		Message:  message,
		Location: model.Location{FilePath: filePath},
	})
}

// AddResolutionWarning records an unresolved-FQN warning (spec §7's
// "Resolution warning" taxonomy entry) without rejecting the fact it
// accompanies.
func (b *Builder) AddResolutionWarning(kind model.ResolutionDiagnosticKind, message string, loc model.Location) {
	b.diagnostics = append(b.diagnostics, model.ResolutionDiagnostic{Kind: kind, Message: message, Location: loc})
}

// Freeze derives CONTAINS/EXTENDS/IMPLEMENTS/USES_TYPE relationships from
// the accumulated entities (spec §4.1) and publishes everything as an
// immutable SourceModel. Intended to be called exactly once.
func (b *Builder) Freeze() *model.SourceModel {
	rels := make([]model.Relationship, 0, len(b.relationships))
	rels = append(rels, b.relationships...)

	for _, fqn := range b.typeOrder {
		t := b.types[fqn]
		for _, super := range t.Supertypes {
			rels = append(rels, model.Relationship{Kind: model.RelExtends, Source: t.Fqn, Target: super})
		}
		for _, iface := range t.Interfaces {
			rels = append(rels, model.Relationship{Kind: model.RelImplements, Source: t.Fqn, Target: iface})
		}
		for _, a := range t.Annotations {
			target := a.Fqn
			if target == "" {
				target = a.SimpleName
			}
			rels = append(rels, model.Relationship{Kind: model.RelAnnotatedWith, Source: t.Fqn, Target: target})
		}
	}
	for _, fqn := range b.methodOrder {
		m := b.methods[fqn]
		rels = append(rels, model.Relationship{Kind: model.RelContains, Source: m.ContainingTypeFqn, Target: m.Fqn})
		if m.ReturnType.Fqn != "" {
			rels = append(rels, model.Relationship{Kind: model.RelUsesType, Source: m.Fqn, Target: m.ReturnType.Fqn})
		}
		for _, p := range m.Parameters {
			if p.Type.Fqn != "" {
				rels = append(rels, model.Relationship{Kind: model.RelUsesType, Source: m.Fqn, Target: p.Type.Fqn})
			}
		}
		for _, thrown := range m.Thrown {
			rels = append(rels, model.Relationship{Kind: model.RelThrows, Source: m.Fqn, Target: thrown})
		}
	}
	for _, fqn := range b.fieldOrder {
		f := b.fields[fqn]
		rels = append(rels, model.Relationship{Kind: model.RelContains, Source: f.ContainingTypeFqn, Target: f.Fqn})
		if f.Type.Fqn != "" {
			rels = append(rels, model.Relationship{Kind: model.RelUsesField, Source: f.ContainingTypeFqn, Target: f.Fqn})
			rels = append(rels, model.Relationship{Kind: model.RelUsesType, Source: f.Fqn, Target: f.Type.Fqn})
		}
	}

	diags := make([]model.ResolutionDiagnostic, len(b.diagnostics))
	copy(diags, b.diagnostics)
	sort.SliceStable(diags, func(i, j int) bool { return diags[i].Message < diags[j].Message })

	return model.NewFrozenSourceModel(b.types, b.methods, b.fields, rels, diags)
}

func hasAnnotation(annotations []model.AnnotationRef, name string) bool {
	for _, a := range annotations {
		if a.Matches(name) {
			return true
		}
	}
	return false
}

func hasAnyAnnotation(annotations []model.AnnotationRef, names map[string]bool) bool {
	for _, a := range annotations {
		if names[a.SimpleName] {
			return true
		}
	}
	return false
}
